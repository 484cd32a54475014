package publishing

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func group(orders ...int) []Sibling {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sibs := make([]Sibling, len(orders))
	for i, o := range orders {
		sibs[i] = Sibling{
			ID:           fmt.Sprintf("item-%d", i),
			DisplayOrder: o,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
	}
	return sibs
}

func apply(sibs []Sibling, plan []Assignment) []Sibling {
	byID := make(map[string]int, len(plan))
	for _, a := range plan {
		byID[a.ID] = a.To
	}
	out := append([]Sibling(nil), sibs...)
	for i := range out {
		if to, ok := byID[out[i].ID]; ok {
			out[i].DisplayOrder = to
		}
	}
	return out
}

func assertContiguous(t *testing.T, sibs []Sibling) {
	t.Helper()
	seen := make(map[int]string, len(sibs))
	for _, s := range sibs {
		if prev, dup := seen[s.DisplayOrder]; dup {
			t.Fatalf("duplicate order %d (%s and %s)", s.DisplayOrder, prev, s.ID)
		}
		seen[s.DisplayOrder] = s.ID
	}
	for i := range sibs {
		if _, ok := seen[i]; !ok {
			t.Fatalf("gap at order %d: %+v", i, sibs)
		}
	}
}

func TestNextOrder(t *testing.T) {
	if got := NextOrder(nil); got != 0 {
		t.Errorf("empty group: got %d", got)
	}
	if got := NextOrder(group(0, 1, 2)); got != 3 {
		t.Errorf("got %d, want 3", got)
	}
}

func TestPlanRemoveMiddle(t *testing.T) {
	sibs := group(0, 1, 2, 3)
	removed := sibs[1].ID

	after := apply(sibs, PlanRemove(sibs, removed))
	var survivors []Sibling
	for _, s := range after {
		if s.ID != removed {
			survivors = append(survivors, s)
		}
	}

	assertContiguous(t, survivors)
	SortSiblings(survivors)
	// Relative sequence preserved: item-0, item-2, item-3.
	want := []string{"item-0", "item-2", "item-3"}
	for i, s := range survivors {
		if s.ID != want[i] {
			t.Errorf("position %d: got %s, want %s", i, s.ID, want[i])
		}
	}
}

func TestPlanSwapAdjacent(t *testing.T) {
	sibs := group(0, 1, 2)

	plan, ok := PlanSwap(sibs, "item-1", MoveUp)
	if !ok {
		t.Fatal("item not found")
	}
	if len(plan) != 2 {
		t.Fatalf("swap plan has %d assignments", len(plan))
	}
	after := apply(sibs, plan)
	SortSiblings(after)
	if after[0].ID != "item-1" || after[1].ID != "item-0" {
		t.Errorf("after move up: %v, %v", after[0].ID, after[1].ID)
	}
	assertContiguous(t, after)
}

func TestPlanSwapBoundaryIsNoop(t *testing.T) {
	sibs := group(0, 1, 2)

	for _, c := range []struct {
		id  string
		dir Direction
	}{
		{"item-0", MoveUp},
		{"item-2", MoveDown},
	} {
		plan, ok := PlanSwap(sibs, c.id, c.dir)
		if !ok {
			t.Fatalf("%s: item not found", c.id)
		}
		if len(plan) != 0 {
			t.Errorf("moving %s %s produced a plan: %+v", c.id, c.dir, plan)
		}
	}

	if _, ok := PlanSwap(sibs, "gone", MoveUp); ok {
		t.Error("unknown id reported as found")
	}
}

func TestPlanReorder(t *testing.T) {
	sibs := group(0, 1, 2)

	plan, err := PlanReorder(sibs, []string{"item-2", "item-0", "item-1"})
	if err != nil {
		t.Fatal(err)
	}
	after := apply(sibs, plan)
	SortSiblings(after)
	want := []string{"item-2", "item-0", "item-1"}
	for i, s := range after {
		if s.ID != want[i] {
			t.Errorf("position %d: got %s, want %s", i, s.ID, want[i])
		}
	}
	assertContiguous(t, after)
}

func TestPlanReorderRejectsStalePayload(t *testing.T) {
	sibs := group(0, 1, 2)
	var mismatch *OrderMismatchError

	// Unknown id.
	if _, err := PlanReorder(sibs, []string{"item-0", "item-1", "ghost"}); !errors.As(err, &mismatch) {
		t.Errorf("unknown id: got %v", err)
	}
	// Wrong length.
	if _, err := PlanReorder(sibs, []string{"item-0", "item-1"}); !errors.As(err, &mismatch) {
		t.Errorf("short payload: got %v", err)
	}
	// Duplicate id.
	if _, err := PlanReorder(sibs, []string{"item-0", "item-1", "item-1"}); !errors.As(err, &mismatch) {
		t.Errorf("duplicate id: got %v", err)
	}
}

func TestPlanHealLegacyDuplicates(t *testing.T) {
	// Two rows with equal orders and a gap, as left behind by legacy data.
	sibs := group(0, 2, 2, 5)
	if !NeedsHeal(sibs) {
		t.Fatal("drifted group not flagged")
	}

	after := apply(sibs, PlanHeal(sibs))
	assertContiguous(t, after)

	// Creation time breaks the tie between the two order-2 rows.
	SortSiblings(after)
	if after[1].ID != "item-1" || after[2].ID != "item-2" {
		t.Errorf("tie-break order wrong: %s before %s", after[1].ID, after[2].ID)
	}

	if NeedsHeal(group(0, 1, 2)) {
		t.Error("dense group flagged for healing")
	}
}

// The dense range survives an arbitrary mix of append, remove, swap, and
// full-reorder operations.
func TestOrderingContiguityUnderOperationSequence(t *testing.T) {
	var sibs []Sibling
	next := 0
	add := func() {
		sibs = append(sibs, Sibling{
			ID:           fmt.Sprintf("n%d", next),
			DisplayOrder: NextOrder(sibs),
			CreatedAt:    time.Now(),
		})
		next++
	}
	remove := func(id string) {
		plan := PlanRemove(sibs, id)
		kept := sibs[:0]
		for _, s := range sibs {
			if s.ID != id {
				kept = append(kept, s)
			}
		}
		sibs = apply(kept, plan)
	}
	swap := func(id string, dir Direction) {
		if plan, ok := PlanSwap(sibs, id, dir); ok {
			sibs = apply(sibs, plan)
		}
	}

	add()
	add()
	add()
	add()
	assertContiguous(t, sibs)
	swap("n2", MoveUp)
	assertContiguous(t, sibs)
	remove("n1")
	assertContiguous(t, sibs)
	add()
	swap("n4", MoveDown) // boundary no-op
	assertContiguous(t, sibs)
	remove("n0")
	remove("n3")
	assertContiguous(t, sibs)
	add()
	plan, err := PlanReorder(sibs, []string{"n5", "n2", "n4"})
	if err != nil {
		t.Fatal(err)
	}
	sibs = apply(sibs, plan)
	assertContiguous(t, sibs)
}
