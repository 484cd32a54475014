package publishing

import (
	"sort"
	"time"
)

// Direction of an adjacent move.
type Direction string

const (
	MoveUp   Direction = "up"
	MoveDown Direction = "down"
)

// ParseDirection validates a move direction from a request.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case MoveUp, MoveDown:
		return Direction(s), nil
	}
	return "", &ValidationError{Reason: "direction must be \"up\" or \"down\""}
}

// Sibling is the minimal view of a row the ordering planner needs.
type Sibling struct {
	ID           string
	DisplayOrder int
	CreatedAt    time.Time
}

// Assignment moves one row from its previously read display order to a new
// one. From guards the write: a row whose order changed since the read makes
// the whole plan fail with ErrConcurrencyConflict.
type Assignment struct {
	ID   string
	From int
	To   int
}

// SortSiblings orders by display order ascending. Equal orders (legacy data
// or a historical race) tie-break on creation time, so rendering stays
// deterministic until the next write heals the group.
func SortSiblings(siblings []Sibling) {
	sort.SliceStable(siblings, func(i, j int) bool {
		if siblings[i].DisplayOrder != siblings[j].DisplayOrder {
			return siblings[i].DisplayOrder < siblings[j].DisplayOrder
		}
		return siblings[i].CreatedAt.Before(siblings[j].CreatedAt)
	})
}

// NextOrder returns the next free trailing index for an append.
func NextOrder(siblings []Sibling) int { return len(siblings) }

// NeedsHeal reports whether the group's orders deviate from the dense range
// [0, n-1] in sibling-sort order.
func NeedsHeal(siblings []Sibling) bool {
	s := append([]Sibling(nil), siblings...)
	SortSiblings(s)
	for i, sib := range s {
		if sib.DisplayOrder != i {
			return true
		}
	}
	return false
}

// PlanHeal renumbers the whole group to the dense range, preserving the
// current sibling-sort order. Used to self-heal legacy gaps or duplicates on
// the next write.
func PlanHeal(siblings []Sibling) []Assignment {
	s := append([]Sibling(nil), siblings...)
	SortSiblings(s)
	var plan []Assignment
	for i, sib := range s {
		if sib.DisplayOrder != i {
			plan = append(plan, Assignment{ID: sib.ID, From: sib.DisplayOrder, To: i})
		}
	}
	return plan
}

// PlanRemove renumbers the group after the given row is deleted, closing the
// gap so the survivors keep the dense range [0, n-2].
func PlanRemove(siblings []Sibling, id string) []Assignment {
	s := append([]Sibling(nil), siblings...)
	SortSiblings(s)

	var plan []Assignment
	next := 0
	for _, sib := range s {
		if sib.ID == id {
			continue
		}
		if sib.DisplayOrder != next {
			plan = append(plan, Assignment{ID: sib.ID, From: sib.DisplayOrder, To: next})
		}
		next++
	}
	return plan
}

// PlanSwap exchanges display orders between the row and its immediate
// neighbor in the requested direction. Moving the first row up or the last
// row down returns (nil, true): a no-op, not an error. The row having left
// the group returns (nil, false).
func PlanSwap(siblings []Sibling, id string, dir Direction) ([]Assignment, bool) {
	s := append([]Sibling(nil), siblings...)
	SortSiblings(s)

	idx := -1
	for i, sib := range s {
		if sib.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}

	other := idx - 1
	if dir == MoveDown {
		other = idx + 1
	}
	if other < 0 || other >= len(s) {
		return nil, true
	}

	return []Assignment{
		{ID: s[idx].ID, From: s[idx].DisplayOrder, To: s[other].DisplayOrder},
		{ID: s[other].ID, From: s[other].DisplayOrder, To: s[idx].DisplayOrder},
	}, true
}

// PlanReorder assigns 0..n-1 by position in orderedIDs. The input must be a
// permutation of the current membership; otherwise the plan is rejected and
// nothing is mutated.
func PlanReorder(siblings []Sibling, orderedIDs []string) ([]Assignment, error) {
	if len(orderedIDs) != len(siblings) {
		return nil, &OrderMismatchError{Expected: len(siblings), Got: len(orderedIDs)}
	}

	byID := make(map[string]Sibling, len(siblings))
	for _, sib := range siblings {
		byID[sib.ID] = sib
	}

	seen := make(map[string]struct{}, len(orderedIDs))
	var plan []Assignment
	for pos, id := range orderedIDs {
		sib, ok := byID[id]
		if !ok {
			return nil, &OrderMismatchError{Expected: len(siblings), Got: len(orderedIDs)}
		}
		if _, dup := seen[id]; dup {
			return nil, &OrderMismatchError{Expected: len(siblings), Got: len(orderedIDs)}
		}
		seen[id] = struct{}{}
		if sib.DisplayOrder != pos {
			plan = append(plan, Assignment{ID: sib.ID, From: sib.DisplayOrder, To: pos})
		}
	}
	return plan, nil
}
