package publishing

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Group identifies one sibling group inside a collection table.
type Group struct {
	Table  string
	Column string // group column; "" for a single global group
	Key    any    // group value; nil matches rows with a NULL group column
}

func (g Group) scope(tx *gorm.DB) *gorm.DB {
	q := tx.Table(g.Table).Where("deleted_at IS NULL")
	if g.Column != "" {
		if g.Key == nil {
			q = q.Where(g.Column + " IS NULL")
		} else {
			q = q.Where(g.Column+" = ?", g.Key)
		}
	}
	return q
}

// LockSiblings reads the group's rows FOR UPDATE inside tx and returns them
// in sibling-sort order. The row lock serializes mutations per group.
func LockSiblings(tx *gorm.DB, g Group) ([]Sibling, error) {
	var rows []Sibling
	err := g.scope(tx).
		Select("id", "display_order", "created_at").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	SortSiblings(rows)
	return rows, nil
}

// ApplyPlan writes the assignments inside tx. Each update is guarded by the
// previously read display order; a mismatch means another writer got in
// between and the whole transaction rolls back with ErrConcurrencyConflict.
func ApplyPlan(tx *gorm.DB, g Group, plan []Assignment) error {
	for _, a := range plan {
		res := tx.Table(g.Table).
			Where("id = ? AND display_order = ?", a.ID, a.From).
			UpdateColumn("display_order", a.To)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrConcurrencyConflict
		}
	}
	return nil
}

// Manager executes ordering operations against the database. Every mutation
// runs in one transaction over a locked sibling group, so a crash or a
// concurrent writer can never leave a gap, a duplicate, or a half-applied
// swap behind.
type Manager struct {
	db *gorm.DB
}

func NewManager(db *gorm.DB) *Manager { return &Manager{db: db} }

// NextOrder returns the next free trailing index of the group.
func (m *Manager) NextOrder(ctx context.Context, g Group) (int, error) {
	var count int64
	if err := g.scope(m.db.WithContext(ctx)).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// Remove soft-deletes the row (via the collection's model, so gorm handles
// deleted_at) and renumbers the survivors in the same transaction.
func (m *Manager) Remove(ctx context.Context, g Group, model any, id string) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sibs, err := LockSiblings(tx, g)
		if err != nil {
			return err
		}
		if !containsSibling(sibs, id) {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Delete(model, "id = ?", id).Error; err != nil {
			return err
		}
		return ApplyPlan(tx, g, PlanRemove(sibs, id))
	})
}

// MoveAdjacent swaps the row with its neighbor in the given direction.
// Boundary moves are no-ops. A group with legacy gaps or duplicates is
// healed first, inside the same transaction.
func (m *Manager) MoveAdjacent(ctx context.Context, g Group, id string, dir Direction) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sibs, err := lockHealed(tx, g)
		if err != nil {
			return err
		}
		plan, ok := PlanSwap(sibs, id, dir)
		if !ok {
			return gorm.ErrRecordNotFound
		}
		return ApplyPlan(tx, g, plan)
	})
}

// ReorderAll assigns 0..n-1 by position in orderedIDs, rejecting payloads
// that are not a permutation of the current membership.
func (m *Manager) ReorderAll(ctx context.Context, g Group, orderedIDs []string) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sibs, err := LockSiblings(tx, g)
		if err != nil {
			return err
		}
		plan, err := PlanReorder(sibs, orderedIDs)
		if err != nil {
			return err
		}
		return ApplyPlan(tx, g, plan)
	})
}

// Regroup is the bookkeeping for a row moving between sibling groups inside
// one update transaction: the row is appended to the destination and the
// source is renumbered so both groups stay dense.
type Regroup struct {
	// DestOrder is the append index in the destination group. The caller
	// writes it together with the group column itself.
	DestOrder int

	src    Group
	source []Sibling
	id     string
}

// PlanRegroup locks both sibling groups of a row whose group column is about
// to change. After rewriting the group column and DestOrder, the caller must
// CloseGap in the same transaction.
func PlanRegroup(tx *gorm.DB, src, dst Group, id string) (*Regroup, error) {
	source, err := LockSiblings(tx, src)
	if err != nil {
		return nil, err
	}
	if !containsSibling(source, id) {
		return nil, gorm.ErrRecordNotFound
	}
	dest, err := LockSiblings(tx, dst)
	if err != nil {
		return nil, err
	}
	return &Regroup{DestOrder: NextOrder(dest), src: src, source: source, id: id}, nil
}

// CloseGap renumbers the source group once the row has left it, restoring
// the dense range for the survivors.
func (r *Regroup) CloseGap(tx *gorm.DB) error {
	return ApplyPlan(tx, r.src, PlanRemove(r.source, r.id))
}

// lockHealed locks the group and renumbers it first when the stored orders
// have drifted from the dense range.
func lockHealed(tx *gorm.DB, g Group) ([]Sibling, error) {
	sibs, err := LockSiblings(tx, g)
	if err != nil {
		return nil, err
	}
	if !NeedsHeal(sibs) {
		return sibs, nil
	}
	plan := PlanHeal(sibs)
	if err := ApplyPlan(tx, g, plan); err != nil {
		return nil, err
	}
	healed := make(map[string]int, len(plan))
	for _, a := range plan {
		healed[a.ID] = a.To
	}
	for i := range sibs {
		if to, ok := healed[sibs[i].ID]; ok {
			sibs[i].DisplayOrder = to
		}
	}
	SortSiblings(sibs)
	return sibs, nil
}

func containsSibling(sibs []Sibling, id string) bool {
	for _, s := range sibs {
		if s.ID == id {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err is the record-not-found sentinel, so
// handlers can map it to a 404 without importing gorm.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// CollectSlugs reads every live slug of a collection inside tx, feeding the
// slug generator's uniqueness check in the same transaction as the insert.
func CollectSlugs(tx *gorm.DB, table string) ([]string, error) {
	var slugs []string
	err := tx.Table(table).Where("deleted_at IS NULL").Pluck("slug", &slugs).Error
	return slugs, err
}
