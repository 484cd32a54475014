package publishing

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return db, mock
}

func siblingRows(sibs ...Sibling) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "display_order", "created_at"})
	for _, s := range sibs {
		rows.AddRow(s.ID, s.DisplayOrder, s.CreatedAt)
	}
	return rows
}

var (
	lockStatsSQL   = "SELECT .* FROM `stats` WHERE deleted_at IS NULL AND section = \\?.*FOR UPDATE"
	updateStatsSQL = regexp.QuoteMeta("UPDATE `stats` SET `display_order`")
)

// A guarded update that hits zero rows means another writer renumbered the
// group between our read and our write: the whole move must roll back with
// ErrConcurrencyConflict.
func TestMoveAdjacentConflictRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	g := Group{Table: "stats", Column: "section", Key: "hero"}
	base := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(lockStatsSQL).
		WithArgs("hero").
		WillReturnRows(siblingRows(
			Sibling{ID: "a", DisplayOrder: 0, CreatedAt: base},
			Sibling{ID: "b", DisplayOrder: 1, CreatedAt: base.Add(time.Second)},
			Sibling{ID: "c", DisplayOrder: 2, CreatedAt: base.Add(2 * time.Second)},
		))
	mock.ExpectExec(updateStatsSQL).
		WithArgs(2, "b", 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := NewManager(db).MoveAdjacent(context.Background(), g, "b", MoveDown)
	if !errors.Is(err, ErrConcurrencyConflict) {
		t.Fatalf("MoveAdjacent error = %v, want ErrConcurrencyConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

// A group with legacy duplicate orders is renumbered inside the same
// transaction before the requested swap is applied.
func TestMoveAdjacentHealsDriftedGroupFirst(t *testing.T) {
	db, mock := newMockDB(t)
	g := Group{Table: "stats", Column: "section", Key: "hero"}
	base := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(lockStatsSQL).
		WithArgs("hero").
		WillReturnRows(siblingRows(
			Sibling{ID: "a", DisplayOrder: 0, CreatedAt: base},
			Sibling{ID: "b", DisplayOrder: 1, CreatedAt: base.Add(time.Second)},
			Sibling{ID: "c", DisplayOrder: 1, CreatedAt: base.Add(2 * time.Second)},
		))
	// heal: c 1 -> 2
	mock.ExpectExec(updateStatsSQL).
		WithArgs(2, "c", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// swap: a 0 -> 1, b 1 -> 0
	mock.ExpectExec(updateStatsSQL).
		WithArgs(1, "a", 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(updateStatsSQL).
		WithArgs(0, "b", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := NewManager(db).MoveAdjacent(context.Background(), g, "a", MoveDown); err != nil {
		t.Fatalf("MoveAdjacent: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

// Moving a row between groups appends it to the destination and renumbers
// the source, so both groups keep their dense range.
func TestRegroupAppendsToDestinationAndClosesSourceGap(t *testing.T) {
	db, mock := newMockDB(t)
	src := Group{Table: "posts", Column: "category_id", Key: "c1"}
	dst := Group{Table: "posts", Column: "category_id", Key: "c2"}
	base := time.Now()

	lockPostsSQL := "SELECT .* FROM `posts` WHERE deleted_at IS NULL AND category_id = \\?.*FOR UPDATE"
	updatePostsSQL := regexp.QuoteMeta("UPDATE `posts` SET `display_order`")

	mock.ExpectBegin()
	mock.ExpectQuery(lockPostsSQL).
		WithArgs("c1").
		WillReturnRows(siblingRows(
			Sibling{ID: "p1", DisplayOrder: 0, CreatedAt: base},
			Sibling{ID: "moved", DisplayOrder: 1, CreatedAt: base.Add(time.Second)},
			Sibling{ID: "p3", DisplayOrder: 2, CreatedAt: base.Add(2 * time.Second)},
		))
	mock.ExpectQuery(lockPostsSQL).
		WithArgs("c2").
		WillReturnRows(siblingRows(
			Sibling{ID: "q1", DisplayOrder: 0, CreatedAt: base},
		))
	// close the gap the moved row leaves behind: p3 2 -> 1
	mock.ExpectExec(updatePostsSQL).
		WithArgs(1, "p3", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := db.Transaction(func(tx *gorm.DB) error {
		regroup, err := PlanRegroup(tx, src, dst, "moved")
		if err != nil {
			return err
		}
		if regroup.DestOrder != 1 {
			t.Fatalf("DestOrder = %d, want 1", regroup.DestOrder)
		}
		return regroup.CloseGap(tx)
	})
	if err != nil {
		t.Fatalf("regroup: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

// A row that is not in the claimed source group cannot be regrouped.
func TestRegroupUnknownRow(t *testing.T) {
	db, mock := newMockDB(t)
	src := Group{Table: "posts", Column: "category_id", Key: "c1"}
	dst := Group{Table: "posts", Column: "category_id", Key: "c2"}

	lockPostsSQL := "SELECT .* FROM `posts` WHERE deleted_at IS NULL AND category_id = \\?.*FOR UPDATE"

	mock.ExpectBegin()
	mock.ExpectQuery(lockPostsSQL).
		WithArgs("c1").
		WillReturnRows(siblingRows(Sibling{ID: "p1", DisplayOrder: 0, CreatedAt: time.Now()}))
	mock.ExpectRollback()

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := PlanRegroup(tx, src, dst, "ghost")
		return err
	})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("PlanRegroup error = %v, want ErrRecordNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
