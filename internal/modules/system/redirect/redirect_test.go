package redirect

import (
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

func TestFindBySlugHit(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db)

	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "deleted_at", "slug", "type", "target_id"}).
		AddRow("r1", time.Now(), time.Now(), nil, "annual-report", "post", "p42")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `slug_redirects`")).
		WithArgs("annual-report", "post", 1).
		WillReturnRows(rows)

	targetID, err := svc.FindBySlug("annual-report", "post")
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if targetID != "p42" {
		t.Fatalf("targetID = %q, want p42", targetID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFindBySlugMissIsNotAnError(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `slug_redirects`")).
		WithArgs("nope", "event", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	targetID, err := svc.FindBySlug("nope", "event")
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if targetID != "" {
		t.Fatalf("targetID = %q, want empty", targetID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteByTargetID(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `slug_redirects` SET `deleted_at`")).
		WithArgs(sqlmock.AnyArg(), "p42").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	if err := svc.DeleteByTargetID("p42"); err != nil {
		t.Fatalf("DeleteByTargetID: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
