package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func newMockStore(t *testing.T) (*PGStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPGStore(db), mock
}

func TestPGCreateWithSupervisorLink(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("insert into users").
		WithArgs(sqlmock.AnyArg(), "tech@demo.com", "hash", "Tech", "TECNICO").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectExec("insert into team_members").
		WithArgs("sup-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	u := &User{Email: "tech@demo.com", PasswordHash: "hash", Name: "Tech", Role: RoleTecnico}
	if err := store.Create(context.Background(), u, "sup-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected generated id")
	}
	if !u.CreatedAt.Equal(created) {
		t.Fatalf("created_at not taken from store: %v", u.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGCreateWithoutLinkSkipsTeamInsert(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("insert into users").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectCommit()

	u := &User{Email: "adm@demo.com", PasswordHash: "hash", Name: "Adm", Role: RoleAdmin}
	if err := store.Create(context.Background(), u, ""); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGCreateMapsUniqueViolation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("insert into users").
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})
	mock.ExpectRollback()

	u := &User{Email: "dup@demo.com", PasswordHash: "hash", Name: "Dup", Role: RoleAdmin}
	if err := store.Create(context.Background(), u, ""); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestPGCreateLinkFailureRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("insert into users").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec("insert into team_members").
		WillReturnError(errors.New("constraint failure"))
	mock.ExpectRollback()

	u := &User{Email: "tech@demo.com", PasswordHash: "hash", Name: "Tech", Role: RoleTecnico}
	if err := store.Create(context.Background(), u, "sup-1"); err == nil {
		t.Fatal("expected error when the link insert fails")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expected rollback, got: %v", err)
	}
}

func TestPGFindByEmailNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select id, email, password_hash, name, role, created_at").
		WithArgs("ghost@demo.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "role", "created_at"}))

	if _, err := store.FindByEmail(context.Background(), "ghost@demo.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGFindByEmail(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Now().UTC()

	mock.ExpectQuery("select id, email, password_hash, name, role, created_at").
		WithArgs("adm@demo.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "role", "created_at"}).
			AddRow("u1", "adm@demo.com", "hash", "Adm", "ADMIN", created))

	u, err := store.FindByEmail(context.Background(), "adm@demo.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if u.ID != "u1" || u.Role != RoleAdmin {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestPGDeleteMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("delete from users").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGSupervisorOfMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select team_id from team_members").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"team_id"}))

	if _, err := store.SupervisorOf(context.Background(), "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGSupervisorLinks(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select user_id, team_id from team_members").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "team_id"}).
			AddRow("u1", "sup-1").
			AddRow("u2", "sup-2").
			AddRow("u1", "sup-9"))

	links, err := store.SupervisorLinks(context.Background())
	if err != nil {
		t.Fatalf("SupervisorLinks: %v", err)
	}
	if links["u1"] != "sup-1" || links["u2"] != "sup-2" {
		t.Fatalf("unexpected links: %v", links)
	}
}
