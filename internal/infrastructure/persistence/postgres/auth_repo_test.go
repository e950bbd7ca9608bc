package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	authDomain "trade-journal/internal/domain/auth"

	"github.com/DATA-DOG/go-sqlmock"
)

var userColumns = []string{"id", "email", "display_name", "password_hash", "status", "role_name"}

func TestAuthRepo_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewAuthRepo(db)

	rows := sqlmock.NewRows(userColumns).
		AddRow("u-1", "trader@example.com", "Trader", "hash", "active", "trader")

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("trader@example.com").
		WillReturnRows(rows)

	u, err := repo.FindByEmail(context.Background(), " Trader@Example.com ")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if u.ID != "u-1" || u.Role != authDomain.RoleTrader || !u.IsActive() {
		t.Errorf("unexpected user: %+v", u)
	}
}

func TestAuthRepo_FindByEmailNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err = NewAuthRepo(db).FindByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, authDomain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthRepo_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()
	repo := NewAuthRepo(db)

	rows := sqlmock.NewRows(userColumns).
		AddRow("u-1", "admin@example.com", "Admin", "hash", "active", "admin")

	mock.ExpectQuery("SELECT (.+) FROM users u LEFT JOIN user_roles ur").
		WithArgs("u-1").
		WillReturnRows(rows)

	u, err := repo.FindByID(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if u.ID != "u-1" || u.Role != authDomain.RoleAdmin {
		t.Errorf("unexpected user: %+v", u)
	}
}

func TestAuthRepo_FindByRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows(userColumns).
		AddRow("u-1", "a@example.com", "A", "hash", "active", "trader").
		AddRow("u-2", "b@example.com", "B", "hash", "active", "trader")
	mock.ExpectQuery("SELECT (.+) WHERE r.name = \\$1").
		WithArgs("trader").
		WillReturnRows(rows)

	users, err := NewAuthRepo(db).FindByRole(context.Background(), authDomain.RoleTrader)
	if err != nil {
		t.Fatalf("FindByRole failed: %v", err)
	}
	if len(users) != 2 || users[1].ID != "u-2" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestAuthRepo_SaveSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewAuthRepo(db)
	sess := authDomain.Session{
		UserID:    "u-1",
		Token:     "t-1",
		ExpiresAt: time.Now().Add(time.Hour),
		UserAgent: "UA",
		IPAddress: "127.0.0.1",
	}

	mock.ExpectExec("INSERT INTO auth_sessions").
		WithArgs(sess.UserID, sess.Token, sess.ExpiresAt, sess.UserAgent, sess.IPAddress).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.SaveSession(context.Background(), sess); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
}

func TestAuthRepo_GetSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewAuthRepo(db)
	revoked := time.Now().Add(-time.Minute)

	rows := sqlmock.NewRows([]string{"user_id", "refresh_token_id", "expires_at", "revoked_at", "user_agent", "ip_address", "created_at"}).
		AddRow("u-1", "t-1", time.Now().Add(time.Hour), nil, "UA", "127.0.0.1", time.Now()).
		AddRow("u-1", "t-2", time.Now().Add(time.Hour), revoked, "UA", "127.0.0.1", time.Now())

	mock.ExpectQuery("SELECT (.+) FROM auth_sessions").
		WithArgs("t-1").
		WillReturnRows(rows)

	sess, err := repo.GetSession(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if sess.UserID != "u-1" || sess.Token != "t-1" || sess.RevokedAt != nil {
		t.Errorf("unexpected session: %+v", sess)
	}
	if !sess.Active(time.Now()) {
		t.Errorf("expected active session")
	}
}

func TestAuthRepo_GetSessionNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM auth_sessions").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	if _, err := NewAuthRepo(db).GetSession(context.Background(), "missing"); !errors.Is(err, authDomain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAuthRepo_RevokeSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewAuthRepo(db)

	mock.ExpectExec("UPDATE auth_sessions").
		WithArgs("t-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.RevokeSession(context.Background(), "t-1"); err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}
}

func TestAuthRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewAuthRepo(db)
	u := authDomain.User{Email: "new@example.com", Name: "New", Password: "pwd"}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u-99"))
	mock.ExpectQuery("SELECT id FROM roles WHERE name = \\$1").WithArgs("trader").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("r-1"))
	mock.ExpectExec("INSERT INTO user_roles").WithArgs("u-99", "r-1").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	id, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id != "u-99" {
		t.Errorf("expected u-99, got %s", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthRepo_SeedDefaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()
	repo := NewAuthRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO roles").WithArgs("admin", sqlmock.AnyArg()).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("r1"))
	mock.ExpectQuery("INSERT INTO roles").WithArgs("trader", sqlmock.AnyArg()).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("r2"))
	mock.ExpectQuery("INSERT INTO roles").WithArgs("viewer", sqlmock.AnyArg()).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("r3"))

	for i, roleID := range []string{"r1", "r2", "r3"} {
		uid := []string{"u1", "u2", "u3"}[i]
		mock.ExpectQuery("INSERT INTO users").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uid))
		mock.ExpectExec("INSERT INTO user_roles").WithArgs(uid, roleID).WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	if err := repo.SeedDefaults(context.Background()); err != nil {
		t.Fatalf("SeedDefaults failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
