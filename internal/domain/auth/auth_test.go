package auth

import (
	"errors"
	"testing"
	"time"
)

func TestUserValidate(t *testing.T) {
	base := User{ID: "u-1", Email: "trader@example.com", Role: RoleTrader, Status: StatusActive}
	tests := []struct {
		name   string
		mutate func(*User)
		ok     bool
	}{
		{"valid trader", func(*User) {}, true},
		{"missing id", func(u *User) { u.ID = "" }, false},
		{"missing email", func(u *User) { u.Email = "" }, false},
		{"unknown role", func(u *User) { u.Role = "analyst" }, false},
		{"missing status", func(u *User) { u.Status = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := base
			tt.mutate(&u)
			err := u.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidUser) {
				t.Fatalf("expected ErrInvalidUser, got %v", err)
			}
		})
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range Roles {
		if !r.Valid() {
			t.Fatalf("role %s should be valid", r)
		}
	}
	if Role("").Valid() || Role("Admin").Valid() {
		t.Fatalf("unexpected valid role")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Trader@Example.COM "); got != "trader@example.com" {
		t.Fatalf("got %q", got)
	}
}

func TestUserIsActive(t *testing.T) {
	for status, want := range map[Status]bool{StatusActive: true, StatusLocked: false, StatusDisabled: false} {
		if got := (User{Status: status}).IsActive(); got != want {
			t.Fatalf("status %s active=%v want %v", status, got, want)
		}
	}
}

func TestSessionActive(t *testing.T) {
	now := time.Now()
	s := Session{ExpiresAt: now.Add(time.Hour)}
	if !s.Active(now) {
		t.Error("expected active")
	}

	s.ExpiresAt = now
	if s.Active(now) {
		t.Error("expected inactive at expiry instant")
	}

	revoked := now.Add(-time.Minute)
	s.ExpiresAt = now.Add(time.Hour)
	s.RevokedAt = &revoked
	if s.Active(now) {
		t.Error("expected inactive due to revocation")
	}
}
