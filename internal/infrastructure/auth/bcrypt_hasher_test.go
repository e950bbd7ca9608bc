package authinfra

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}
	hashed, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !h.Compare(hashed, "password123") {
		t.Error("Compare failed")
	}
	if h.Compare(hashed, "wrong") || h.Compare("", "password123") || h.Compare(hashed, "") {
		t.Error("Compare should have failed")
	}
}

func TestBcryptHasherClampsCost(t *testing.T) {
	hashed, err := BcryptHasher{Cost: 1}.Hash("pw")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hashed))
	if err != nil || cost != bcrypt.MinCost {
		t.Fatalf("expected min cost, got %d err=%v", cost, err)
	}
}

func TestBcryptHasherRejectsLongPassword(t *testing.T) {
	long := strings.Repeat("x", 73)
	if _, err := (BcryptHasher{Cost: bcrypt.MinCost}).Hash(long); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
	if (BcryptHasher{}).Compare("$2a$04$whatever", long) {
		t.Fatalf("long password must not match")
	}
}
