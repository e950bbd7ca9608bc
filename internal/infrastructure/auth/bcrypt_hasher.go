package authinfra

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt 只取前 72 bytes，超過的密碼直接拒絕。
const maxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("password longer than 72 bytes")

// BcryptHasher 以 bcrypt 雜湊與比對密碼，Cost 為 0 時用預設成本。
type BcryptHasher struct {
	Cost int
}

func (BcryptHasher) Compare(hashed, plain string) bool {
	if hashed == "" || plain == "" || len(plain) > maxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

func (h BcryptHasher) Hash(plain string) (string, error) {
	if len(plain) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	cost := h.Cost
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	out, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// HashPassword 以最低成本雜湊示範帳號密碼，只供 seed 使用。
func HashPassword(plain string) (string, error) {
	return BcryptHasher{Cost: bcrypt.MinCost}.Hash(plain)
}
