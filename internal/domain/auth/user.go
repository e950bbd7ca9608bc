package auth

import (
	"errors"
	"strings"
)

// Role 帳號角色：admin 管理帳號並收摘要推播，trader 記錄交易，viewer 只能看分析。
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleTrader Role = "trader"
	RoleViewer Role = "viewer"
)

// Roles 依權限由高到低排列。
var Roles = []Role{RoleAdmin, RoleTrader, RoleViewer}

func (r Role) Valid() bool {
	for _, v := range Roles {
		if v == r {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
	StatusLocked   Status = "locked"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidUser  = errors.New("invalid user")
)

// User 登入帳號，交易紀錄以 ID 歸屬。
type User struct {
	ID       string
	Email    string
	Name     string
	Role     Role
	Status   Status
	Password string // bcrypt 雜湊
}

// NormalizeEmail email 一律去空白轉小寫後再比對或儲存。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u User) Validate() error {
	switch {
	case u.ID == "":
		return errors.Join(ErrInvalidUser, errors.New("id is required"))
	case !strings.Contains(u.Email, "@"):
		return errors.Join(ErrInvalidUser, errors.New("valid email is required"))
	case !u.Role.Valid():
		return errors.Join(ErrInvalidUser, errors.New("unknown role"))
	case u.Status == "":
		return errors.Join(ErrInvalidUser, errors.New("status is required"))
	}
	return nil
}

// IsActive 只有 active 帳號可登入或換發 token。
func (u User) IsActive() bool {
	return u.Status == StatusActive
}
