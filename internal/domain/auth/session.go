package auth

import (
	"context"
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// Session 一組 refresh token 的狀態；Token 為儲存鍵，不一定是原始 token。
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	RevokedAt *time.Time
	UserAgent string
	IPAddress string
	CreatedAt time.Time
}

// Active 未過期且未撤銷；到期那一刻即失效。
func (s Session) Active(now time.Time) bool {
	if !now.Before(s.ExpiresAt) {
		return false
	}
	return s.RevokedAt == nil || s.RevokedAt.IsZero()
}

type SessionStore interface {
	SaveSession(ctx context.Context, sess Session) error
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string) error
}

// TokenMeta 簽發 token 時記錄的來源資訊。
type TokenMeta struct {
	UserAgent string
	IP        string
}

// TokenPair 登入或 refresh 後回傳給前端的 token 組合。
type TokenPair struct {
	AccessToken   string    `json:"access_token"`
	RefreshToken  string    `json:"refresh_token"`
	AccessExpiry  time.Time `json:"access_expires_at"`
	RefreshExpiry time.Time `json:"refresh_expires_at"`
}
