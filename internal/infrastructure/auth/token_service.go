package authinfra

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"trade-journal/internal/domain/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuerName   = "trade-journal"
	audienceName = "trade-journal-api"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrSessionExpired = errors.New("session expired or revoked")
)

// TokenConfig 簽章密鑰與兩種 token 的效期。
type TokenConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// UserFinder refresh 時重新讀取使用者。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (auth.User, error)
}

// Claims access token 的 payload。
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService 簽發 HS256 access token；refresh token 只以 SHA-256 摘要存入 SessionStore。
type TokenService struct {
	cfg      TokenConfig
	sessions auth.SessionStore
	users    UserFinder
	now      func() time.Time
}

func NewTokenService(cfg TokenConfig, sessions auth.SessionStore, users UserFinder) *TokenService {
	return &TokenService{cfg: cfg, sessions: sessions, users: users, now: time.Now}
}

func (s *TokenService) Issue(ctx context.Context, user auth.User, meta auth.TokenMeta) (auth.TokenPair, error) {
	now := s.now()
	access, accessExp, err := s.signAccess(user, now)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := newRefreshToken()
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("generate refresh token: %w", err)
	}
	refreshExp := now.Add(s.cfg.RefreshTTL)
	if s.sessions != nil {
		sess := auth.Session{
			Token:     refreshKey(refresh),
			UserID:    user.ID,
			ExpiresAt: refreshExp,
			UserAgent: meta.UserAgent,
			IPAddress: meta.IP,
			CreatedAt: now,
		}
		if err := s.sessions.SaveSession(ctx, sess); err != nil {
			return auth.TokenPair{}, fmt.Errorf("save session: %w", err)
		}
	}

	return auth.TokenPair{
		AccessToken:   access,
		RefreshToken:  refresh,
		AccessExpiry:  accessExp,
		RefreshExpiry: refreshExp,
	}, nil
}

// Refresh 舊 session 先撤銷再簽發新的一組，同一 refresh token 只能用一次。
func (s *TokenService) Refresh(ctx context.Context, token string) (auth.TokenPair, error) {
	if strings.TrimSpace(token) == "" {
		return auth.TokenPair{}, ErrSessionExpired
	}
	if s.sessions == nil {
		return auth.TokenPair{}, fmt.Errorf("session store not configured")
	}

	key := refreshKey(token)
	sess, err := s.sessions.GetSession(ctx, key)
	switch {
	case errors.Is(err, auth.ErrSessionNotFound):
		return auth.TokenPair{}, ErrSessionExpired
	case err != nil:
		return auth.TokenPair{}, fmt.Errorf("get session: %w", err)
	}
	if !sess.Active(s.now()) {
		return auth.TokenPair{}, ErrSessionExpired
	}
	if err := s.sessions.RevokeSession(ctx, key); err != nil {
		return auth.TokenPair{}, fmt.Errorf("revoke session: %w", err)
	}

	user, err := s.users.FindByID(ctx, sess.UserID)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive() {
		return auth.TokenPair{}, ErrSessionExpired
	}
	return s.Issue(ctx, user, auth.TokenMeta{UserAgent: sess.UserAgent, IP: sess.IPAddress})
}

// RevokeRefresh 登出；未知的 token 直接忽略。
func (s *TokenService) RevokeRefresh(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" || s.sessions == nil {
		return nil
	}
	return s.sessions.RevokeSession(ctx, refreshKey(token))
}

// ParseAccessToken 驗證簽章、效期、issuer 與 audience。
func (s *TokenService) ParseAccessToken(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (interface{}, error) { return []byte(s.cfg.Secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithAudience(audienceName),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenService) signAccess(user auth.User, now time.Time) (string, time.Time, error) {
	exp := now.Add(s.cfg.AccessTTL)
	claims := Claims{
		UserID: user.ID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuerName,
			Subject:   user.ID,
			Audience:  jwt.ClaimStrings{audienceName},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	return signed, exp, err
}

func newRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// refreshKey 資料庫只保存摘要，外洩的資料表無法直接拿來換發 token。
func refreshKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
