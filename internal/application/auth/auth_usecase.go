package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"trade-journal/internal/domain/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user disabled or locked")
	ErrTokenRequired      = errors.New("refresh token required")
)

// UserRepository 存取使用者。
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (auth.User, error)
	FindByID(ctx context.Context, id string) (auth.User, error)
}

// PasswordHasher 驗證密碼。
type PasswordHasher interface {
	Compare(hashed, plain string) bool
}

// TokenIssuer 簽發、輪替與撤銷 token。
type TokenIssuer interface {
	Issue(ctx context.Context, user auth.User, meta auth.TokenMeta) (auth.TokenPair, error)
	Refresh(ctx context.Context, token string) (auth.TokenPair, error)
	RevokeRefresh(ctx context.Context, token string) error
}

// Permission 功能權限。
type Permission string

const (
	PermJournalWrite  Permission = "journal:write"
	PermAnalyticsRead Permission = "analytics:read"
	PermUserManage    Permission = "user:manage"
)

// RolePermissions 角色權限表；viewer 只能看分析。
var RolePermissions = map[auth.Role][]Permission{
	auth.RoleAdmin:  {PermJournalWrite, PermAnalyticsRead, PermUserManage},
	auth.RoleTrader: {PermJournalWrite, PermAnalyticsRead},
	auth.RoleViewer: {PermAnalyticsRead},
}

// LoginUseCase 驗證帳密並簽發 token。
type LoginUseCase struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
}

func NewLoginUseCase(users UserRepository, hasher PasswordHasher, tokens TokenIssuer) *LoginUseCase {
	return &LoginUseCase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
	IP        string
}

type LoginResult struct {
	User  auth.User
	Token auth.TokenPair
}

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (LoginResult, error) {
	var out LoginResult
	email := auth.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return out, ErrInvalidCredentials
	}

	user, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return out, ErrInvalidCredentials
		}
		return out, fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive() {
		return out, ErrUserInactive
	}
	if !uc.hasher.Compare(user.Password, input.Password) {
		return out, ErrInvalidCredentials
	}

	token, err := uc.tokens.Issue(ctx, user, auth.TokenMeta{UserAgent: input.UserAgent, IP: input.IP})
	if err != nil {
		return out, fmt.Errorf("issue token: %w", err)
	}

	out.User = user
	out.Token = token
	return out, nil
}

// RefreshUseCase 以 refresh token 換發新的一組 token。
type RefreshUseCase struct {
	tokens TokenIssuer
}

func NewRefreshUseCase(tokens TokenIssuer) *RefreshUseCase {
	return &RefreshUseCase{tokens: tokens}
}

func (uc *RefreshUseCase) Execute(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return auth.TokenPair{}, ErrTokenRequired
	}
	return uc.tokens.Refresh(ctx, refreshToken)
}

// LogoutUseCase 作廢 refresh token。
type LogoutUseCase struct {
	tokens TokenIssuer
}

func NewLogoutUseCase(tokens TokenIssuer) *LogoutUseCase {
	return &LogoutUseCase{tokens: tokens}
}

func (uc *LogoutUseCase) Execute(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return ErrTokenRequired
	}
	return uc.tokens.RevokeRefresh(ctx, refreshToken)
}

// AuthorizeResult 授權結果。
type AuthorizeResult struct {
	Allowed bool
	Reason  string
}

// Authorizer 檢查角色權限。
type Authorizer struct {
	users UserRepository
}

func NewAuthorizer(users UserRepository) *Authorizer {
	return &Authorizer{users: users}
}

func (a *Authorizer) HasPermission(role auth.Role, perm Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// Authorize 重新讀取使用者，停用帳號的舊 token 也會被拒。
func (a *Authorizer) Authorize(ctx context.Context, userID string, required ...Permission) (AuthorizeResult, error) {
	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		return AuthorizeResult{Allowed: false, Reason: "user not found"}, err
	}
	if !user.IsActive() {
		return AuthorizeResult{Allowed: false, Reason: "user disabled"}, nil
	}
	for _, perm := range required {
		if !a.HasPermission(user.Role, perm) {
			return AuthorizeResult{Allowed: false, Reason: fmt.Sprintf("missing permission %s", perm)}, nil
		}
	}
	return AuthorizeResult{Allowed: true}, nil
}
