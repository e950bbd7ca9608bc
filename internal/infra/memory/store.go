package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	authDomain "trade-journal/internal/domain/auth"
	authinfra "trade-journal/internal/infrastructure/auth"
)

// Store 未設定資料庫時使用的記憶體帳號與 session 儲存，可併發使用。
type Store struct {
	mu       sync.RWMutex
	users    map[string]authDomain.User
	byEmail  map[string]string
	sessions map[string]authDomain.Session
	idSeq    int64
	now      func() time.Time
}

// NewStore 建立新的記憶體 Store 實例。
func NewStore() *Store {
	return &Store{
		users:    make(map[string]authDomain.User),
		byEmail:  make(map[string]string),
		sessions: make(map[string]authDomain.Session),
		now:      time.Now,
	}
}

func (s *Store) nextID() string {
	s.idSeq++
	return fmt.Sprintf("user-%d", s.idSeq)
}

// SeedUsers 建立預設帳號供本機登入。
func (s *Store) SeedUsers() {
	hash := func(p string) string {
		h, err := authinfra.HashPassword(p)
		if err != nil {
			return p
		}
		return h
	}
	ctx := context.Background()
	_, _ = s.Create(ctx, authDomain.User{Email: "admin@example.com", Name: "Admin", Role: authDomain.RoleAdmin, Password: hash("password123")})
	_, _ = s.Create(ctx, authDomain.User{Email: "trader@example.com", Name: "Trader", Role: authDomain.RoleTrader, Password: hash("password123")})
	_, _ = s.Create(ctx, authDomain.User{Email: "viewer@example.com", Name: "Viewer", Role: authDomain.RoleViewer, Password: hash("password123")})
}

// Create 新增使用者，email 重複時回傳錯誤。
func (s *Store) Create(ctx context.Context, u authDomain.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := authDomain.NormalizeEmail(u.Email)
	if _, exists := s.byEmail[email]; exists {
		return "", fmt.Errorf("email already registered: %s", email)
	}
	u.ID = s.nextID()
	u.Email = email
	if u.Role == "" {
		u.Role = authDomain.RoleTrader
	}
	if u.Status == "" {
		u.Status = authDomain.StatusActive
	}
	if err := u.Validate(); err != nil {
		return "", err
	}
	s.users[u.ID] = u
	s.byEmail[email] = u.ID
	return u.ID, nil
}

// FindByEmail 依 email 查詢使用者。
func (s *Store) FindByEmail(ctx context.Context, email string) (authDomain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[authDomain.NormalizeEmail(email)]
	if !ok {
		return authDomain.User{}, authDomain.ErrUserNotFound
	}
	return s.users[id], nil
}

// FindByID 依 ID 查詢使用者。
func (s *Store) FindByID(ctx context.Context, id string) (authDomain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return authDomain.User{}, authDomain.ErrUserNotFound
	}
	return u, nil
}

// FindByRole 依角色列出使用者。
func (s *Store) FindByRole(ctx context.Context, role authDomain.Role) ([]authDomain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []authDomain.User
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

// SetStatus 停用或鎖定帳號。
func (s *Store) SetStatus(ctx context.Context, id string, status authDomain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return authDomain.ErrUserNotFound
	}
	u.Status = status
	s.users[id] = u
	return nil
}

// SessionStore impl
func (s *Store) SaveSession(ctx context.Context, sess authDomain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
	return nil
}

func (s *Store) GetSession(ctx context.Context, token string) (authDomain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok {
		return authDomain.Session{}, authDomain.ErrSessionNotFound
	}
	return sess, nil
}

// RevokeSession 不存在的 token 視為已撤銷。
func (s *Store) RevokeSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil
	}
	now := s.now()
	sess.RevokedAt = &now
	s.sessions[token] = sess
	return nil
}
