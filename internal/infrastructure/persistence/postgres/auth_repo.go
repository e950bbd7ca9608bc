package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	authDomain "trade-journal/internal/domain/auth"
	authinfra "trade-journal/internal/infrastructure/auth"
)

// AuthRepo 使用者、角色與 refresh session 的存取。
type AuthRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewAuthRepo 建立 AuthRepo。
func NewAuthRepo(db *sql.DB) *AuthRepo {
	return &AuthRepo{db: db, now: time.Now}
}

const userSelect = `
SELECT u.id, u.email, u.display_name, u.password_hash, u.status, COALESCE(r.name, '') AS role_name
FROM users u LEFT JOIN user_roles ur ON u.id = ur.user_id
LEFT JOIN roles r ON ur.role_id = r.id
`

// FindByEmail 依 email 查詢使用者與主要角色。
func (r *AuthRepo) FindByEmail(ctx context.Context, email string) (authDomain.User, error) {
	return r.findOne(ctx, userSelect+`WHERE u.email = $1 LIMIT 1;`, authDomain.NormalizeEmail(email))
}

// FindByID 依 ID 查詢使用者與主要角色。
func (r *AuthRepo) FindByID(ctx context.Context, id string) (authDomain.User, error) {
	return r.findOne(ctx, userSelect+`WHERE u.id = $1 LIMIT 1;`, id)
}

// FindByRole 列出指定角色的啟用帳號。
func (r *AuthRepo) FindByRole(ctx context.Context, role authDomain.Role) ([]authDomain.User, error) {
	rows, err := r.db.QueryContext(ctx, userSelect+`WHERE r.name = $1 AND u.status = 'active' ORDER BY u.email;`, string(role))
	if err != nil {
		return nil, fmt.Errorf("query users by role: %w", err)
	}
	defer rows.Close()

	var out []authDomain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *AuthRepo) findOne(ctx context.Context, q string, arg string) (authDomain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return authDomain.User{}, authDomain.ErrUserNotFound
	}
	return u, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (authDomain.User, error) {
	var u authDomain.User
	var status, roleName string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Password, &status, &roleName); err != nil {
		return authDomain.User{}, err
	}
	u.Status = authDomain.Status(status)
	u.Role = authDomain.Role(roleName)
	return u, nil
}

// Create 新增使用者並綁定角色，回傳 id。
func (r *AuthRepo) Create(ctx context.Context, u authDomain.User) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	uid, err := upsertUserTx(ctx, tx, authDomain.NormalizeEmail(u.Email), u.Name, u.Password)
	if err != nil {
		return "", fmt.Errorf("insert user: %w", err)
	}
	role := u.Role
	if role == "" {
		role = authDomain.RoleTrader
	}
	var roleID string
	if err := tx.QueryRowContext(ctx, `SELECT id FROM roles WHERE name = $1`, string(role)).Scan(&roleID); err != nil {
		return "", fmt.Errorf("find role %s: %w", role, err)
	}
	if err := attachRoleTx(ctx, tx, uid, roleID); err != nil {
		return "", fmt.Errorf("attach role: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return uid, nil
}

// SeedDefaults 建立預設角色與帳號（admin/trader/viewer）。
func (r *AuthRepo) SeedDefaults(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	roleIDs := map[authDomain.Role]string{}
	for _, role := range authDomain.Roles {
		id, err := upsertRoleTx(ctx, tx, string(role))
		if err != nil {
			return err
		}
		roleIDs[role] = id
	}

	users := []struct {
		email string
		name  string
		role  authDomain.Role
	}{
		{"admin@example.com", "Admin", authDomain.RoleAdmin},
		{"trader@example.com", "Trader", authDomain.RoleTrader},
		{"viewer@example.com", "Viewer", authDomain.RoleViewer},
	}
	for _, u := range users {
		hash, err := authinfra.HashPassword("password123")
		if err != nil {
			return err
		}
		uid, err := upsertUserTx(ctx, tx, u.email, u.name, hash)
		if err != nil {
			return err
		}
		if err := attachRoleTx(ctx, tx, uid, roleIDs[u.role]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func upsertRoleTx(ctx context.Context, tx *sql.Tx, name string) (string, error) {
	const q = `
INSERT INTO roles (name, description)
VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
RETURNING id;
`
	var id string
	if err := tx.QueryRowContext(ctx, q, name, fmt.Sprintf("system role %s", name)).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertUserTx(ctx context.Context, tx *sql.Tx, email, name, passwordHash string) (string, error) {
	const q = `
INSERT INTO users (email, display_name, password_hash, status)
VALUES ($1, $2, $3, 'active')
ON CONFLICT (email) DO UPDATE SET display_name = EXCLUDED.display_name, password_hash = EXCLUDED.password_hash
RETURNING id;
`
	var id string
	if err := tx.QueryRowContext(ctx, q, email, name, passwordHash).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func attachRoleTx(ctx context.Context, tx *sql.Tx, userID, roleID string) error {
	const q = `
INSERT INTO user_roles (user_id, role_id)
VALUES ($1, $2)
ON CONFLICT (user_id, role_id) DO NOTHING;
`
	_, err := tx.ExecContext(ctx, q, userID, roleID)
	return err
}

// SaveSession 寫入 refresh session。
func (r *AuthRepo) SaveSession(ctx context.Context, sess authDomain.Session) error {
	const q = `
INSERT INTO auth_sessions (user_id, refresh_token_id, expires_at, user_agent, ip_address)
VALUES ($1, $2, $3, $4, $5);
`
	if _, err := r.db.ExecContext(ctx, q, sess.UserID, sess.Token, sess.ExpiresAt, sess.UserAgent, sess.IPAddress); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession 依 refresh token 取 session。
func (r *AuthRepo) GetSession(ctx context.Context, token string) (authDomain.Session, error) {
	const q = `
SELECT user_id, refresh_token_id, expires_at, revoked_at, user_agent, ip_address, created_at
FROM auth_sessions
WHERE refresh_token_id = $1;
`
	var (
		sess      authDomain.Session
		revokedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, token).Scan(
		&sess.UserID, &sess.Token, &sess.ExpiresAt, &revokedAt, &sess.UserAgent, &sess.IPAddress, &sess.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return authDomain.Session{}, authDomain.ErrSessionNotFound
	}
	if err != nil {
		return authDomain.Session{}, err
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		sess.RevokedAt = &t
	}
	return sess, nil
}

// RevokeSession 已撤銷的 session 保留原撤銷時間。
func (r *AuthRepo) RevokeSession(ctx context.Context, token string) error {
	const q = `
UPDATE auth_sessions SET revoked_at = $2
WHERE refresh_token_id = $1 AND revoked_at IS NULL;
`
	if _, err := r.db.ExecContext(ctx, q, token, r.now().UTC()); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
