package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fms-portal/suggestion-api/internal/models"
)

// AdminRepository provides database access for admin accounts, sessions
// and the advisory audit trails.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository creates a new instance of AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// FindByUsername returns an admin by username.
func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	const query = `SELECT id, username, password_hash, display_name, role, department, access_level, active, last_login, last_seen, created_at, updated_at FROM admins WHERE username = $1 LIMIT 1`
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find admin by username: %w", err)
	}
	return &admin, nil
}

// FindByID returns an admin by identifier.
func (r *AdminRepository) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	const query = `SELECT id, username, password_hash, display_name, role, department, access_level, active, last_login, last_seen, created_at, updated_at FROM admins WHERE id = $1 LIMIT 1`
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find admin by id: %w", err)
	}
	return &admin, nil
}

// UpdateLastLogin updates the last_login timestamp for an admin.
func (r *AdminRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE admins SET last_login = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// UpdateLastSeen stamps the last_seen timestamp. Written on logout; the
// old client stamped "lastLogin" here, which was a misnomer.
func (r *AdminRepository) UpdateLastSeen(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE admins SET last_seen = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts, ts); err != nil {
		return fmt.Errorf("update last seen: %w", err)
	}
	return nil
}

// UpdatePassword updates the stored password hash.
func (r *AdminRepository) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	const query = `UPDATE admins SET password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, updatedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// CreateRefreshToken persists a refresh token entry.
func (r *AdminRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO refresh_tokens (id, admin_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent) VALUES (:id, :admin_id, :token, :expires_at, :created_at, :revoked, :revoked_at, :ip_address, :user_agent)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken returns a refresh token by token string.
func (r *AdminRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, admin_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent FROM refresh_tokens WHERE token = $1 LIMIT 1`
	var rt models.RefreshToken
	if err := r.db.GetContext(ctx, &rt, query, token); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &rt, nil
}

// RevokeRefreshToken marks a token as revoked.
func (r *AdminRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, revokedAt); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAdminRefreshTokens revokes all refresh tokens for an admin.
func (r *AdminRepository) RevokeAdminRefreshTokens(ctx context.Context, adminID string) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE admin_id = $1 AND revoked = FALSE`
	if _, err := r.db.ExecContext(ctx, query, adminID, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoke admin refresh tokens: %w", err)
	}
	return nil
}

// CreateAuditLog stores an audit log entry.
func (r *AdminRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, admin_id, action, resource, resource_id, details, ip_address, user_agent, created_at) VALUES (:id, :admin_id, :action, :resource, :resource_id, :details, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

// AppendLoginHistory inserts a login/logout entry and trims the table to
// the history cap, oldest first.
func (r *AdminRepository) AppendLoginHistory(ctx context.Context, entry *models.LoginHistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const insert = `INSERT INTO login_history (id, username, display_name, department, action, created_at) VALUES (:id, :username, :display_name, :department, :action, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, insert, entry); err != nil {
		return fmt.Errorf("append login history: %w", err)
	}

	const trim = `DELETE FROM login_history WHERE id NOT IN (SELECT id FROM login_history ORDER BY created_at DESC LIMIT $1)`
	if _, err := r.db.ExecContext(ctx, trim, models.HistoryCap); err != nil {
		return fmt.Errorf("trim login history: %w", err)
	}
	return nil
}

// AppendFailedAttempt inserts a failed login entry and trims the table
// to the history cap.
func (r *AdminRepository) AppendFailedAttempt(ctx context.Context, attempt *models.FailedAttempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}
	const insert = `INSERT INTO failed_attempts (id, username, ip_address, created_at) VALUES (:id, :username, :ip_address, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, insert, attempt); err != nil {
		return fmt.Errorf("append failed attempt: %w", err)
	}

	const trim = `DELETE FROM failed_attempts WHERE id NOT IN (SELECT id FROM failed_attempts ORDER BY created_at DESC LIMIT $1)`
	if _, err := r.db.ExecContext(ctx, trim, models.HistoryCap); err != nil {
		return fmt.Errorf("trim failed attempts: %w", err)
	}
	return nil
}

// ListLoginHistory returns the retained login/logout entries, newest first.
func (r *AdminRepository) ListLoginHistory(ctx context.Context) ([]models.LoginHistoryEntry, error) {
	const query = `SELECT id, username, display_name, department, action, created_at FROM login_history ORDER BY created_at DESC LIMIT $1`
	var entries []models.LoginHistoryEntry
	if err := r.db.SelectContext(ctx, &entries, query, models.HistoryCap); err != nil {
		return nil, fmt.Errorf("list login history: %w", err)
	}
	return entries, nil
}

// ListFailedAttempts returns the retained failed attempts, newest first.
func (r *AdminRepository) ListFailedAttempts(ctx context.Context) ([]models.FailedAttempt, error) {
	const query = `SELECT id, username, ip_address, created_at FROM failed_attempts ORDER BY created_at DESC LIMIT $1`
	var attempts []models.FailedAttempt
	if err := r.db.SelectContext(ctx, &attempts, query, models.HistoryCap); err != nil {
		return nil, fmt.Errorf("list failed attempts: %w", err)
	}
	return attempts, nil
}
