package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin   = "LOGIN"
	AuditActionLogout  = "LOGOUT"
	AuditActionRespond = "RESPOND_SUGGESTION"
	AuditActionExport  = "EXPORT_REPORT"
)

// HistoryCap bounds the login_history and failed_attempts tables. Older
// rows are trimmed after each insert, mirroring the 50-entry ring
// buffers the browser client kept in local storage.
const HistoryCap = 50

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	AdminID    *string   `db:"admin_id" json:"admin_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	Details    []byte    `db:"details" json:"details,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// LoginHistoryEntry records a successful login or a logout. Advisory
// only; never consulted for access decisions.
type LoginHistoryEntry struct {
	ID          string    `db:"id" json:"id"`
	Username    string    `db:"username" json:"username"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Department  string    `db:"department" json:"department"`
	Action      string    `db:"action" json:"action"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// FailedAttempt records a rejected login.
type FailedAttempt struct {
	ID        string    `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	IPAddress string    `db:"ip_address" json:"ip_address"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
