package models

import "time"

// AccessLevel determines what an admin may see and do on the dashboard.
type AccessLevel string

const (
	// AccessDepartment admins see only their own department and may respond.
	AccessDepartment AccessLevel = "department"
	// AccessAll admins (assistant registrar) see every department and may respond.
	AccessAll AccessLevel = "all"
	// AccessSuperAdmin sees every department but is strictly read-only.
	AccessSuperAdmin AccessLevel = "superadmin"
)

// Valid reports whether the access level is one of the known tiers.
func (a AccessLevel) Valid() bool {
	switch a {
	case AccessDepartment, AccessAll, AccessSuperAdmin:
		return true
	}
	return false
}

// Admin represents a dashboard account stored in the admins table.
type Admin struct {
	ID           string      `db:"id" json:"id"`
	Username     string      `db:"username" json:"username"`
	PasswordHash string      `db:"password_hash" json:"-"`
	DisplayName  string      `db:"display_name" json:"display_name"`
	Role         string      `db:"role" json:"role"`
	Department   string      `db:"department" json:"department"`
	AccessLevel  AccessLevel `db:"access_level" json:"access_level"`
	Active       bool        `db:"active" json:"active"`
	LastLogin    *time.Time  `db:"last_login" json:"last_login,omitempty"`
	LastSeen     *time.Time  `db:"last_seen" json:"last_seen,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}
