package entity

import "time"

// Roles stored in the relational users table. The table is the single source
// of truth for authorization; token claims are never trusted for role checks.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// Identity is the relational credential record. It never holds display data;
// that lives in the Profile document joined via CrossRef.
//
// Rows are soft-deleted only (Active=false, DeletedAt set).
type Identity struct {
	ID           int64
	Email        string
	PasswordHash string
	CrossRef     string
	Role         string
	Active       bool
	DeletedAt    *time.Time
}

// IsAdmin reports whether the identity may pass the admin role gate.
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin || i.Role == RoleSuperAdmin
}
