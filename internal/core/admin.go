package core

import (
	"strings"
	"time"
)

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// Role limits what an authenticated back-office user may change.
type Role string

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleViewer
}

// CanWrite reports whether the role may mutate records.
func (r Role) CanWrite() bool {
	return r == RoleAdmin
}

// Admin is a back-office login.
type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (a Admin) Validate() error {
	if !strings.Contains(a.Email, "@") {
		return fieldErr("email", "invalid email %q", a.Email)
	}
	if a.PasswordHash == "" {
		return fieldErr("password", "required")
	}
	if !a.Role.Valid() {
		return fieldErr("role", "must be admin or viewer")
	}
	return nil
}
