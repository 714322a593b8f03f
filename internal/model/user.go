package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is one of the four platform roles.
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleClinicAdmin Role = "clinic_admin"
	RoleStaff       Role = "staff"
	RolePatient     Role = "patient"
)

// Roles lists every role in display order.
var Roles = []Role{RoleSuperAdmin, RoleClinicAdmin, RoleStaff, RolePatient}

func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// User status constants
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User represents a system user
type User struct {
	Base
	OrganizationID *uuid.UUID `json:"organizationId" db:"organization_id"`
	Email          string     `json:"email" db:"email"`
	Username       string     `json:"username" db:"username"`
	FirstName      string     `json:"firstName" db:"first_name"`
	LastName       string     `json:"lastName" db:"last_name"`
	PasswordHash   string     `json:"-" db:"password_hash"`
	Role           Role       `json:"role" db:"role"`
	Status         string     `json:"status" db:"status"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
}

// FullName joins first and last name, skipping blanks.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserFilter narrows a tenant user listing.
type UserFilter struct {
	OrganizationID uuid.UUID
	Role           Role
}

// CreateStaffRequest is the clinic admin's staff invite payload.
type CreateStaffRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
