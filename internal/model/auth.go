package model

import (
	"github.com/google/uuid"
)

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID         uuid.UUID
	OrganizationID *uuid.UUID
	Role           Role
	SessionID      string
}

// HasOrganization reports whether the caller belongs to a tenant.
func (p *Principal) HasOrganization() bool {
	return p != nil && p.OrganizationID != nil && *p.OrganizationID != uuid.Nil
}

type LoginRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	Username string `json:"username" binding:"omitempty,max=50"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Email            string `json:"email" binding:"required,email"`
	Username         string `json:"username" binding:"required,min=3,max=50"`
	Password         string `json:"password" binding:"required,min=8"`
	FirstName        string `json:"firstName" binding:"required,max=100"`
	LastName         string `json:"lastName" binding:"required,max=100"`
	OrganizationName string `json:"organizationName" binding:"omitempty,max=200"`
	OrganizationSlug string `json:"organizationSlug" binding:"omitempty,slug"`
}
