package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Location struct {
	Base
	OrganizationID uuid.UUID `json:"organizationId" db:"organization_id"`
	Name           string    `json:"name" db:"name"`
	Slug           string    `json:"slug" db:"slug"`
	Address        string    `json:"address" db:"address"`
	Timezone       string    `json:"timezone" db:"timezone"`
	IsActive       bool      `json:"isActive" db:"is_active"`
}

type CreateLocationRequest struct {
	Name     string `json:"name" binding:"required,max=200"`
	Slug     string `json:"slug" binding:"omitempty,slug"`
	Address  string `json:"address" binding:"max=500"`
	Timezone string `json:"timezone" binding:"omitempty,timezone"`
}

// Service is a bookable treatment; price is in cents.
type Service struct {
	Base
	OrganizationID  uuid.UUID `json:"organizationId" db:"organization_id"`
	Name            string    `json:"name" db:"name"`
	Description     string    `json:"description" db:"description"`
	DurationMinutes int       `json:"durationMinutes" db:"duration_minutes"`
	Price           int64     `json:"price" db:"price"`
	Category        string    `json:"category" db:"category"`
	IsActive        bool      `json:"isActive" db:"is_active"`
}

type CreateServiceRequest struct {
	Name            string `json:"name" binding:"required,max=200"`
	Description     string `json:"description" binding:"max=2000"`
	DurationMinutes int    `json:"durationMinutes" binding:"required,gt=0,lte=1440"`
	Price           int64  `json:"price" binding:"gte=0"`
	Category        string `json:"category" binding:"max=100"`
}

type MembershipTier struct {
	Base
	OrganizationID uuid.UUID      `json:"organizationId" db:"organization_id"`
	Name           string         `json:"name" db:"name"`
	Description    string         `json:"description" db:"description"`
	MonthlyPrice   int64          `json:"monthlyPrice" db:"monthly_price"`
	Benefits       pq.StringArray `json:"benefits" db:"benefits"`
	IsActive       bool           `json:"isActive" db:"is_active"`
}

type CreateMembershipTierRequest struct {
	Name         string   `json:"name" binding:"required,max=200"`
	Description  string   `json:"description" binding:"max=2000"`
	MonthlyPrice int64    `json:"monthlyPrice" binding:"gte=0"`
	Benefits     []string `json:"benefits"`
}
