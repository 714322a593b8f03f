package model

import (
	"github.com/lib/pq"
)

type PlanTier string

const (
	PlanTierBasic        PlanTier = "basic"
	PlanTierProfessional PlanTier = "professional"
	PlanTierEnterprise   PlanTier = "enterprise"
)

// SubscriptionPlan prices are in cents; a zero limit means unlimited.
type SubscriptionPlan struct {
	Base
	Name         string         `json:"name" db:"name"`
	Tier         PlanTier       `json:"tier" db:"tier"`
	MonthlyPrice int64          `json:"monthlyPrice" db:"monthly_price"`
	YearlyPrice  int64          `json:"yearlyPrice" db:"yearly_price"`
	Currency     string         `json:"currency" db:"currency"`
	MaxLocations int            `json:"maxLocations" db:"max_locations"`
	MaxStaff     int            `json:"maxStaff" db:"max_staff"`
	MaxClients   int            `json:"maxClients" db:"max_clients"`
	Features     pq.StringArray `json:"features" db:"features"`
	IsActive     bool           `json:"isActive" db:"is_active"`
}

// WithinLimit reports whether current is below limit, where zero is unlimited.
func WithinLimit(limit, current int) bool {
	return limit == 0 || current < limit
}

type CreatePlanRequest struct {
	Name         string   `json:"name" binding:"required,max=100"`
	Tier         string   `json:"tier" binding:"required,plan_tier"`
	MonthlyPrice int64    `json:"monthlyPrice" binding:"gte=0"`
	YearlyPrice  int64    `json:"yearlyPrice" binding:"gte=0"`
	Currency     string   `json:"currency" binding:"omitempty,len=3"`
	MaxLocations int      `json:"maxLocations" binding:"gte=0"`
	MaxStaff     int      `json:"maxStaff" binding:"gte=0"`
	MaxClients   int      `json:"maxClients" binding:"gte=0"`
	Features     []string `json:"features"`
}
