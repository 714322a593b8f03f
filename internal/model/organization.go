package model

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

type Organization struct {
	Base
	Name               string             `json:"name" db:"name"`
	Slug               string             `json:"slug" db:"slug"`
	SubscriptionPlanID *uuid.UUID         `json:"subscriptionPlanId" db:"subscription_plan_id"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus" db:"subscription_status"`
	TrialEndsAt        *time.Time         `json:"trialEndsAt" db:"trial_ends_at"`
	// AdminEmail is the invited clinic admin; registering with it through the
	// organization's slug grants clinic_admin instead of patient.
	AdminEmail string `json:"adminEmail,omitempty" db:"admin_email"`
}

type CreateOrganizationRequest struct {
	Name               string     `json:"name" binding:"required,min=2,max=200"`
	Slug               string     `json:"slug" binding:"omitempty,slug"`
	SubscriptionPlanID *uuid.UUID `json:"subscriptionPlanId"`
	AdminEmail         string     `json:"adminEmail" binding:"omitempty,email"`
}

type UpdateSubscriptionRequest struct {
	SubscriptionPlanID *uuid.UUID          `json:"subscriptionPlanId"`
	SubscriptionStatus *SubscriptionStatus `json:"subscriptionStatus" binding:"omitempty,subscription_status"`
}

// PublicOrganization is what an anonymous visitor of /c/:slug sees.
type PublicOrganization struct {
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	Services  []Service  `json:"services"`
	Locations []Location `json:"locations"`
}
