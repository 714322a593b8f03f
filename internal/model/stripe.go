package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Labels shown for a connected account.
const (
	StripeStatusSetupRequired       = "Setup Required"
	StripeStatusPendingVerification = "Pending Verification"
	StripeStatusRestricted          = "Restricted"
	StripeStatusActive              = "Active"
)

// StripeAccount is the stored snapshot of an organization's connected account.
type StripeAccount struct {
	OrganizationID   uuid.UUID      `json:"organizationId" db:"organization_id"`
	StripeAccountID  string         `json:"stripeAccountId" db:"stripe_account_id"`
	ChargesEnabled   bool           `json:"chargesEnabled" db:"charges_enabled"`
	PayoutsEnabled   bool           `json:"payoutsEnabled" db:"payouts_enabled"`
	DetailsSubmitted bool           `json:"detailsSubmitted" db:"details_submitted"`
	Capabilities     JSONMap        `json:"capabilities" db:"capabilities"`
	CurrentlyDue     pq.StringArray `json:"currentlyDue" db:"currently_due"`
	EventuallyDue    pq.StringArray `json:"eventuallyDue" db:"eventually_due"`
	PastDue          pq.StringArray `json:"pastDue" db:"past_due"`
	DisabledReason   string         `json:"disabledReason" db:"disabled_reason"`
	CreatedAt        time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time      `json:"updatedAt" db:"updated_at"`
}

// BusinessFeaturesEnabled is true once the account can both charge and pay out.
func (a *StripeAccount) BusinessFeaturesEnabled() bool {
	return a != nil && a.ChargesEnabled && a.PayoutsEnabled
}

// StatusLabel derives the label shown for a (possibly missing) account.
func (a *StripeAccount) StatusLabel() string {
	switch {
	case a == nil || a.StripeAccountID == "":
		return StripeStatusSetupRequired
	case a.BusinessFeaturesEnabled():
		return StripeStatusActive
	case a.DisabledReason != "" || len(a.PastDue) > 0:
		return StripeStatusRestricted
	default:
		return StripeStatusPendingVerification
	}
}

type StripeRequirements struct {
	CurrentlyDue   []string `json:"currentlyDue"`
	EventuallyDue  []string `json:"eventuallyDue"`
	PastDue        []string `json:"pastDue"`
	DisabledReason string   `json:"disabledReason,omitempty"`
}

// StripeAccountStatus is the client-facing view of a connected account.
type StripeAccountStatus struct {
	HasAccount              bool               `json:"hasAccount"`
	AccountID               string             `json:"accountId,omitempty"`
	OnboardingURL           string             `json:"onboardingUrl,omitempty"`
	ChargesEnabled          bool               `json:"chargesEnabled"`
	PayoutsEnabled          bool               `json:"payoutsEnabled"`
	DetailsSubmitted        bool               `json:"detailsSubmitted"`
	Capabilities            JSONMap            `json:"capabilities"`
	Requirements            StripeRequirements `json:"requirements"`
	BusinessFeaturesEnabled bool               `json:"businessFeaturesEnabled"`
	StatusLabel             string             `json:"statusLabel"`
}

// NewStripeAccountStatus builds the view for a stored account; nil means none.
func NewStripeAccountStatus(a *StripeAccount) StripeAccountStatus {
	if a == nil || a.StripeAccountID == "" {
		return StripeAccountStatus{
			Capabilities: JSONMap{},
			Requirements: StripeRequirements{CurrentlyDue: []string{}, EventuallyDue: []string{}, PastDue: []string{}},
			StatusLabel:  StripeStatusSetupRequired,
		}
	}

	caps := a.Capabilities
	if caps == nil {
		caps = JSONMap{}
	}
	return StripeAccountStatus{
		HasAccount:       true,
		AccountID:        a.StripeAccountID,
		ChargesEnabled:   a.ChargesEnabled,
		PayoutsEnabled:   a.PayoutsEnabled,
		DetailsSubmitted: a.DetailsSubmitted,
		Capabilities:     caps,
		Requirements: StripeRequirements{
			CurrentlyDue:   nonNil(a.CurrentlyDue),
			EventuallyDue:  nonNil(a.EventuallyDue),
			PastDue:        nonNil(a.PastDue),
			DisabledReason: a.DisabledReason,
		},
		BusinessFeaturesEnabled: a.BusinessFeaturesEnabled(),
		StatusLabel:             a.StatusLabel(),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// OnboardingLink is returned by create-account and refresh-onboarding.
type OnboardingLink struct {
	AccountID     string `json:"accountId"`
	OnboardingURL string `json:"onboardingUrl"`
}

type CreatePaymentIntentRequest struct {
	ServiceID uuid.UUID `json:"serviceId" binding:"required"`
}

type PaymentIntent struct {
	ID                   string `json:"id"`
	ClientSecret         string `json:"clientSecret"`
	Amount               int64  `json:"amount"`
	Currency             string `json:"currency"`
	ApplicationFeeAmount int64  `json:"applicationFeeAmount"`
}

// PaymentSetupState tells the client whether onboarding is mandatory.
type PaymentSetupState struct {
	Required    bool   `json:"required"`
	Reason      string `json:"reason,omitempty"`
	SetupPath   string `json:"setupPath"`
	StatusLabel string `json:"statusLabel"`
	Bypassed    bool   `json:"bypassed"`
}
