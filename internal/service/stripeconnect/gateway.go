package stripeconnect

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/jwalitptl/aesthiq-api/internal/model"
)

const (
	EventAccountUpdated = "account.updated"

	accountLinkOnboarding = "account_onboarding"
)

// AccountParams describes a new Express account.
type AccountParams struct {
	OrganizationID uuid.UUID
	Country        string
	Email          string
	BusinessName   string
}

// PaymentIntentParams describes a destination charge on a connected account.
type PaymentIntentParams struct {
	Amount               int64
	Currency             string
	ApplicationFeeAmount int64
	Destination          string
	Metadata             map[string]string
}

// WebhookEvent is a verified Stripe event. Account is set for account.updated.
type WebhookEvent struct {
	ID      string
	Type    string
	Account *model.StripeAccount
}

// Gateway is the subset of the Stripe API the platform uses. Returned accounts
// carry Stripe's state only; OrganizationID is left for the caller to set.
type Gateway interface {
	CreateAccount(ctx context.Context, params AccountParams) (*model.StripeAccount, error)
	GetAccount(ctx context.Context, accountID string) (*model.StripeAccount, error)
	CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
	CreatePaymentIntent(ctx context.Context, params PaymentIntentParams) (*model.PaymentIntent, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

type stripeGateway struct {
	sc            *client.API
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) Gateway {
	return &stripeGateway{
		sc:            client.New(secretKey, nil),
		webhookSecret: webhookSecret,
	}
}

func (g *stripeGateway) CreateAccount(ctx context.Context, p AccountParams) (*model.StripeAccount, error) {
	params := &stripe.AccountParams{
		Type:    stripe.String(string(stripe.AccountTypeExpress)),
		Country: stripe.String(p.Country),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}
	if p.Email != "" {
		params.Email = stripe.String(p.Email)
	}
	if p.BusinessName != "" {
		params.BusinessProfile = &stripe.AccountBusinessProfileParams{Name: stripe.String(p.BusinessName)}
	}
	params.Context = ctx
	params.AddMetadata("organization_id", p.OrganizationID.String())

	acct, err := g.sc.Accounts.New(params)
	if err != nil {
		return nil, err
	}
	return toStripeAccount(acct), nil
}

func (g *stripeGateway) GetAccount(ctx context.Context, accountID string) (*model.StripeAccount, error) {
	params := &stripe.AccountParams{}
	params.Context = ctx

	acct, err := g.sc.Accounts.GetByID(accountID, params)
	if err != nil {
		return nil, err
	}
	return toStripeAccount(acct), nil
}

func (g *stripeGateway) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String(accountLinkOnboarding),
	}
	params.Context = ctx

	link, err := g.sc.AccountLinks.New(params)
	if err != nil {
		return "", err
	}
	return link.URL, nil
}

func (g *stripeGateway) CreatePaymentIntent(ctx context.Context, p PaymentIntentParams) (*model.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:               stripe.Int64(p.Amount),
		Currency:             stripe.String(p.Currency),
		ApplicationFeeAmount: stripe.Int64(p.ApplicationFeeAmount),
		TransferData: &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(p.Destination),
		},
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}
	return &model.PaymentIntent{
		ID:                   pi.ID,
		ClientSecret:         pi.ClientSecret,
		Amount:               pi.Amount,
		Currency:             string(pi.Currency),
		ApplicationFeeAmount: pi.ApplicationFeeAmount,
	}, nil
}

func (g *stripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, err
	}

	out := &WebhookEvent{ID: evt.ID, Type: string(evt.Type)}
	if out.Type == EventAccountUpdated && evt.Data != nil {
		var acct stripe.Account
		if err := json.Unmarshal(evt.Data.Raw, &acct); err != nil {
			return nil, fmt.Errorf("failed to decode account: %w", err)
		}
		out.Account = toStripeAccount(&acct)
	}
	return out, nil
}

func toStripeAccount(a *stripe.Account) *model.StripeAccount {
	out := &model.StripeAccount{
		StripeAccountID:  a.ID,
		ChargesEnabled:   a.ChargesEnabled,
		PayoutsEnabled:   a.PayoutsEnabled,
		DetailsSubmitted: a.DetailsSubmitted,
		Capabilities:     model.JSONMap{},
		CurrentlyDue:     []string{},
		EventuallyDue:    []string{},
		PastDue:          []string{},
	}
	if a.Capabilities != nil {
		if a.Capabilities.CardPayments != "" {
			out.Capabilities["card_payments"] = string(a.Capabilities.CardPayments)
		}
		if a.Capabilities.Transfers != "" {
			out.Capabilities["transfers"] = string(a.Capabilities.Transfers)
		}
	}
	if r := a.Requirements; r != nil {
		if r.CurrentlyDue != nil {
			out.CurrentlyDue = r.CurrentlyDue
		}
		if r.EventuallyDue != nil {
			out.EventuallyDue = r.EventuallyDue
		}
		if r.PastDue != nil {
			out.PastDue = r.PastDue
		}
		out.DisabledReason = string(r.DisabledReason)
	}
	return out
}
