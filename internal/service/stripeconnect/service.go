// Package stripeconnect onboards organizations onto Stripe Connect Express
// accounts and charges on their behalf.
package stripeconnect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/aesthiq-api/internal/access"
	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository"
	"github.com/jwalitptl/aesthiq-api/internal/service/event"
	"github.com/jwalitptl/aesthiq-api/internal/service/tenant"
	apperrors "github.com/jwalitptl/aesthiq-api/pkg/errors"
	"github.com/jwalitptl/aesthiq-api/pkg/metrics"
)

const basisPoints = 10000

type Config struct {
	Country         string
	Currency        string
	PlatformFeeBps  int64
	StatusCacheTTL  time.Duration
	ReturnURL       string
	RefreshURL      string
	BypassSetupGate bool
}

type StripeConnectServicer interface {
	Status(ctx context.Context, p *model.Principal) (*model.StripeAccountStatus, error)
	CreateAccount(ctx context.Context, p *model.Principal) (*model.OnboardingLink, error)
	RefreshOnboarding(ctx context.Context, p *model.Principal) (*model.OnboardingLink, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	CreatePaymentIntent(ctx context.Context, p *model.Principal, req *model.CreatePaymentIntentRequest) (*model.PaymentIntent, error)
	SetupState(ctx context.Context, p *model.Principal) (*model.PaymentSetupState, error)
}

type Service struct {
	accounts repository.StripeAccountRepository
	orgs     repository.OrganizationRepository
	users    repository.UserRepository
	services repository.ServiceRepository
	gateway  Gateway
	cache    *cache.Cache
	events   event.Emitter
	metrics  *metrics.Metrics
	config   Config
	logger   zerolog.Logger
}

func NewService(
	accounts repository.StripeAccountRepository,
	orgs repository.OrganizationRepository,
	users repository.UserRepository,
	services repository.ServiceRepository,
	gateway Gateway,
	events event.Emitter,
	metrics *metrics.Metrics,
	config Config,
	logger zerolog.Logger,
) *Service {
	if config.StatusCacheTTL <= 0 {
		config.StatusCacheTTL = 30 * time.Second
	}
	if config.Currency == "" {
		config.Currency = "usd"
	}

	s := &Service{
		accounts: accounts,
		orgs:     orgs,
		users:    users,
		services: services,
		gateway:  gateway,
		cache:    cache.New(config.StatusCacheTTL, 2*config.StatusCacheTTL),
		events:   events,
		metrics:  metrics,
		config:   config,
		logger:   logger.With().Str("component", "stripe_connect").Logger(),
	}
	if config.BypassSetupGate {
		s.logger.Warn().Msg("payments.bypass_setup_gate is enabled: clinic routes are served without a connected Stripe account")
	}
	return s
}

func (s *Service) Status(ctx context.Context, p *model.Principal) (*model.StripeAccountStatus, error) {
	orgID, err := tenant.OrganizationID(p)
	if err != nil {
		return nil, err
	}

	key := orgID.String()
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.StripeStatusCache.WithLabelValues("hit").Inc()
		status := cached.(model.StripeAccountStatus)
		return &status, nil
	}
	s.metrics.StripeStatusCache.WithLabelValues("miss").Inc()

	stored, err := s.storedAccount(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		status := model.NewStripeAccountStatus(nil)
		return &status, nil
	}

	live, err := s.gateway.GetAccount(ctx, stored.StripeAccountID)
	s.observe("get_account", err)
	if err != nil {
		return nil, apperrors.Upstream("failed to fetch Stripe account", err)
	}

	account, err := s.save(ctx, stored, live)
	if err != nil {
		return nil, err
	}

	status := model.NewStripeAccountStatus(account)
	s.cache.Set(key, status, cache.DefaultExpiration)
	return &status, nil
}

// CreateAccount reuses the organization's account when one exists; Stripe's
// own request handling is the only idempotency.
func (s *Service) CreateAccount(ctx context.Context, p *model.Principal) (*model.OnboardingLink, error) {
	orgID, err := tenant.OrganizationID(p)
	if err != nil {
		return nil, err
	}

	stored, err := s.storedAccount(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if stored == nil {
		org, err := s.orgs.GetByID(ctx, orgID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("organization")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get organization: %w", err)
		}

		params := AccountParams{OrganizationID: orgID, Country: s.config.Country, BusinessName: org.Name}
		if user, err := s.users.GetByID(ctx, p.UserID); err == nil {
			params.Email = user.Email
		}

		created, err := s.gateway.CreateAccount(ctx, params)
		s.observe("create_account", err)
		if err != nil {
			return nil, apperrors.Upstream("failed to create Stripe account", err)
		}

		stored, err = s.save(ctx, &model.StripeAccount{OrganizationID: orgID}, created)
		if err != nil {
			return nil, err
		}
		s.logger.Info().
			Str("organization_id", orgID.String()).
			Str("stripe_account_id", stored.StripeAccountID).
			Msg("stripe account created")
	}

	return s.onboardingLink(ctx, stored)
}

func (s *Service) RefreshOnboarding(ctx context.Context, p *model.Principal) (*model.OnboardingLink, error) {
	orgID, err := tenant.OrganizationID(p)
	if err != nil {
		return nil, err
	}

	stored, err := s.storedAccount(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, apperrors.NotFound("stripe account")
	}
	return s.onboardingLink(ctx, stored)
}

func (s *Service) onboardingLink(ctx context.Context, account *model.StripeAccount) (*model.OnboardingLink, error) {
	url, err := s.gateway.CreateAccountLink(ctx, account.StripeAccountID, s.config.RefreshURL, s.config.ReturnURL)
	s.observe("create_account_link", err)
	if err != nil {
		return nil, apperrors.Upstream("failed to create onboarding link", err)
	}

	s.cache.Delete(account.OrganizationID.String())
	return &model.OnboardingLink{AccountID: account.StripeAccountID, OnboardingURL: url}, nil
}

// HandleWebhook applies account.updated events; every other verified event is
// acknowledged and ignored.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	evt, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		s.metrics.StripeWebhookEvent.WithLabelValues("unknown", "rejected").Inc()
		return apperrors.BadRequest("invalid webhook signature", err)
	}

	if evt.Type != EventAccountUpdated || evt.Account == nil {
		s.metrics.StripeWebhookEvent.WithLabelValues(evt.Type, "ignored").Inc()
		s.logger.Debug().Str("event_id", evt.ID).Str("type", evt.Type).Msg("ignoring stripe event")
		return nil
	}

	stored, err := s.accounts.GetByStripeID(ctx, evt.Account.StripeAccountID)
	if errors.Is(err, repository.ErrNotFound) {
		s.metrics.StripeWebhookEvent.WithLabelValues(evt.Type, "unknown_account").Inc()
		s.logger.Warn().
			Str("event_id", evt.ID).
			Str("stripe_account_id", evt.Account.StripeAccountID).
			Msg("stripe event for unknown account")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get stripe account: %w", err)
	}

	account, err := s.save(ctx, stored, evt.Account)
	if err != nil {
		return err
	}
	s.cache.Delete(account.OrganizationID.String())
	s.metrics.StripeWebhookEvent.WithLabelValues(evt.Type, "applied").Inc()
	return nil
}

func (s *Service) CreatePaymentIntent(ctx context.Context, p *model.Principal, req *model.CreatePaymentIntentRequest) (*model.PaymentIntent, error) {
	orgID, err := tenant.OrganizationID(p)
	if err != nil {
		return nil, err
	}

	account, err := s.storedAccount(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !account.BusinessFeaturesEnabled() {
		return nil, apperrors.Conflict("payments are not enabled for this organization")
	}

	service, err := s.services.GetByID(ctx, orgID, req.ServiceID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("service")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	if service.Price <= 0 {
		return nil, apperrors.BadRequest("service has no price to charge", nil)
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, PaymentIntentParams{
		Amount:               service.Price,
		Currency:             s.config.Currency,
		ApplicationFeeAmount: PlatformFee(service.Price, s.config.PlatformFeeBps),
		Destination:          account.StripeAccountID,
		Metadata: map[string]string{
			"organization_id": orgID.String(),
			"service_id":      service.ID.String(),
			"user_id":         p.UserID.String(),
		},
	})
	s.observe("create_payment_intent", err)
	if err != nil {
		return nil, apperrors.Upstream("failed to create payment intent", err)
	}
	return intent, nil
}

// PlatformFee is the application fee for amount at bps basis points, rounded down.
func PlatformFee(amount, bps int64) int64 {
	if bps <= 0 || amount <= 0 {
		return 0
	}
	return amount * bps / basisPoints
}

// SetupState reports from stored flags whether the organization still has to
// finish Stripe onboarding before using business features.
func (s *Service) SetupState(ctx context.Context, p *model.Principal) (*model.PaymentSetupState, error) {
	orgID, err := tenant.OrganizationID(p)
	if err != nil {
		return nil, err
	}

	account, err := s.storedAccount(ctx, orgID)
	if err != nil {
		return nil, err
	}

	state := &model.PaymentSetupState{
		SetupPath:   access.SetupPath,
		StatusLabel: account.StatusLabel(),
	}
	switch {
	case account == nil:
		state.Required = true
		state.Reason = "connect a Stripe account to accept payments"
	case !account.BusinessFeaturesEnabled():
		state.Required = true
		state.Reason = "finish Stripe onboarding to enable charges and payouts"
	}
	state.Bypassed = state.Required && s.config.BypassSetupGate
	return state, nil
}

// storedAccount returns nil without error when the organization has no account.
func (s *Service) storedAccount(ctx context.Context, orgID uuid.UUID) (*model.StripeAccount, error) {
	account, err := s.accounts.GetByOrganization(ctx, orgID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stripe account: %w", err)
	}
	return account, nil
}

// save merges Stripe's view into the stored row and emits an update event
// when the business flags change.
func (s *Service) save(ctx context.Context, stored, live *model.StripeAccount) (*model.StripeAccount, error) {
	changed := stored.StripeAccountID != live.StripeAccountID ||
		stored.ChargesEnabled != live.ChargesEnabled ||
		stored.PayoutsEnabled != live.PayoutsEnabled ||
		stored.DetailsSubmitted != live.DetailsSubmitted ||
		stored.DisabledReason != live.DisabledReason

	account := *live
	account.OrganizationID = stored.OrganizationID
	account.CreatedAt = stored.CreatedAt
	if err := s.accounts.Upsert(ctx, &account); err != nil {
		return nil, fmt.Errorf("failed to save stripe account: %w", err)
	}

	if changed {
		s.logger.Info().
			Str("organization_id", account.OrganizationID.String()).
			Str("status", account.StatusLabel()).
			Msg("stripe account updated")
		event.EmitBestEffort(ctx, s.events, s.logger, model.EventStripeAccountUpdated, model.NewStripeAccountStatus(&account))
	}
	return &account, nil
}

func (s *Service) observe(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
		s.logger.Error().Err(err).Str("operation", operation).Msg("stripe request failed")
	}
	s.metrics.StripeRequests.WithLabelValues(operation, status).Inc()
}
