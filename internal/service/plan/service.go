package plan

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository"
	"github.com/jwalitptl/aesthiq-api/internal/service/event"
	apperrors "github.com/jwalitptl/aesthiq-api/pkg/errors"
)

type PlanServicer interface {
	ListActive(ctx context.Context) ([]*model.SubscriptionPlan, error)
	Create(ctx context.Context, req *model.CreatePlanRequest) (*model.SubscriptionPlan, error)
	SeedDefaults(ctx context.Context) (int, error)
}

type Service struct {
	repo     repository.PlanRepository
	events   event.Emitter
	currency string
	logger   zerolog.Logger
}

func NewService(repo repository.PlanRepository, events event.Emitter, currency string, logger zerolog.Logger) *Service {
	if currency == "" {
		currency = "usd"
	}
	return &Service{
		repo:     repo,
		events:   events,
		currency: currency,
		logger:   logger.With().Str("component", "plan").Logger(),
	}
}

func (s *Service) ListActive(ctx context.Context) ([]*model.SubscriptionPlan, error) {
	plans, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscription plans: %w", err)
	}
	return plans, nil
}

func (s *Service) Create(ctx context.Context, req *model.CreatePlanRequest) (*model.SubscriptionPlan, error) {
	tier := model.PlanTier(req.Tier)
	switch tier {
	case model.PlanTierBasic, model.PlanTierProfessional, model.PlanTierEnterprise:
	default:
		return nil, apperrors.BadRequest("tier must be basic, professional or enterprise", nil)
	}
	if req.MonthlyPrice < 0 || req.YearlyPrice < 0 {
		return nil, apperrors.BadRequest("prices must not be negative", nil)
	}
	if req.MaxLocations < 0 || req.MaxStaff < 0 || req.MaxClients < 0 {
		return nil, apperrors.BadRequest("limits must not be negative", nil)
	}

	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = s.currency
	}
	features := req.Features
	if features == nil {
		features = []string{}
	}

	plan := &model.SubscriptionPlan{
		Base:         model.NewBase(),
		Name:         strings.TrimSpace(req.Name),
		Tier:         tier,
		MonthlyPrice: req.MonthlyPrice,
		YearlyPrice:  req.YearlyPrice,
		Currency:     currency,
		MaxLocations: req.MaxLocations,
		MaxStaff:     req.MaxStaff,
		MaxClients:   req.MaxClients,
		Features:     features,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to create subscription plan: %w", err)
	}

	s.logger.Info().Str("plan_id", plan.ID.String()).Str("tier", string(tier)).Msg("subscription plan created")
	event.EmitBestEffort(ctx, s.events, s.logger, model.EventSubscriptionPlanCreated, plan)
	return plan, nil
}

// DefaultPlans are the three tiers seeded into an empty database.
func DefaultPlans() []model.CreatePlanRequest {
	return []model.CreatePlanRequest{
		{
			Name: "Basic", Tier: string(model.PlanTierBasic),
			MonthlyPrice: 4900, YearlyPrice: 49000,
			MaxLocations: 1, MaxStaff: 3, MaxClients: 500,
			Features: []string{"Online booking", "Client records", "Email reminders"},
		},
		{
			Name: "Professional", Tier: string(model.PlanTierProfessional),
			MonthlyPrice: 9900, YearlyPrice: 99000,
			MaxLocations: 3, MaxStaff: 15, MaxClients: 5000,
			Features: []string{"Everything in Basic", "Memberships", "Stripe payments", "Multiple locations"},
		},
		{
			Name: "Enterprise", Tier: string(model.PlanTierEnterprise),
			MonthlyPrice: 24900, YearlyPrice: 249000,
			Features: []string{"Everything in Professional", "Unlimited locations", "Unlimited staff", "Priority support"},
		},
	}
}

// SeedDefaults inserts DefaultPlans when no plan exists and returns how many were added.
func (s *Service) SeedDefaults(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count subscription plans: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	defaults := DefaultPlans()
	for i := range defaults {
		if _, err := s.Create(ctx, &defaults[i]); err != nil {
			return i, err
		}
	}
	return len(defaults), nil
}
