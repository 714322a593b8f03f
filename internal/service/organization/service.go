package organization

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/aesthiq-api/internal/email"
	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository"
	"github.com/jwalitptl/aesthiq-api/internal/service/event"
	apperrors "github.com/jwalitptl/aesthiq-api/pkg/errors"
)

type OrganizationServicer interface {
	MyOrganization(ctx context.Context, p *model.Principal) (*model.Organization, error)
	List(ctx context.Context) ([]*model.Organization, error)
	Create(ctx context.Context, req *model.CreateOrganizationRequest) (*model.Organization, error)
	// Provision creates a trialing organization, optionally with its first user.
	Provision(ctx context.Context, name, slug string, planID *uuid.UUID, owner *model.User) (*model.Organization, error)
	UpdateSubscription(ctx context.Context, id uuid.UUID, req *model.UpdateSubscriptionRequest) (*model.Organization, error)
}

type Config struct {
	TrialDays int
	// PublicOrigin is the frontend origin onboarding links point at.
	PublicOrigin string
}

type Service struct {
	orgRepo  repository.OrganizationRepository
	planRepo repository.PlanRepository
	events   event.Emitter
	mailer   email.Service
	config   Config
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(
	orgRepo repository.OrganizationRepository,
	planRepo repository.PlanRepository,
	events event.Emitter,
	mailer email.Service,
	config Config,
	logger zerolog.Logger,
) *Service {
	return &Service{
		orgRepo:  orgRepo,
		planRepo: planRepo,
		events:   events,
		mailer:   mailer,
		config:   config,
		logger:   logger.With().Str("component", "organization").Logger(),
		now:      time.Now,
	}
}

func (s *Service) MyOrganization(ctx context.Context, p *model.Principal) (*model.Organization, error) {
	if !p.HasOrganization() {
		return nil, apperrors.NotFound("organization")
	}

	org, err := s.orgRepo.GetByID(ctx, *p.OrganizationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("organization")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return org, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Organization, error) {
	orgs, err := s.orgRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return orgs, nil
}

func (s *Service) Create(ctx context.Context, req *model.CreateOrganizationRequest) (*model.Organization, error) {
	adminEmail := ""
	if req.AdminEmail != "" {
		adminEmail = model.NormalizeEmail(req.AdminEmail)
	}

	org, err := s.provision(ctx, req.Name, req.Slug, req.SubscriptionPlanID, adminEmail, nil)
	if err != nil {
		return nil, err
	}

	if adminEmail != "" {
		if err := s.mailer.SendOnboarding(ctx, adminEmail, org.Name, s.RegisterURL(org.Slug)); err != nil {
			s.logger.Warn().Err(err).Str("organization_id", org.ID.String()).Msg("failed to send onboarding email")
		}
	}
	return org, nil
}

// RegisterURL is the sign-up page for joining the organization with slug.
func (s *Service) RegisterURL(slug string) string {
	return strings.TrimSuffix(s.config.PublicOrigin, "/") + "/register?org=" + url.QueryEscape(slug)
}

func (s *Service) Provision(ctx context.Context, name, slug string, planID *uuid.UUID, owner *model.User) (*model.Organization, error) {
	return s.provision(ctx, name, slug, planID, "", owner)
}

func (s *Service) provision(ctx context.Context, name, slug string, planID *uuid.UUID, adminEmail string, owner *model.User) (*model.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.BadRequest("organization name is required", nil)
	}

	if planID != nil {
		if err := s.ensurePlan(ctx, *planID); err != nil {
			return nil, err
		}
	}

	slug, err := s.resolveSlug(ctx, name, slug)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	trialEnds := now.AddDate(0, 0, s.config.TrialDays)
	org := &model.Organization{
		Base:               model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:               name,
		Slug:               slug,
		SubscriptionPlanID: planID,
		SubscriptionStatus: model.SubscriptionTrialing,
		TrialEndsAt:        &trialEnds,
		AdminEmail:         adminEmail,
	}

	if err := s.orgRepo.Create(ctx, org, owner); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			if owner != nil {
				return nil, apperrors.Conflict("organization slug, email or username already in use")
			}
			return nil, apperrors.Conflict("organization slug already in use")
		}
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	s.logger.Info().
		Str("organization_id", org.ID.String()).
		Str("slug", org.Slug).
		Msg("organization created")

	event.EmitBestEffort(ctx, s.events, s.logger, model.EventOrganizationCreated, org)
	return org, nil
}

func (s *Service) resolveSlug(ctx context.Context, name, requested string) (string, error) {
	if requested != "" {
		taken, err := s.orgRepo.SlugExists(ctx, requested)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if taken {
			return "", apperrors.Conflict("organization slug already in use")
		}
		return requested, nil
	}
	return UniqueSlug(ctx, Slugify(name), s.orgRepo.SlugExists)
}

func (s *Service) ensurePlan(ctx context.Context, id uuid.UUID) error {
	_, err := s.planRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.BadRequest("unknown subscription plan", nil)
	}
	if err != nil {
		return fmt.Errorf("failed to get subscription plan: %w", err)
	}
	return nil
}

func (s *Service) UpdateSubscription(ctx context.Context, id uuid.UUID, req *model.UpdateSubscriptionRequest) (*model.Organization, error) {
	if req.SubscriptionPlanID == nil && req.SubscriptionStatus == nil {
		return nil, apperrors.BadRequest("subscriptionPlanId or subscriptionStatus is required", nil)
	}

	org, err := s.orgRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("organization")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	if req.SubscriptionPlanID != nil {
		if err := s.ensurePlan(ctx, *req.SubscriptionPlanID); err != nil {
			return nil, err
		}
		org.SubscriptionPlanID = req.SubscriptionPlanID
	}
	if req.SubscriptionStatus != nil {
		org.SubscriptionStatus = *req.SubscriptionStatus
	}

	if err := s.orgRepo.UpdateSubscription(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	event.EmitBestEffort(ctx, s.events, s.logger, model.EventOrganizationSubscriptionUpdated, org)
	return org, nil
}
