// Package catalog manages what an organization sells: bookable services and
// membership tiers.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository"
	"github.com/jwalitptl/aesthiq-api/internal/service/event"
	"github.com/jwalitptl/aesthiq-api/internal/service/tenant"
	apperrors "github.com/jwalitptl/aesthiq-api/pkg/errors"
)

type CatalogServicer interface {
	ListServices(ctx context.Context, p *model.Principal) ([]*model.Service, error)
	GetService(ctx context.Context, orgID, id uuid.UUID) (*model.Service, error)
	CreateService(ctx context.Context, p *model.Principal, req *model.CreateServiceRequest) (*model.Service, error)
	ListMembershipTiers(ctx context.Context, p *model.Principal) ([]*model.MembershipTier, error)
	CreateMembershipTier(ctx context.Context, p *model.Principal, req *model.CreateMembershipTierRequest) (*model.MembershipTier, error)
}

type Service struct {
	services repository.ServiceRepository
	tiers    repository.MembershipTierRepository
	events   event.Emitter
	logger   zerolog.Logger
}

func NewService(
	services repository.ServiceRepository,
	tiers repository.MembershipTierRepository,
	events event.Emitter,
	logger zerolog.Logger,
) *Service {
	return &Service{
		services: services,
		tiers:    tiers,
		events:   events,
		logger:   logger.With().Str("component", "catalog").Logger(),
	}
}

// ListServices returns every service to staff and only active ones to patients.
func (s *Service) ListServices(ctx context.Context, p *model.Principal) ([]*model.Service, error) {
	orgID, err := tenant.OrganizationID(p)
	if err != nil {
		return nil, err
	}

	services, err := s.services.List(ctx, orgID, p.Role == model.RolePatient)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func (s *Service) GetService(ctx context.Context, orgID, id uuid.UUID) (*model.Service, error) {
	service, err := s.services.GetByID(ctx, orgID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("service")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return service, nil
}

func (s *Service) CreateService(ctx context.Context, p *model.Principal, req *model.CreateServiceRequest) (*model.Service, error) {
	orgID, err := tenant.OrganizationID(p)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		return nil, apperrors.BadRequest("service name is required", nil)
	case req.DurationMinutes <= 0:
		return nil, apperrors.BadRequest("durationMinutes must be positive", nil)
	case req.Price < 0:
		return nil, apperrors.BadRequest("price must not be negative", nil)
	}

	service := &model.Service{
		Base:            model.NewBase(),
		OrganizationID:  orgID,
		Name:            name,
		Description:     strings.TrimSpace(req.Description),
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Category:        strings.TrimSpace(req.Category),
		IsActive:        true,
	}
	if err := s.services.Create(ctx, service); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	s.logger.Info().
		Str("organization_id", orgID.String()).
		Str("service_id", service.ID.String()).
		Msg("service created")

	event.EmitBestEffort(ctx, s.events, s.logger, model.EventServiceCreated, service)
	return service, nil
}

func (s *Service) ListMembershipTiers(ctx context.Context, p *model.Principal) ([]*model.MembershipTier, error) {
	orgID, err := tenant.OrganizationID(p)
	if err != nil {
		return nil, err
	}

	tiers, err := s.tiers.List(ctx, orgID, p.Role == model.RolePatient)
	if err != nil {
		return nil, fmt.Errorf("failed to list membership tiers: %w", err)
	}
	return tiers, nil
}

func (s *Service) CreateMembershipTier(ctx context.Context, p *model.Principal, req *model.CreateMembershipTierRequest) (*model.MembershipTier, error) {
	orgID, err := tenant.OrganizationID(p)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.BadRequest("membership tier name is required", nil)
	}
	if req.MonthlyPrice < 0 {
		return nil, apperrors.BadRequest("monthlyPrice must not be negative", nil)
	}

	benefits := make([]string, 0, len(req.Benefits))
	for _, b := range req.Benefits {
		if b = strings.TrimSpace(b); b != "" {
			benefits = append(benefits, b)
		}
	}

	tier := &model.MembershipTier{
		Base:           model.NewBase(),
		OrganizationID: orgID,
		Name:           name,
		Description:    strings.TrimSpace(req.Description),
		MonthlyPrice:   req.MonthlyPrice,
		Benefits:       benefits,
		IsActive:       true,
	}
	if err := s.tiers.Create(ctx, tier); err != nil {
		return nil, fmt.Errorf("failed to create membership tier: %w", err)
	}

	s.logger.Info().
		Str("organization_id", orgID.String()).
		Str("membership_tier_id", tier.ID.String()).
		Msg("membership tier created")

	event.EmitBestEffort(ctx, s.events, s.logger, model.EventMembershipTierCreated, tier)
	return tier, nil
}
