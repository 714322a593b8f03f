package location

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository"
	"github.com/jwalitptl/aesthiq-api/internal/service/event"
	"github.com/jwalitptl/aesthiq-api/internal/service/organization"
	"github.com/jwalitptl/aesthiq-api/internal/service/tenant"
	apperrors "github.com/jwalitptl/aesthiq-api/pkg/errors"
)

const defaultTimezone = "UTC"

type LocationServicer interface {
	List(ctx context.Context, p *model.Principal) ([]*model.Location, error)
	Create(ctx context.Context, p *model.Principal, req *model.CreateLocationRequest) (*model.Location, error)
}

type Service struct {
	repo   repository.LocationRepository
	plans  tenant.Plans
	events event.Emitter
	logger zerolog.Logger
}

func NewService(repo repository.LocationRepository, plans tenant.Plans, events event.Emitter, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		plans:  plans,
		events: events,
		logger: logger.With().Str("component", "location").Logger(),
	}
}

func (s *Service) List(ctx context.Context, p *model.Principal) ([]*model.Location, error) {
	orgID, err := tenant.OrganizationID(p)
	if err != nil {
		return nil, err
	}

	locations, err := s.repo.List(ctx, orgID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

func (s *Service) Create(ctx context.Context, p *model.Principal, req *model.CreateLocationRequest) (*model.Location, error) {
	orgID, err := tenant.OrganizationID(p)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.BadRequest("location name is required", nil)
	}

	count, err := s.repo.Count(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to count locations: %w", err)
	}
	maxLocations := func(plan *model.SubscriptionPlan) int { return plan.MaxLocations }
	if err := s.plans.CheckLimit(ctx, orgID, "location", count, maxLocations); err != nil {
		return nil, err
	}

	slug := req.Slug
	if slug == "" {
		slug = organization.Slugify(name)
	}
	timezone := req.Timezone
	if timezone == "" {
		timezone = defaultTimezone
	}

	location := &model.Location{
		Base:           model.NewBase(),
		OrganizationID: orgID,
		Name:           name,
		Slug:           slug,
		Address:        strings.TrimSpace(req.Address),
		Timezone:       timezone,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, location); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("a location with this slug already exists")
		}
		return nil, fmt.Errorf("failed to create location: %w", err)
	}

	s.logger.Info().
		Str("organization_id", orgID.String()).
		Str("location_id", location.ID.String()).
		Msg("location created")

	event.EmitBestEffort(ctx, s.events, s.logger, model.EventLocationCreated, location)
	return location, nil
}
