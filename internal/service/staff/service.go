// Package staff manages the people of an organization: staff members invited
// by the clinic admin and the patients who joined it.
package staff

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository"
	"github.com/jwalitptl/aesthiq-api/internal/service/event"
	"github.com/jwalitptl/aesthiq-api/internal/service/tenant"
	apperrors "github.com/jwalitptl/aesthiq-api/pkg/errors"
	"github.com/jwalitptl/aesthiq-api/pkg/security"
)

type StaffServicer interface {
	ListStaff(ctx context.Context, p *model.Principal) ([]*model.User, error)
	CreateStaff(ctx context.Context, p *model.Principal, req *model.CreateStaffRequest) (*model.User, error)
	ListClients(ctx context.Context, p *model.Principal) ([]*model.User, error)
}

type Service struct {
	users  repository.UserRepository
	plans  tenant.Plans
	hasher security.PasswordHasher
	events event.Emitter
	logger zerolog.Logger
}

func NewService(
	users repository.UserRepository,
	plans tenant.Plans,
	hasher security.PasswordHasher,
	events event.Emitter,
	logger zerolog.Logger,
) *Service {
	return &Service{
		users:  users,
		plans:  plans,
		hasher: hasher,
		events: events,
		logger: logger.With().Str("component", "staff").Logger(),
	}
}

func (s *Service) ListStaff(ctx context.Context, p *model.Principal) ([]*model.User, error) {
	return s.list(ctx, p, model.RoleStaff)
}

func (s *Service) ListClients(ctx context.Context, p *model.Principal) ([]*model.User, error) {
	return s.list(ctx, p, model.RolePatient)
}

func (s *Service) list(ctx context.Context, p *model.Principal, role model.Role) ([]*model.User, error) {
	orgID, err := tenant.OrganizationID(p)
	if err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx, model.UserFilter{OrganizationID: orgID, Role: role})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s users: %w", role, err)
	}
	return users, nil
}

func (s *Service) CreateStaff(ctx context.Context, p *model.Principal, req *model.CreateStaffRequest) (*model.User, error) {
	orgID, err := tenant.OrganizationID(p)
	if err != nil {
		return nil, err
	}

	count, err := s.users.Count(ctx, model.UserFilter{OrganizationID: orgID, Role: model.RoleStaff})
	if err != nil {
		return nil, fmt.Errorf("failed to count staff: %w", err)
	}
	maxStaff := func(plan *model.SubscriptionPlan) int { return plan.MaxStaff }
	if err := s.plans.CheckLimit(ctx, orgID, "staff", count, maxStaff); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if errors.Is(err, security.ErrPasswordTooShort) || errors.Is(err, security.ErrPasswordTooLong) {
		return nil, apperrors.BadRequest("password must be between 8 and 72 characters", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Base:           model.NewBase(),
		OrganizationID: &orgID,
		Email:          model.NormalizeEmail(req.Email),
		Username:       strings.TrimSpace(req.Username),
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		PasswordHash:   hash,
		Role:           model.RoleStaff,
		Status:         model.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("email or username already in use")
		}
		return nil, fmt.Errorf("failed to create staff: %w", err)
	}

	s.logger.Info().
		Str("organization_id", orgID.String()).
		Str("user_id", user.ID.String()).
		Msg("staff member created")

	event.EmitBestEffort(ctx, s.events, s.logger, model.EventStaffCreated, user)
	return user, nil
}
