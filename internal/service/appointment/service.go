package appointment

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

type AppointmentServicer interface {
	List(ctx context.Context, p *model.Principal, filter model.AppointmentFilter) ([]*model.AppointmentView, error)
	Create(ctx context.Context, p *model.Principal, req *model.CreateAppointmentRequest) (*model.Appointment, error)
}

type Service struct {
	appointments repository.AppointmentRepository
	locations    repository.LocationRepository
	services     repository.ServiceRepository
	users        repository.UserRepository
	events       event.Emitter
	logger       zerolog.Logger
}

func NewService(
	appointments repository.AppointmentRepository,
	locations repository.LocationRepository,
	services repository.ServiceRepository,
	users repository.UserRepository,
	events event.Emitter,
	logger zerolog.Logger,
) *Service {
	return &Service{
		appointments: appointments,
		locations:    locations,
		services:     services,
		users:        users,
		events:       events,
		logger:       logger.With().Str("component", "appointment").Logger(),
	}
}

// List scopes the filter to the caller's organization; patients only ever
// see their own appointments.
func (s *Service) List(ctx context.Context, p *model.Principal, filter model.AppointmentFilter) ([]*model.AppointmentView, error) {
	orgID, err := tenant.OrganizationID(p)
	if err != nil {
		return nil, err
	}
	if filter.From != nil && filter.To != nil && !filter.To.After(*filter.From) {
		return nil, apperrors.BadRequest("to must be after from", nil)
	}

	filter.OrganizationID = orgID
	if p.Role == model.RolePatient {
		self := p.UserID
		filter.ClientID = &self
	}

	appointments, err := s.appointments.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (s *Service) Create(ctx context.Context, p *model.Principal, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	orgID, err := tenant.OrganizationID(p)
	if err != nil {
		return nil, err
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, apperrors.BadRequest("endTime must be after startTime", nil)
	}

	clientID, err := s.resolveClient(ctx, p, orgID, req.ClientID)
	if err != nil {
		return nil, err
	}

	if _, err := s.locations.GetByID(ctx, orgID, req.LocationID); err != nil {
		return nil, notFoundOr(err, "location")
	}
	if _, err := s.services.GetByID(ctx, orgID, req.ServiceID); err != nil {
		return nil, notFoundOr(err, "service")
	}
	if err := s.ensureMember(ctx, orgID, req.StaffID, "staff member", model.RoleStaff, model.RoleClinicAdmin); err != nil {
		return nil, err
	}

	appointment := &model.Appointment{
		Base:           model.NewBase(),
		OrganizationID: orgID,
		LocationID:     req.LocationID,
		ServiceID:      req.ServiceID,
		StaffID:        req.StaffID,
		ClientID:       clientID,
		StartTime:      req.StartTime.UTC(),
		EndTime:        req.EndTime.UTC(),
		Status:         model.AppointmentStatusScheduled,
		Notes:          strings.TrimSpace(req.Notes),
	}
	if err := s.appointments.Create(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.logger.Info().
		Str("organization_id", orgID.String()).
		Str("appointment_id", appointment.ID.String()).
		Msg("appointment created")

	event.EmitBestEffort(ctx, s.events, s.logger, model.EventAppointmentCreated, appointment)
	return appointment, nil
}

// resolveClient books patients for themselves; staff must name a patient of
// the organization.
func (s *Service) resolveClient(ctx context.Context, p *model.Principal, orgID uuid.UUID, requested *uuid.UUID) (uuid.UUID, error) {
	if p.Role == model.RolePatient {
		if requested != nil && *requested != p.UserID {
			return uuid.Nil, apperrors.Forbidden("patients can only book for themselves")
		}
		return p.UserID, nil
	}

	if requested == nil {
		return uuid.Nil, apperrors.BadRequest("clientId is required", nil)
	}
	if err := s.ensureMember(ctx, orgID, *requested, "client", model.RolePatient); err != nil {
		return uuid.Nil, err
	}
	return *requested, nil
}

func (s *Service) ensureMember(ctx context.Context, orgID, userID uuid.UUID, what string, roles ...model.Role) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, what)
	}
	if user.OrganizationID == nil || *user.OrganizationID != orgID {
		return apperrors.NotFound(what)
	}
	for _, role := range roles {
		if user.Role == role {
			return nil
		}
	}
	return apperrors.BadRequest(fmt.Sprintf("user is not a %s", what), nil)
}

func notFoundOr(err error, resource string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(resource)
	}
	return fmt.Errorf("failed to get %s: %w", resource, err)
}
