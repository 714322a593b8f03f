package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository/memory"
	"github.com/jwalitptl/aesthiq-api/internal/service/event"
	apperrors "github.com/jwalitptl/aesthiq-api/pkg/errors"
)

type fixture struct {
	svc      *Service
	store    *memory.Store
	orgID    uuid.UUID
	location *model.Location
	service  *model.Service
	staff    *model.User
	patient  *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	orgID := uuid.New()

	f := &fixture{
		store:    store,
		orgID:    orgID,
		location: &model.Location{Base: model.NewBase(), OrganizationID: orgID, Name: "Main", Slug: "main", IsActive: true},
		service:  &model.Service{Base: model.NewBase(), OrganizationID: orgID, Name: "Facial", DurationMinutes: 60, IsActive: true},
		staff: &model.User{Base: model.NewBase(), OrganizationID: &orgID, Email: "s@x.test", Username: "s",
			FirstName: "Sam", LastName: "Staff", Role: model.RoleStaff},
		patient: &model.User{Base: model.NewBase(), OrganizationID: &orgID, Email: "p@x.test", Username: "p",
			FirstName: "Pat", LastName: "Client", Role: model.RolePatient},
	}
	require.NoError(t, store.Locations().Create(ctx, f.location))
	require.NoError(t, store.Services().Create(ctx, f.service))
	require.NoError(t, store.Users().Create(ctx, f.staff))
	require.NoError(t, store.Users().Create(ctx, f.patient))

	f.svc = NewService(
		store.Appointments(),
		store.Locations(),
		store.Services(),
		store.Users(),
		event.NewService(store.Outbox(), zerolog.Nop()),
		zerolog.Nop(),
	)
	return f
}

func (f *fixture) principal(u *model.User) *model.Principal {
	return &model.Principal{UserID: u.ID, Role: u.Role, OrganizationID: &f.orgID}
}

func (f *fixture) request(start time.Time) *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		LocationID: f.location.ID,
		ServiceID:  f.service.ID,
		StaffID:    f.staff.ID,
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
	}
}

func TestPatientBooksForSelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	appt, err := f.svc.Create(ctx, f.principal(f.patient), f.request(start))
	require.NoError(t, err)
	assert.Equal(t, f.patient.ID, appt.ClientID)
	assert.Equal(t, model.AppointmentStatusScheduled, appt.Status)
	assert.Equal(t, []string{model.EventAppointmentCreated}, f.store.Events())

	someoneElse := uuid.New()
	req := f.request(start)
	req.ClientID = &someoneElse
	_, err = f.svc.Create(ctx, f.principal(f.patient), req)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestStaffBooksForClient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := time.Now().Add(time.Hour).Truncate(time.Minute)

	_, err := f.svc.Create(ctx, f.principal(f.staff), f.request(start))
	assert.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))

	req := f.request(start)
	req.ClientID = &f.patient.ID
	appt, err := f.svc.Create(ctx, f.principal(f.staff), req)
	require.NoError(t, err)
	assert.Equal(t, f.patient.ID, appt.ClientID)

	req.ClientID = &f.staff.ID
	_, err = f.svc.Create(ctx, f.principal(f.staff), req)
	assert.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))
}

func TestCreateAppointmentValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := time.Now().Add(time.Hour)
	patient := f.principal(f.patient)

	backwards := f.request(start)
	backwards.EndTime = start
	_, err := f.svc.Create(ctx, patient, backwards)
	assert.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))

	foreignService := f.request(start)
	foreignService.ServiceID = uuid.New()
	_, err = f.svc.Create(ctx, patient, foreignService)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	foreignStaff := f.request(start)
	foreignStaff.StaffID = uuid.New()
	_, err = f.svc.Create(ctx, patient, foreignStaff)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	foreignLocation := f.request(start)
	foreignLocation.LocationID = uuid.New()
	_, err = f.svc.Create(ctx, patient, foreignLocation)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	assert.Empty(t, f.store.Events())
}

func TestListScopesPatientsToOwnAppointments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := time.Now().Add(time.Hour).Truncate(time.Minute)

	other := &model.User{Base: model.NewBase(), OrganizationID: &f.orgID, Email: "o@x.test", Username: "o", Role: model.RolePatient}
	require.NoError(t, f.store.Users().Create(ctx, other))

	_, err := f.svc.Create(ctx, f.principal(f.patient), f.request(start))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.principal(other), f.request(start.Add(2*time.Hour)))
	require.NoError(t, err)

	mine, err := f.svc.List(ctx, f.principal(f.patient), model.AppointmentFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Facial", mine[0].ServiceName)
	assert.Equal(t, "Sam Staff", mine[0].StaffName)

	all, err := f.svc.List(ctx, f.principal(f.staff), model.AppointmentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	to := start.Add(time.Hour)
	windowed, err := f.svc.List(ctx, f.principal(f.staff), model.AppointmentFilter{From: &start, To: &to})
	require.NoError(t, err)
	assert.Len(t, windowed, 1)

	_, err = f.svc.List(ctx, f.principal(f.staff), model.AppointmentFilter{From: &to, To: &start})
	assert.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))
}
