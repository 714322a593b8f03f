package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository/memory"
	"github.com/jwalitptl/aesthiq-api/internal/service/event"
	apperrors "github.com/jwalitptl/aesthiq-api/pkg/errors"
)

func newTestService() (*Service, *memory.Store) {
	store := memory.NewStore()
	events := event.NewService(store.Outbox(), zerolog.Nop())
	return NewService(store.Services(), store.MembershipTiers(), events, zerolog.Nop()), store
}

func principal(role model.Role, orgID uuid.UUID) *model.Principal {
	return &model.Principal{UserID: uuid.New(), Role: role, OrganizationID: &orgID}
}

func TestServicesAreScopedToOrganization(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	orgA, orgB := uuid.New(), uuid.New()

	created, err := svc.CreateService(ctx, principal(model.RoleClinicAdmin, orgA), &model.CreateServiceRequest{
		Name: "Hydrafacial", DurationMinutes: 60, Price: 15000,
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.Equal(t, []string{model.EventServiceCreated}, store.Events())

	listA, err := svc.ListServices(ctx, principal(model.RoleStaff, orgA))
	require.NoError(t, err)
	assert.Len(t, listA, 1)

	listB, err := svc.ListServices(ctx, principal(model.RoleStaff, orgB))
	require.NoError(t, err)
	assert.Empty(t, listB)

	_, err = svc.GetService(ctx, orgB, created.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestPatientsOnlySeeActiveServices(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	orgID := uuid.New()

	retired := &model.Service{Base: model.NewBase(), OrganizationID: orgID, Name: "Retired", DurationMinutes: 30}
	require.NoError(t, store.Services().Create(ctx, retired))
	_, err := svc.CreateService(ctx, principal(model.RoleClinicAdmin, orgID), &model.CreateServiceRequest{
		Name: "Peel", DurationMinutes: 45,
	})
	require.NoError(t, err)

	staffView, err := svc.ListServices(ctx, principal(model.RoleStaff, orgID))
	require.NoError(t, err)
	assert.Len(t, staffView, 2)

	patientView, err := svc.ListServices(ctx, principal(model.RolePatient, orgID))
	require.NoError(t, err)
	require.Len(t, patientView, 1)
	assert.Equal(t, "Peel", patientView[0].Name)
}

func TestCreateServiceValidation(t *testing.T) {
	svc, _ := newTestService()
	admin := principal(model.RoleClinicAdmin, uuid.New())

	_, err := svc.CreateService(context.Background(), admin, &model.CreateServiceRequest{Name: "Zero"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))

	_, err = svc.CreateService(context.Background(), admin, &model.CreateServiceRequest{Name: "Neg", DurationMinutes: 30, Price: -5})
	assert.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))
}

func TestMembershipTiers(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	orgID := uuid.New()
	admin := principal(model.RoleClinicAdmin, orgID)

	tier, err := svc.CreateMembershipTier(ctx, admin, &model.CreateMembershipTierRequest{
		Name: "Glow Club", MonthlyPrice: 9900, Benefits: []string{" 10% off ", "", "Free consult"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"10% off", "Free consult"}, []string(tier.Benefits))
	assert.Contains(t, store.Events(), model.EventMembershipTierCreated)

	tiers, err := svc.ListMembershipTiers(ctx, principal(model.RolePatient, orgID))
	require.NoError(t, err)
	assert.Len(t, tiers, 1)

	_, err = svc.CreateMembershipTier(ctx, admin, &model.CreateMembershipTierRequest{Name: "Bad", MonthlyPrice: -1})
	assert.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))
}
