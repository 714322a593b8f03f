package location

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
	"github.com/jwalitptl/aesthiq-api/internal/service/tenant"
	apperrors "github.com/jwalitptl/aesthiq-api/pkg/errors"
)

func setup(t *testing.T, maxLocations int) (*Service, *memory.Store, *model.Principal) {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()

	plan := &model.SubscriptionPlan{Base: model.NewBase(), Name: "Basic", MaxLocations: maxLocations, IsActive: true}
	require.NoError(t, store.Plans().Create(ctx, plan))
	org := &model.Organization{Base: model.NewBase(), Name: "Glow", Slug: "glow", SubscriptionPlanID: &plan.ID}
	require.NoError(t, store.Organizations().Create(ctx, org, nil))

	svc := NewService(
		store.Locations(),
		tenant.Plans{Organizations: store.Organizations(), Plans: store.Plans()},
		event.NewService(store.Outbox(), zerolog.Nop()),
		zerolog.Nop(),
	)
	return svc, store, &model.Principal{UserID: uuid.New(), Role: model.RoleClinicAdmin, OrganizationID: &org.ID}
}

func TestCreateLocation(t *testing.T) {
	svc, store, admin := setup(t, 2)
	ctx := context.Background()

	loc, err := svc.Create(ctx, admin, &model.CreateLocationRequest{Name: "Downtown Studio", Address: " 1 Main St "})
	require.NoError(t, err)
	assert.Equal(t, "downtown-studio", loc.Slug)
	assert.Equal(t, "UTC", loc.Timezone)
	assert.Equal(t, "1 Main St", loc.Address)
	assert.Equal(t, *admin.OrganizationID, loc.OrganizationID)
	assert.Equal(t, []string{model.EventLocationCreated}, store.Events())

	_, err = svc.Create(ctx, admin, &model.CreateLocationRequest{Name: "Downtown Studio"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	list, err := svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateLocationRespectsPlanLimit(t *testing.T) {
	svc, _, admin := setup(t, 1)
	ctx := context.Background()

	_, err := svc.Create(ctx, admin, &model.CreateLocationRequest{Name: "First"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, admin, &model.CreateLocationRequest{Name: "Second"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestLocationsRequireOrganization(t *testing.T) {
	svc, _, _ := setup(t, 0)

	_, err := svc.List(context.Background(), &model.Principal{Role: model.RoleSuperAdmin})
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}
