package tenant

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/aesthiq-api/pkg/errors"
)

func TestOrganizationID(t *testing.T) {
	_, err := OrganizationID(nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))

	_, err = OrganizationID(&model.Principal{Role: model.RoleSuperAdmin})
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	id := uuid.New()
	got, err := OrganizationID(&model.Principal{Role: model.RoleStaff, OrganizationID: &id})
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestCheckLimit(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	plans := Plans{Organizations: store.Organizations(), Plans: store.Plans()}
	maxLocations := func(p *model.SubscriptionPlan) int { return p.MaxLocations }

	plan := &model.SubscriptionPlan{Base: model.NewBase(), Name: "Basic", MaxLocations: 1, IsActive: true}
	require.NoError(t, store.Plans().Create(ctx, plan))

	unplanned := &model.Organization{Base: model.NewBase(), Name: "Free", Slug: "free"}
	planned := &model.Organization{Base: model.NewBase(), Name: "Paid", Slug: "paid", SubscriptionPlanID: &plan.ID}
	require.NoError(t, store.Organizations().Create(ctx, unplanned, nil))
	require.NoError(t, store.Organizations().Create(ctx, planned, nil))

	assert.NoError(t, plans.CheckLimit(ctx, unplanned.ID, "location", 50, maxLocations))
	assert.NoError(t, plans.CheckLimit(ctx, planned.ID, "location", 0, maxLocations))

	err := plans.CheckLimit(ctx, planned.ID, "location", 1, maxLocations)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	err = plans.CheckLimit(ctx, uuid.New(), "location", 0, maxLocations)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
