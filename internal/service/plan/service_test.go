package plan

import (
	"context"
	"testing"

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
	return NewService(store.Plans(), event.NewService(store.Outbox(), zerolog.Nop()), "usd", zerolog.Nop()), store
}

func TestCreatePlanEmitsEventAndIsListed(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	plan, err := svc.Create(ctx, &model.CreatePlanRequest{
		Name: "Pro", Tier: "professional", MonthlyPrice: 9900, YearlyPrice: 99000, MaxStaff: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "usd", plan.Currency)
	assert.True(t, plan.IsActive)
	assert.NotNil(t, plan.Features)

	plans, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, plan.ID, plans[0].ID)
	assert.Equal(t, []string{model.EventSubscriptionPlanCreated}, store.Events())
}

func TestCreatePlanValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, &model.CreatePlanRequest{Name: "Gold", Tier: "gold"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))

	_, err = svc.Create(ctx, &model.CreatePlanRequest{Name: "Neg", Tier: "basic", MonthlyPrice: -1})
	assert.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))

	_, err = svc.Create(ctx, &model.CreatePlanRequest{Name: "Neg", Tier: "basic", MaxLocations: -1})
	assert.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))
}

func TestListActiveOrderedByMonthlyPrice(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	n, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	plans, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, model.PlanTierBasic, plans[0].Tier)
	assert.Equal(t, model.PlanTierProfessional, plans[1].Tier)
	assert.Equal(t, model.PlanTierEnterprise, plans[2].Tier)

	n, err = svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
