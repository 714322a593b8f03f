package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository"
)

const planColumns = `id, name, tier, monthly_price, yearly_price, currency, max_locations,
	max_staff, max_clients, features, is_active, created_at, updated_at`

type planRepository struct {
	BaseRepository
}

func NewPlanRepository(base BaseRepository) repository.PlanRepository {
	return &planRepository{base}
}

func (r *planRepository) Create(ctx context.Context, plan *model.SubscriptionPlan) error {
	query := `
		INSERT INTO subscription_plans (` + planColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		plan.ID,
		plan.Name,
		plan.Tier,
		plan.MonthlyPrice,
		plan.YearlyPrice,
		plan.Currency,
		plan.MaxLocations,
		plan.MaxStaff,
		plan.MaxClients,
		plan.Features,
		plan.IsActive,
		plan.CreatedAt,
		plan.UpdatedAt,
	)
	return mapError(err, "create subscription plan")
}

func (r *planRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SubscriptionPlan, error) {
	var plan model.SubscriptionPlan
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE id = $1`
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		return nil, mapError(err, "get subscription plan")
	}
	return &plan, nil
}

func (r *planRepository) ListActive(ctx context.Context) ([]*model.SubscriptionPlan, error) {
	plans := []*model.SubscriptionPlan{}
	query := `SELECT ` + planColumns + ` FROM subscription_plans
		WHERE is_active ORDER BY monthly_price ASC, name ASC`
	if err := r.db.SelectContext(ctx, &plans, query); err != nil {
		return nil, mapError(err, "list subscription plans")
	}
	return plans, nil
}

func (r *planRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM subscription_plans`); err != nil {
		return 0, mapError(err, "count subscription plans")
	}
	return count, nil
}
