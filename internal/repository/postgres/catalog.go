package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository"
)

const (
	serviceColumns = `id, organization_id, name, description, duration_minutes, price,
	category, is_active, created_at, updated_at`
	membershipTierColumns = `id, organization_id, name, description, monthly_price, benefits,
	is_active, created_at, updated_at`
)

type serviceRepository struct {
	BaseRepository
}

func NewServiceRepository(base BaseRepository) repository.ServiceRepository {
	return &serviceRepository{base}
}

func (r *serviceRepository) Create(ctx context.Context, service *model.Service) error {
	query := `
		INSERT INTO services (` + serviceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		service.ID,
		service.OrganizationID,
		service.Name,
		service.Description,
		service.DurationMinutes,
		service.Price,
		service.Category,
		service.IsActive,
		service.CreatedAt,
		service.UpdatedAt,
	)
	return mapError(err, "create service")
}

func (r *serviceRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.Service, error) {
	var service model.Service
	query := `SELECT ` + serviceColumns + ` FROM services WHERE organization_id = $1 AND id = $2`
	if err := r.db.GetContext(ctx, &service, query, orgID, id); err != nil {
		return nil, mapError(err, "get service")
	}
	return &service, nil
}

func (r *serviceRepository) List(ctx context.Context, orgID uuid.UUID, activeOnly bool) ([]*model.Service, error) {
	services := []*model.Service{}
	query := `SELECT ` + serviceColumns + ` FROM services
		WHERE organization_id = $1 AND (NOT $2 OR is_active)
		ORDER BY category, name`
	if err := r.db.SelectContext(ctx, &services, query, orgID, activeOnly); err != nil {
		return nil, mapError(err, "list services")
	}
	return services, nil
}

type membershipTierRepository struct {
	BaseRepository
}

func NewMembershipTierRepository(base BaseRepository) repository.MembershipTierRepository {
	return &membershipTierRepository{base}
}

func (r *membershipTierRepository) Create(ctx context.Context, tier *model.MembershipTier) error {
	query := `
		INSERT INTO membership_tiers (` + membershipTierColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		tier.ID,
		tier.OrganizationID,
		tier.Name,
		tier.Description,
		tier.MonthlyPrice,
		tier.Benefits,
		tier.IsActive,
		tier.CreatedAt,
		tier.UpdatedAt,
	)
	return mapError(err, "create membership tier")
}

func (r *membershipTierRepository) List(ctx context.Context, orgID uuid.UUID, activeOnly bool) ([]*model.MembershipTier, error) {
	tiers := []*model.MembershipTier{}
	query := `SELECT ` + membershipTierColumns + ` FROM membership_tiers
		WHERE organization_id = $1 AND (NOT $2 OR is_active)
		ORDER BY monthly_price, name`
	if err := r.db.SelectContext(ctx, &tiers, query, orgID, activeOnly); err != nil {
		return nil, mapError(err, "list membership tiers")
	}
	return tiers, nil
}
