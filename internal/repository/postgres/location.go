package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository"
)

const locationColumns = `id, organization_id, name, slug, address, timezone, is_active, created_at, updated_at`

type locationRepository struct {
	BaseRepository
}

func NewLocationRepository(base BaseRepository) repository.LocationRepository {
	return &locationRepository{base}
}

func (r *locationRepository) Create(ctx context.Context, location *model.Location) error {
	query := `
		INSERT INTO locations (` + locationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		location.ID,
		location.OrganizationID,
		location.Name,
		location.Slug,
		location.Address,
		location.Timezone,
		location.IsActive,
		location.CreatedAt,
		location.UpdatedAt,
	)
	return mapError(err, "create location")
}

func (r *locationRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.Location, error) {
	var location model.Location
	query := `SELECT ` + locationColumns + ` FROM locations WHERE organization_id = $1 AND id = $2`
	if err := r.db.GetContext(ctx, &location, query, orgID, id); err != nil {
		return nil, mapError(err, "get location")
	}
	return &location, nil
}

func (r *locationRepository) List(ctx context.Context, orgID uuid.UUID, activeOnly bool) ([]*model.Location, error) {
	locations := []*model.Location{}
	query := `SELECT ` + locationColumns + ` FROM locations
		WHERE organization_id = $1 AND (NOT $2 OR is_active)
		ORDER BY name`
	if err := r.db.SelectContext(ctx, &locations, query, orgID, activeOnly); err != nil {
		return nil, mapError(err, "list locations")
	}
	return locations, nil
}

func (r *locationRepository) Count(ctx context.Context, orgID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM locations WHERE organization_id = $1`, orgID); err != nil {
		return 0, mapError(err, "count locations")
	}
	return count, nil
}
