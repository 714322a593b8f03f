package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository"
)

const organizationColumns = `id, name, slug, subscription_plan_id, subscription_status,
	trial_ends_at, admin_email, created_at, updated_at`

type organizationRepository struct {
	BaseRepository
}

func NewOrganizationRepository(base BaseRepository) repository.OrganizationRepository {
	return &organizationRepository{base}
}

func (r *organizationRepository) Create(ctx context.Context, org *model.Organization, owner *model.User) error {
	query := `
		INSERT INTO organizations (
			id, name, slug, subscription_plan_id, subscription_status,
			trial_ends_at, admin_email, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, query,
			org.ID,
			org.Name,
			org.Slug,
			org.SubscriptionPlanID,
			org.SubscriptionStatus,
			org.TrialEndsAt,
			org.AdminEmail,
			org.CreatedAt,
			org.UpdatedAt,
		); err != nil {
			return err
		}

		if owner == nil {
			return nil
		}
		owner.OrganizationID = &org.ID
		return insertUser(ctx, tx, owner)
	})
	return mapError(err, "create organization")
}

func (r *organizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	var org model.Organization
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE id = $1`
	if err := r.db.GetContext(ctx, &org, query, id); err != nil {
		return nil, mapError(err, "get organization")
	}
	return &org, nil
}

func (r *organizationRepository) GetBySlug(ctx context.Context, slug string) (*model.Organization, error) {
	var org model.Organization
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE slug = $1`
	if err := r.db.GetContext(ctx, &org, query, slug); err != nil {
		return nil, mapError(err, "get organization by slug")
	}
	return &org, nil
}

func (r *organizationRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM organizations WHERE slug = $1)`, slug); err != nil {
		return false, mapError(err, "check organization slug")
	}
	return exists, nil
}

func (r *organizationRepository) List(ctx context.Context) ([]*model.Organization, error) {
	orgs := []*model.Organization{}
	query := `SELECT ` + organizationColumns + ` FROM organizations ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &orgs, query); err != nil {
		return nil, mapError(err, "list organizations")
	}
	return orgs, nil
}

func (r *organizationRepository) UpdateSubscription(ctx context.Context, org *model.Organization) error {
	query := `
		UPDATE organizations
		SET subscription_plan_id = $1, subscription_status = $2, updated_at = $3
		WHERE id = $4
	`
	org.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		org.SubscriptionPlanID,
		org.SubscriptionStatus,
		org.UpdatedAt,
		org.ID,
	)
	if err != nil {
		return mapError(err, "update organization subscription")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
