package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository"
)

const stripeAccountColumns = `organization_id, stripe_account_id, charges_enabled, payouts_enabled,
	details_submitted, capabilities, currently_due, eventually_due, past_due, disabled_reason,
	created_at, updated_at`

type stripeAccountRepository struct {
	BaseRepository
}

func NewStripeAccountRepository(base BaseRepository) repository.StripeAccountRepository {
	return &stripeAccountRepository{base}
}

func (r *stripeAccountRepository) GetByOrganization(ctx context.Context, orgID uuid.UUID) (*model.StripeAccount, error) {
	var account model.StripeAccount
	query := `SELECT ` + stripeAccountColumns + ` FROM stripe_accounts WHERE organization_id = $1`
	if err := r.db.GetContext(ctx, &account, query, orgID); err != nil {
		return nil, mapError(err, "get stripe account")
	}
	return &account, nil
}

func (r *stripeAccountRepository) GetByStripeID(ctx context.Context, stripeAccountID string) (*model.StripeAccount, error) {
	var account model.StripeAccount
	query := `SELECT ` + stripeAccountColumns + ` FROM stripe_accounts WHERE stripe_account_id = $1`
	if err := r.db.GetContext(ctx, &account, query, stripeAccountID); err != nil {
		return nil, mapError(err, "get stripe account by id")
	}
	return &account, nil
}

func (r *stripeAccountRepository) Upsert(ctx context.Context, a *model.StripeAccount) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	query := `
		INSERT INTO stripe_accounts (` + stripeAccountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (organization_id) DO UPDATE SET
			stripe_account_id = EXCLUDED.stripe_account_id,
			charges_enabled = EXCLUDED.charges_enabled,
			payouts_enabled = EXCLUDED.payouts_enabled,
			details_submitted = EXCLUDED.details_submitted,
			capabilities = EXCLUDED.capabilities,
			currently_due = EXCLUDED.currently_due,
			eventually_due = EXCLUDED.eventually_due,
			past_due = EXCLUDED.past_due,
			disabled_reason = EXCLUDED.disabled_reason,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		a.OrganizationID,
		a.StripeAccountID,
		a.ChargesEnabled,
		a.PayoutsEnabled,
		a.DetailsSubmitted,
		a.Capabilities,
		a.CurrentlyDue,
		a.EventuallyDue,
		a.PastDue,
		a.DisabledReason,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return mapError(err, "upsert stripe account")
}
