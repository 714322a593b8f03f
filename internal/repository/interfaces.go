package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/aesthiq-api/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
		// GetByLogin matches either the email or the username.
		GetByLogin(ctx context.Context, login string) (*model.User, error)
		List(ctx context.Context, filter model.UserFilter) ([]*model.User, error)
		Count(ctx context.Context, filter model.UserFilter) (int, error)
		UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
		UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	}

	OrganizationRepository interface {
		// Create inserts org and, when owner is non-nil, its first user in one transaction.
		Create(ctx context.Context, org *model.Organization, owner *model.User) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.Organization, error)
		GetBySlug(ctx context.Context, slug string) (*model.Organization, error)
		SlugExists(ctx context.Context, slug string) (bool, error)
		List(ctx context.Context) ([]*model.Organization, error)
		UpdateSubscription(ctx context.Context, org *model.Organization) error
	}

	PlanRepository interface {
		Create(ctx context.Context, plan *model.SubscriptionPlan) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.SubscriptionPlan, error)
		ListActive(ctx context.Context) ([]*model.SubscriptionPlan, error)
		Count(ctx context.Context) (int, error)
	}

	LocationRepository interface {
		Create(ctx context.Context, location *model.Location) error
		GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.Location, error)
		List(ctx context.Context, orgID uuid.UUID, activeOnly bool) ([]*model.Location, error)
		Count(ctx context.Context, orgID uuid.UUID) (int, error)
	}

	ServiceRepository interface {
		Create(ctx context.Context, service *model.Service) error
		GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.Service, error)
		List(ctx context.Context, orgID uuid.UUID, activeOnly bool) ([]*model.Service, error)
	}

	MembershipTierRepository interface {
		Create(ctx context.Context, tier *model.MembershipTier) error
		List(ctx context.Context, orgID uuid.UUID, activeOnly bool) ([]*model.MembershipTier, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		List(ctx context.Context, filter model.AppointmentFilter) ([]*model.AppointmentView, error)
	}

	StripeAccountRepository interface {
		GetByOrganization(ctx context.Context, orgID uuid.UUID) (*model.StripeAccount, error)
		GetByStripeID(ctx context.Context, stripeAccountID string) (*model.StripeAccount, error)
		Upsert(ctx context.Context, account *model.StripeAccount) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// ClaimPending leases up to limit due events so concurrent workers skip them.
		ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkRetry(ctx context.Context, id uuid.UUID, errorMessage string, retryAt time.Time) error
		MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
