// Package tenant resolves the organization scope of a request and the plan
// limits that apply to it.
package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository"
	apperrors "github.com/jwalitptl/aesthiq-api/pkg/errors"
)

// OrganizationID returns the caller's organization. It is always taken from
// the session, never from a request body.
func OrganizationID(p *model.Principal) (uuid.UUID, error) {
	if p == nil {
		return uuid.Nil, apperrors.Unauthorized("not authenticated")
	}
	if !p.HasOrganization() {
		return uuid.Nil, apperrors.Forbidden("no organization associated with this account")
	}
	return *p.OrganizationID, nil
}

// Plans looks up the subscription plan of an organization.
type Plans struct {
	Organizations repository.OrganizationRepository
	Plans         repository.PlanRepository
}

// For returns the organization's plan, or nil when it has none.
func (l Plans) For(ctx context.Context, orgID uuid.UUID) (*model.SubscriptionPlan, error) {
	org, err := l.Organizations.GetByID(ctx, orgID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("organization")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	if org.SubscriptionPlanID == nil {
		return nil, nil
	}

	plan, err := l.Plans.GetByID(ctx, *org.SubscriptionPlanID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription plan: %w", err)
	}
	return plan, nil
}

// CheckLimit returns a Forbidden error when current has reached the limit
// picked from the organization's plan. Organizations without a plan are
// unlimited.
func (l Plans) CheckLimit(ctx context.Context, orgID uuid.UUID, resource string, current int, limit func(*model.SubscriptionPlan) int) error {
	plan, err := l.For(ctx, orgID)
	if err != nil {
		return err
	}
	if plan == nil || model.WithinLimit(limit(plan), current) {
		return nil
	}
	return apperrors.Forbidden(fmt.Sprintf("%s limit of the %s plan reached", resource, plan.Name))
}
