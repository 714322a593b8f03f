package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/aesthiq-api/internal/repository"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil, "noop"))
	assert.ErrorIs(t, mapError(sql.ErrNoRows, "get user"), repository.ErrNotFound)

	dup := mapError(&pq.Error{Code: uniqueViolation, Constraint: "users_email_key"}, "create user")
	assert.ErrorIs(t, dup, repository.ErrDuplicate)
	assert.Contains(t, dup.Error(), "users_email_key")

	other := mapError(fmt.Errorf("connection reset"), "list users")
	assert.False(t, errors.Is(other, repository.ErrDuplicate))
	assert.Contains(t, other.Error(), "failed to list users")
}

func TestSchemaEmbedded(t *testing.T) {
	for _, table := range []string{
		"subscription_plans", "organizations", "users", "locations", "services",
		"membership_tiers", "appointments", "stripe_accounts", "outbox_events",
	} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table)
	}
}
