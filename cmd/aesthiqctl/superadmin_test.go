package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository/memory"
	"github.com/jwalitptl/aesthiq-api/pkg/security"
)

func TestCreateSuperAdmin(t *testing.T) {
	store := memory.NewStore()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	ctx := context.Background()

	user, err := createSuperAdmin(ctx, store.Users(), hasher, superAdminOptions{
		Email: " Root@Aesthiq.test ", Username: "root", Password: "super-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleSuperAdmin, user.Role)
	assert.Equal(t, "root@aesthiq.test", user.Email)
	assert.Nil(t, user.OrganizationID)
	assert.NoError(t, hasher.Compare(user.PasswordHash, "super-secret"))

	_, err = createSuperAdmin(ctx, store.Users(), hasher, superAdminOptions{
		Email: "root@aesthiq.test", Username: "other", Password: "super-secret",
	})
	assert.ErrorContains(t, err, "already exists")

	_, err = createSuperAdmin(ctx, store.Users(), hasher, superAdminOptions{
		Email: "x@aesthiq.test", Username: "x", Password: "short",
	})
	assert.Error(t, err)
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"migrate", "create-superadmin", "seed-plans"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
