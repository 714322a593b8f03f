package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/aesthiq-api/internal/model"
)

func principal(role model.Role) *model.Principal {
	return &model.Principal{UserID: uuid.New(), Role: role}
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	for _, r := range Routes() {
		if r.Public {
			continue
		}
		d := Decide(nil, r.Path)
		assert.Equal(t, ActionRedirect, d.Action, r.Path)
		assert.Equal(t, LoginPath, d.Location, r.Path)
	}
}

func TestPublicRoutesOpenToAnonymous(t *testing.T) {
	for _, path := range []string{"/login", "/register", "/c/glow-spa", "/c/glow-spa?ref=ig"} {
		assert.Equal(t, ActionAllow, Decide(nil, path).Action, path)
	}
	assert.Equal(t, ActionRedirect, Decide(nil, "/c").Action)
	assert.Equal(t, ActionRedirect, Decide(nil, "/c/glow/extra").Action)
}

func TestPermittedRouteSets(t *testing.T) {
	assert.Equal(t, []string{"/admin", "/admin/organizations", "/admin/plans"},
		PermittedPaths(model.RoleSuperAdmin))
	assert.Equal(t, []string{
		"/dashboard", "/appointments", "/clients", "/staff", "/services",
		"/memberships", "/locations", "/settings/payments", "/stripe-connect",
	}, PermittedPaths(model.RoleClinicAdmin))
	assert.Equal(t, []string{"/dashboard", "/appointments", "/clients"},
		PermittedPaths(model.RoleStaff))
	assert.Equal(t, []string{"/portal", "/portal/appointments", "/portal/memberships"},
		PermittedPaths(model.RolePatient))
}

func TestEachRoleSeesExactlyItsRoutes(t *testing.T) {
	for _, role := range model.Roles {
		permitted := map[string]bool{}
		for _, p := range PermittedPaths(role) {
			permitted[p] = true
		}

		for _, r := range Routes() {
			if r.Public {
				continue
			}
			d := Decide(principal(role), r.Path)
			if permitted[r.Path] {
				assert.Equal(t, ActionAllow, d.Action, "%s %s", role, r.Path)
			} else {
				assert.Equal(t, ActionRedirect, d.Action, "%s %s", role, r.Path)
				assert.Equal(t, Home(role), d.Location, "%s %s", role, r.Path)
			}
		}

		for _, nav := range Navigation(role) {
			assert.True(t, permitted[nav.Path], "%s nav %s", role, nav.Path)
		}
	}
}

func TestAuthenticatedUsersLeaveLoginAndUnknownRoutes(t *testing.T) {
	d := Decide(principal(model.RolePatient), "/login")
	assert.Equal(t, Decision{Action: ActionRedirect, Location: "/portal", Reason: "already authenticated"}, d)

	d = Decide(principal(model.RoleStaff), "/nowhere")
	assert.Equal(t, "/dashboard", d.Location)

	assert.Equal(t, ActionAllow, Decide(principal(model.RoleStaff), "/c/glow-spa").Action)
	assert.Equal(t, ActionAllow, Decide(principal(model.RoleClinicAdmin), "/dashboard/").Action)
}

func TestHome(t *testing.T) {
	assert.Equal(t, "/admin", Home(model.RoleSuperAdmin))
	assert.Equal(t, "/dashboard", Home(model.RoleClinicAdmin))
	assert.Equal(t, "/dashboard", Home(model.RoleStaff))
	assert.Equal(t, "/portal", Home(model.RolePatient))
	assert.Equal(t, LoginPath, Home("ghost"))
}
