// Package access holds the table of client routes and the roles allowed to
// open them. The API gates use the same role sets.
package access

import (
	"strings"

	"github.com/jwalitptl/aesthiq-api/internal/model"
)

const (
	LoginPath    = "/login"
	RegisterPath = "/register"
	SetupPath    = "/settings/payments"
)

// Route is one client page.
type Route struct {
	Path   string       `json:"path"`
	Label  string       `json:"label"`
	Roles  []model.Role `json:"-"`
	Public bool         `json:"-"`
	// Nav marks routes listed in the navigation menu.
	Nav bool `json:"-"`
}

var routes = []Route{
	{Path: LoginPath, Label: "Sign in", Public: true},
	{Path: RegisterPath, Label: "Create account", Public: true},
	{Path: "/c/:slug", Label: "Book", Public: true},

	{Path: "/admin", Label: "Overview", Roles: roles(model.RoleSuperAdmin), Nav: true},
	{Path: "/admin/organizations", Label: "Organizations", Roles: roles(model.RoleSuperAdmin), Nav: true},
	{Path: "/admin/plans", Label: "Plans", Roles: roles(model.RoleSuperAdmin), Nav: true},

	{Path: "/dashboard", Label: "Dashboard", Roles: roles(model.RoleClinicAdmin, model.RoleStaff), Nav: true},
	{Path: "/appointments", Label: "Appointments", Roles: roles(model.RoleClinicAdmin, model.RoleStaff), Nav: true},
	{Path: "/clients", Label: "Clients", Roles: roles(model.RoleClinicAdmin, model.RoleStaff), Nav: true},
	{Path: "/staff", Label: "Staff", Roles: roles(model.RoleClinicAdmin), Nav: true},
	{Path: "/services", Label: "Services", Roles: roles(model.RoleClinicAdmin), Nav: true},
	{Path: "/memberships", Label: "Memberships", Roles: roles(model.RoleClinicAdmin), Nav: true},
	{Path: "/locations", Label: "Locations", Roles: roles(model.RoleClinicAdmin), Nav: true},
	{Path: SetupPath, Label: "Payments", Roles: roles(model.RoleClinicAdmin), Nav: true},
	{Path: "/stripe-connect", Label: "Stripe Connect", Roles: roles(model.RoleClinicAdmin)},

	{Path: "/portal", Label: "Home", Roles: roles(model.RolePatient), Nav: true},
	{Path: "/portal/appointments", Label: "My appointments", Roles: roles(model.RolePatient), Nav: true},
	{Path: "/portal/memberships", Label: "Memberships", Roles: roles(model.RolePatient), Nav: true},
}

var homes = map[model.Role]string{
	model.RoleSuperAdmin:  "/admin",
	model.RoleClinicAdmin: "/dashboard",
	model.RoleStaff:       "/dashboard",
	model.RolePatient:     "/portal",
}

func roles(r ...model.Role) []model.Role { return r }

// Home is the landing page of a role; unknown roles land on the login page.
func Home(role model.Role) string {
	if home, ok := homes[role]; ok {
		return home
	}
	return LoginPath
}

// Routes returns a copy of the full route table.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Lookup finds the route serving path, matching ":param" segments.
func Lookup(path string) (Route, bool) {
	path = normalize(path)
	for _, r := range routes {
		if match(r.Path, path) {
			return r, true
		}
	}
	return Route{}, false
}

// Allowed reports whether role may open r.
func (r Route) Allowed(role model.Role) bool {
	if r.Public {
		return true
	}
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// PermittedPaths lists the gated routes a role can open, in table order.
func PermittedPaths(role model.Role) []string {
	var paths []string
	for _, r := range routes {
		if !r.Public && r.Allowed(role) {
			paths = append(paths, r.Path)
		}
	}
	return paths
}

// Navigation returns the menu entries of a role.
func Navigation(role model.Role) []Route {
	nav := []Route{}
	for _, r := range routes {
		if r.Nav && r.Allowed(role) {
			nav = append(nav, r)
		}
	}
	return nav
}

type Action string

const (
	ActionAllow    Action = "allow"
	ActionRedirect Action = "redirect"
)

type Decision struct {
	Action   Action `json:"action"`
	Location string `json:"location,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Decide chooses what happens when principal (nil when anonymous) opens path.
func Decide(principal *model.Principal, path string) Decision {
	route, known := Lookup(path)

	if principal == nil {
		if known && route.Public {
			return Decision{Action: ActionAllow}
		}
		return Decision{Action: ActionRedirect, Location: LoginPath, Reason: "not authenticated"}
	}

	home := Home(principal.Role)
	switch {
	case !known:
		return Decision{Action: ActionRedirect, Location: home, Reason: "unknown route"}
	case route.Path == LoginPath || route.Path == RegisterPath:
		return Decision{Action: ActionRedirect, Location: home, Reason: "already authenticated"}
	case !route.Allowed(principal.Role):
		return Decision{Action: ActionRedirect, Location: home, Reason: "role not permitted"}
	}
	return Decision{Action: ActionAllow}
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

func match(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(xs) {
		return false
	}
	for i := range ps {
		if strings.HasPrefix(ps[i], ":") {
			if xs[i] == "" {
				return false
			}
			continue
		}
		if ps[i] != xs[i] {
			return false
		}
	}
	return true
}
