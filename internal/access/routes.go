// Package access holds the console's route protection table.
//
// Protection is a static lookup: each chi route pattern maps to the
// roles allowed to open it. The remote API enforces the real policy;
// this table only keeps users out of screens they cannot use.
package access

// Role is a role string as issued by the remote API.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is a role the console knows.
func (r Role) Valid() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

var (
	superOnly = []Role{RoleSuperAdmin}
	adminOnly = []Role{RoleAdmin}
)

// Routes maps route patterns to allowed roles. Patterns absent from the
// table are open to any signed-in user.
var Routes = map[string][]Role{
	"/super/dashboard":            superOnly,
	"/super/schools":              superOnly,
	"/super/schools/{id}":         superOnly,
	"/super/schools/{id}/delete":  superOnly,
	"/super/contacts":             superOnly,
	"/super/contacts/{id}/delete": superOnly,
	"/super/subscriptions":        superOnly,

	"/admin/dashboard":            adminOnly,
	"/admin/students":             adminOnly,
	"/admin/students/{id}":        adminOnly,
	"/admin/students/{id}/delete": adminOnly,
	"/admin/contents":             adminOnly,
	"/admin/contents/{id}":        adminOnly,
	"/admin/contents/{id}/delete": adminOnly,
	"/admin/contents/import":      adminOnly,
	"/admin/contents/export.xlsx": adminOnly,
	"/admin/contents/import-log":  adminOnly,
	"/admin/subscription":         adminOnly,
}

// Allowed reports whether role may open the route pattern.
func Allowed(pattern string, role Role) bool {
	roles, ok := Routes[pattern]
	if !ok {
		return role.Valid()
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// HomeFor returns the landing page of a role, or "" for unknown roles.
func HomeFor(role Role) string {
	switch role {
	case RoleSuperAdmin:
		return "/super/dashboard"
	case RoleAdmin:
		return "/admin/dashboard"
	default:
		return ""
	}
}
