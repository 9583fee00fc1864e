package models

// PermissionAll is the sentinel permission that grants everything.
const PermissionAll = "all"

// Console roles.
const (
	RoleAdmin     = "admin"
	RoleAnalyst   = "analyst"
	RoleDeveloper = "developer"
	RoleViewer    = "viewer"
)

// User is a console operator.
type User struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// HasPermission reports whether the user holds a permission. A nil user
// holds nothing; the "all" sentinel grants everything.
func (u *User) HasPermission(permission string) bool {
	if u == nil {
		return false
	}
	for _, p := range u.Permissions {
		if p == PermissionAll || p == permission {
			return true
		}
	}
	return false
}

// HasRole reports whether the user's role is among the given roles.
func (u *User) HasRole(roles ...string) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// DefaultPermissions returns the permission set granted to a role.
func DefaultPermissions(role string) []string {
	switch role {
	case RoleAdmin:
		return []string{PermissionAll}
	case RoleAnalyst:
		return []string{"alerts:read", "alerts:write", "cases:read", "cases:write", "stats:read"}
	case RoleDeveloper:
		return []string{"alerts:read", "cases:read", "stats:read", "tools:read"}
	default:
		return []string{"alerts:read", "stats:read"}
	}
}
