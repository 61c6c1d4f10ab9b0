// Package access decides, per route and per menu affordance, whether a
// role may view or act. Both the router and the menu consume the same
// specs through the same predicate, so a navigable item can never lead
// to a page its role cannot open.
package access

import "github.com/iliyamo/quiz-event-console/internal/model"

// Role sets shared by route registration and menu filtering.
var (
	// AnyRole admits every authenticated role.
	AnyRole []string
	// AdminOnly restricts to administrators.
	AdminOnly = []string{model.RoleAdmin}
	// AdminModerator covers the participant views shared between the
	// two staff roles.
	AdminModerator = []string{model.RoleAdmin, model.RoleModerator}
	// AllRoles spells out the dashboard audience explicitly.
	AllRoles = []string{model.RoleAdmin, model.RoleModerator, model.RoleCoordinator, model.RoleUser}
)

// CanAccess reports whether role may use an affordance restricted to
// allowed. An empty allowed set means any authenticated role may
// enter; an empty role always fails.
func CanAccess(role string, allowed []string) bool {
	if role == "" {
		return false
	}
	if len(allowed) == 0 {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// MenuItem is one sidebar entry. Items whose roles exclude the current
// operator are omitted from the rendered menu, not disabled.
type MenuItem struct {
	Label string   `json:"label"`
	Path  string   `json:"path"`
	Roles []string `json:"-"`
}

// Menu is the full sidebar in display order. The Roles slices are the
// same values the router registers for the matching paths.
var Menu = []MenuItem{
	{Label: "Dashboard", Path: "/admin", Roles: AllRoles},
	{Label: "Schools", Path: "/schools", Roles: AdminOnly},
	{Label: "CSV Import", Path: "/admin/bulk", Roles: AdminOnly},
	{Label: "Results", Path: "/results", Roles: AdminOnly},
	{Label: "Users", Path: "/users", Roles: AdminOnly},
	{Label: "All Participants", Path: "/participants/all", Roles: AdminModerator},
	{Label: "Pending", Path: "/participants/pending", Roles: AdminModerator},
	{Label: "Verified", Path: "/participants/verified", Roles: AdminModerator},
	{Label: "Inactive", Path: "/participants/inactive", Roles: AdminModerator},
}

// MenuFor filters the sidebar down to what the role may open.
func MenuFor(role string) []MenuItem {
	items := make([]MenuItem, 0, len(Menu))
	for _, item := range Menu {
		if CanAccess(role, item.Roles) {
			items = append(items, item)
		}
	}
	return items
}

// RolesFor returns the allowed-role set registered for a menu path.
// Used by the router so route gating cannot drift from the menu.
func RolesFor(path string) []string {
	for _, item := range Menu {
		if item.Path == path {
			return item.Roles
		}
	}
	return nil
}
