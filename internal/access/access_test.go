package access

import (
	"testing"

	"github.com/iliyamo/quiz-event-console/internal/model"
)

func TestCanAccess(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		role    string
		allowed []string
		want    bool
	}{
		{"admin in admin-only", model.RoleAdmin, AdminOnly, true},
		{"moderator in admin-only", model.RoleModerator, AdminOnly, false},
		{"moderator in shared set", model.RoleModerator, AdminModerator, true},
		{"user in shared set", model.RoleUser, AdminModerator, false},
		{"empty allowed admits any role", model.RoleUser, AnyRole, true},
		{"empty role always fails", "", AnyRole, false},
		{"empty role fails closed set", "", AdminOnly, false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := CanAccess(tc.role, tc.allowed); got != tc.want {
				t.Errorf("CanAccess(%q, %v) = %v, want %v", tc.role, tc.allowed, got, tc.want)
			}
		})
	}
}

func TestMenuFor(t *testing.T) {
	t.Parallel()

	if got := len(MenuFor(model.RoleAdmin)); got != len(Menu) {
		t.Errorf("admin sees %d items, want the full menu (%d)", got, len(Menu))
	}

	mod := MenuFor(model.RoleModerator)
	if len(mod) != 5 {
		t.Fatalf("moderator sees %d items, want dashboard plus the 4 participant views", len(mod))
	}
	for _, item := range mod {
		if !CanAccess(model.RoleModerator, item.Roles) {
			t.Errorf("moderator menu leaked %q", item.Path)
		}
	}

	if got := MenuFor(model.RoleUser); len(got) != 1 || got[0].Path != "/admin" {
		t.Errorf("plain user should see only the dashboard, got %v", got)
	}

	if got := MenuFor(""); len(got) != 0 {
		t.Errorf("unauthenticated role must see nothing, got %v", got)
	}
}

func TestRolesForMatchesMenu(t *testing.T) {
	t.Parallel()

	for _, item := range Menu {
		roles := RolesFor(item.Path)
		if len(roles) != len(item.Roles) {
			t.Errorf("RolesFor(%q) drifted from the menu entry", item.Path)
		}
	}
	if RolesFor("/no-such-page") != nil {
		t.Error("unknown path must yield no role set")
	}
}
