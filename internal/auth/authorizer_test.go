package auth

import (
	"testing"

	"github.com/mkrause/hauslist/internal/models"
)

func TestIsAuthorized(t *testing.T) {
	admin := Actor{ID: "a1", Role: models.RoleAdmin}
	member := Actor{ID: "m1", Role: models.RoleUser}

	tests := []struct {
		name   string
		actor  Actor
		action Action
		want   bool
	}{
		{"admin manages lists", admin, ActionManageLists, true},
		{"member cannot manage lists", member, ActionManageLists, false},
		{"admin deletes products", admin, ActionDeleteProduct, true},
		{"member cannot delete products", member, ActionDeleteProduct, false},
		{"admin manages catalog", admin, ActionManageCatalog, true},
		{"member cannot manage catalog", member, ActionManageCatalog, false},
		{"unlisted actions are open to members", member, Action("toggle_bought"), true},
		{"missing role gets no admin powers", Actor{}, ActionManageLists, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthorized(tt.actor, tt.action); got != tt.want {
				t.Errorf("IsAuthorized(%v, %q) = %v, want %v", tt.actor.Role, tt.action, got, tt.want)
			}
		})
	}
}
