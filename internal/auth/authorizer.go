package auth

import "github.com/mkrause/hauslist/internal/models"

// Action is a guarded capability a member may attempt.
type Action string

const (
	// ActionManageLists covers creating, renaming, archiving and
	// deleting shopping lists.
	ActionManageLists Action = "manage_lists"

	// ActionDeleteProduct covers removing products from the catalog.
	ActionDeleteProduct Action = "delete_product"

	// ActionManageCatalog covers creating and editing products and
	// categories.
	ActionManageCatalog Action = "manage_catalog"
)

// Actor is the identity a request acts as.
type Actor struct {
	ID   string
	Name string
	Role models.Role
}

// IsAuthorized reports whether the actor may perform the action.
// Everything not listed here is open to every member; admin-only
// capabilities must be enumerated.
func IsAuthorized(actor Actor, action Action) bool {
	switch action {
	case ActionManageLists, ActionDeleteProduct, ActionManageCatalog:
		return actor.Role == models.RoleAdmin
	default:
		return true
	}
}
