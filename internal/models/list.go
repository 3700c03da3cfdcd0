package models

// ShoppingList is a shared list that household members add items to.
// A list accepts new items and orders only while IsActive is true;
// archiving (IsActive=false) freezes it and makes it eligible for billing.
type ShoppingList struct {
	// ID is the unique identifier for the list (UUID format).
	ID string

	// Name is the display name (e.g., "Wocheneinkauf", "Grillparty").
	Name string

	// Notes is an optional free-text annotation.
	Notes string

	// IsActive reports whether the list still accepts items.
	// Archived lists are the input to billing.
	IsActive bool

	// ManagedBy is the profile ID of the member who manages the list.
	ManagedBy string

	// CreatedAt is the Unix timestamp when the list was created.
	CreatedAt int64
}

// ListItem is one line of "product X, qty Y" on a list. Multiple items for
// the same product within one list are permitted and never merged: they
// represent distinct batches added by (possibly) different orderers.
type ListItem struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// ListID references the owning shopping list.
	ListID string

	// ProductID references the catalog product.
	ProductID string

	// OrderID references the batch (Order) this line was added with.
	OrderID string

	// Quantity is a positive integer, clamped to 1..9999 on entry.
	Quantity int

	// Note is an optional free-text annotation for this line.
	Note string

	// AddedAt is the Unix timestamp when the item was added.
	AddedAt int64

	// IsBought marks the line as picked up during shopping.
	IsBought bool
}

// ItemRow is a denormalized list item as served by the composite view:
// the item joined with its product's name, category and price and with the
// orderer name of the batch it belongs to. The billing aggregation consumes
// these rows atomically so it never observes a partially joined state.
type ItemRow struct {
	ListItemID  string
	ListID      string
	ProductID   string
	Quantity    int
	Note        string
	AddedAt     int64
	IsBought    bool
	ProductName string
	Unit        string
	Category    string
	Price       float64
	Currency    string
	OrderedBy   string
}
