package models

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderOpen   OrderStatus = "open"
	OrderClosed OrderStatus = "closed"
)

// Order is a named purchasing event: one batch-add action by one orderer.
// An order is always inserted fresh per batch, never upserted, so that two
// batches by the same orderer stay attributable as two purchases.
type Order struct {
	// ID is the unique identifier for the order (UUID format).
	ID string

	// ListID references the shopping list the batch was added to.
	ListID string

	// CreatedBy is the profile ID of the member who placed the batch.
	CreatedBy string

	// OrderedByName is the free-text name of the ordering person. It is
	// the billing grouping key, kept as entered (trimmed only).
	OrderedByName string

	// Status is open until the purchase is completed.
	Status OrderStatus

	// TotalAmount is the order total, filled in when the order closes.
	TotalAmount float64

	// Currency is the ISO currency code of TotalAmount.
	Currency string

	// PurchasedAt is the Unix timestamp of purchase, 0 while open.
	PurchasedAt int64

	// CreatedAt is the Unix timestamp when the batch was added.
	CreatedAt int64
}
