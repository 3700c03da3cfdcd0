package models

// Category groups catalog products (e.g., "Getränke", "Käse").
// Categories can be exempted from billing totals by household policy
// (the "Extra" category by default); see internal/views.
type Category struct {
	// ID is the unique identifier for the category (UUID format).
	ID string

	// Name is the display name, unique per household.
	Name string
}

// Product is a globally owned catalog entry, not tied to any list.
// Products are soft-deactivated rather than deleted so historical list
// items keep a valid reference.
type Product struct {
	// ID is the unique identifier for the product (UUID format).
	ID string

	// Name is the display name (e.g., "Cola", "Käse", "Brot").
	Name string

	// Unit is the purchasable unit (e.g., "Flasche", "kg").
	Unit string

	// Price is the unit price. The store may serve this as text; the
	// loader coerces it to a number before any arithmetic.
	Price float64

	// Currency is the ISO currency code, defaulting to EUR.
	Currency string

	// CategoryID references the product's category.
	CategoryID string

	// IsActive reports whether the product is offered for new batches.
	IsActive bool

	// CreatedAt is the Unix timestamp when the product was created.
	CreatedAt int64
}
