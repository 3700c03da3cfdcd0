package models

// BillingFlag records the settlement state of one payer on one list.
// At most one flag exists per (list, payer name) pair; writes go through
// upsert-on-conflict so concurrent toggles converge on a single row.
type BillingFlag struct {
	// ID is the unique identifier for the flag (UUID format).
	ID string

	// ListID references the (archived) shopping list being settled.
	ListID string

	// PayerName is the normalized payer name this flag applies to.
	PayerName string

	// IsPaid reports whether the payer has settled their share.
	IsPaid bool

	// UpdatedAt is the Unix timestamp of the last toggle.
	UpdatedAt int64
}

// Debt is a standalone ledger entry for money someone still owes,
// optionally traceable to the billing flag it was converted from.
type Debt struct {
	// ID is the unique identifier for the debt (UUID format).
	ID string

	// Name is the debtor's name.
	Name string

	// Amount is the outstanding amount in EUR.
	Amount float64

	// ListID optionally links back to the billed list.
	ListID string

	// PayerName optionally links back to the billing flag's payer.
	PayerName string

	// CreatedAt is the Unix timestamp when the entry was created.
	CreatedAt int64
}
