package sqlite

// resource describes one resource the store serves. Every identifier
// that reaches SQL text is validated against this registry; values go
// through placeholders.
type resource struct {
	// columns lists every selectable column, in stable order.
	columns []string

	// readOnly marks views: selectable and subscribable, never mutated.
	readOnly bool

	// autoTimestamp names a column filled with the current Unix time
	// on insert (and on upsert updates for updated_at) when the caller
	// did not provide one.
	autoTimestamp string
}

// resources is the schema registry. Resource names double as table/view
// names; keep them in sync with migrations.go.
var resources = map[string]resource{
	"profiles": {
		columns:       []string{"id", "display_name", "email", "password_hash", "role", "created_at"},
		autoTimestamp: "created_at",
	},
	"categories": {
		columns: []string{"id", "name"},
	},
	"products": {
		columns:       []string{"id", "name", "unit", "price", "currency_code", "category_id", "is_active", "created_at"},
		autoTimestamp: "created_at",
	},
	"shopping_lists": {
		columns:       []string{"id", "name", "notes", "is_active", "managed_by_profile_id", "created_at"},
		autoTimestamp: "created_at",
	},
	"orders": {
		columns:       []string{"id", "list_id", "created_by_profile_id", "ordered_by_name", "status", "total_amount", "currency_code", "purchased_at", "created_at"},
		autoTimestamp: "created_at",
	},
	"list_items": {
		columns:       []string{"id", "list_id", "product_id", "order_id", "quantity", "note", "added_at", "is_bought"},
		autoTimestamp: "added_at",
	},
	"billing_flags": {
		columns:       []string{"id", "list_id", "payer_name", "is_paid", "updated_at"},
		autoTimestamp: "updated_at",
	},
	"debts": {
		columns:       []string{"id", "name", "amount", "list_id", "payer_name", "created_at"},
		autoTimestamp: "created_at",
	},
	"v_list_items_with_order": {
		columns: []string{"list_item_id", "list_id", "product_id", "quantity", "note", "added_at", "is_bought",
			"product_name", "unit", "price", "currency_code", "category_name", "ordered_by_name"},
		readOnly: true,
	},
}

// hasColumn reports whether the resource serves the named column.
func (r resource) hasColumn(name string) bool {
	for _, c := range r.columns {
		if c == name {
			return true
		}
	}
	return false
}
