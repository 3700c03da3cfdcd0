package storage

// FilterOp is a comparison operator usable in a Filter.
type FilterOp string

const (
	OpEq  FilterOp = "eq"
	OpNeq FilterOp = "neq"
	OpIn  FilterOp = "in"
)

// Filter restricts a read, mutation or subscription to matching rows.
type Filter struct {
	Column string
	Op     FilterOp

	// Value holds the comparison operand for OpEq and OpNeq.
	Value any

	// Values holds the operand set for OpIn. An empty set matches
	// nothing; readers are expected to short-circuit instead of issuing
	// a degenerate IN () query.
	Values []any
}

// Eq matches rows whose column equals value.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

// Neq matches rows whose column does not equal value.
func Neq(column string, value any) Filter {
	return Filter{Column: column, Op: OpNeq, Value: value}
}

// In matches rows whose column equals any of values.
func In(column string, values ...any) Filter {
	return Filter{Column: column, Op: OpIn, Values: values}
}

// Order describes a sort over a single column.
type Order struct {
	Column     string
	Descending bool
}

// Asc sorts ascending by column.
func Asc(column string) *Order {
	return &Order{Column: column}
}

// Desc sorts descending by column.
func Desc(column string) *Order {
	return &Order{Column: column, Descending: true}
}

// Matches reports whether row satisfies every Eq filter in filters.
// Non-Eq filters are ignored: change subscriptions only narrow by
// equality (e.g., "list_items of this list").
func Matches(row Row, filters []Filter) bool {
	for _, f := range filters {
		if f.Op != OpEq {
			continue
		}
		if !looseEqual(row[f.Column], f.Value) {
			return false
		}
	}
	return true
}
