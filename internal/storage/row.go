package storage

import (
	"fmt"
	"strconv"
	"strings"
)

// Row is one record as served by the store: column name to value.
// Values cross the driver boundary with loose types (SQLite in
// particular serves numerics from views as text), so access goes through
// the coercing getters below rather than raw type assertions.
type Row map[string]any

// String returns the named column as a string, or "" when absent/NULL.
func (r Row) String(column string) string {
	switch v := r[column].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Float returns the named column as a float64. Text representations
// ("2.50", with either decimal separator) are coerced; anything else
// yields 0.
func (r Row) Float(column string) float64 {
	switch v := r[column].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", "."), 64)
		if err != nil {
			return 0
		}
		return f
	case []byte:
		return Row{column: string(v)}.Float(column)
	default:
		return 0
	}
}

// Int returns the named column as an int, coercing floats and numeric
// text. Anything else yields 0.
func (r Row) Int(column string) int {
	switch v := r[column].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	case []byte:
		return Row{column: string(v)}.Int(column)
	default:
		return 0
	}
}

// Int64 returns the named column as an int64 (Unix timestamps).
func (r Row) Int64(column string) int64 {
	switch v := r[column].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Bool returns the named column as a bool. SQLite stores booleans as
// 0/1 integers; "true"/"false" text is accepted as well.
func (r Row) Bool(column string) bool {
	switch v := r[column].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case float64:
		return v != 0
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false
		}
		return b
	default:
		return false
	}
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// looseEqual compares two store values after normalizing driver types:
// []byte vs string, int vs int64, bool vs 0/1.
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	if na, aok := normalize(a); aok {
		if nb, bok := normalize(b); bok {
			return na == nb
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// normalize maps a store value onto a comparable canonical form:
// text to string, every numeric (and bool, which SQLite stores as 0/1)
// to float64.
func normalize(v any) (any, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case bool:
		if t {
			return float64(1), true
		}
		return float64(0), true
	default:
		return nil, false
	}
}
