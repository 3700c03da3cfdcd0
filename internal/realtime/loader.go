package realtime

import (
	"context"
	"fmt"

	"github.com/mkrause/hauslist/internal/storage"
)

// Descriptor describes how one resource maps onto typed rows.
// Composite projections (view-backed reads) are descriptors like any
// other: the store serves the joined rows atomically, so consumers
// never observe a partially joined state.
type Descriptor[T any] struct {
	// Resource is the store resource name (table or view).
	Resource string

	// Columns restricts the read; empty selects everything.
	Columns []string

	// Decode converts one store row into the typed value. It uses the
	// coercing Row getters, so numerics served as text come out as
	// numbers.
	Decode func(storage.Row) T

	// Key extracts the row identity, used to match optimistic updates
	// against rows.
	Key func(T) string
}

// Loader fetches one resource and normalizes the result.
type Loader[T any] struct {
	client storage.Client
	desc   Descriptor[T]
}

// NewLoader creates a loader for the described resource.
func NewLoader[T any](client storage.Client, desc Descriptor[T]) *Loader[T] {
	return &Loader[T]{client: client, desc: desc}
}

// Load reads matching rows in the given order. An IN filter over an
// empty set short-circuits to an empty result instead of issuing a
// degenerate query.
func (l *Loader[T]) Load(ctx context.Context, filters []storage.Filter, order *storage.Order) ([]T, error) {
	for _, f := range filters {
		if f.Op == storage.OpIn && len(f.Values) == 0 {
			return nil, nil
		}
	}

	rows, err := l.client.Select(ctx, l.desc.Resource, l.desc.Columns, filters, order)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", l.desc.Resource, err)
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		out = append(out, l.desc.Decode(row))
	}
	return out, nil
}
