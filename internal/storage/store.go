// Package storage defines the remote store contract the sync engine
// consumes.
//
// The store is the single source of truth arbitrating all concurrent
// writers. Clients issue reads and mutations against named resources
// (tables or read-only views) and may open change-notification
// subscriptions per resource. This abstraction allows swapping backends
// (the bundled SQLite implementation, a hosted Postgres, ...) without
// changing the engine or the services.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a single-row read matches nothing.
	ErrNotFound = errors.New("row not found")

	// ErrUnknownResource is returned for a resource name the backend
	// does not serve.
	ErrUnknownResource = errors.New("unknown resource")

	// ErrReadOnlyResource is returned when a mutation targets a
	// read-only resource such as a view.
	ErrReadOnlyResource = errors.New("resource is read-only")

	// ErrClosed is returned after the client has been closed.
	ErrClosed = errors.New("store is closed")
)

// Client is the remote store boundary. All methods are safe for
// concurrent use. Mutations report the affected rows so callers can
// reconcile optimistic state against what the store actually wrote.
type Client interface {
	// Select reads rows from a resource. An empty columns slice selects
	// every column the resource serves.
	Select(ctx context.Context, resource string, columns []string, filters []Filter, order *Order) ([]Row, error)

	// Insert writes the given rows and returns them as stored
	// (IDs and timestamps filled in).
	Insert(ctx context.Context, resource string, rows []Row) ([]Row, error)

	// Update applies patch to every row matching filters and returns the
	// updated rows.
	Update(ctx context.Context, resource string, patch Row, filters []Filter) ([]Row, error)

	// Upsert inserts row or, on a conflict over conflictColumns, updates
	// the existing row. Returns the resulting row.
	Upsert(ctx context.Context, resource string, row Row, conflictColumns []string) (Row, error)

	// Delete removes every row matching filters.
	Delete(ctx context.Context, resource string, filters []Filter) error

	// SubscribeChanges opens a change feed for a resource. fn is invoked
	// once per changed row; bursts are expected and must be coalesced by
	// the caller (see the sync engine's debouncer). Only Eq filters are
	// honored for event matching.
	SubscribeChanges(resource string, filters []Filter, fn ChangeFunc) (Subscription, error)

	// Close releases any resources held by the client.
	Close() error
}

// Subscription is a live change feed handle.
type Subscription interface {
	// Close tears the subscription down. Safe to call more than once.
	Close() error
}

// ChangeFunc receives one change event. It must not block: the store
// delivers events synchronously with the mutation that caused them.
type ChangeFunc func(Event)

// EventKind classifies a change event.
type EventKind string

const (
	EventInsert EventKind = "insert"
	EventUpdate EventKind = "update"
	EventDelete EventKind = "delete"
)

// Event is a per-row change notification.
type Event struct {
	// Resource is the name of the changed resource.
	Resource string

	// Kind is the type of change.
	Kind EventKind

	// Row is the changed row: the new values for inserts and updates,
	// the last known values for deletes.
	Row Row
}
