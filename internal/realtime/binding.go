package realtime

import (
	"context"

	"github.com/mkrause/hauslist/internal/storage"
)

// Binding wires one Descriptor to one live scope: it loads rows, keeps
// them fresh via debounced change-driven reloads, and runs optimistic
// mutations against them. Create bindings with Bind; re-point them with
// SetScope as the user navigates.
type Binding[T any] struct {
	sess   *Session
	desc   Descriptor[T]
	loader *Loader[T]
	scope  *Scope[T]
	key    string

	filters []storage.Filter
	order   *storage.Order
	watches []WatchSpec

	onRows  func([]T)
	onError func(error)
}

// Bind creates an unpointed binding for desc. Nothing loads until
// SetScope is called.
func Bind[T any](sess *Session, desc Descriptor[T]) *Binding[T] {
	return &Binding[T]{
		sess:   sess,
		desc:   desc,
		loader: NewLoader(sess.client, desc),
		scope:  NewScope[T](),
		key:    sess.nextBindingKey(desc.Resource),
	}
}

// OnRows registers the callback invoked with a fresh row snapshot after
// every applied load. It fires on the goroutine that completed the
// load.
func (b *Binding[T]) OnRows(fn func([]T)) { b.onRows = fn }

// OnError registers the callback invoked when a reload fails. Failed
// reloads keep the previous rows in place.
func (b *Binding[T]) OnError(fn func(error)) { b.onError = fn }

// SetScope points the binding at a new (filter, order) pair and a set
// of change streams to watch. The old scope's pending work is
// invalidated, subscriptions are swapped, and an initial load runs. A
// watch failure is reported through OnError but does not prevent the
// load; the binding then behaves as a one-shot query.
func (b *Binding[T]) SetScope(ctx context.Context, filters []storage.Filter, order *storage.Order, watches []WatchSpec) {
	b.sess.debouncer.Cancel(b.key)
	b.scope.Reset()
	b.filters = filters
	b.order = order
	b.watches = watches

	if len(watches) > 0 {
		if err := b.sess.manager.Watch(b.key, watches, b.onChange); err != nil {
			b.sess.logger.Warn("failed to watch changes, falling back to one-shot load",
				"binding", b.key, "error", err)
			b.reportError(err)
		}
	} else {
		b.sess.manager.Unwatch(b.key)
	}

	b.Reload(ctx)
}

// Reload fetches the scope's rows once, applying the result only if it
// is still the newest for the current scope.
func (b *Binding[T]) Reload(ctx context.Context) {
	st := b.scope.BeginLoad()
	rows, err := b.loader.Load(ctx, b.filters, b.order)
	if err != nil {
		b.sess.metrics.IncReloadError(b.desc.Resource)
		b.sess.logger.Error("failed to load rows", "binding", b.key, "error", err)
		b.reportError(err)
		return
	}
	b.sess.metrics.IncReload(b.desc.Resource)
	if !b.scope.ApplyResult(st, rows) {
		b.sess.metrics.IncStaleDropped()
		return
	}
	if b.onRows != nil {
		b.onRows(b.scope.Rows())
	}
}

// Rows returns a copy of the binding's current rows.
func (b *Binding[T]) Rows() []T { return b.scope.Rows() }

// Mutate runs an optimistic op against the binding's scope. On remote
// failure the local change is rolled back and the error returned.
func (b *Binding[T]) Mutate(ctx context.Context, op Op[T]) error {
	err := b.scope.Mutate(ctx, op)
	if err != nil {
		b.sess.metrics.IncRollback(b.desc.Resource)
		b.reportError(err)
	}
	if b.onRows != nil {
		b.onRows(b.scope.Rows())
	}
	return err
}

// MutateInsert optimistically appends row and issues the remote call.
func (b *Binding[T]) MutateInsert(ctx context.Context, row T, remote func(context.Context) error) error {
	return b.Mutate(ctx, InsertOp(b.desc, row, remote))
}

// MutateDelete optimistically removes the row with the given key.
func (b *Binding[T]) MutateDelete(ctx context.Context, key string, remote func(context.Context) error) error {
	return b.Mutate(ctx, DeleteOp(b.desc, key, remote))
}

// MutateUpdate optimistically edits the row with the given key.
func (b *Binding[T]) MutateUpdate(ctx context.Context, key string, apply func(T) T, remote func(context.Context) error) error {
	return b.Mutate(ctx, UpdateOp(b.desc, key, apply, remote))
}

// Close detaches the binding: pending reloads are cancelled, the change
// streams closed, and the scope invalidated so late results fall on the
// floor.
func (b *Binding[T]) Close() {
	b.sess.debouncer.Cancel(b.key)
	b.sess.manager.Unwatch(b.key)
	b.scope.Reset()
}

// onChange is the subscription callback. It only schedules; the reload
// runs after the debounce window so event bursts collapse into one
// fetch.
func (b *Binding[T]) onChange(ev storage.Event) {
	b.sess.metrics.IncChangeEvent(ev.Resource)
	b.sess.debouncer.Schedule(b.key, func() {
		b.sess.metrics.IncFlush(b.desc.Resource)
		b.Reload(b.sess.ctx)
	})
}

func (b *Binding[T]) reportError(err error) {
	if b.onError != nil {
		b.onError(err)
	}
}
