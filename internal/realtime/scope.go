package realtime

import (
	"context"
	"fmt"
	"sync"
)

// Scope owns the in-memory rows of one (resource, filter) pair.
//
// Liveness is tracked with two monotonic stamps. The generation bumps
// whenever the scope is re-pointed (filter change) or closed; results
// stamped with an old generation are dropped, never applied (the UI
// navigated away). The sequence is issued per load; a result is applied
// only when its sequence is newer than the last applied one, so reloads
// take effect in issuance order even when they resolve out of order.
type Scope[T any] struct {
	mu         sync.Mutex
	gen        uint64
	nextSeq    uint64
	appliedSeq uint64
	rows       []T
}

// Stamp identifies one load attempt against one scope generation.
type Stamp struct {
	gen uint64
	seq uint64
}

// NewScope creates an empty scope.
func NewScope[T any]() *Scope[T] {
	return &Scope[T]{}
}

// BeginLoad issues a stamp for a load that is about to start.
func (s *Scope[T]) BeginLoad() Stamp {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	return Stamp{gen: s.gen, seq: s.nextSeq}
}

// ApplyResult replaces the scope's rows with a load result. It reports
// whether the result was applied; stale results (superseded generation,
// or an older load resolving after a newer one already applied) are
// discarded without touching state.
func (s *Scope[T]) ApplyResult(st Stamp, rows []T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.gen != s.gen || st.seq <= s.appliedSeq {
		return false
	}
	s.appliedSeq = st.seq
	s.rows = rows
	return true
}

// Rows returns a copy of the current rows.
func (s *Scope[T]) Rows() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.rows))
	copy(out, s.rows)
	return out
}

// Len returns the current row count.
func (s *Scope[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// Reset re-points the scope: rows are cleared, the generation bumps so
// in-flight loads and pending rollbacks of the old scope can no longer
// touch state.
func (s *Scope[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.appliedSeq = 0
	s.rows = nil
}

// Op is one optimistic mutation: a local update applied immediately,
// the remote call backing it, and the exact inverse of the local update
// for rollback. Update and Invert run under the scope lock, so
// concurrent mutations serialize their local effects and none are lost.
type Op[T any] struct {
	// Update applies the local change and returns the new rows.
	Update func(rows []T) []T

	// Invert undoes exactly what Update did, restoring the previous
	// value (not a default).
	Invert func(rows []T) []T

	// Remote performs the store mutation.
	Remote func(ctx context.Context) error
}

// Mutate runs one optimistic mutation: Update is applied synchronously,
// then Remote is issued. On remote failure the scope rolls back by
// applying Invert and the error is returned for user-facing surfacing.
// The rollback is skipped when the scope was re-pointed in the
// meantime; the discarded generation's state no longer exists.
func (s *Scope[T]) Mutate(ctx context.Context, op Op[T]) error {
	if op.Update == nil || op.Remote == nil {
		return fmt.Errorf("optimistic op requires Update and Remote")
	}

	s.mu.Lock()
	gen := s.gen
	s.rows = op.Update(s.rows)
	s.mu.Unlock()

	if err := op.Remote(ctx); err != nil {
		s.mu.Lock()
		if s.gen == gen && op.Invert != nil {
			s.rows = op.Invert(s.rows)
		}
		s.mu.Unlock()
		return fmt.Errorf("remote mutation failed: %w", err)
	}
	return nil
}
