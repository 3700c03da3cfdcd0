package realtime

import "context"

// InsertOp builds an optimistic append. The inverse removes the row
// again by key, so a failed remote insert leaves no phantom entry.
func InsertOp[T any](desc Descriptor[T], row T, remote func(ctx context.Context) error) Op[T] {
	key := desc.Key(row)
	return Op[T]{
		Update: func(rows []T) []T {
			return append(rows, row)
		},
		Invert: func(rows []T) []T {
			return removeByKey(desc, rows, key)
		},
		Remote: remote,
	}
}

// DeleteOp builds an optimistic removal. The removed row and its
// position are captured at update time, so rollback restores the exact
// previous value at the exact previous index.
func DeleteOp[T any](desc Descriptor[T], key string, remote func(ctx context.Context) error) Op[T] {
	var (
		removed   T
		removedAt = -1
	)
	return Op[T]{
		Update: func(rows []T) []T {
			for i, r := range rows {
				if desc.Key(r) == key {
					removed = r
					removedAt = i
					return append(rows[:i:i], rows[i+1:]...)
				}
			}
			return rows
		},
		Invert: func(rows []T) []T {
			if removedAt < 0 {
				return rows
			}
			at := removedAt
			if at > len(rows) {
				at = len(rows)
			}
			out := make([]T, 0, len(rows)+1)
			out = append(out, rows[:at]...)
			out = append(out, removed)
			out = append(out, rows[at:]...)
			return out
		},
		Remote: remote,
	}
}

// UpdateOp builds an optimistic in-place edit of the row with the given
// key. apply must return the edited copy; the pre-edit value is saved
// for rollback.
func UpdateOp[T any](desc Descriptor[T], key string, apply func(T) T, remote func(ctx context.Context) error) Op[T] {
	var (
		prev     T
		prevSeen bool
	)
	return Op[T]{
		Update: func(rows []T) []T {
			for i, r := range rows {
				if desc.Key(r) == key {
					prev = r
					prevSeen = true
					rows[i] = apply(r)
					break
				}
			}
			return rows
		},
		Invert: func(rows []T) []T {
			if !prevSeen {
				return rows
			}
			for i, r := range rows {
				if desc.Key(r) == key {
					rows[i] = prev
					break
				}
			}
			return rows
		},
		Remote: remote,
	}
}

func removeByKey[T any](desc Descriptor[T], rows []T, key string) []T {
	for i, r := range rows {
		if desc.Key(r) == key {
			return append(rows[:i:i], rows[i+1:]...)
		}
	}
	return rows
}
