package realtime

import (
	"context"
	"errors"
	"testing"

	"github.com/mkrause/hauslist/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	ID     string
	Name   string
	Bought bool
}

var testDesc = Descriptor[testItem]{
	Resource: "list_items",
	Decode: func(r storage.Row) testItem {
		return testItem{ID: r.String("id"), Name: r.String("name"), Bought: r.Bool("is_bought")}
	},
	Key: func(it testItem) string { return it.ID },
}

func TestInsertOpRollbackRemovesRow(t *testing.T) {
	s := NewScope[testItem]()
	st := s.BeginLoad()
	require.True(t, s.ApplyResult(st, []testItem{{ID: "a"}}))

	op := InsertOp(testDesc, testItem{ID: "b"}, func(context.Context) error {
		return errors.New("boom")
	})
	require.Error(t, s.Mutate(context.Background(), op))
	assert.Equal(t, []testItem{{ID: "a"}}, s.Rows())
}

func TestDeleteOpRollbackRestoresPosition(t *testing.T) {
	s := NewScope[testItem]()
	st := s.BeginLoad()
	require.True(t, s.ApplyResult(st, []testItem{{ID: "a"}, {ID: "b"}, {ID: "c"}}))

	op := DeleteOp(testDesc, "b", func(context.Context) error {
		return errors.New("boom")
	})
	require.Error(t, s.Mutate(context.Background(), op))

	got := s.Rows()
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[1].ID, "the deleted row returns to its old index")
}

func TestUpdateOpRollbackRestoresPriorValue(t *testing.T) {
	s := NewScope[testItem]()
	st := s.BeginLoad()
	require.True(t, s.ApplyResult(st, []testItem{{ID: "a", Name: "Milch", Bought: true}}))

	op := UpdateOp(testDesc, "a", func(it testItem) testItem {
		it.Bought = false
		return it
	}, func(context.Context) error {
		return errors.New("boom")
	})
	require.Error(t, s.Mutate(context.Background(), op))
	assert.True(t, s.Rows()[0].Bought)
	assert.Equal(t, "Milch", s.Rows()[0].Name)
}

// Two rapid toggles of the same flag where the second remote call fails:
// the rollback must restore the value the second toggle saw, leaving the
// first toggle's effect intact.
func TestSequentialTogglesSecondFails(t *testing.T) {
	s := NewScope[testItem]()
	st := s.BeginLoad()
	require.True(t, s.ApplyResult(st, []testItem{{ID: "a", Bought: false}}))

	toggle := func(fail bool) error {
		return s.Mutate(context.Background(), UpdateOp(testDesc, "a",
			func(it testItem) testItem {
				it.Bought = !it.Bought
				return it
			},
			func(context.Context) error {
				if fail {
					return errors.New("boom")
				}
				return nil
			}))
	}

	require.NoError(t, toggle(false))
	assert.True(t, s.Rows()[0].Bought)

	require.Error(t, toggle(true))
	assert.True(t, s.Rows()[0].Bought, "failed second toggle rolls back to the first toggle's result")
}

func TestUpdateOpUnknownKeyIsNoop(t *testing.T) {
	s := NewScope[testItem]()
	st := s.BeginLoad()
	require.True(t, s.ApplyResult(st, []testItem{{ID: "a"}}))

	op := UpdateOp(testDesc, "missing", func(it testItem) testItem {
		it.Name = "changed"
		return it
	}, func(context.Context) error { return errors.New("boom") })
	require.Error(t, s.Mutate(context.Background(), op))
	assert.Equal(t, []testItem{{ID: "a"}}, s.Rows())
}
