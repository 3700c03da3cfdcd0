package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mkrause/hauslist/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, client storage.Client, window time.Duration) *Session {
	t.Helper()
	sess := NewSession(client, Options{DebounceWindow: window})
	t.Cleanup(sess.Close)
	return sess
}

func itemRows(ids ...string) []storage.Row {
	out := make([]storage.Row, 0, len(ids))
	for _, id := range ids {
		out = append(out, storage.Row{"id": id, "list_id": "l1", "name": id, "is_bought": false})
	}
	return out
}

func TestBindingInitialLoad(t *testing.T) {
	client := newFakeClient()
	client.setRows("list_items", itemRows("milk", "bread"))
	sess := newTestSession(t, client, 10*time.Millisecond)

	b := Bind(sess, testDesc)
	b.SetScope(context.Background(), []storage.Filter{storage.Eq("list_id", "l1")}, nil, nil)

	got := b.Rows()
	require.Len(t, got, 2)
	assert.Equal(t, "milk", got[0].ID)
}

func TestBindingReloadsOnChangeEvent(t *testing.T) {
	client := newFakeClient()
	client.setRows("list_items", itemRows("milk"))
	sess := newTestSession(t, client, 10*time.Millisecond)

	var mu sync.Mutex
	var snapshots [][]testItem
	b := Bind(sess, testDesc)
	b.OnRows(func(rows []testItem) {
		mu.Lock()
		snapshots = append(snapshots, rows)
		mu.Unlock()
	})
	b.SetScope(context.Background(),
		[]storage.Filter{storage.Eq("list_id", "l1")}, nil,
		[]WatchSpec{{Resource: "list_items", Filters: []storage.Filter{storage.Eq("list_id", "l1")}}})

	client.setRows("list_items", itemRows("milk", "eggs"))
	client.emit(storage.Event{Resource: "list_items", Kind: storage.EventInsert,
		Row: storage.Row{"id": "eggs", "list_id": "l1"}})

	assert.Eventually(t, func() bool { return len(b.Rows()) == 2 },
		time.Second, 5*time.Millisecond)
}

func TestBindingCoalescesEventBurst(t *testing.T) {
	client := newFakeClient()
	client.setRows("list_items", itemRows("milk"))
	sess := newTestSession(t, client, 30*time.Millisecond)

	b := Bind(sess, testDesc)
	b.SetScope(context.Background(),
		[]storage.Filter{storage.Eq("list_id", "l1")}, nil,
		[]WatchSpec{{Resource: "list_items", Filters: []storage.Filter{storage.Eq("list_id", "l1")}}})
	baseline := client.selectCount()

	for i := 0; i < 8; i++ {
		client.emit(storage.Event{Resource: "list_items", Kind: storage.EventUpdate,
			Row: storage.Row{"id": "milk", "list_id": "l1"}})
	}

	assert.Eventually(t, func() bool { return client.selectCount() == baseline+1 },
		time.Second, 5*time.Millisecond, "eight events inside the window mean one reload")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, baseline+1, client.selectCount())
}

func TestBindingIgnoresEventsForOtherScopes(t *testing.T) {
	client := newFakeClient()
	client.setRows("list_items", itemRows("milk"))
	sess := newTestSession(t, client, 10*time.Millisecond)

	b := Bind(sess, testDesc)
	b.SetScope(context.Background(),
		[]storage.Filter{storage.Eq("list_id", "l1")}, nil,
		[]WatchSpec{{Resource: "list_items", Filters: []storage.Filter{storage.Eq("list_id", "l1")}}})
	baseline := client.selectCount()

	client.emit(storage.Event{Resource: "list_items", Kind: storage.EventInsert,
		Row: storage.Row{"id": "x", "list_id": "other-list"}})

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, baseline, client.selectCount(), "filtered-out events schedule nothing")
}

func TestBindingSetScopeSwapsSubscriptions(t *testing.T) {
	client := newFakeClient()
	client.setRows("list_items", itemRows("milk"))
	sess := newTestSession(t, client, 10*time.Millisecond)

	b := Bind(sess, testDesc)
	watch := func(listID string) []WatchSpec {
		return []WatchSpec{{Resource: "list_items", Filters: []storage.Filter{storage.Eq("list_id", listID)}}}
	}
	b.SetScope(context.Background(), []storage.Filter{storage.Eq("list_id", "l1")}, nil, watch("l1"))
	require.Equal(t, 1, client.openSubs())

	b.SetScope(context.Background(), []storage.Filter{storage.Eq("list_id", "l2")}, nil, watch("l2"))
	assert.Equal(t, 1, client.openSubs(), "the old scope's feed is torn down before the new one opens")
}

// A row deleted while its change event is still debouncing: the flush
// reloads and the vanished row simply is not in the result.
func TestBindingDeleteDuringPendingDebounce(t *testing.T) {
	client := newFakeClient()
	client.setRows("list_items", itemRows("milk", "eggs"))
	sess := newTestSession(t, client, 40*time.Millisecond)

	b := Bind(sess, testDesc)
	b.SetScope(context.Background(),
		[]storage.Filter{storage.Eq("list_id", "l1")}, nil,
		[]WatchSpec{{Resource: "list_items", Filters: []storage.Filter{storage.Eq("list_id", "l1")}}})

	// An update event arms the debouncer...
	client.emit(storage.Event{Resource: "list_items", Kind: storage.EventUpdate,
		Row: storage.Row{"id": "eggs", "list_id": "l1"}})
	// ...and before it flushes, the row is deleted remotely.
	client.setRows("list_items", itemRows("milk"))
	client.emit(storage.Event{Resource: "list_items", Kind: storage.EventDelete,
		Row: storage.Row{"id": "eggs", "list_id": "l1"}})

	assert.Eventually(t, func() bool {
		rows := b.Rows()
		return len(rows) == 1 && rows[0].ID == "milk"
	}, time.Second, 5*time.Millisecond)
}

func TestBindingReloadFailureKeepsRows(t *testing.T) {
	client := newFakeClient()
	client.setRows("list_items", itemRows("milk"))
	sess := newTestSession(t, client, 10*time.Millisecond)

	var mu sync.Mutex
	var errs []error
	b := Bind(sess, testDesc)
	b.OnError(func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	})
	b.SetScope(context.Background(), []storage.Filter{storage.Eq("list_id", "l1")}, nil, nil)
	require.Len(t, b.Rows(), 1)

	client.failNext(errors.New("store unavailable"))
	b.Reload(context.Background())

	assert.Len(t, b.Rows(), 1, "a failed reload keeps the previous rows")
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, errs, 1)
}

func TestBindingCloseStopsReloads(t *testing.T) {
	client := newFakeClient()
	client.setRows("list_items", itemRows("milk"))
	sess := newTestSession(t, client, 20*time.Millisecond)

	b := Bind(sess, testDesc)
	b.SetScope(context.Background(),
		[]storage.Filter{storage.Eq("list_id", "l1")}, nil,
		[]WatchSpec{{Resource: "list_items", Filters: []storage.Filter{storage.Eq("list_id", "l1")}}})

	client.emit(storage.Event{Resource: "list_items", Kind: storage.EventUpdate,
		Row: storage.Row{"id": "milk", "list_id": "l1"}})
	b.Close()
	baseline := client.selectCount()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, baseline, client.selectCount(), "a closed binding never reloads")
	assert.Zero(t, client.openSubs())
	assert.Empty(t, b.Rows())
}

func TestBindingMutateRollsBackAndNotifies(t *testing.T) {
	client := newFakeClient()
	client.setRows("list_items", itemRows("milk"))
	sess := newTestSession(t, client, 10*time.Millisecond)

	b := Bind(sess, testDesc)
	b.SetScope(context.Background(), []storage.Filter{storage.Eq("list_id", "l1")}, nil, nil)

	err := b.MutateInsert(context.Background(), testItem{ID: "eggs"}, func(context.Context) error {
		return errors.New("boom")
	})
	require.Error(t, err)
	require.Len(t, b.Rows(), 1)
	assert.Equal(t, "milk", b.Rows()[0].ID)
}
