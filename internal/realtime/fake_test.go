package realtime

import (
	"context"
	"sync"

	"github.com/mkrause/hauslist/internal/storage"
)

// fakeClient is an in-memory storage.Client for engine tests. Rows are
// served verbatim; mutations are driven by the test via failWith and
// setRows, and change events via emit.
type fakeClient struct {
	mu       sync.Mutex
	rows     map[string][]storage.Row
	failWith error
	selects  int
	subs     []*fakeSub
}

func newFakeClient() *fakeClient {
	return &fakeClient{rows: make(map[string][]storage.Row)}
}

func (c *fakeClient) setRows(resource string, rows []storage.Row) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows[resource] = rows
}

func (c *fakeClient) failNext(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failWith = err
}

func (c *fakeClient) selectCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selects
}

func (c *fakeClient) emit(ev storage.Event) {
	c.mu.Lock()
	subs := make([]*fakeSub, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()
	for _, s := range subs {
		if !s.closed() && s.resource == ev.Resource && storage.Matches(ev.Row, s.filters) {
			s.fn(ev)
		}
	}
}

func (c *fakeClient) openSubs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.subs {
		if !s.closed() {
			n++
		}
	}
	return n
}

func (c *fakeClient) Select(ctx context.Context, resource string, columns []string, filters []storage.Filter, order *storage.Order) ([]storage.Row, error) {
	c.mu.Lock()
	c.selects++
	err := c.failWith
	c.failWith = nil
	var out []storage.Row
	for _, r := range c.rows[resource] {
		if storage.Matches(r, filters) {
			out = append(out, r.Clone())
		}
	}
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *fakeClient) Insert(ctx context.Context, resource string, rows []storage.Row) ([]storage.Row, error) {
	c.mu.Lock()
	err := c.failWith
	c.failWith = nil
	if err == nil {
		c.rows[resource] = append(c.rows[resource], rows...)
	}
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *fakeClient) Update(ctx context.Context, resource string, patch storage.Row, filters []storage.Filter) ([]storage.Row, error) {
	c.mu.Lock()
	err := c.failWith
	c.failWith = nil
	var out []storage.Row
	if err == nil {
		for _, r := range c.rows[resource] {
			if storage.Matches(r, filters) {
				for k, v := range patch {
					r[k] = v
				}
				out = append(out, r.Clone())
			}
		}
	}
	c.mu.Unlock()
	return out, err
}

func (c *fakeClient) Upsert(ctx context.Context, resource string, row storage.Row, conflictColumns []string) (storage.Row, error) {
	c.mu.Lock()
	err := c.failWith
	c.failWith = nil
	if err == nil {
		c.rows[resource] = append(c.rows[resource], row)
	}
	c.mu.Unlock()
	return row, err
}

func (c *fakeClient) Delete(ctx context.Context, resource string, filters []storage.Filter) error {
	c.mu.Lock()
	err := c.failWith
	c.failWith = nil
	if err == nil {
		kept := c.rows[resource][:0]
		for _, r := range c.rows[resource] {
			if !storage.Matches(r, filters) {
				kept = append(kept, r)
			}
		}
		c.rows[resource] = kept
	}
	c.mu.Unlock()
	return err
}

func (c *fakeClient) SubscribeChanges(resource string, filters []storage.Filter, fn storage.ChangeFunc) (storage.Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		err := c.failWith
		c.failWith = nil
		return nil, err
	}
	sub := &fakeSub{resource: resource, filters: filters, fn: fn}
	c.subs = append(c.subs, sub)
	return sub, nil
}

func (c *fakeClient) Close() error { return nil }

type fakeSub struct {
	resource string
	filters  []storage.Filter
	fn       storage.ChangeFunc

	mu   sync.Mutex
	done bool
}

func (s *fakeSub) Close() error {
	s.mu.Lock()
	s.done = true
	s.mu.Unlock()
	return nil
}

func (s *fakeSub) closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}
