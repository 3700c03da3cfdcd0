package sqlite

import (
	"sync"

	"github.com/mkrause/hauslist/internal/storage"
)

// notifier fans change events out to subscribers. Events are delivered
// synchronously after the causing transaction committed, one call per
// changed row; consumers are expected to debounce.
type notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber
}

type subscriber struct {
	resource string
	filters  []storage.Filter
	fn       storage.ChangeFunc
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[int]*subscriber)}
}

// subscribe registers fn for events on resource matching filters.
func (n *notifier) subscribe(res string, filters []storage.Filter, fn storage.ChangeFunc) *subscription {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.subs[id] = &subscriber{resource: res, filters: filters, fn: fn}
	return &subscription{notifier: n, id: id}
}

// emit delivers one event to every matching subscriber. Callbacks run
// outside the lock so a subscriber may unsubscribe from within one.
func (n *notifier) emit(evt storage.Event) {
	n.mu.Lock()
	var fns []storage.ChangeFunc
	for _, s := range n.subs {
		if s.resource != evt.Resource {
			continue
		}
		if !storage.Matches(evt.Row, s.filters) {
			continue
		}
		fns = append(fns, s.fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(evt)
	}
}

func (n *notifier) remove(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.subs, id)
}

func (n *notifier) closeAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = make(map[int]*subscriber)
}

// subscription implements storage.Subscription.
type subscription struct {
	notifier *notifier
	once     sync.Once
	id       int
}

// Close removes the subscriber. Safe to call more than once.
func (s *subscription) Close() error {
	s.once.Do(func() { s.notifier.remove(s.id) })
	return nil
}
