package realtime

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/mkrause/hauslist/internal/storage"
	"github.com/mkrause/hauslist/pkg/metrics"
)

const defaultDebounceWindow = 200 * time.Millisecond

// Options configures a Session. Zero values fall back to sane defaults.
type Options struct {
	// DebounceWindow is how long a burst of change events coalesces
	// before triggering a single reload.
	DebounceWindow time.Duration

	Logger  *slog.Logger
	Metrics *metrics.Engine
}

// Session is the shared runtime all bindings of one client hang off:
// the store client, the debouncer, the subscription manager, and a base
// context cancelled on Close.
type Session struct {
	client    storage.Client
	debouncer *Debouncer
	manager   *Manager
	logger    *slog.Logger
	metrics   *metrics.Engine

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	bindings int
}

// NewSession creates a session over the given store client.
func NewSession(client storage.Client, opts Options) *Session {
	window := opts.DebounceWindow
	if window <= 0 {
		window = defaultDebounceWindow
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		client:    client,
		debouncer: NewDebouncer(window),
		manager:   NewManager(client, logger, opts.Metrics),
		logger:    logger,
		metrics:   opts.Metrics,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Client exposes the underlying store client for one-off queries that
// do not need a live binding.
func (s *Session) Client() storage.Client {
	return s.client
}

// Close cancels the session context, stops the debouncer and tears down
// every subscription. Bindings of a closed session go inert.
func (s *Session) Close() {
	s.cancel()
	s.debouncer.Close()
	s.manager.Close()
}

func (s *Session) nextBindingKey(resource string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings++
	return resource + "#" + strconv.Itoa(s.bindings)
}
