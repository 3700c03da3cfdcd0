package realtime

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/mkrause/hauslist/internal/storage"
	"github.com/mkrause/hauslist/pkg/metrics"
)

// WatchSpec names one change stream: a resource plus the row filters
// the subscription is narrowed to.
type WatchSpec struct {
	Resource string
	Filters  []storage.Filter
}

// Manager tracks the change subscriptions held per binding key. When a
// binding re-points to a different scope, Watch tears down the old
// subscriptions before opening the new ones, so a key never receives
// events for a scope it left.
type Manager struct {
	client  storage.Client
	logger  *slog.Logger
	metrics *metrics.Engine

	mu   sync.Mutex
	subs map[string][]storage.Subscription
}

// NewManager creates a subscription manager backed by the given client.
func NewManager(client storage.Client, logger *slog.Logger, m *metrics.Engine) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		client:  client,
		logger:  logger,
		metrics: m,
		subs:    make(map[string][]storage.Subscription),
	}
}

// Watch replaces the subscriptions held under key with new ones for the
// given specs. Old subscriptions are closed first. A failure to open a
// stream is returned so the caller can fall back to one-shot loading,
// but any streams opened before the failure stay registered.
func (m *Manager) Watch(key string, specs []WatchSpec, fn storage.ChangeFunc) error {
	m.Unwatch(key)

	m.mu.Lock()
	defer m.mu.Unlock()

	var opened []storage.Subscription
	for _, spec := range specs {
		sub, err := m.client.SubscribeChanges(spec.Resource, spec.Filters, fn)
		if err != nil {
			m.subs[key] = opened
			return fmt.Errorf("failed to subscribe to %s: %w", spec.Resource, err)
		}
		opened = append(opened, sub)
		m.metrics.SubscriptionOpened()
	}
	m.subs[key] = opened
	return nil
}

// Unwatch closes and forgets all subscriptions held under key.
func (m *Manager) Unwatch(key string) {
	m.mu.Lock()
	subs := m.subs[key]
	delete(m.subs, key)
	m.mu.Unlock()

	for _, sub := range subs {
		if err := sub.Close(); err != nil {
			m.logger.Warn("failed to close subscription", "key", key, "error", err)
		}
		m.metrics.SubscriptionClosed()
	}
}

// Close tears down every subscription the manager holds.
func (m *Manager) Close() {
	m.mu.Lock()
	all := m.subs
	m.subs = make(map[string][]storage.Subscription)
	m.mu.Unlock()

	for key, subs := range all {
		for _, sub := range subs {
			if err := sub.Close(); err != nil {
				m.logger.Warn("failed to close subscription", "key", key, "error", err)
			}
			m.metrics.SubscriptionClosed()
		}
	}
}
