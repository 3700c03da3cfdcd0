// Package metrics exposes Prometheus instruments for the sync engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Engine records sync engine activity. The zero value (or a nil
// receiver) is a no-op, so callers can run unmetered.
type Engine struct {
	reloads       *prometheus.CounterVec
	reloadErrors  *prometheus.CounterVec
	changeEvents  *prometheus.CounterVec
	flushes       *prometheus.CounterVec
	rollbacks     *prometheus.CounterVec
	staleDropped  prometheus.Counter
	subscriptions prometheus.Gauge
}

// NewEngine registers the engine metrics on the provided registerer.
// A nil registerer yields a no-op instance.
func NewEngine(reg prometheus.Registerer) *Engine {
	if reg == nil {
		return &Engine{}
	}
	reloads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hauslist_reloads_total",
		Help: "Completed resource reloads.",
	}, []string{"resource"})
	reloadErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hauslist_reload_errors_total",
		Help: "Resource reloads that failed.",
	}, []string{"resource"})
	changeEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hauslist_change_events_total",
		Help: "Raw change notifications received.",
	}, []string{"resource"})
	flushes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hauslist_debounce_flushes_total",
		Help: "Debounced reload triggers that fired.",
	}, []string{"resource"})
	rollbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hauslist_rollbacks_total",
		Help: "Optimistic mutations rolled back after a remote failure.",
	}, []string{"resource"})
	staleDropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hauslist_stale_results_dropped_total",
		Help: "Reload results discarded because their scope went stale.",
	})
	subscriptions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hauslist_live_subscriptions",
		Help: "Currently open change-feed subscriptions.",
	})
	reg.MustRegister(reloads, reloadErrors, changeEvents, flushes, rollbacks, staleDropped, subscriptions)
	return &Engine{
		reloads:       reloads,
		reloadErrors:  reloadErrors,
		changeEvents:  changeEvents,
		flushes:       flushes,
		rollbacks:     rollbacks,
		staleDropped:  staleDropped,
		subscriptions: subscriptions,
	}
}

// IncReload counts one completed reload for the resource.
func (e *Engine) IncReload(resource string) {
	if e == nil || e.reloads == nil {
		return
	}
	e.reloads.WithLabelValues(resource).Inc()
}

// IncReloadError counts one failed reload for the resource.
func (e *Engine) IncReloadError(resource string) {
	if e == nil || e.reloadErrors == nil {
		return
	}
	e.reloadErrors.WithLabelValues(resource).Inc()
}

// IncChangeEvent counts one raw change notification.
func (e *Engine) IncChangeEvent(resource string) {
	if e == nil || e.changeEvents == nil {
		return
	}
	e.changeEvents.WithLabelValues(resource).Inc()
}

// IncFlush counts one debounce window firing.
func (e *Engine) IncFlush(resource string) {
	if e == nil || e.flushes == nil {
		return
	}
	e.flushes.WithLabelValues(resource).Inc()
}

// IncRollback counts one optimistic rollback.
func (e *Engine) IncRollback(resource string) {
	if e == nil || e.rollbacks == nil {
		return
	}
	e.rollbacks.WithLabelValues(resource).Inc()
}

// IncStaleDropped counts one discarded stale result.
func (e *Engine) IncStaleDropped() {
	if e == nil || e.staleDropped == nil {
		return
	}
	e.staleDropped.Inc()
}

// SubscriptionOpened tracks a newly opened subscription.
func (e *Engine) SubscriptionOpened() {
	if e == nil || e.subscriptions == nil {
		return
	}
	e.subscriptions.Inc()
}

// SubscriptionClosed tracks a torn-down subscription.
func (e *Engine) SubscriptionClosed() {
	if e == nil || e.subscriptions == nil {
		return
	}
	e.subscriptions.Dec()
}
