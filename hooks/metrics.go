package hooks

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/anggasct/hsm"
)

// MetricsHook exports state machine activity as Prometheus metrics
type MetricsHook struct {
	entries  *prometheus.CounterVec
	exits    *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec

	mu      sync.Mutex
	entered map[string]time.Time
	now     func() time.Time
}

// NewMetricsHook creates a metrics hook and registers its collectors with reg.
// A nil reg registers with prometheus.DefaultRegisterer. On failure no
// collector is left registered.
func NewMetricsHook(reg prometheus.Registerer, namespace string) (*MetricsHook, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	h := &MetricsHook{
		entries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "state_entries_total",
				Help:      "Total number of state entries",
			},
			[]string{"state"},
		),
		exits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "state_exits_total",
				Help:      "Total number of state exits",
			},
			[]string{"state"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of errors reported by the machine",
			},
			[]string{"stage"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "state_duration_seconds",
				Help:      "Time spent in a state between entry and exit",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"state"},
		),
		entered: make(map[string]time.Time),
		now:     time.Now,
	}

	collectors := []prometheus.Collector{h.entries, h.exits, h.errors, h.duration}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			for _, registered := range collectors[:i] {
				reg.Unregister(registered)
			}
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return h, nil
}

// OnEnter counts the entry and starts timing the state
func (h *MetricsHook) OnEnter(state hsm.State) {
	name := state.Name()
	h.entries.WithLabelValues(name).Inc()

	h.mu.Lock()
	h.entered[name] = h.now()
	h.mu.Unlock()
}

// OnExit counts the exit and observes the time spent in the state
func (h *MetricsHook) OnExit(state hsm.State) {
	name := state.Name()
	h.exits.WithLabelValues(name).Inc()

	h.mu.Lock()
	start, ok := h.entered[name]
	delete(h.entered, name)
	h.mu.Unlock()

	if ok {
		h.duration.WithLabelValues(name).Observe(h.now().Sub(start).Seconds())
	}
}

// OnError counts the error by the transition stage that raised it
func (h *MetricsHook) OnError(err error) {
	stage := "other"
	var terr *hsm.TransitionError
	if errors.As(err, &terr) {
		stage = string(terr.Stage)
	}
	h.errors.WithLabelValues(stage).Inc()
}
