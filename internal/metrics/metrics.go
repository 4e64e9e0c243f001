// Package metrics exposes Prometheus instrumentation for the webhook service.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fillout-webhook/internal/models"
	"fillout-webhook/internal/services/store"
)

// Request outcomes.
const (
	OutcomeOK               = "ok"
	OutcomeInvalidPayload   = "invalid_payload"
	OutcomePersistence      = "persistence_error"
	OutcomeError            = "error"
	OutcomeMethodNotAllowed = "method_not_allowed"
)

// Metrics holds the service collectors and the registry they live in.
type Metrics struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec
}

// New creates a registry with the service collectors plus the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fillout",
			Name:      "webhook_requests_total",
			Help:      "Webhook requests by outcome",
		}, []string{"outcome"}),
		storeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fillout",
			Name:      "store_operation_duration_seconds",
			Help:      "Time spent in store operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "status"}),
	}

	m.registry.MustRegister(
		m.requests,
		m.storeDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Requests returns the request counter.
func (m *Metrics) Requests() *prometheus.CounterVec {
	return m.requests
}

// ObserveRequest counts one webhook request. A nil receiver is a no-op.
func (m *Metrics) ObserveRequest(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeStore(operation string, start time.Time, err error) {
	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, models.ErrNotFound):
		status = "not_found"
	default:
		status = "error"
	}
	m.storeDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
}

// InstrumentStore wraps s so every call is timed. A nil receiver returns s.
func (m *Metrics) InstrumentStore(s store.Store) store.Store {
	if m == nil {
		return s
	}
	return &instrumentedStore{next: s, m: m}
}

type instrumentedStore struct {
	next store.Store
	m    *Metrics
}

func (s *instrumentedStore) FindSchool(ctx context.Context, name, city *string) (*models.School, error) {
	start := time.Now()
	school, err := s.next.FindSchool(ctx, name, city)
	s.m.observeStore("find_school", start, err)
	return school, err
}

func (s *instrumentedStore) InsertSchool(ctx context.Context, in models.SchoolInput) (*models.School, error) {
	start := time.Now()
	school, err := s.next.InsertSchool(ctx, in)
	s.m.observeStore("insert_school", start, err)
	return school, err
}

func (s *instrumentedStore) UpdateSchool(ctx context.Context, id models.ID, in models.SchoolInput) (*models.School, error) {
	start := time.Now()
	school, err := s.next.UpdateSchool(ctx, id, in)
	s.m.observeStore("update_school", start, err)
	return school, err
}

func (s *instrumentedStore) InsertEvent(ctx context.Context, in models.EventInput) (*models.Event, error) {
	start := time.Now()
	event, err := s.next.InsertEvent(ctx, in)
	s.m.observeStore("insert_event", start, err)
	return event, err
}

func (s *instrumentedStore) Probe(ctx context.Context) error {
	start := time.Now()
	err := s.next.Probe(ctx)
	s.m.observeStore("probe", start, err)
	return err
}

func (s *instrumentedStore) Close() {
	s.next.Close()
}
