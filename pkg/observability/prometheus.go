package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics implements every hook interface by recording Prometheus metrics.
type Metrics struct {
	collectTotal    *prometheus.CounterVec
	collectDuration prometheus.Histogram
	references      prometheus.Histogram
	publishTotal    *prometheus.CounterVec
	publishDuration prometheus.Histogram
	storeSaveTotal  *prometheus.CounterVec
	storeBytes      *prometheus.CounterVec
	storeLookups    *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	httpErrors      *prometheus.CounterVec
}

var (
	_ PipelineHooks = (*Metrics)(nil)
	_ StoreHooks    = (*Metrics)(nil)
	_ HTTPHooks     = (*Metrics)(nil)
)

// NewMetrics creates the collectors and registers them with reg.
// It panics if registration fails, as prometheus.MustRegister does.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		collectTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "artitracker_collect_total",
				Help: "Number of report collection runs by result.",
			},
			[]string{"result"},
		),
		collectDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "artitracker_collect_duration_seconds",
				Help:    "Time taken to read a descriptor and assemble its report.",
				Buckets: prometheus.DefBuckets,
			},
		),
		references: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "artitracker_report_references",
				Help:    "Number of artifact references per collected report.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		publishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "artitracker_publish_total",
				Help: "Number of reports published by result.",
			},
			[]string{"result"},
		),
		publishDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "artitracker_publish_duration_seconds",
				Help:    "Time taken to publish a report, retries included.",
				Buckets: prometheus.DefBuckets,
			},
		),
		storeSaveTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "artitracker_store_save_total",
				Help: "Number of report writes by backend and result.",
			},
			[]string{"backend", "result"},
		),
		storeBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "artitracker_store_bytes_total",
				Help: "Encoded report bytes written by backend.",
			},
			[]string{"backend"},
		),
		storeLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "artitracker_store_lookups_total",
				Help: "Number of report lookups by backend and outcome.",
			},
			[]string{"backend", "outcome"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "artitracker_http_client_requests_total",
				Help: "Outgoing HTTP requests by host and status code.",
			},
			[]string{"method", "host", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "artitracker_http_client_duration_seconds",
				Help:    "Outgoing HTTP request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "host"},
		),
		httpErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "artitracker_http_client_errors_total",
				Help: "Outgoing HTTP requests that failed without a response.",
			},
			[]string{"method", "host"},
		),
	}

	reg.MustRegister(
		m.collectTotal,
		m.collectDuration,
		m.references,
		m.publishTotal,
		m.publishDuration,
		m.storeSaveTotal,
		m.storeBytes,
		m.storeLookups,
		m.httpRequests,
		m.httpDuration,
		m.httpErrors,
	)
	return m
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnCollectStart(context.Context, string) {}

func (m *Metrics) OnCollectComplete(_ context.Context, _ string, refs int, d time.Duration, err error) {
	m.collectTotal.WithLabelValues(result(err)).Inc()
	if err != nil {
		return
	}
	m.collectDuration.Observe(d.Seconds())
	m.references.Observe(float64(refs))
}

func (m *Metrics) OnPublish(_ context.Context, _ string, d time.Duration, err error) {
	m.publishTotal.WithLabelValues(result(err)).Inc()
	m.publishDuration.Observe(d.Seconds())
}

func (m *Metrics) OnSave(_ context.Context, backend string, size int, err error) {
	m.storeSaveTotal.WithLabelValues(backend, result(err)).Inc()
	if err == nil {
		m.storeBytes.WithLabelValues(backend).Add(float64(size))
	}
}

func (m *Metrics) OnHit(_ context.Context, backend string) {
	m.storeLookups.WithLabelValues(backend, "hit").Inc()
}

func (m *Metrics) OnMiss(_ context.Context, backend string) {
	m.storeLookups.WithLabelValues(backend, "miss").Inc()
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, host, _ string, code int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, host, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method, host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, host, _ string, _ error) {
	m.httpErrors.WithLabelValues(method, host).Inc()
}
