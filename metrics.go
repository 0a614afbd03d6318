package diskarb

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Observer receives the outcome of every completed request, with the
// elapsed time from creation to completion. Implementations are called on
// the engine loop and must not block.
type Observer interface {
	ObserveRequest(kind Kind, status Return, elapsed time.Duration)
}

// NoOpObserver discards all observations.
type NoOpObserver struct{}

func (NoOpObserver) ObserveRequest(Kind, Return, time.Duration) {}

const numKinds = int(KindUnmount) + 1

// Metrics tracks per-kind request counters and cumulative latency.
type Metrics struct {
	Requests [numKinds]atomic.Uint64 // Completed requests by kind
	Failures [numKinds]atomic.Uint64 // Completions with a dissent by kind

	TotalLatencyNs atomic.Uint64 // Cumulative request latency in nanoseconds
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordRequest records one completed request.
func (m *Metrics) RecordRequest(kind Kind, status Return, elapsed time.Duration) {
	if int(kind) < 0 || int(kind) >= numKinds {
		return
	}
	m.Requests[kind].Add(1)
	if status != ReturnSuccess {
		m.Failures[kind].Add(1)
	}
	if elapsed > 0 {
		m.TotalLatencyNs.Add(uint64(elapsed.Nanoseconds()))
	}
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Requests [numKinds]uint64
	Failures [numKinds]uint64
}

// Snapshot returns a point-in-time copy of the counters.
func (m *Metrics) Snapshot() Snapshot {
	var s Snapshot
	for i := 0; i < numKinds; i++ {
		s.Requests[i] = m.Requests[i].Load()
		s.Failures[i] = m.Failures[i].Load()
	}
	return s
}

// MetricsObserver records observations into a Metrics instance.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver creates an observer that records to the given metrics
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveRequest(kind Kind, status Return, elapsed time.Duration) {
	o.metrics.RecordRequest(kind, status, elapsed)
}

// PrometheusObserver exports request outcomes as Prometheus counters and a
// per-kind duration histogram.
type PrometheusObserver struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPrometheusObserver registers the request collectors with reg.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	return &PrometheusObserver{
		requests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "diskarb_requests_total",
				Help: "Completed arbitration requests by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "diskarb_request_duration_seconds",
				Help: "Time from request creation to completion dispatch",
				Buckets: []float64{
					0.001, // 1ms - synchronous short-circuits
					0.01,  // 10ms
					0.1,   // 100ms - approval round-trips
					0.5,   // 500ms
					1,     // 1s
					5,     // 5s - interactive authorization
					30,    // 30s
					120,   // 2m
				},
			},
			[]string{"kind"},
		),
	}
}

func (o *PrometheusObserver) ObserveRequest(kind Kind, status Return, elapsed time.Duration) {
	o.requests.WithLabelValues(kind.String(), outcomeLabel(status)).Inc()
	o.duration.WithLabelValues(kind.String()).Observe(elapsed.Seconds())
}

// outcomeLabel folds a status into a bounded label set; the unix errno
// range collapses into one label to keep cardinality down.
func outcomeLabel(status Return) string {
	if status == ReturnSuccess {
		return "success"
	}
	if _, ok := status.Errno(); ok {
		return "errno"
	}
	switch status {
	case ReturnBusy:
		return "busy"
	case ReturnNotMounted:
		return "not_mounted"
	case ReturnNotPermitted:
		return "not_permitted"
	case ReturnNotPrivileged:
		return "not_privileged"
	case ReturnNotReady:
		return "not_ready"
	case ReturnUnsupported:
		return "unsupported"
	}
	return "error"
}

// Compile-time interface checks
var (
	_ Observer = (*MetricsObserver)(nil)
	_ Observer = (*PrometheusObserver)(nil)
	_ Observer = NoOpObserver{}
)
