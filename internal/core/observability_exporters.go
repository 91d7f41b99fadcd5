package core

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ExpvarMetricsRecorder publishes per-operation counters and latency sums via
// the expvar package.
type ExpvarMetricsRecorder struct {
	mu     sync.Mutex
	prefix string
	vars   map[string]*expvar.Int
}

// NewExpvarMetricsRecorder publishes variables under the given prefix.
func NewExpvarMetricsRecorder(prefix string) *ExpvarMetricsRecorder {
	if prefix == "" {
		prefix = "unitcore"
	}
	return &ExpvarMetricsRecorder{prefix: prefix, vars: map[string]*expvar.Int{}}
}

func (r *ExpvarMetricsRecorder) counter(name string) *expvar.Int {
	if v, ok := r.vars[name]; ok {
		return v
	}
	full := r.prefix + "." + name
	if existing := expvar.Get(full); existing != nil {
		if iv, ok := existing.(*expvar.Int); ok {
			r.vars[name] = iv
			return iv
		}
	}
	iv := expvar.NewInt(full)
	r.vars[name] = iv
	return iv
}

// Observe implements MetricsRecorder.
func (r *ExpvarMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	outcome := "success"
	if !success {
		outcome = "error"
	}
	r.counter(fmt.Sprintf("%s.%s", operation, outcome)).Add(1)
	r.counter(fmt.Sprintf("%s.duration_ns", operation)).Add(duration.Nanoseconds())
}

// PrometheusMetricsRecorder exposes operation outcomes as a counter vector
// and a latency histogram.
type PrometheusMetricsRecorder struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewPrometheusMetricsRecorder registers collectors on the given registerer.
// Passing nil uses the default registerer.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &PrometheusMetricsRecorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "unitcore",
			Name:      "operations_total",
			Help:      "Catalog operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "unitcore",
			Name:      "operation_duration_seconds",
			Help:      "Catalog operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	for _, c := range []prometheus.Collector{r.operations, r.latency} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

// Observe implements MetricsRecorder.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	r.operations.WithLabelValues(operation, outcome).Inc()
	r.latency.WithLabelValues(operation).Observe(duration.Seconds())
}

// JSONTraceTracer writes one JSON line per finished span.
type JSONTraceTracer struct {
	mu    sync.Mutex
	out   io.Writer
	nowFn func() time.Time
}

// NewJSONTraceTracer writes span records to out.
func NewJSONTraceTracer(out io.Writer) *JSONTraceTracer {
	return &JSONTraceTracer{out: out, nowFn: time.Now}
}

type jsonTraceSpan struct {
	tracer    *JSONTraceTracer
	operation string
	start     time.Time
}

type traceRecord struct {
	Operation  string `json:"operation"`
	StartedAt  string `json:"started_at"`
	DurationNS int64  `json:"duration_ns"`
	Error      string `json:"error,omitempty"`
}

// Start implements Tracer.
func (t *JSONTraceTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, &jsonTraceSpan{tracer: t, operation: operation, start: t.nowFn()}
}

// End writes the span record. Encoding failures are swallowed because span
// export must never fail the traced operation.
func (s *jsonTraceSpan) End(err error) {
	record := traceRecord{
		Operation:  s.operation,
		StartedAt:  s.start.UTC().Format(time.RFC3339Nano),
		DurationNS: s.tracer.nowFn().Sub(s.start).Nanoseconds(),
	}
	if err != nil {
		record.Error = err.Error()
	}
	s.tracer.mu.Lock()
	defer s.tracer.mu.Unlock()
	_ = json.NewEncoder(s.tracer.out).Encode(record)
}
