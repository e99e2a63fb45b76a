package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "saxpy"

// KernelMetrics records kernel runs on a private Prometheus registry, so
// that several runs in one process (or in tests) never collide on the
// default registry.
type KernelMetrics struct {
	registry    *prometheus.Registry
	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	updates     prometheus.Counter
	lastAverage *prometheus.GaugeVec
	threads     prometheus.Gauge
}

// NewKernelMetrics creates the metric set and registers it together with
// the Go runtime collector.
func NewKernelMetrics() *KernelMetrics {
	m := &KernelMetrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Kernel runs by accumulation mode and outcome.",
		}, []string{"mode", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock time of the parallel phase.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"mode"}),
		updates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "element_updates_total",
			Help:      "Number of Y[i] += a*X[i] updates performed.",
		}),
		lastAverage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_iteration_average",
			Help:      "Mean of Y after the final iteration of the latest run.",
		}, []string{"mode"}),
		threads: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "threads",
			Help:      "Worker count of the latest run.",
		}),
	}
	m.registry.MustRegister(
		m.runs, m.duration, m.updates, m.lastAverage, m.threads,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the registry holding the metrics.
func (m *KernelMetrics) Registry() *prometheus.Registry { return m.registry }

// ObserveRun records a successful run.
func (m *KernelMetrics) ObserveRun(mode string, n, threads, iterations int, elapsed time.Duration, lastAverage float64) {
	m.runs.WithLabelValues(mode, "success").Inc()
	m.duration.WithLabelValues(mode).Observe(elapsed.Seconds())
	m.updates.Add(float64(n) * float64(iterations))
	m.lastAverage.WithLabelValues(mode).Set(lastAverage)
	m.threads.Set(float64(threads))
}

// ObserveFailure records a failed run.
func (m *KernelMetrics) ObserveFailure(mode string) {
	m.runs.WithLabelValues(mode, "failure").Inc()
}

// WriteTextfile writes every metric in the Prometheus text format to path,
// atomically, for the node_exporter textfile collector.
func (m *KernelMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
