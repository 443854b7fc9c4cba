// Package metrics holds the Prometheus collectors of the indicator engine and bar sources.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds all Prometheus metrics for the kernel engine.
type Metrics struct {
	KernelComputeDur *prometheus.HistogramVec // labels: kernel
	KernelRunsTotal  *prometheus.CounterVec   // labels: kernel, status
	BatchSize        prometheus.Histogram
	BarsLoadedTotal  *prometheus.CounterVec // labels: source
}

// NewMetrics creates the collectors and registers them with reg.
// A nil registerer leaves them unregistered, which tests use to avoid global state.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		KernelComputeDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "takernels_kernel_compute_seconds",
			Help:    "Kernel compute latency per invocation",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"kernel"}),
		KernelRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "takernels_kernel_runs_total",
			Help: "Kernel invocations by outcome",
		}, []string{"kernel", "status"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "takernels_batch_requests",
			Help:    "Number of kernel requests per engine batch",
			Buckets: []float64{1, 2, 5, 10, 20, 50},
		}),
		BarsLoadedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "takernels_bars_loaded_total",
			Help: "Bars read from a bar source",
		}, []string{"source"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.KernelComputeDur,
			m.KernelRunsTotal,
			m.BatchSize,
			m.BarsLoadedTotal,
		)
	}
	return m
}

// ObserveKernel records one kernel invocation. Safe on a nil receiver.
func (m *Metrics) ObserveKernel(kernel string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.KernelComputeDur.WithLabelValues(kernel).Observe(elapsed.Seconds())
	m.KernelRunsTotal.WithLabelValues(kernel, status).Inc()
}

// ObserveBatch records the size of one engine batch.
func (m *Metrics) ObserveBatch(n int) {
	if m == nil {
		return
	}
	m.BatchSize.Observe(float64(n))
}

// AddBars counts bars read from a source such as "csv" or "sqlite".
func (m *Metrics) AddBars(source string, n int) {
	if m == nil {
		return
	}
	m.BarsLoadedTotal.WithLabelValues(source).Add(float64(n))
}
