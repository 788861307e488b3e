package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, gauges, and histograms for the
// tracker.
type Metrics struct {
	PacketsReceived    prometheus.Counter
	MalformedPackets   prometheus.Counter
	UnknownSitePackets prometheus.Counter
	MisalignedPackets  prometheus.Counter
	ListenerRunning    prometheus.Gauge

	// Track-file metrics.
	RowsWritten    prometheus.Counter
	FilesCreated   prometheus.Counter
	DirsCreated    prometheus.Counter
	AppendDuration prometheus.Histogram
}

// NewMetrics creates and registers all tracker metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		PacketsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "superdarn_tracker",
			Name:      "packets_received_total",
			Help:      "Total events received from the real-time feed.",
		}),
		MalformedPackets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "superdarn_tracker",
			Name:      "packets_malformed_total",
			Help:      "Total payloads skipped because a required field was missing.",
		}),
		UnknownSitePackets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "superdarn_tracker",
			Name:      "packets_unknown_site_total",
			Help:      "Total packets from sites outside the tracked-site table.",
		}),
		MisalignedPackets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "superdarn_tracker",
			Name:      "packets_misaligned_total",
			Help:      "Total packets whose flag count differs from the echo count.",
		}),
		ListenerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "superdarn_tracker",
			Name:      "listener_running",
			Help:      "1 while the feed listener loop is active, 0 after shutdown.",
		}),
		RowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "superdarn_tracker",
			Name:      "rows_written_total",
			Help:      "Total rows appended across all track files.",
		}),
		FilesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "superdarn_tracker",
			Name:      "files_created_total",
			Help:      "Total track files created (one per site per day).",
		}),
		DirsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "superdarn_tracker",
			Name:      "dirs_created_total",
			Help:      "Total day directories created; increments on daily rollover.",
		}),
		AppendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "superdarn_tracker",
			Name:      "append_duration_seconds",
			Help:      "Duration of one open-append-close track file write.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
	}

	prometheus.MustRegister(
		m.PacketsReceived,
		m.MalformedPackets,
		m.UnknownSitePackets,
		m.MisalignedPackets,
		m.ListenerRunning,
		m.RowsWritten,
		m.FilesCreated,
		m.DirsCreated,
		m.AppendDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with no registry registration to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		PacketsReceived:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "superdarn_tracker", Name: "packets_received_total"}),
		MalformedPackets:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "superdarn_tracker", Name: "packets_malformed_total"}),
		UnknownSitePackets: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "superdarn_tracker", Name: "packets_unknown_site_total"}),
		MisalignedPackets:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "superdarn_tracker", Name: "packets_misaligned_total"}),
		ListenerRunning:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "superdarn_tracker", Name: "listener_running"}),
		RowsWritten:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "superdarn_tracker", Name: "rows_written_total"}),
		FilesCreated:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "superdarn_tracker", Name: "files_created_total"}),
		DirsCreated:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "superdarn_tracker", Name: "dirs_created_total"}),
		AppendDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "superdarn_tracker", Name: "append_duration_seconds"}),
	}
}
