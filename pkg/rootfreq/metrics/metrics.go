// Package metrics records batch-run gauges and writes them in the Prometheus
// text format for the node_exporter textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors for one run on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	LinesRead       prometheus.Gauge
	LinesSkipped    prometheus.Gauge
	RootTokens      prometheus.Gauge
	RootVocabSize   prometheus.Gauge
	Suras           prometheus.Gauge
	ListEntries     *prometheus.GaugeVec
	Duration        prometheus.Gauge
	LastSuccessTime prometheus.Gauge
}

// New creates and registers the run metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		LinesRead: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rootfreq_lines_read",
			Help: "Corpus lines read in the last run.",
		}),
		LinesSkipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rootfreq_lines_skipped",
			Help: "Corpus lines without a parseable root in the last run.",
		}),
		RootTokens: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rootfreq_root_tokens_total",
			Help: "Root tokens counted across all suras.",
		}),
		RootVocabSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rootfreq_root_vocab_size",
			Help: "Distinct roots in the corpus.",
		}),
		Suras: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rootfreq_suras",
			Help: "Suras with at least one root token.",
		}),
		ListEntries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rootfreq_list_entries",
				Help: "Entries across all suras per ranked list.",
			},
			[]string{"list"},
		),
		Duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rootfreq_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		LastSuccessTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rootfreq_last_success_timestamp_seconds",
			Help: "Unix time the last successful run finished.",
		}),
	}

	m.registry.MustRegister(
		m.LinesRead,
		m.LinesSkipped,
		m.RootTokens,
		m.RootVocabSize,
		m.Suras,
		m.ListEntries,
		m.Duration,
		m.LastSuccessTime,
	)
	return m
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// MarkSuccess stamps the run duration and completion time.
func (m *Metrics) MarkSuccess(start, end time.Time) {
	m.Duration.Set(end.Sub(start).Seconds())
	m.LastSuccessTime.Set(float64(end.Unix()))
}

// WriteTextfile writes all metrics to path atomically, creating the parent
// directory if needed.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
