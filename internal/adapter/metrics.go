package adapter

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PromMetrics records mapping counters in a private Prometheus registry.
type PromMetrics struct {
	registry *prometheus.Registry

	rowsRead       prometheus.Counter
	rowsSkipped    *prometheus.CounterVec
	valuesDropped  *prometheus.CounterVec
	releases       prometheus.Counter
	releaseTags    *prometheus.CounterVec
	runDuration    prometheus.Gauge
	lastRunSuccess prometheus.Gauge
}

// NewPromMetrics registers the ocdsmap counters.
func NewPromMetrics() *PromMetrics {
	registry := prometheus.NewRegistry()

	p := &PromMetrics{
		registry: registry,

		rowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ocdsmap_rows_read_total",
			Help: "Total number of source rows read",
		}),
		rowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ocdsmap_rows_skipped_total",
			Help: "Rows skipped, by reason",
		}, []string{"reason"}),
		valuesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ocdsmap_values_dropped_total",
			Help: "Values dropped on a codelist miss, by target path",
		}, []string{"path"}),
		releases: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ocdsmap_releases_total",
			Help: "Total number of releases emitted",
		}),
		releaseTags: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ocdsmap_release_tags_total",
			Help: "Emitted releases, by tag",
		}, []string{"tag"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ocdsmap_run_duration_seconds",
			Help: "Duration of the last run",
		}),
		lastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ocdsmap_last_run_success",
			Help: "1 when the last run succeeded",
		}),
	}

	registry.MustRegister(
		p.rowsRead,
		p.rowsSkipped,
		p.valuesDropped,
		p.releases,
		p.releaseTags,
		p.runDuration,
		p.lastRunSuccess,
	)

	return p
}

func (p *PromMetrics) RowRead() { p.rowsRead.Inc() }

func (p *PromMetrics) RowSkipped(reason string) { p.rowsSkipped.WithLabelValues(reason).Inc() }

func (p *PromMetrics) ValueDropped(path string) { p.valuesDropped.WithLabelValues(path).Inc() }

func (p *PromMetrics) ReleaseEmitted(tags []string) {
	p.releases.Inc()

	for _, t := range tags {
		p.releaseTags.WithLabelValues(t).Inc()
	}
}

// Finish records the outcome of a run.
func (p *PromMetrics) Finish(d time.Duration, err error) {
	p.runDuration.Set(d.Seconds())

	if err != nil {
		p.lastRunSuccess.Set(0)
		return
	}

	p.lastRunSuccess.Set(1)
}

// Gatherer exposes the registry.
func (p *PromMetrics) Gatherer() prometheus.Gatherer {
	return p.registry
}

// WriteTextfile writes the metrics in the node_exporter textfile format. An empty
// path is a no-op.
func (p *PromMetrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}

	if err := prometheus.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}

	return nil
}
