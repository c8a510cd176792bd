// Package iometrics exposes Prometheus metrics of migration runs. A CLI
// run is short-lived, so metrics are written to a textfile for the node
// exporter rather than served over HTTP.
package iometrics

import (
	"fmt"
	"time"

	"github.com/gnames/gn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vetcare/vetdb/pkg/errcode"
	"github.com/vetcare/vetdb/pkg/migration"
)

const namespace = "vetdb"

// Collector implements migration.Observer and keeps run metrics in its
// own registry.
type Collector struct {
	registry *prometheus.Registry

	Units        *prometheus.CounterVec
	UnitDuration *prometheus.HistogramVec
	Pending      prometheus.Gauge
	SeededRows   prometheus.Counter
	LastRun      *prometheus.GaugeVec
}

// New creates a Collector with its own registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		Units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "migration_units_total",
			Help:      "Migration units run, by direction and status",
		}, []string{"direction", "status"}),
		UnitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "migration_unit_duration_seconds",
			Help:      "Duration of migration units in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"direction"}),
		Pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "migration_pending_units",
			Help:      "History units without a ledger record after the run",
		}),
		SeededRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seed_rows_inserted_total",
			Help:      "Rows inserted by the seeder",
		}),
		LastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "deploy_last_run_timestamp_seconds",
			Help:      "Unix time of the last deploy run, by outcome",
		}, []string{"status"}),
	}
	reg.MustRegister(c.Units, c.UnitDuration, c.Pending, c.SeededRows, c.LastRun)
	return c
}

// Registry returns the registry of the collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Observe implements migration.Observer.
func (c *Collector) Observe(res migration.Result) {
	status := "ok"
	if res.Err != nil {
		status = "error"
	}
	dir := string(res.Direction)
	c.Units.WithLabelValues(dir, status).Inc()
	if res.Direction != migration.Baseline {
		c.UnitDuration.WithLabelValues(dir).Observe(res.Duration.Seconds())
	}
}

// RunFinished records the outcome of a deploy run.
func (c *Collector) RunFinished(at time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.LastRun.WithLabelValues(status).Set(float64(at.Unix()))
}

// WriteTextfile writes all metrics in text format. The file is replaced
// atomically. An empty path is a no-op.
func (c *Collector) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return &gn.Error{
			Code: errcode.MetricsWriteError,
			Msg:  "Cannot write metrics to <em>%s</em>",
			Vars: []any{path},
			Err:  fmt.Errorf("write metrics textfile %s: %w", path, err),
		}
	}
	return nil
}
