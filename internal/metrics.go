package internal

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the counters of one run. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry
	rows     *prometheus.CounterVec
	tables   *prometheus.CounterVec
	duration *prometheus.GaugeVec
}

// NewMetrics returns metrics registered on their own registry so a run never mixes with global collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lki_import_rows_total",
			Help: "The number of rows inserted per table",
		}, []string{"table"}),
		tables: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lki_import_tables_total",
			Help: "The number of tables processed by status",
		}, []string{"table", "status"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lki_import_table_duration_seconds",
			Help: "The time spent importing a table",
		}, []string{"table"}),
	}
	m.registry.MustRegister(m.rows, m.tables, m.duration)
	return m
}

// Rows adds count inserted rows for the table.
func (m *Metrics) Rows(table string, count int) {
	if m == nil {
		return
	}
	m.rows.WithLabelValues(table).Add(float64(count))
}

// Table records the final status of a table and the time it took.
func (m *Metrics) Table(table string, status string, seconds float64) {
	if m == nil {
		return
	}
	m.tables.WithLabelValues(table, status).Inc()
	m.duration.WithLabelValues(table).Set(seconds)
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics in the node exporter textfile format.
func (m *Metrics) WriteTextfile(fn string) error {
	return prometheus.WriteToTextfile(fn, m.registry)
}
