package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.Rows("Project", 3)
	m.Rows("Project", 2)
	m.Table("Project", "imported", 1.5)
	m.Table("DvfSeries", "skipped", 0)
	assert.Equal(t, float64(5), testutil.ToFloat64(m.rows.WithLabelValues("Project")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.tables.WithLabelValues("DvfSeries", "skipped")))
	assert.Equal(t, 1.5, testutil.ToFloat64(m.duration.WithLabelValues("Project")))

	fn := filepath.Join(t.TempDir(), "lki.prom")
	require.NoError(t, m.WriteTextfile(fn))
	buf, err := os.ReadFile(fn)
	require.NoError(t, err)
	assert.Contains(t, string(buf), `lki_import_rows_total{table="Project"} 5`)
}

func TestMetricsNil(t *testing.T) {
	var m *Metrics
	m.Rows("Project", 1)
	m.Table("Project", "imported", 1)
}
