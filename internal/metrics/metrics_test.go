package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRef(t *testing.T) {
	m := NewMetrics()
	m.RecordRef("normative", "lineage_upgrade", 2)
	m.RecordRef("normative", "lineage_upgrade", 1)
	m.RecordRef("bibliographic", "pinned", 1)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.RefsResolvedTotal.WithLabelValues("normative", "lineage_upgrade")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RefsResolvedTotal.WithLabelValues("bibliographic", "pinned")))
}

func TestSeparateRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()
	a.RecordMissingLineage(4)

	assert.Equal(t, 4.0, testutil.ToFloat64(a.MissingLineageTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.MissingLineageTotal))
}

func TestGauges(t *testing.T) {
	m := NewMetrics()
	m.UpdateCorpus(10, 25)
	m.UpdateMsi(false, 0)
	m.RecordStage("resolve", "ok", 20*time.Millisecond)

	assert.Equal(t, 10.0, testutil.ToFloat64(m.DocumentsTotal))
	assert.Equal(t, 25.0, testutil.ToFloat64(m.ReferencesTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.MsiLoaded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StagesTotal.WithLabelValues("resolve", "ok")))

	m.UpdateMsi(true, 7)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MsiLoaded))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.MsiLineages))
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.UpdateCorpus(3, 2)
	m.RecordBuild(time.Second, time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "refgraph.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "refgraph_documents_total 3")
	assert.Contains(t, string(data), "refgraph_last_build_timestamp_seconds ")
}
