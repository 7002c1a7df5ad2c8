package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nainya/refgraph/pkg/document"
	"github.com/nainya/refgraph/pkg/msi"
)

func TestComputeStats(t *testing.T) {
	docs := parseDocs(t, `[
	  {"docId":"A","publisher":"SMPTE","docType":"Standard","status":{"active":true},
	   "references":{"normative":["B","C"],"bibliographic":["D"]}},
	  {"docId":"B","publisher":" SMPTE ","docType":"Standard","status":{"superseded":true}},
	  {"docId":"C","publisher":"ISO","docType":"  "},
	  {"docId":"D"}
	]`)

	st := ComputeStats(docs, fixedNow, "run-1")
	assert.Equal(t, "2025-03-01T12:00:00Z", st.GeneratedAt)
	assert.Equal(t, "run-1", st.RunID)
	assert.Equal(t, 4, st.Documents.Total)
	assert.Equal(t, 3, st.Documents.References)
	assert.Equal(t, 2, st.Documents.Publishers)
	assert.Equal(t, 1, st.Documents.Active)
	assert.Equal(t, 2, st.Documents.DocTypes)
	assert.Equal(t, map[string]int{"Standard": 2, "Unknown": 2}, st.Documents.DocsByType)
	assert.Equal(t, []string{"Standard", "Unknown"}, st.Documents.SortedDocTypes())
}

func TestRunFromFiles(t *testing.T) {
	dir := t.TempDir()
	registry := filepath.Join(dir, "documents.json")
	require.NoError(t, os.WriteFile(registry, []byte(lineageRegistry), 0o644))

	docs, err := document.Load(registry)
	require.NoError(t, err)
	msiPath := filepath.Join(dir, "msi.json")
	require.NoError(t, WriteMSI(msiPath, msi.Build(docs, fixedNow)))

	opts := testOptions(nil)
	opts.RegistryPath = registry
	opts.MSIPath = msiPath
	res, err := New(opts).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.MSILoaded)
	assert.Equal(t, "run-1", res.Stats.RunID)
	assert.Equal(t, 4, res.Stats.Documents.Total)

	x, _ := res.Registry.Get("DOC.X")
	assert.Equal(t, "SMPTE.ST2067-2.2020", x.ReferencesResolved.Normative[0].ID)
}

func TestRunWithoutMSI(t *testing.T) {
	dir := t.TempDir()
	registry := filepath.Join(dir, "documents.json")
	require.NoError(t, os.WriteFile(registry, []byte(chainRegistry), 0o644))

	opts := testOptions(nil)
	opts.RegistryPath = registry
	opts.MSIPath = filepath.Join(dir, "missing.json")
	res, err := New(opts).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.MSILoaded)
	assert.Len(t, res.Documents, 3)
}

func TestRunRequiresRegistry(t *testing.T) {
	_, err := New(testOptions(nil)).Run(context.Background())
	assert.ErrorIs(t, err, ErrNoRegistry)

	opts := testOptions(nil)
	opts.RegistryPath = filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(opts.RegistryPath, []byte(`{"docId":"A"}`), 0o644))
	_, err = New(opts).Run(context.Background())
	assert.ErrorIs(t, err, document.ErrMalformed)
}

func TestWriteDocumentsCompressed(t *testing.T) {
	docs := parseDocs(t, chainRegistry)
	res, err := New(testOptions(nil)).Process(context.Background(), Input{Documents: docs})
	require.NoError(t, err)

	dir := t.TempDir()
	plain := filepath.Join(dir, "out", "documents.json")
	packed := filepath.Join(dir, "out", "documents.json.zst")
	require.NoError(t, WriteDocuments(plain, res.Documents))
	require.NoError(t, WriteDocuments(packed, res.Documents))

	fromPlain, err := ReadDocuments(plain)
	require.NoError(t, err)
	fromPacked, err := ReadDocuments(packed)
	require.NoError(t, err)
	assert.Equal(t, fromPlain, fromPacked)
	assert.Equal(t, []string{"B", "C"}, fromPacked[0].ReferenceTree)

	raw, err := os.ReadFile(packed)
	require.NoError(t, err)
	assert.False(t, json.Valid(raw))

	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestWriteEmptyDocuments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documents.json")
	require.NoError(t, WriteDocuments(path, nil))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestWriteStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api", "stats.json")
	st := ComputeStats(parseDocs(t, chainRegistry), fixedNow, "run-1")
	require.NoError(t, WriteStats(path, st))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "run-1", got["runId"])
	docs := got["documents"].(map[string]interface{})
	assert.Equal(t, float64(3), docs["total"])
	assert.Equal(t, float64(2), docs["references"])
	assert.NotContains(t, got, "site")
}

func TestStatsCarrySiteMetadata(t *testing.T) {
	opts := testOptions(nil)
	opts.Site = Site{Name: "Registry", CanonicalBase: "https://registry.example.org"}
	res, err := New(opts).Process(context.Background(), Input{Documents: parseDocs(t, chainRegistry)})
	require.NoError(t, err)
	require.NotNil(t, res.Stats.Site)
	assert.Equal(t, "Registry", res.Stats.Site.Name)

	path := filepath.Join(t.TempDir(), "stats.json")
	require.NoError(t, WriteStats(path, res.Stats))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"canonicalBase": "https://registry.example.org"`)
	assert.NotContains(t, string(data), "description")

	res.Stats.SetSite(Site{})
	assert.Nil(t, res.Stats.Site)
}
