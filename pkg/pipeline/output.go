// ABOUTME: Output writers for annotated documents, stats and the MSI
// ABOUTME: Writes are atomic; a .zst suffix selects zstd compression

package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/nainya/refgraph/pkg/document"
	"github.com/nainya/refgraph/pkg/msi"
)

// Stats summarizes a registry snapshot
type Stats struct {
	GeneratedAt string        `json:"generatedAt" yaml:"generatedAt"`
	RunID       string        `json:"runId,omitempty" yaml:"runId,omitempty"`
	Site        *Site         `json:"site,omitempty" yaml:"site,omitempty"`
	Documents   DocumentStats `json:"documents" yaml:"documents"`
}

// Site identifies the published registry a report describes
type Site struct {
	Name          string `json:"name,omitempty" yaml:"name,omitempty"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	CanonicalBase string `json:"canonicalBase,omitempty" yaml:"canonicalBase,omitempty"`
}

// SetSite attaches site metadata; an empty site is omitted from the report
func (s *Stats) SetSite(site Site) {
	if site == (Site{}) {
		s.Site = nil
		return
	}
	s.Site = &site
}

// DocumentStats holds document counts
type DocumentStats struct {
	Total      int            `json:"total" yaml:"total"`
	References int            `json:"references" yaml:"references"`
	Publishers int            `json:"publishers" yaml:"publishers"`
	Active     int            `json:"active" yaml:"active"`
	DocTypes   int            `json:"docTypes" yaml:"docTypes"`
	DocsByType map[string]int `json:"docsByType" yaml:"docsByType"`
}

// ComputeStats counts documents, declared references, distinct publishers, active
// documents and documents per docType. A blank docType counts as "Unknown".
func ComputeStats(docs []*document.Document, generatedAt time.Time, runID string) Stats {
	st := Stats{
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		RunID:       runID,
		Documents:   DocumentStats{DocsByType: map[string]int{}},
	}
	publishers := make(map[string]struct{})
	for _, d := range docs {
		st.Documents.Total++
		st.Documents.References += d.RefCount()
		if p := strings.TrimSpace(d.Publisher); p != "" {
			publishers[p] = struct{}{}
		}
		if d.Status != nil && d.Status.Active {
			st.Documents.Active++
		}
		dt := strings.TrimSpace(d.DocType)
		if dt == "" {
			dt = "Unknown"
		}
		st.Documents.DocsByType[dt]++
	}
	st.Documents.Publishers = len(publishers)
	st.Documents.DocTypes = len(st.Documents.DocsByType)
	return st
}

// WriteDocuments writes docs as an indented JSON array
func WriteDocuments(path string, docs []*document.Document) error {
	if docs == nil {
		docs = []*document.Document{}
	}
	return writeJSON(path, docs)
}

// WriteStats writes a stats report
func WriteStats(path string, st Stats) error {
	return writeJSON(path, st)
}

// WriteMSI writes a master suite index
func WriteMSI(path string, f *msi.File) error {
	return writeJSON(path, f)
}

// ReadDocuments reads a documents file written by WriteDocuments
func ReadDocuments(path string) ([]*document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		if data, err = dec.DecodeAll(data, nil); err != nil {
			return nil, fmt.Errorf("decompress %s: %w", path, err)
		}
	}
	return document.Parse(data)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	data = append(data, '\n')

	if strings.HasSuffix(path, ".zst") {
		var buf bytes.Buffer
		enc, err := zstd.NewWriter(&buf)
		if err != nil {
			return err
		}
		if _, err := enc.Write(data); err != nil {
			enc.Close()
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
		data = buf.Bytes()
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic replaces path so readers never observe a partial file
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// SortedDocTypes returns docsByType keys in ascending order
func (s DocumentStats) SortedDocTypes() []string {
	out := make([]string, 0, len(s.DocsByType))
	for k := range s.DocsByType {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
