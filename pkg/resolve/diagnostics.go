// ABOUTME: Run-scoped diagnostics collector for reference resolution
// ABOUTME: Deduplicates missing-lineage reports and one-time warnings without globals

package resolve

import (
	"sort"
	"sync"
)

// MissingLineage records an undated reference whose lineage key could not be derived.
type MissingLineage struct {
	DocID string `json:"docId"`
	Ref   string `json:"ref"`
	Kind  string `json:"kind"`
}

// Diagnostics collects soft failures for one run. It is safe for concurrent use.
type Diagnostics struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	missing []MissingLineage
	once    map[string]struct{}
}

// NewDiagnostics creates an empty collector
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		seen: make(map[string]struct{}),
		once: make(map[string]struct{}),
	}
}

// AddMissingLineage records a (docID, ref) pair and reports whether it was new.
func (d *Diagnostics) AddMissingLineage(docID, ref, kind string) bool {
	key := docID + "::" + ref
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, dup := d.seen[key]; dup {
		return false
	}
	d.seen[key] = struct{}{}
	d.missing = append(d.missing, MissingLineage{DocID: docID, Ref: ref, Kind: kind})
	return true
}

// Once reports true the first time it is called for topic in this run.
func (d *Diagnostics) Once(topic string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, done := d.once[topic]; done {
		return false
	}
	d.once[topic] = struct{}{}
	return true
}

// Count returns the number of unique missing-lineage reports
func (d *Diagnostics) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.missing)
}

// Entries returns all reports ordered by docId, then ref.
func (d *Diagnostics) Entries() []MissingLineage {
	d.mu.Lock()
	out := make([]MissingLineage, len(d.missing))
	copy(out, d.missing)
	d.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].DocID != out[j].DocID {
			return out[i].DocID < out[j].DocID
		}
		return out[i].Ref < out[j].Ref
	})
	return out
}
