// ABOUTME: In-memory MSI indexes used by reference resolution
// ABOUTME: Lineage-keyed lookup plus a base-token fast path covering every edition

package msi

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/nainya/refgraph/pkg/lineage"
)

// ErrMalformed indicates the MSI file could not be decoded
var ErrMalformed = errors.New("msi: malformed index")

// Index is the read-only lookup structure built once per run.
type Index struct {
	byLineage map[string]Latest
	byBase    map[string]Latest
}

// Empty returns an index with no lineages; resolution against it never upgrades.
func Empty() *Index {
	return &Index{
		byLineage: map[string]Latest{},
		byBase:    map[string]Latest{},
	}
}

// Load reads an MSI file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read msi %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes an MSI document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if f.Lineages == nil {
		return nil, fmt.Errorf("%w: no lineages array", ErrMalformed)
	}
	return &f, nil
}

// LoadIndex loads path and builds its index. On any failure it returns an empty
// index together with the error, so callers can log once and continue.
func LoadIndex(path string) (*Index, error) {
	f, err := Load(path)
	if err != nil {
		return Empty(), err
	}
	return NewIndex(f), nil
}

// NewIndex builds both lookups from f. Lineages without a key are skipped. When two
// lineages claim the same base token the later entry in the file wins.
func NewIndex(f *File) *Index {
	idx := Empty()
	if f == nil {
		return idx
	}

	for _, li := range f.Lineages {
		if li.Key == "" {
			continue
		}
		latest := Latest{
			LineageKey:   li.Key,
			LatestBaseID: li.LatestBaseID,
			LatestAnyID:  li.LatestAnyID,
		}
		idx.byLineage[li.Key] = latest

		for _, d := range li.Docs {
			if d.DocID == "" {
				continue
			}
			idx.byBase[lineage.EditionBase(d.DocID)] = latest
		}
		if li.LatestBaseID != "" {
			idx.byBase[lineage.EditionBase(li.LatestBaseID)] = latest
		}
		if li.LatestAnyID != "" {
			idx.byBase[lineage.EditionBase(li.LatestAnyID)] = latest
		}
	}
	return idx
}

// Latest looks up a lineage by key
func (idx *Index) Latest(key string) (Latest, bool) {
	l, ok := idx.byLineage[key]
	return l, ok
}

// BaseHit looks up the lineage owning a base token
func (idx *Index) BaseHit(base string) (Latest, bool) {
	l, ok := idx.byBase[base]
	return l, ok
}

// Len returns the number of indexed lineages
func (idx *Index) Len() int {
	return len(idx.byLineage)
}

// IsEmpty reports whether no lineage is indexed
func (idx *Index) IsEmpty() bool {
	return len(idx.byLineage) == 0
}
