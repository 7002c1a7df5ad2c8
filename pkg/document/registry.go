// ABOUTME: In-memory document registry for one build run
// ABOUTME: Loads, validates ordering/uniqueness, and serves id lookups

package document

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Registry is a validated, read-only view over the documents of one run.
// Documents are shared with the caller; derived fields may be attached to them.
type Registry struct {
	name string
	docs []*Document
	byID map[string]*Document
}

// Load reads and parses a registry file.
func Load(path string) ([]*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a JSON array of registry records.
func Parse(data []byte) ([]*Document, error) {
	var docs []*Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for i, d := range docs {
		if d == nil {
			return nil, fmt.Errorf("%w: record %d is null", ErrMalformed, i)
		}
	}
	return docs, nil
}

// Validate checks that every docId is present, unique, and that the collection is
// strictly ascending under case-insensitive comparison.
func Validate(docs []*Document, name string) error {
	seen := make(map[string]int, len(docs))
	for i, d := range docs {
		if d == nil || d.DocID == "" {
			return &ValidationError{Registry: name, Index: i, Err: ErrMissingID}
		}
		if _, dup := seen[d.DocID]; dup {
			return &ValidationError{Registry: name, DocID: d.DocID, Index: i, Err: ErrDuplicateID}
		}
		seen[d.DocID] = i
	}

	for i := 1; i < len(docs); i++ {
		prev, cur := docs[i-1].DocID, docs[i].DocID
		if strings.ToUpper(prev) >= strings.ToUpper(cur) {
			return &ValidationError{Registry: name, DocID: cur, PrevID: prev, Index: i, Err: ErrNotSorted}
		}
	}
	return nil
}

// NewRegistry validates docs and indexes them by docId.
func NewRegistry(name string, docs []*Document) (*Registry, error) {
	if err := Validate(docs, name); err != nil {
		return nil, err
	}
	r := &Registry{
		name: name,
		docs: docs,
		byID: make(map[string]*Document, len(docs)),
	}
	for _, d := range docs {
		r.byID[d.DocID] = d
	}
	return r, nil
}

// Name returns the registry name used in errors and logs
func (r *Registry) Name() string {
	return r.name
}

// Get returns the document with the exact docId
func (r *Registry) Get(docID string) (*Document, bool) {
	d, ok := r.byID[docID]
	return d, ok
}

// Has reports whether docID is an exact registry id
func (r *Registry) Has(docID string) bool {
	_, ok := r.byID[docID]
	return ok
}

// Len returns the number of documents
func (r *Registry) Len() int {
	return len(r.docs)
}

// Documents returns the documents in registry order.
func (r *Registry) Documents() []*Document {
	return r.docs
}

// IDs returns all docIds in registry order
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.docs))
	for i, d := range r.docs {
		ids[i] = d.DocID
	}
	return ids
}

// Find returns documents whose docId, label or title contains every query term,
// case-insensitively, in registry order.
func (r *Registry) Find(query string, limit int) []*Document {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil
	}

	var out []*Document
	for _, d := range r.docs {
		if limit > 0 && len(out) >= limit {
			break
		}
		hay := strings.ToLower(d.DocID + " " + d.DocLabel + " " + d.DocTitle)
		match := true
		for _, t := range terms {
			if !strings.Contains(hay, t) {
				match = false
				break
			}
		}
		if match {
			out = append(out, d)
		}
	}
	return out
}

// ClearDerived drops fields a previous build may have attached, so a registry
// that was itself produced by a build resolves the same as its source.
func (d *Document) ClearDerived() {
	d.ReferencesResolved = nil
	d.ReferencedBy = nil
	d.ReferenceTree = nil
	d.DocDependancy = false
	d.CurrentStatus = ""
	d.DocTypeAbr = ""
	d.MsiLatestAny = ""
	d.MsiLatestBase = ""
	d.IsLatestAny = nil
	d.IsLatestBase = nil
	d.DocBase = ""
	d.DocBaseLabel = ""
	d.DocSuite = nil
	if d.Status != nil {
		d.Status.LatestVersion = nil
	}
}

// SortedCopy returns a sorted copy of ids, leaving the input untouched.
func SortedCopy(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	sort.Strings(out)
	return out
}
