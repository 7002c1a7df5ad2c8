// ABOUTME: Builds a Master Suite Index from registry documents
// ABOUTME: Groups editions by lineage key and tracks the latest base and overall edition

package msi

import (
	"sort"
	"time"

	"github.com/nainya/refgraph/pkg/document"
	"github.com/nainya/refgraph/pkg/lineage"
)

// Build groups docs by lineage key. Editions are ordered oldest to newest by
// edition date, ties broken by docId; documents without a derivable key are skipped.
func Build(docs []*document.Document, generatedAt time.Time) *File {
	groups := make(map[string][]*document.Document)
	for _, d := range docs {
		k, ok := lineage.KeyFromDoc(d)
		if !ok {
			continue
		}
		groups[k.String()] = append(groups[k.String()], d)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f := &File{Lineages: make([]Lineage, 0, len(keys))}
	if !generatedAt.IsZero() {
		f.GeneratedAt = generatedAt.UTC().Format(time.RFC3339)
	}

	for _, k := range keys {
		members := groups[k]
		SortEditions(members)

		li := Lineage{Key: k, Docs: make([]Edition, 0, len(members))}
		for _, d := range members {
			amend := lineage.IsAmendment(d.DocID)
			li.Docs = append(li.Docs, Edition{
				DocID:           d.DocID,
				PublicationDate: d.PublicationDate,
				Amendment:       amend,
			})
			li.LatestAnyID = d.DocID
			if !amend {
				li.LatestBaseID = d.DocID
			}
		}
		f.Lineages = append(f.Lineages, li)
	}
	return f
}

// SortEditions orders docs oldest to newest. Documents with no date sort first.
func SortEditions(docs []*document.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		di, dj := EditionDate(docs[i]), EditionDate(docs[j])
		if di != dj {
			return di < dj
		}
		return docs[i].DocID < docs[j].DocID
	})
}

// EditionDate returns the publication date, or the date carried by the docId when
// the record has none. Dates compare lexically.
func EditionDate(d *document.Document) string {
	if d.PublicationDate != "" {
		return d.PublicationDate
	}
	base := lineage.EditionBase(d.DocID)
	if len(base) >= len(d.DocID) {
		return ""
	}
	tail := d.DocID[len(base)+1:]
	for i, c := range tail {
		if (c < '0' || c > '9') && c != '-' {
			tail = tail[:i]
			break
		}
	}
	if len(tail) == 8 {
		return tail[:4] + "-" + tail[4:6] + "-" + tail[6:]
	}
	return tail
}
