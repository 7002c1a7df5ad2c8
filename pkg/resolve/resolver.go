// ABOUTME: Reference resolver upgrading undated references to their latest edition
// ABOUTME: Exact registry ids short-circuit; dated references are pinned

package resolve

import (
	"strings"

	"github.com/nainya/refgraph/pkg/document"
	"github.com/nainya/refgraph/pkg/lineage"
	"github.com/nainya/refgraph/pkg/msi"
)

// Reference kinds
const (
	KindNormative     = "normative"
	KindBibliographic = "bibliographic"
)

// Outcome classifies how a single reference was resolved.
type Outcome int

const (
	// OutcomeExact: the reference is a registry docId and was kept as is
	OutcomeExact Outcome = iota
	// OutcomeBaseUpgrade: upgraded through the base-token index
	OutcomeBaseUpgrade
	// OutcomeLineageUpgrade: upgraded through the lineage index
	OutcomeLineageUpgrade
	// OutcomePinned: dated reference left unchanged
	OutcomePinned
	// OutcomeUnchanged: undated reference with a lineage key but nothing newer
	OutcomeUnchanged
	// OutcomeNoLineage: undated reference with no derivable lineage key
	OutcomeNoLineage
)

// String returns the metric label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeExact:
		return "exact"
	case OutcomeBaseUpgrade:
		return "base_upgrade"
	case OutcomeLineageUpgrade:
		return "lineage_upgrade"
	case OutcomePinned:
		return "pinned"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeNoLineage:
		return "no_lineage"
	default:
		return "unknown"
	}
}

// KnownIDs answers exact docId membership. *document.Registry satisfies it.
type KnownIDs interface {
	Has(docID string) bool
}

// Resolver resolves references against one run's registry and MSI snapshot.
// It holds no mutable state besides the shared Diagnostics collector.
type Resolver struct {
	known KnownIDs
	index *msi.Index
	diags *Diagnostics
}

// NewResolver creates a resolver. A nil index behaves like an empty MSI and a nil
// collector discards diagnostics.
func NewResolver(known KnownIDs, index *msi.Index, diags *Diagnostics) *Resolver {
	if index == nil {
		index = msi.Empty()
	}
	if diags == nil {
		diags = NewDiagnostics()
	}
	return &Resolver{known: known, index: index, diags: diags}
}

// Diagnostics returns the collector the resolver reports into
func (r *Resolver) Diagnostics() *Diagnostics {
	return r.diags
}

// Resolve resolves one raw reference cited by docID.
func (r *Resolver) Resolve(docID, raw, kind string) (document.ResolvedRef, Outcome) {
	if r.known != nil && r.known.Has(raw) {
		return document.ResolvedRef{ID: raw}, OutcomeExact
	}

	base, _ := lineage.StripDatedTail(raw)
	undated := lineage.IsUndated(raw)
	resolved := raw
	outcome := OutcomeUnchanged
	if !undated {
		outcome = OutcomePinned
	}

	if hit, ok := r.index.BaseHit(base); ok && undated {
		if next := hit.Target(); next != "" && next != raw {
			resolved = next
			outcome = OutcomeBaseUpgrade
		}
	}

	if resolved == raw {
		keyInput := base
		if !strings.HasSuffix(keyInput, ".") {
			keyInput += "."
		}
		key, ok := lineage.KeyFromDocID(keyInput)
		switch {
		case ok:
			if li, found := r.index.Latest(key.String()); found && undated {
				if next := li.Target(); next != "" && next != raw {
					resolved = next
					outcome = OutcomeLineageUpgrade
				}
			}
		case undated:
			r.diags.AddMissingLineage(docID, raw, kind)
			outcome = OutcomeNoLineage
		}
	}

	return document.ResolvedRef{ID: resolved, Undated: undated}, outcome
}

// Tally keys outcome counts by reference kind.
type Tally struct {
	Kind    string
	Outcome Outcome
}

// DocResult is the outcome of resolving every reference of one document.
type DocResult struct {
	DocID    string
	Resolved *document.ResolvedReferences
	// Outgoing lists resolved ids, normative then bibliographic, in resolution order.
	Outgoing []string
	Outcomes map[Tally]int
}

// ResolveDocument resolves both reference lists of d. Each list is resolved in
// ascending raw-id order over a copy; d.References is not modified. Resolved is nil
// when d declares no references.
func (r *Resolver) ResolveDocument(d *document.Document) DocResult {
	res := DocResult{DocID: d.DocID, Outcomes: map[Tally]int{}}
	if d.References == nil {
		return res
	}

	resolveList := func(raw []string, kind string) []document.ResolvedRef {
		sorted := document.SortedCopy(raw)
		if len(sorted) == 0 {
			return nil
		}
		out := make([]document.ResolvedRef, 0, len(sorted))
		for _, ref := range sorted {
			rr, outcome := r.Resolve(d.DocID, ref, kind)
			res.Outcomes[Tally{Kind: kind, Outcome: outcome}]++
			res.Outgoing = append(res.Outgoing, rr.ID)
			out = append(out, rr)
		}
		return out
	}

	norm := resolveList(d.References.Normative, KindNormative)
	bib := resolveList(d.References.Bibliographic, KindBibliographic)
	if norm != nil || bib != nil {
		res.Resolved = &document.ResolvedReferences{Normative: norm, Bibliographic: bib}
	}
	return res
}
