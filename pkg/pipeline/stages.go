// ABOUTME: Pipeline stages from registry validation to status annotation
// ABOUTME: Each stage reads the run context and attaches derived fields to documents

package pipeline

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/nainya/refgraph/internal/logger"
	"github.com/nainya/refgraph/internal/metrics"
	"github.com/nainya/refgraph/pkg/document"
	"github.com/nainya/refgraph/pkg/graph"
	"github.com/nainya/refgraph/pkg/lineage"
	"github.com/nainya/refgraph/pkg/resolve"
	"github.com/nainya/refgraph/pkg/status"
)

// validateStage clears stale derived fields and enforces registry invariants
type validateStage struct{}

func (s *validateStage) Name() string { return "validate" }

func (s *validateStage) Execute(_ context.Context, rc *RunContext) (int, error) {
	for _, d := range rc.Input.Documents {
		if d != nil {
			d.ClearDerived()
		}
	}
	reg, err := document.NewRegistry(RegistryName, rc.Input.Documents)
	if err != nil {
		return 0, err
	}
	rc.Registry = reg
	return reg.Len(), nil
}

// msiStage reports degraded mode once per run
type msiStage struct {
	log     *logger.Logger
	metrics *metrics.Metrics
}

func (s *msiStage) Name() string { return "msi" }

func (s *msiStage) Execute(_ context.Context, rc *RunContext) (int, error) {
	loaded := rc.Input.MSIErr == nil
	s.metrics.UpdateMsi(loaded, rc.Index.Len())
	if !loaded && rc.Diagnostics.Once("msi-unavailable") {
		s.log.Warn().Err(rc.Input.MSIErr).Msg("Master suite index unavailable, undated references will not be upgraded")
	}
	return rc.Index.Len(), nil
}

// lineageStage attaches latest-edition facts for documents whose lineage the MSI knows
type lineageStage struct{}

func (s *lineageStage) Name() string { return "lineage" }

func (s *lineageStage) Execute(_ context.Context, rc *RunContext) (int, error) {
	n := 0
	for _, d := range rc.Registry.Documents() {
		key, ok := lineage.KeyFromDoc(d)
		if !ok {
			continue
		}
		li, found := rc.Index.Latest(key.String())
		if !found {
			continue
		}
		isLatestAny := li.LatestAnyID != "" && d.DocID == li.LatestAnyID
		isLatestBase := li.LatestBaseID != "" && d.DocID == li.LatestBaseID

		d.MsiLatestAny = li.LatestAnyID
		d.MsiLatestBase = li.LatestBaseID
		d.IsLatestAny = &isLatestAny
		d.IsLatestBase = &isLatestBase
		d.DocBase = key.String()
		d.DocBaseLabel = key.Label()
		if d.Status == nil {
			d.Status = &document.Status{}
		}
		latest := isLatestAny
		d.Status.LatestVersion = &latest
		n++
	}
	return n, nil
}

// suiteStage groups documents sharing a docBase into ordered suites
type suiteStage struct{}

func (s *suiteStage) Name() string { return "suite" }

func (s *suiteStage) Execute(_ context.Context, rc *RunContext) (int, error) {
	suites := make(map[string][]*document.Document)
	for _, d := range rc.Registry.Documents() {
		if d.DocBase != "" {
			suites[d.DocBase] = append(suites[d.DocBase], d)
		}
	}

	entries := make(map[string][]document.SuiteEntry, len(suites))
	for base, members := range suites {
		sortSuite(members)
		list := make([]document.SuiteEntry, len(members))
		for i, m := range members {
			list[i] = document.SuiteEntry{
				DocID:           m.DocID,
				DocLabel:        m.DocLabel,
				Href:            m.Href,
				PublicationDate: m.PublicationDate,
				Status:          m.StatusOrZero(),
				IsLatestBase:    m.IsLatestBase != nil && *m.IsLatestBase,
				IsNewestInBase:  i == len(members)-1,
			}
		}
		entries[base] = list
	}

	for _, d := range rc.Registry.Documents() {
		if d.DocBase == "" {
			continue
		}
		list := entries[d.DocBase]
		d.DocSuite = make([]document.SuiteEntry, len(list))
		copy(d.DocSuite, list)
	}
	return len(suites), nil
}

// sortSuite orders oldest to newest by publicationDate; undated editions go last
// and ties fall back to docId.
func sortSuite(docs []*document.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i].PublicationDate, docs[j].PublicationDate
		switch {
		case a != "" && b != "" && a != b:
			return a < b
		case a == "" && b != "":
			return false
		case a != "" && b == "":
			return true
		}
		return docs[i].DocID < docs[j].DocID
	})
}

// docTypeStage attaches publisher docType abbreviations
type docTypeStage struct{}

func (s *docTypeStage) Name() string { return "doctype" }

func (s *docTypeStage) Execute(_ context.Context, rc *RunContext) (int, error) {
	n := 0
	for _, d := range rc.Registry.Documents() {
		if abbr, ok := status.DocTypeAbbreviation(d.Publisher, d.DocType); ok && abbr != "" {
			d.DocTypeAbr = abbr
			n++
		}
	}
	return n, nil
}

// resolveStage resolves every document's references. Documents are independent
// given the read-only indexes, so they are resolved concurrently and the results
// attached in registry order.
type resolveStage struct {
	workers      int
	emitWarnings bool
	log          *logger.Logger
	metrics      *metrics.Metrics
}

func (s *resolveStage) Name() string { return "resolve" }

func (s *resolveStage) Execute(ctx context.Context, rc *RunContext) (int, error) {
	docs := rc.Registry.Documents()
	resolver := resolve.NewResolver(rc.Registry, rc.Index, rc.Diagnostics)
	results := make([]resolve.DocResult, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, d := range docs {
		i, d := i, d
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = resolver.ResolveDocument(d)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	refs := 0
	for i, d := range docs {
		d.ReferencesResolved = results[i].Resolved
		for tally, n := range results[i].Outcomes {
			s.metrics.RecordRef(tally.Kind, tally.Outcome.String(), n)
			refs += n
		}
	}

	missing := rc.Diagnostics.Entries()
	s.metrics.RecordMissingLineage(len(missing))
	if s.emitWarnings {
		logMissing(s.log, missing)
	}
	return refs, nil
}

// logMissing emits one line per missing-lineage entry and a per-document count.
// entries must be grouped by docId.
func logMissing(log *logger.Logger, entries []resolve.MissingLineage) {
	for i := 0; i < len(entries); {
		refs := log.RefLogger(entries[i].DocID)
		j := i
		for j < len(entries) && entries[j].DocID == entries[i].DocID {
			refs.LogMissingLineage(entries[j].Ref, entries[j].Kind)
			j++
		}
		refs.LogRefSummary(j - i)
		i = j
	}
}

// reverseStage attaches referencedBy
type reverseStage struct{}

func (s *reverseStage) Name() string { return "reverse" }

func (s *reverseStage) Execute(_ context.Context, rc *RunContext) (int, error) {
	rc.Outgoing = graph.Outgoing(rc.Registry.Documents())
	citers := graph.ReferencedBy(rc.Outgoing)
	n := 0
	for _, d := range rc.Registry.Documents() {
		if by := citers[d.DocID]; len(by) > 0 {
			d.ReferencedBy = by
			n++
		}
	}
	return n, nil
}

// treeStage attaches referenceTree and the dependency flag
type treeStage struct{}

func (s *treeStage) Name() string { return "tree" }

func (s *treeStage) Execute(_ context.Context, rc *RunContext) (int, error) {
	trees := graph.BuildTrees(rc.Outgoing)
	n := 0
	for _, d := range rc.Registry.Documents() {
		if tree := trees[d.DocID]; len(tree) > 0 {
			d.ReferenceTree = tree
			n++
		}
		d.DocDependancy = len(d.ReferencedBy) > 0 || len(d.ReferenceTree) > 0
	}
	return n, nil
}

// statusStage attaches currentStatus and builds the label accessors
type statusStage struct {
	titleTypes []string
}

func (s *statusStage) Name() string { return "status" }

func (s *statusStage) Execute(_ context.Context, rc *RunContext) (int, error) {
	docs := rc.Registry.Documents()
	for _, d := range docs {
		d.CurrentStatus = status.CurrentStatus(d.StatusOrZero())
	}
	rc.Labels = status.NewLabels(docs, s.titleTypes)
	return len(docs), nil
}
