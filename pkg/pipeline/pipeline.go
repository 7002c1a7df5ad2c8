// ABOUTME: Build pipeline that joins a registry and an MSI into annotated documents
// ABOUTME: Runs ordered stages over one in-memory snapshot per run

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nainya/refgraph/internal/logger"
	"github.com/nainya/refgraph/internal/metrics"
	"github.com/nainya/refgraph/pkg/document"
	"github.com/nainya/refgraph/pkg/msi"
	"github.com/nainya/refgraph/pkg/resolve"
	"github.com/nainya/refgraph/pkg/status"
)

// RegistryName names the document registry in validation errors
const RegistryName = "documents"

// ErrNoRegistry is returned by Run when no registry path is configured
var ErrNoRegistry = errors.New("pipeline: no registry path")

// Options configures a pipeline
type Options struct {
	RegistryPath       string
	MSIPath            string
	TitleLabelDocTypes []string
	Site               Site
	// Workers bounds concurrent per-document resolution. Values below 1 mean 1.
	Workers         int
	EmitRefWarnings bool

	Logger  *logger.Logger
	Metrics *metrics.Metrics
	// Now and NewRunID are overridable for reproducible output.
	Now      func() time.Time
	NewRunID func() string
}

// Input is the snapshot one run operates on
type Input struct {
	Documents []*document.Document
	MSI       *msi.Index
	// MSIErr explains why MSI is empty, when it is.
	MSIErr error
}

// Result is the outcome of one run
type Result struct {
	RunID       string
	GeneratedAt time.Time
	Registry    *document.Registry
	Documents   []*document.Document
	Diagnostics *resolve.Diagnostics
	Labels      *status.Labels
	MSILoaded   bool
	Stats       Stats
}

// RunContext carries shared state between stages
type RunContext struct {
	RunID       string
	StartedAt   time.Time
	Input       Input
	Registry    *document.Registry
	Index       *msi.Index
	Diagnostics *resolve.Diagnostics
	Outgoing    map[string][]string
	Labels      *status.Labels
}

// Stage is one step of a run
type Stage interface {
	Name() string
	Execute(ctx context.Context, rc *RunContext) (int, error)
}

// Pipeline runs the build stages in order
type Pipeline struct {
	opts    Options
	log     *logger.Logger
	metrics *metrics.Metrics
	stages  []Stage
}

// New creates a pipeline
func New(opts Options) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewMetrics()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewRunID == nil {
		opts.NewRunID = uuid.NewString
	}
	if opts.TitleLabelDocTypes == nil {
		opts.TitleLabelDocTypes = status.DefaultTitleLabelDocTypes
	}

	p := &Pipeline{
		opts:    opts,
		log:     opts.Logger,
		metrics: opts.Metrics,
	}
	p.stages = []Stage{
		&validateStage{},
		&msiStage{log: p.log.StageLogger("msi"), metrics: p.metrics},
		&lineageStage{},
		&suiteStage{},
		&docTypeStage{},
		&resolveStage{workers: opts.Workers, emitWarnings: opts.EmitRefWarnings, log: p.log, metrics: p.metrics},
		&reverseStage{},
		&treeStage{},
		&statusStage{titleTypes: opts.TitleLabelDocTypes},
	}
	return p
}

// Metrics returns the metrics the pipeline records into
func (p *Pipeline) Metrics() *metrics.Metrics {
	return p.metrics
}

// LoadInput reads the registry and the MSI. A registry failure is fatal; an MSI
// failure yields an empty index and is reported through Input.MSIErr.
func (p *Pipeline) LoadInput() (Input, error) {
	if p.opts.RegistryPath == "" {
		return Input{}, ErrNoRegistry
	}
	docs, err := document.Load(p.opts.RegistryPath)
	if err != nil {
		return Input{}, err
	}

	in := Input{Documents: docs}
	if p.opts.MSIPath == "" {
		in.MSI = msi.Empty()
		in.MSIErr = errors.New("no master suite index configured")
		return in, nil
	}
	in.MSI, in.MSIErr = msi.LoadIndex(p.opts.MSIPath)
	return in, nil
}

// Run loads the configured inputs and processes them
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	in, err := p.LoadInput()
	if err != nil {
		return nil, err
	}
	return p.Process(ctx, in)
}

// Process runs every stage over in. Documents in in are annotated in place; their
// raw references are never modified.
func (p *Pipeline) Process(ctx context.Context, in Input) (*Result, error) {
	start := p.opts.Now()
	rc := &RunContext{
		RunID:       p.opts.NewRunID(),
		StartedAt:   start,
		Input:       in,
		Index:       in.MSI,
		Diagnostics: resolve.NewDiagnostics(),
	}
	if rc.Index == nil {
		rc.Index = msi.Empty()
	}
	p.log.LogBuildStart(rc.RunID, p.opts.RegistryPath, p.opts.MSIPath)

	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stageStart := time.Now()
		n, err := stage.Execute(ctx, rc)
		elapsed := time.Since(stageStart)
		p.log.LogStage(stage.Name(), elapsed, n, err)
		if err != nil {
			p.metrics.RecordStage(stage.Name(), "error", elapsed)
			return nil, fmt.Errorf("%s: %w", stage.Name(), err)
		}
		p.metrics.RecordStage(stage.Name(), "ok", elapsed)
	}

	docs := rc.Registry.Documents()
	st := ComputeStats(docs, start, rc.RunID)
	st.SetSite(p.opts.Site)
	p.metrics.UpdateCorpus(st.Documents.Total, st.Documents.References)
	finished := p.opts.Now()
	p.metrics.RecordBuild(finished.Sub(start), finished)
	p.log.LogBuildDone(rc.RunID, len(docs), rc.Diagnostics.Count(), finished.Sub(start))

	return &Result{
		RunID:       rc.RunID,
		GeneratedAt: start,
		Registry:    rc.Registry,
		Documents:   docs,
		Diagnostics: rc.Diagnostics,
		Labels:      rc.Labels,
		MSILoaded:   in.MSIErr == nil,
		Stats:       st,
	}, nil
}
