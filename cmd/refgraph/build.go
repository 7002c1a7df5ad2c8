package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nainya/refgraph/internal/config"
	"github.com/nainya/refgraph/internal/logger"
	"github.com/nainya/refgraph/internal/metrics"
	"github.com/nainya/refgraph/pkg/pipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Resolve references and write annotated documents",
	Long: `Load the registry and master suite index, resolve every document's references,
compute referencedBy and referenceTree, and write the annotated documents.

An output path ending in .zst is written zstd-compressed. A missing or unreadable
master suite index is not fatal: the build continues without upgrading undated
references and warns once.`,
	Args: cobra.NoArgs,
	RunE: runBuildCmd,
}

func init() {
	addBuildFlags(buildCmd)
	rootCmd.AddCommand(buildCmd)
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().String("output", "", "Annotated documents output (.json or .json.zst)")
	cmd.Flags().String("stats", "", "Stats report output")
	cmd.Flags().String("metrics", "", "Prometheus textfile output")
	cmd.Flags().Int("workers", 0, "Concurrent document resolvers")
	cmd.Flags().Bool("ref-warnings", true, "Log undated references without a lineage key")
	cmd.Flags().Bool("compress", false, "Write zstd-compressed output")
}

func runBuildCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	ctx, cancel := newContext()
	defer cancel()

	res, err := runBuild(ctx, cfg, log)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Built %d documents (%d missing-lineage references) -> %s\n",
		len(res.Documents), res.Diagnostics.Count(), cfg.Paths.Output)
	return nil
}

// runBuild runs one pipeline pass and writes every configured output
func runBuild(ctx context.Context, cfg *config.Config, log *logger.Logger) (*pipeline.Result, error) {
	p := pipeline.New(pipeline.Options{
		RegistryPath:       cfg.Paths.Registry,
		MSIPath:            cfg.Paths.MSI,
		TitleLabelDocTypes: cfg.Site.TitleLabelDocTypes,
		Site:               siteInfo(cfg),
		Workers:            cfg.Build.Workers,
		EmitRefWarnings:    cfg.Build.EmitRefWarnings,
		Logger:             log,
		Metrics:            metrics.NewMetrics(),
	})

	res, err := p.Run(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.Paths.Output != "" {
		if err := pipeline.WriteDocuments(cfg.Paths.Output, res.Documents); err != nil {
			return nil, fmt.Errorf("write documents: %w", err)
		}
	}
	if cfg.Paths.Stats != "" {
		if err := pipeline.WriteStats(cfg.Paths.Stats, res.Stats); err != nil {
			return nil, fmt.Errorf("write stats: %w", err)
		}
	}
	if cfg.Paths.Metrics != "" {
		if err := p.Metrics().WriteTextfile(cfg.Paths.Metrics); err != nil {
			return nil, fmt.Errorf("write metrics: %w", err)
		}
	}
	return res, nil
}

// siteInfo carries the configured site metadata into reports
func siteInfo(cfg *config.Config) pipeline.Site {
	return pipeline.Site{
		Name:          cfg.Site.Name,
		Description:   cfg.Site.Description,
		CanonicalBase: cfg.Site.CanonicalBase,
	}
}
