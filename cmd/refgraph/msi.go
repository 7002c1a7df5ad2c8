package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nainya/refgraph/pkg/document"
	"github.com/nainya/refgraph/pkg/msi"
	"github.com/nainya/refgraph/pkg/pipeline"
)

var msiOut string

var msiCmd = &cobra.Command{
	Use:   "msi",
	Short: "Build the master suite index from the registry",
	Long: `Group registry documents by lineage key and record, per lineage, every
edition plus the latest base edition and the latest edition of any kind.
Amendments are never a lineage's latest base edition.`,
	Args: cobra.NoArgs,
	RunE: runMSI,
}

func init() {
	msiCmd.Flags().StringVar(&msiOut, "out", "", "Output path (default: paths.msi)")
	rootCmd.AddCommand(msiCmd)
}

func runMSI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	docs, err := document.Load(cfg.Paths.Registry)
	if err != nil {
		return err
	}
	if err := document.Validate(docs, pipeline.RegistryName); err != nil {
		return err
	}

	out := msiOut
	if out == "" {
		out = cfg.Paths.MSI
	}
	if out == "" {
		return fmt.Errorf("no output path: set --out or paths.msi")
	}

	f := msi.Build(docs, time.Now())
	if err := pipeline.WriteMSI(out, f); err != nil {
		return err
	}
	log.Info().Str("path", out).Int("lineages", len(f.Lineages)).Msg("Master suite index written")
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d lineages -> %s\n", len(f.Lineages), out)
	return nil
}
