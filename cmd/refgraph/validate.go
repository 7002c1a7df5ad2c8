package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nainya/refgraph/internal/logger"
	"github.com/nainya/refgraph/pkg/document"
	"github.com/nainya/refgraph/pkg/msi"
	"github.com/nainya/refgraph/pkg/pipeline"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check registry ordering and uniqueness",
	Long: `Check that every record has a docId, that docIds are unique, and that the
registry is strictly ascending by docId compared case-insensitively. Fields
without a "<field>$meta" provenance member are logged as warnings. The master
suite index, when configured, must parse.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	data, err := os.ReadFile(cfg.Paths.Registry)
	if err != nil {
		return fmt.Errorf("read registry %s: %w", cfg.Paths.Registry, err)
	}
	n, missing, err := validateRegistry(data, log)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d documents, sorted and unique (%d fields without $meta)\n",
		cfg.Paths.Registry, n, missing)

	if cfg.Paths.MSI == "" {
		return nil
	}
	f, err := msi.Load(cfg.Paths.MSI)
	if err != nil {
		log.Warn().Err(err).Str("msi", cfg.Paths.MSI).Msg("Master suite index unusable, builds will not upgrade undated references")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d lineages\n", cfg.Paths.MSI, len(f.Lineages))
	return nil
}

// validateRegistry enforces ordering and uniqueness and warns about fields without
// provenance. It returns the document count and the number of missing $meta fields.
func validateRegistry(data []byte, log *logger.Logger) (int, int, error) {
	docs, err := document.Parse(data)
	if err != nil {
		return 0, 0, err
	}
	if err := document.Validate(docs, pipeline.RegistryName); err != nil {
		return 0, 0, err
	}

	missing, err := document.CheckMeta(data)
	if err != nil {
		return 0, 0, err
	}
	for _, m := range missing {
		log.Warn().Str("doc_id", m.DocID).Str("field", m.Path).Msg("Missing $meta")
	}
	return len(docs), len(missing), nil
}
