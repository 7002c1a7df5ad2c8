package main

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nainya/refgraph/pkg/document"
	"github.com/nainya/refgraph/pkg/pipeline"
)

var statsFormat string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the registry",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsFormat, "format", FormatText, "Output format (text, json, yaml)")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	newLogger(cfg)

	docs, err := document.Load(cfg.Paths.Registry)
	if err != nil {
		return err
	}
	st := pipeline.ComputeStats(docs, time.Now(), uuid.NewString())
	st.SetSite(siteInfo(cfg))
	return writeFormatted(cmd.OutOrStdout(), statsFormat, st, func(w io.Writer) error {
		return writeStatsText(w, st)
	})
}

func writeStatsText(w io.Writer, st pipeline.Stats) error {
	if st.Site != nil && st.Site.Name != "" {
		if _, err := fmt.Fprintf(w, "Site:       %s\n", st.Site.Name); err != nil {
			return err
		}
	}
	d := st.Documents
	for _, row := range []struct {
		label string
		n     int
	}{
		{"Documents:", d.Total},
		{"Active:", d.Active},
		{"References:", d.References},
		{"Publishers:", d.Publishers},
		{"Doc types:", d.DocTypes},
	} {
		if _, err := fmt.Fprintf(w, "%-11s %d\n", row.label, row.n); err != nil {
			return err
		}
	}
	for _, t := range d.SortedDocTypes() {
		if _, err := fmt.Fprintf(w, "  %-32s %d\n", t, d.DocsByType[t]); err != nil {
			return err
		}
	}
	return nil
}
