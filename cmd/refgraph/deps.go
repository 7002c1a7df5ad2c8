package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nainya/refgraph/pkg/document"
	"github.com/nainya/refgraph/pkg/graph"
	"github.com/nainya/refgraph/pkg/pipeline"
	"github.com/nainya/refgraph/pkg/resolve"
	"github.com/nainya/refgraph/pkg/status"
)

var (
	depsKind   string
	depsFormat string
)

var depsCmd = &cobra.Command{
	Use:   "deps <docId>",
	Short: "List every document a document transitively depends on",
	Long: `List the full transitive closure of one reference kind starting at docId,
following declared references without a depth limit. Superseded dependencies are
marked [S], withdrawn ones [W].`,
	Args: cobra.ExactArgs(1),
	RunE: runDeps,
}

func init() {
	depsCmd.Flags().StringVar(&depsKind, "kind", resolve.KindNormative, "Reference kind (normative, bibliographic)")
	depsCmd.Flags().StringVar(&depsFormat, "format", FormatText, "Output format (text, json, yaml)")
	rootCmd.AddCommand(depsCmd)
}

// Dependency is one entry of a dependency listing
type Dependency struct {
	DocID      string `json:"docId" yaml:"docId"`
	Label      string `json:"docLabel,omitempty" yaml:"docLabel,omitempty"`
	Title      string `json:"docTitle,omitempty" yaml:"docTitle,omitempty"`
	Qualifier  string `json:"qualifier,omitempty" yaml:"qualifier,omitempty"`
	InRegistry bool   `json:"inRegistry" yaml:"inRegistry"`
}

func runDeps(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	newLogger(cfg)

	docs, err := document.Load(cfg.Paths.Registry)
	if err != nil {
		return err
	}
	reg, err := document.NewRegistry(pipeline.RegistryName, docs)
	if err != nil {
		return err
	}

	deps, err := listDependencies(reg, args[0], depsKind)
	if err != nil {
		return err
	}
	return writeFormatted(cmd.OutOrStdout(), depsFormat, deps, func(w io.Writer) error {
		return writeDepsText(w, deps)
	})
}

// listDependencies walks declared references of kind from docID
func listDependencies(reg *document.Registry, docID, kind string) ([]Dependency, error) {
	if kind != resolve.KindNormative && kind != resolve.KindBibliographic {
		return nil, fmt.Errorf("unknown reference kind %q", kind)
	}
	if !reg.Has(docID) {
		var hints []string
		for _, d := range reg.Find(docID, 5) {
			hints = append(hints, d.DocID)
		}
		if len(hints) > 0 {
			return nil, fmt.Errorf("document %q not found; did you mean: %s", docID, strings.Join(hints, ", "))
		}
		return nil, fmt.Errorf("document %q not found", docID)
	}

	refsOf := func(id string) []string {
		d, ok := reg.Get(id)
		if !ok || d.References == nil {
			return nil
		}
		if kind == resolve.KindBibliographic {
			return d.References.Bibliographic
		}
		return d.References.Normative
	}

	ids := graph.Dependencies(docID, refsOf)
	out := make([]Dependency, 0, len(ids))
	for _, id := range ids {
		dep := Dependency{DocID: id}
		if d, ok := reg.Get(id); ok {
			dep.InRegistry = true
			dep.Label = d.DocLabel
			dep.Title = d.DocTitle
			st := d.StatusOrZero()
			switch {
			case st.Superseded:
				dep.Qualifier = "[S]"
			case st.Withdrawn:
				dep.Qualifier = "[W]"
			}
		}
		out = append(out, dep)
	}
	return out, nil
}

func writeDepsText(w io.Writer, deps []Dependency) error {
	for _, d := range deps {
		var line string
		if d.InRegistry {
			line = fmt.Sprintf("%s (%s, %s)", d.DocID, d.Label, d.Title)
		} else {
			line = fmt.Sprintf("%s (%s)", d.DocID, status.NotInRegistry)
		}
		if d.Qualifier != "" {
			line += " " + d.Qualifier
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
