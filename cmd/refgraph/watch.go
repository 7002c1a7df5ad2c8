package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/nainya/refgraph/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild whenever the registry or master suite index changes",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	addBuildFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", 0, "Quiet period before rebuilding (default 500ms)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	ctx, cancel := newContext()
	defer cancel()

	if _, err := runBuild(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("Initial build failed")
	}

	w, err := watch.New([]string{cfg.Paths.Registry, cfg.Paths.MSI}, cfg.Watch.Debounce, log)
	if err != nil {
		return err
	}
	log.Info().Str("registry", cfg.Paths.Registry).Str("msi", cfg.Paths.MSI).Msg("Watching for changes")

	err = w.Run(ctx, func(ctx context.Context, changed []string) error {
		_, err := runBuild(ctx, cfg, log.WithFields(map[string]interface{}{"changed": changed}))
		return err
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
