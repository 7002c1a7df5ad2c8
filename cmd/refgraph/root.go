package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nainya/refgraph/internal/config"
	"github.com/nainya/refgraph/internal/logger"
)

var cfgFile string

// flagKeys maps CLI flags onto config keys; flags win over env and file values.
var flagKeys = map[string]string{
	"registry":     "paths.registry",
	"msi":          "paths.msi",
	"output":       "paths.output",
	"stats":        "paths.stats",
	"metrics":      "paths.metrics",
	"workers":      "build.workers",
	"ref-warnings": "build.emitRefWarnings",
	"compress":     "build.compress",
	"log-level":    "log.level",
	"pretty":       "log.pretty",
	"debounce":     "watch.debounce",
}

var rootCmd = &cobra.Command{
	Use:   "refgraph",
	Short: "refgraph - standards registry reference resolver",
	Long: `refgraph joins a document registry with a master suite index and computes,
for every document, its resolved references (undated references upgraded to the
latest edition), the documents citing it, and its reference tree.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./refgraph.{yaml,json,toml})")
	rootCmd.PersistentFlags().String("registry", "", "Document registry JSON")
	rootCmd.PersistentFlags().String("msi", "", "Master suite index JSON")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("pretty", false, "Human-readable log output")
}

// loadConfig resolves configuration for cmd.
// Precedence: flags > REFGRAPH_* env > config file > defaults
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(config.Options{
		File:     cfgFile,
		Flags:    cmd.Flags(),
		FlagKeys: flagKeys,
	})
}

// newLogger installs and returns the process logger for cfg
func newLogger(cfg *config.Config) *logger.Logger {
	logger.InitGlobalLogger(logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		Output: os.Stderr,
	})
	return logger.GetGlobalLogger()
}

// newContext returns a context canceled on SIGINT or SIGTERM
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
