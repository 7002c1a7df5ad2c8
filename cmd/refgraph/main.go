// refgraph builds the reference graph of a standards document registry
package main

import (
	"os"

	"github.com/nainya/refgraph/internal/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.GetGlobalLogger().Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
