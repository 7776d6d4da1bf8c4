package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/primeprop/primeprop/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "primeprop",
	Short: "NBA player-prop edge finder",
	Long:  "Ingests player-prop lines from sportsbook and pick'em providers, projects stats from recent game logs, and ranks the props with the largest model edge.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
