package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/contract-intake/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "intake",
	Short: "Contract intake and reconciliation pipeline",
	Long:  "Pulls signed contract PDFs, extracts deal fields, resolves the sales rep, appends rows to the rep/master/backup ledgers, and creates service center leads.",
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
