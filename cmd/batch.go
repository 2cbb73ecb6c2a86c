package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var batchConcurrency int

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Process every new document in the source once",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initIntake(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		concurrency := batchConcurrency
		if concurrency == 0 {
			concurrency = cfg.Pipeline.Concurrency
		}

		stats, err := env.Processor.RunBatch(ctx, concurrency)
		if err != nil {
			return err
		}
		if stats.Failed > 0 {
			return eris.Errorf("%d of %d documents failed", stats.Failed, stats.Total())
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "documents in flight at once (default from config)")
	rootCmd.AddCommand(batchCmd)
}
