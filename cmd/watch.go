package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the source and process new documents until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initIntake(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		interval := watchInterval
		if interval == 0 {
			interval = time.Duration(cfg.Pipeline.PollSecs) * time.Second
		}

		log := zap.S().Named("watch")
		log.Infow("watching source", "interval", interval)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			// A failed cycle is logged and retried on the next tick;
			// unmarked documents are picked up again.
			if _, err := env.Processor.RunBatch(ctx, cfg.Pipeline.Concurrency); err != nil {
				if ctx.Err() != nil {
					log.Info("shutting down")
					return nil
				}
				log.Errorw("cycle failed", "error", err)
			}

			select {
			case <-ctx.Done():
				log.Info("shutting down")
				return nil
			case <-ticker.C:
			}
		}
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "poll interval (default from config)")
	rootCmd.AddCommand(watchCmd)
}
