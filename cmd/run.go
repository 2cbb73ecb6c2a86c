package main

import (
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/contract-intake/internal/model"
	"github.com/sells-group/contract-intake/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run <pdf-path>",
	Short: "Process a single contract PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		path := args[0]

		// Force the directory source at the file's location so Localize
		// resolves the path in place.
		cfg.Source.Kind = "dir"
		cfg.Source.Dir = filepath.Dir(path)

		env, err := initIntake(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		doc := model.Document{
			ID:   filepath.Base(path),
			Name: filepath.Base(path),
			Link: "file://" + path,
		}
		outcome, err := env.Processor.Process(ctx, doc)
		if err != nil {
			return err
		}
		if outcome == pipeline.OutcomeSkipped {
			return eris.Errorf("%s was already processed", doc.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
