package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/contract-intake/internal/match"
)

var repsCmd = &cobra.Command{
	Use:   "reps",
	Short: "List the sales rep registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := match.LoadRegistry(cfg.Match.RegistryFile)
		if err != nil {
			return err
		}
		for _, name := range registry.Names() {
			ref, ok := registry.Ledger(name)
			if !ok {
				ref = "(no ledger)"
			}
			fmt.Printf("%-30s %s\n", name, ref)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(repsCmd)
}
