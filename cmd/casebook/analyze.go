package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Report diagnostics and structural health of a script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := analyzeFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		diags := snap.Diagnostics()
		for _, dg := range diags {
			line := 1
			for _, ls := range snap.LineStarts {
				if ls > dg.Start {
					break
				}
				line++
			}
			fmt.Fprintf(out, "%s:%d: %s\n", args[0], line-1, dg)
		}

		fmt.Fprintf(out, "%d token(s), %d scene(s), %d fold region(s), %d diagnostic(s)\n",
			len(snap.Tokens), len(snap.Analysis.Scenes), len(snap.Analysis.Folds), len(diags))
		if len(diags) > 0 {
			return fmt.Errorf("%d diagnostic(s)", len(diags))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
