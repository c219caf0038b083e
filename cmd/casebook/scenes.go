package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/casebook-dev/casebook/internal/structure"
)

var sceneOffset int

var scenesCmd = &cobra.Command{
	Use:   "scenes <file>",
	Short: "List the scenes of a script",
	Long:  "scenes prints every top-level scene with its byte extent. With --offset it instead names the scene containing that offset.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := analyzeFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if sceneOffset >= 0 {
			name, ok := snap.SceneNameAt(sceneOffset)
			if !ok {
				return fmt.Errorf("offset %d is not inside a scene", sceneOffset)
			}
			fmt.Fprintln(out, name)
			return nil
		}

		for _, sc := range snap.Analysis.Scenes {
			printScene(out, sc)
		}
		return nil
	},
}

func printScene(out io.Writer, sc structure.SceneRecord) {
	mark := ""
	if !sc.WellFormed {
		mark = " (unterminated)"
	}
	fmt.Fprintf(out, "%s [%d, %d)%s\n", sc.Name, sc.Start, sc.End, mark)
	for _, child := range sc.Children {
		fmt.Fprintf(out, "  %s fold [%d, %d)\n", child.Kind, child.Start, child.End)
	}
}

func init() {
	scenesCmd.Flags().IntVar(&sceneOffset, "offset", -1,
		"print the scene containing this byte offset")
	rootCmd.AddCommand(scenesCmd)
}
