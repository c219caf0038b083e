package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/casebook-dev/casebook/internal/engine/document"
	"github.com/casebook-dev/casebook/internal/highlight"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>",
	Short: "Dump the classified token stream of a script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := analyzeFile(args[0])
		if err != nil {
			return err
		}
		for _, t := range snap.Tokens {
			if t.Category.IsTrivia() && t.Text != "" && isBlank(t.Text) {
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%4d:%-3d %-12s %-8s %q\n",
				t.Line+1, t.Col, t.Category, highlight.StyleFor(t.Category), t.Text)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}

// analyzeFile loads and analyzes one script with the configured grammar.
func analyzeFile(path string) (*document.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	reg, err := newRegistry()
	if err != nil {
		return nil, err
	}
	doc := document.Open(string(data), reg)
	return doc.Snapshot(), nil
}

func isBlank(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\r', '\n':
		default:
			return false
		}
	}
	return true
}
