package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/casebook-dev/casebook/internal/highlight"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Manage highlight themes",
}

var themeInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the built-in Monokai theme to a JSON file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "casebook-theme.json"
		if len(args) == 1 {
			path = args[0]
		}
		if err := highlight.WriteDefault(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

var themeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the configured theme palette",
	Long:  "show loads the theme named by the configuration (or the built-in default) and prints its palette, validating the file along the way.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		th, err := highlight.LoadTheme(cfg.Theme)
		if err != nil {
			return fmt.Errorf("loading theme %s: %w", cfg.Theme, err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, th.Name)
		fmt.Fprintf(out, "%-10s %s\n", "background", th.Background.Hex())
		fmt.Fprintf(out, "%-10s %s\n", "foreground", th.Foreground.Hex())
		for id := highlight.StyleDefault; id <= highlight.StyleError; id++ {
			s := th.StyleOf(id)
			attrs := ""
			if s.Bold {
				attrs += " bold"
			}
			if s.Italic {
				attrs += " italic"
			}
			fmt.Fprintf(out, "%-10s %s%s\n", id, s.Foreground.Hex(), attrs)
		}
		return nil
	},
}

func init() {
	themeCmd.AddCommand(themeInitCmd)
	themeCmd.AddCommand(themeShowCmd)
	rootCmd.AddCommand(themeCmd)
}
