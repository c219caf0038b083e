// Command casebook runs the Casebook analysis engine from the command
// line: token dumps, diagnostics, scene listings, and theme scaffolding.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/casebook-dev/casebook/internal/config"
	"github.com/casebook-dev/casebook/internal/grammar"
	"github.com/casebook-dev/casebook/internal/log"
)

// Version information (set via ldflags during build).
var version = "dev"

var (
	cfgPath  string
	logLevel string
	logFile  string
	cfg      config.Config
)

var rootCmd = &cobra.Command{
	Use:     "casebook",
	Short:   "Analyze Casebook narrative scripts",
	Long:    "casebook tokenizes Casebook scripts and reports structure: scenes, fold regions, bracket pairing, and diagnostics.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if logLevel == "" {
			logLevel = cfg.Log.Level
		}
		if logFile == "" {
			logFile = cfg.Log.File
		}
		log.Init(log.Options{Level: logLevel, Format: cfg.Log.Format, File: logFile})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "casebook.toml",
		"engine configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"log to a rotating file instead of stderr")
}

// newRegistry builds the grammar registry from the configured override.
func newRegistry() (*grammar.Registry, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return grammar.NewRegistry(cfg.ResolveOverride(root))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
