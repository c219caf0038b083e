package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/casebook-dev/casebook/internal/engine/document"
	"github.com/casebook-dev/casebook/internal/log"
	"github.com/casebook-dev/casebook/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Analyze a script and re-run when the override grammar changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		reg, err := newRegistry()
		if err != nil {
			return err
		}
		doc := document.Open(string(data), reg)
		report(cmd, args[0], doc.Snapshot())

		root, err := os.Getwd()
		if err != nil {
			return err
		}
		w, err := watch.New(cfg.ResolveOverride(root),
			watch.WithDebounce(time.Duration(cfg.Watch.DebounceMS)*time.Millisecond))
		if err != nil {
			return err
		}
		w.OnChange(func(path string) {
			changed, err := reg.Reload()
			if err != nil {
				log.L().Warn("grammar reload failed, keeping previous grammar",
					"path", path, "err", err)
				return
			}
			if !changed {
				return
			}
			report(cmd, args[0], doc.Reanalyze())
		})
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		return nil
	},
}

func report(cmd *cobra.Command, name string, snap *document.Snapshot) {
	out := cmd.OutOrStdout()
	diags := snap.Diagnostics()
	for _, dg := range diags {
		fmt.Fprintf(out, "%s: %s\n", name, dg)
	}
	fmt.Fprintf(out, "%s: %d token(s), %d scene(s), %d diagnostic(s)\n",
		name, len(snap.Tokens), len(snap.Analysis.Scenes), len(diags))
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
