// Command outrider runs the multi-zone harvest coordinator against a
// generated frontier world: safety sweeps, deposit discovery, assignment,
// and border-crossing transit, all on a tick engine.
package main

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	cfgPath   string
	backend   string
	storePath string
	logJSON   bool
	verbose   bool

	rootCmd = &cobra.Command{
		Use:   "outrider",
		Short: "Multi-zone resource coordination for a tick-based agent fleet",
		Long: `Outrider generates a hex frontier of harvestable sectors, claims home
bases, and steers a fleet of harvesters, haulers, and scouts across zone
borders under a per-step compute budget. Coordination state persists in a
durable store between runs.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (built-in defaults when omitted)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "sqlite", "store backend: sqlite, badger, or memory")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "data/outrider.db", "store path (file for sqlite, directory for badger)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "JSON logs even on a terminal")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug-level logging")

	rootCmd.AddCommand(runCmd, inspectCmd)
}

// setupLogging picks text output for terminals and JSON for pipes.
func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if !logJSON && (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
