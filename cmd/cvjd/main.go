package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return rootCmdFor(&app{})
}

func rootCmdFor(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cvjd",
		Short:         "Feature extraction for CV/JD matching",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	f := rootCmd.PersistentFlags()
	f.StringVar(&a.flags.config, "config", "", "YAML config file (defaults apply when empty)")
	f.StringVar(&a.flags.input, "input", "", "record table (.csv, .jsonl, optionally .gz)")
	f.StringVar(&a.flags.idColumn, "id-column", "", "column holding the record id (row index when empty)")
	f.StringVar(&a.flags.outDir, "out-dir", "", "directory for feature tables")
	f.StringVar(&a.flags.db, "db", "", "SQLite feature store path (disabled when empty)")
	f.StringVar(&a.flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	f.StringVar(&a.flags.metricsFile, "metrics-file", "", "write Prometheus textfile metrics here")
	f.BoolVar(&a.flags.compress, "gzip", false, "gzip the output tables")

	rootCmd.AddCommand(
		vectorsCmd(a),
		salaryCmd(a),
		durationCmd(a),
		overlapCmd(a),
	)
	return rootCmd
}
