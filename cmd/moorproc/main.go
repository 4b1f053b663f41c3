// Command moorproc converts raw mooring instrument records into calibrated,
// CF-compliant NetCDF datasets and manages the supporting workflow: batch
// runs over a whole deployment, mooring configuration generation from the
// asset database, and ERDDAP datasets.xml snippets for publication.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cgsn-mio/moorproc/internal/config"
	"github.com/cgsn-mio/moorproc/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "moorproc",
	Short: "Process coastal mooring telemetry into ERDDAP-ready NetCDF",
	Long: `moorproc converts the column-oriented JSON records produced by the
shore-side parsers into calibrated NetCDF datasets.

Subcommands:
  process   convert a single instrument record file
  batch     convert every instrument of a deployment from a mooring config
  template  generate a mooring config from the OOI asset database
  erddap    emit a datasets.xml snippet for a processed NetCDF file`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd.AddCommand(processCmd, batchCmd, templateCmd, erddapCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadEnv reads the environment configuration and builds the logger every
// subcommand shares.
func loadEnv() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, observability.NewLogger(cfg.LogLevel, cfg.LogFormat), nil
}

// writeOutput writes data to the given path, or to stdout when path is "-"
// or empty.
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
