package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	httpadapter "github.com/cgsn-mio/moorproc/internal/adapter/http"
	kafkaadapter "github.com/cgsn-mio/moorproc/internal/adapter/kafka"
	"github.com/cgsn-mio/moorproc/internal/adapter/netcdf"
	"github.com/cgsn-mio/moorproc/internal/config"
	"github.com/cgsn-mio/moorproc/internal/observability"
	"github.com/cgsn-mio/moorproc/internal/pipeline"
)

var batchFlags struct {
	configPath  string
	assembly    string
	date        string
	metricsAddr string
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Convert every instrument of a deployment",
	Long: `Run the full conversion for one mooring deployment.

The mooring configuration lists every instrument on each assembly along with
its processing options. Conversion failures are logged and counted; a single
bad instrument does not stop the run.`,
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringVar(&batchFlags.configPath, "config", "", "mooring configuration YAML file")
	f.StringVar(&batchFlags.assembly, "assembly", "", "only process the named assembly (buoy, nsif, mfn)")
	f.StringVar(&batchFlags.date, "date", "", "only process record files stamped YYYYMMDD")
	f.StringVar(&batchFlags.metricsAddr, "metrics-addr", "", "serve /healthz and /metrics on this address (overrides METRICS_ADDR)")
	cobra.CheckErr(batchCmd.MarkFlagRequired("config"))
}

func runBatch(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadEnv()
	if err != nil {
		return err
	}

	mooring, err := config.LoadMooring(batchFlags.configPath)
	if err != nil {
		return err
	}

	if batchFlags.metricsAddr != "" {
		cfg.MetricsAddr = batchFlags.metricsAddr
	}

	metrics := observability.NewMetrics()

	var notifier pipeline.Notifier
	if cfg.NotifyEnabled {
		n := kafkaadapter.NewNotifier(cfg, logger)
		defer func() {
			if err := n.Close(); err != nil {
				logger.Error("kafka notifier close error", "error", err)
			}
		}()
		notifier = n
		logger.Info("dataset notifications enabled",
			"brokers", cfg.KafkaBrokers, "topic", cfg.KafkaNotifyTopic)
	}

	runner := pipeline.NewRunner(cfg, newRegistry(cfg, metrics, logger), netcdf.Write, notifier, logger, metrics)

	if cfg.MetricsAddr != "" {
		srv := httpadapter.NewServer(cfg.MetricsAddr, runner, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("monitoring server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("monitoring server shutdown error", "error", err)
			}
		}()
	}

	return runner.Run(cmd.Context(), mooring, pipeline.Filter{
		Assembly: batchFlags.assembly,
		Date:     batchFlags.date,
	})
}
