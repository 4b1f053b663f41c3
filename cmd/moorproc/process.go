package main

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cgsn-mio/moorproc/internal/adapter/netcdf"
	"github.com/cgsn-mio/moorproc/internal/calib"
	"github.com/cgsn-mio/moorproc/internal/config"
	"github.com/cgsn-mio/moorproc/internal/instrument"
	"github.com/cgsn-mio/moorproc/internal/observability"
	"github.com/cgsn-mio/moorproc/internal/pipeline"
)

var processFlags struct {
	class      string
	infile     string
	outfile    string
	platform   string
	deployment string
	lat        float64
	lon        float64
	depth      float64
	serial     string
	coeffFile  string
	ctd        string
	burst      bool
	mode       string
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert one instrument record file into a NetCDF dataset",
	Long: `Convert a single column-oriented JSON record into a NetCDF dataset.

The deployment context (platform, coordinates, depth) that a batch run reads
from the mooring configuration is supplied on the command line instead.`,
	RunE: runProcess,
}

func init() {
	f := processCmd.Flags()
	f.StringVar(&processFlags.class, "class", "", "instrument class (ctdbp, dosta, metbk, gps, pwrsys, hydgn)")
	f.StringVar(&processFlags.infile, "infile", "", "raw JSON record file")
	f.StringVar(&processFlags.outfile, "outfile", "", "NetCDF output path (default: infile with .nc extension)")
	f.StringVar(&processFlags.platform, "platform", "", "platform designator, e.g. cp01cnsm")
	f.StringVar(&processFlags.deployment, "deployment", "", "deployment name, e.g. D00013")
	f.Float64Var(&processFlags.lat, "lat", 0, "surveyed anchor latitude in decimal degrees")
	f.Float64Var(&processFlags.lon, "lon", 0, "surveyed anchor longitude in decimal degrees")
	f.Float64Var(&processFlags.depth, "depth", 0, "nominal instrument depth in meters")
	f.StringVar(&processFlags.serial, "serial", "", "instrument serial number for calibration lookups")
	f.StringVar(&processFlags.coeffFile, "coeff-file", "", "serialized coefficient cache path (default: next to infile)")
	f.StringVar(&processFlags.ctd, "ctd", "", "co-located CTD directory name")
	f.BoolVar(&processFlags.burst, "burst", false, "apply 15-minute median burst averaging")
	f.StringVar(&processFlags.mode, "switch", "", "processor mode switch (psc or mpea for pwrsys)")

	for _, name := range []string{"class", "infile", "platform", "deployment"} {
		cobra.CheckErr(processCmd.MarkFlagRequired(name))
	}
}

func runProcess(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadEnv()
	if err != nil {
		return err
	}

	outfile := processFlags.outfile
	if outfile == "" {
		outfile = strings.TrimSuffix(processFlags.infile, filepath.Ext(processFlags.infile)) + ".nc"
	}

	metrics := observability.NewMetrics()
	runner := pipeline.NewRunner(cfg, newRegistry(cfg, metrics, logger), netcdf.Write, nil,
		logger, metrics)

	p := instrument.Params{
		Platform:   processFlags.platform,
		Deployment: processFlags.deployment,
		Lat:        processFlags.lat,
		Lon:        processFlags.lon,
		Depth:      processFlags.depth,
		Serial:     processFlags.serial,
		CoeffFile:  processFlags.coeffFile,
		CTDName:    processFlags.ctd,
		Burst:      processFlags.burst,
		Switch:     processFlags.mode,
		InFile:     processFlags.infile,
	}

	ds, err := runner.ProcessFile(cmd.Context(), processFlags.class, p, outfile)
	if err != nil {
		return err
	}
	if ds == nil {
		return errors.New("record holds no samples, nothing written")
	}
	return nil
}

// newRegistry builds the processor registry, wiring the calibration finder
// only when an asset URL is configured.
func newRegistry(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *instrument.Registry {
	var finder *calib.Finder
	if cfg.CalAssetURL != "" {
		finder = calib.NewFinder(cfg.CalAssetURL, cfg.CalTimeout, logger)
	}
	return instrument.NewRegistry(finder, metrics, logger)
}
