// Package pipeline orchestrates batch conversion of raw instrument records
// into NetCDF datasets for a whole mooring deployment.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cgsn-mio/moorproc/internal/config"
	"github.com/cgsn-mio/moorproc/internal/domain"
	"github.com/cgsn-mio/moorproc/internal/instrument"
	"github.com/cgsn-mio/moorproc/internal/observability"
)

// WriteFunc persists one dataset to a NetCDF file.
type WriteFunc func(path string, ds *domain.Dataset) error

// Notifier announces freshly written datasets to downstream consumers.
type Notifier interface {
	Notify(ctx context.Context, update domain.DatasetUpdate) error
}

// Runner walks a mooring configuration and converts every raw record file
// of every configured instrument. Failures are logged and counted but do
// not stop the run; one flooded instrument should not hold back the rest
// of the mooring.
type Runner struct {
	registry *instrument.Registry
	resolver Resolver
	write    WriteFunc
	notifier Notifier
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
}

// NewRunner creates a Runner. The notifier may be nil, in which case
// dataset updates are not announced.
func NewRunner(cfg *config.Config, registry *instrument.Registry, write WriteFunc, notifier Notifier, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	return &Runner{
		registry: registry,
		resolver: Resolver{RawRoot: cfg.RawRoot, ProcRoot: cfg.ProcRoot},
		write:    write,
		notifier: notifier,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once the run has written at least one dataset.
func (r *Runner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no datasets written yet")
	}
	return nil
}

// Filter narrows a batch run to one assembly or one record date. Zero
// values match everything.
type Filter struct {
	// Assembly restricts the run to the named assembly (buoy, nsif, mfn).
	Assembly string
	// Date restricts the run to record files stamped YYYYMMDD.
	Date string
}

// matchFile reports whether a raw record file passes the date filter.
func (f Filter) matchFile(path string) bool {
	return f.Date == "" || strings.HasPrefix(filepath.Base(path), f.Date)
}

// Run converts every instrument on the mooring that passes the filter. It
// returns an error only when the context is cancelled or when one or more
// instruments failed outright; per-file conversion errors are logged and
// counted.
func (r *Runner) Run(ctx context.Context, m *config.Mooring, f Filter) error {
	r.metrics.BatchRunning.Set(1)
	defer r.metrics.BatchRunning.Set(0)

	r.logger.Info("batch run started", "mooring", m.Mooring, "deployment", m.Deployment)

	var failed, total int
	for _, asm := range m.Assemblies {
		if f.Assembly != "" && asm.Name != f.Assembly {
			continue
		}
		for _, inst := range asm.Instruments {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			total++
			if err := r.runInstrument(ctx, m, asm, inst, f); err != nil {
				r.logger.Error("instrument run failed",
					"instrument", inst.DirName(), "assembly", asm.Name, "error", err)
				failed++
			}
		}
	}

	r.logger.Info("batch run finished", "instruments", total, "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d instruments failed", failed, total)
	}
	return nil
}

// runInstrument converts every raw record file for one instrument. A
// missing raw directory is normal early in a deployment and is skipped
// with a warning.
func (r *Runner) runInstrument(ctx context.Context, m *config.Mooring, asm config.Assembly, inst config.Instrument, f Filter) error {
	dir := inst.DirName()
	files, err := r.resolver.RawFiles(m.Mooring, m.Deployment, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("no raw data directory", "instrument", dir)
			return nil
		}
		return err
	}

	depth := asm.Depth
	if inst.Depth != nil {
		depth = *inst.Depth
	}

	var fileErrs, matched int
	for _, raw := range files {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !f.matchFile(raw) {
			continue
		}
		matched++
		p := instrument.Params{
			Platform:   m.Mooring,
			Deployment: m.Deployment,
			Lat:        m.Latitude,
			Lon:        m.Longitude,
			Depth:      depth,
			Serial:     inst.Serial,
			CTDName:    inst.CTD,
			Burst:      inst.Burst,
			Switch:     inst.Switch,
			InFile:     raw,
		}
		out := r.resolver.OutPath(m.Mooring, m.Deployment, dir, raw)
		if _, err := r.ProcessFile(ctx, inst.Class, p, out); err != nil {
			r.logger.Error("conversion failed", "instrument", dir, "file", raw, "error", err)
			r.metrics.ConversionErrors.Inc()
			fileErrs++
		}
	}

	if fileErrs > 0 {
		return fmt.Errorf("%d of %d files failed", fileErrs, matched)
	}
	return nil
}

// ProcessFile converts one raw record file and writes the resulting NetCDF
// dataset to outPath. Empty record files are skipped and return a nil
// dataset. The dataset is returned so single-file callers can inspect it.
func (r *Runner) ProcessFile(ctx context.Context, class string, p instrument.Params, outPath string) (*domain.Dataset, error) {
	proc, err := r.registry.Get(class)
	if err != nil {
		return nil, err
	}

	rec, err := domain.LoadRecord(p.InFile)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyRecord) {
			r.metrics.EmptyInputs.Inc()
			r.logger.Debug("skipping empty record", "file", p.InFile)
			return nil, nil
		}
		return nil, err
	}

	start := time.Now()
	ds, err := proc.Process(ctx, rec, p)
	r.metrics.InstrumentDuration.WithLabelValues(class).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	if err := r.write(outPath, ds); err != nil {
		return nil, fmt.Errorf("write dataset: %w", err)
	}
	r.metrics.DatasetsWritten.Inc()
	r.ready.Store(true)
	r.logger.Info("dataset written",
		"file", outPath, "samples", len(ds.Times), "level", ds.ProcessingLevel)

	r.notify(ctx, p, outPath, ds)
	return ds, nil
}

// notify announces the written dataset when a notifier is configured.
// Publish failures are counted but never fail the conversion.
func (r *Runner) notify(ctx context.Context, p instrument.Params, outPath string, ds *domain.Dataset) {
	if r.notifier == nil {
		return
	}
	// The output directory base is the instrument directory name, which
	// distinguishes duplicate classes like metbk1 and metbk2.
	update := domain.DatasetUpdate{
		Platform:        p.Platform,
		Deployment:      p.Deployment,
		Instrument:      filepath.Base(filepath.Dir(outPath)),
		File:            outPath,
		Samples:         len(ds.Times),
		ProcessingLevel: ds.ProcessingLevel,
		UpdatedAt:       domain.Now(),
	}
	if err := r.notifier.Notify(ctx, update); err != nil {
		r.logger.Warn("dataset notification failed", "file", outPath, "error", err)
		r.metrics.NotifyErrors.Inc()
		return
	}
	r.metrics.NotifyPublished.Inc()
}
