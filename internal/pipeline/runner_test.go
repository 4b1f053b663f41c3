package pipeline_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cgsn-mio/moorproc/internal/config"
	"github.com/cgsn-mio/moorproc/internal/domain"
	"github.com/cgsn-mio/moorproc/internal/instrument"
	"github.com/cgsn-mio/moorproc/internal/observability"
	"github.com/cgsn-mio/moorproc/internal/pipeline"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// captureWriter records every dataset handed to it instead of producing
// NetCDF files.
type captureWriter struct {
	paths    []string
	datasets []*domain.Dataset
	err      error
}

func (w *captureWriter) write(path string, ds *domain.Dataset) error {
	if w.err != nil {
		return w.err
	}
	w.paths = append(w.paths, path)
	w.datasets = append(w.datasets, ds)
	return nil
}

type captureNotifier struct {
	updates []domain.DatasetUpdate
	err     error
}

func (n *captureNotifier) Notify(_ context.Context, u domain.DatasetUpdate) error {
	if n.err != nil {
		return n.err
	}
	n.updates = append(n.updates, u)
	return nil
}

// writeGPSFile writes a minimal column-oriented GPS record.
func writeGPSFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	body := `{
		"time": [1534032000, 1534032060],
		"latitude": [40.13, 40.14],
		"longitude": [-70.77, -70.78]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func testMooring() *config.Mooring {
	return &config.Mooring{
		Mooring:    "cp01cnsm",
		Deployment: "D00013",
		Latitude:   40.1334,
		Longitude:  -70.7785,
		Assemblies: []config.Assembly{
			{
				Name:  "buoy",
				Depth: 0,
				Instruments: []config.Instrument{
					{Class: "gps"},
				},
			},
		},
	}
}

func newTestRunner(t *testing.T, rawRoot, procRoot string, w *captureWriter, n pipeline.Notifier) *pipeline.Runner {
	t.Helper()
	cfg := &config.Config{RawRoot: rawRoot, ProcRoot: procRoot}
	metrics := observability.NewMetricsForTesting()
	registry := instrument.NewRegistry(nil, metrics, discardLogger())
	return pipeline.NewRunner(cfg, registry, w.write, n, discardLogger(), metrics)
}

func TestRunnerRun(t *testing.T) {
	rawRoot := t.TempDir()
	procRoot := t.TempDir()
	writeGPSFile(t, filepath.Join(rawRoot, "cp01cnsm", "D00013", "gps"), "20180812.gps.json")

	w := &captureWriter{}
	n := &captureNotifier{}
	r := newTestRunner(t, rawRoot, procRoot, w, n)

	require.Error(t, r.CheckReadiness(context.Background()))
	require.NoError(t, r.Run(context.Background(), testMooring(), pipeline.Filter{}))

	require.Len(t, w.paths, 1)
	assert.Equal(t,
		filepath.Join(procRoot, "cp01cnsm", "D00013", "gps", "20180812.gps.nc"),
		w.paths[0])
	assert.NotNil(t, w.datasets[0].Var("gps_latitude"))

	require.Len(t, n.updates, 1)
	u := n.updates[0]
	assert.Equal(t, "cp01cnsm", u.Platform)
	assert.Equal(t, "gps", u.Instrument)
	assert.Equal(t, 2, u.Samples)
	assert.Equal(t, domain.LevelParsed, u.ProcessingLevel)
	assert.False(t, u.UpdatedAt.IsZero())

	assert.NoError(t, r.CheckReadiness(context.Background()))
}

func TestRunnerSkipsEmptyRecord(t *testing.T) {
	rawRoot := t.TempDir()
	dir := filepath.Join(rawRoot, "cp01cnsm", "D00013", "gps")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20180812.gps.json"),
		[]byte(`{"time": []}`), 0o644))

	w := &captureWriter{}
	r := newTestRunner(t, rawRoot, t.TempDir(), w, nil)

	require.NoError(t, r.Run(context.Background(), testMooring(), pipeline.Filter{}))
	assert.Empty(t, w.paths)
}

func TestRunnerMissingRawDirectory(t *testing.T) {
	w := &captureWriter{}
	r := newTestRunner(t, t.TempDir(), t.TempDir(), w, nil)

	require.NoError(t, r.Run(context.Background(), testMooring(), pipeline.Filter{}))
	assert.Empty(t, w.paths)
}

func TestRunnerContinuesAfterFailure(t *testing.T) {
	rawRoot := t.TempDir()
	writeGPSFile(t, filepath.Join(rawRoot, "cp01cnsm", "D00013", "gps"), "20180812.gps.json")

	// A ctdbp record without conductivity fails conversion.
	ctdDir := filepath.Join(rawRoot, "cp01cnsm", "D00013", "ctdbp1")
	require.NoError(t, os.MkdirAll(ctdDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ctdDir, "20180812.ctdbp1.json"),
		[]byte(`{"time": [1534032000], "temperature": [15.0]}`), 0o644))

	m := testMooring()
	m.Assemblies = append(m.Assemblies, config.Assembly{
		Name:  "nsif",
		Depth: 7,
		Instruments: []config.Instrument{
			{Class: "ctdbp", Name: "ctdbp1"},
		},
	})

	w := &captureWriter{}
	r := newTestRunner(t, rawRoot, t.TempDir(), w, nil)

	err := r.Run(context.Background(), m, pipeline.Filter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 instruments failed")

	// The healthy instrument was still converted.
	require.Len(t, w.paths, 1)
	assert.Contains(t, w.paths[0], "gps")
}

func TestRunnerFilter(t *testing.T) {
	rawRoot := t.TempDir()
	gpsDir := filepath.Join(rawRoot, "cp01cnsm", "D00013", "gps")
	writeGPSFile(t, gpsDir, "20180812.gps.json")
	writeGPSFile(t, gpsDir, "20180813.gps.json")

	t.Run("date", func(t *testing.T) {
		w := &captureWriter{}
		r := newTestRunner(t, rawRoot, t.TempDir(), w, nil)

		require.NoError(t, r.Run(context.Background(), testMooring(),
			pipeline.Filter{Date: "20180813"}))
		require.Len(t, w.paths, 1)
		assert.Contains(t, w.paths[0], "20180813")
	})

	t.Run("assembly", func(t *testing.T) {
		w := &captureWriter{}
		r := newTestRunner(t, rawRoot, t.TempDir(), w, nil)

		require.NoError(t, r.Run(context.Background(), testMooring(),
			pipeline.Filter{Assembly: "nsif"}))
		assert.Empty(t, w.paths, "buoy instruments skipped")
	})
}

func TestRunnerNotifierFailureDoesNotFailRun(t *testing.T) {
	rawRoot := t.TempDir()
	writeGPSFile(t, filepath.Join(rawRoot, "cp01cnsm", "D00013", "gps"), "20180812.gps.json")

	w := &captureWriter{}
	n := &captureNotifier{err: fmt.Errorf("broker unreachable")}
	r := newTestRunner(t, rawRoot, t.TempDir(), w, n)

	require.NoError(t, r.Run(context.Background(), testMooring(), pipeline.Filter{}))
	assert.Len(t, w.paths, 1)
	assert.Empty(t, n.updates)
}

func TestRunnerUnknownClass(t *testing.T) {
	rawRoot := t.TempDir()
	writeGPSFile(t, filepath.Join(rawRoot, "cp01cnsm", "D00013", "sonar"), "20180812.sonar.json")

	m := testMooring()
	m.Assemblies[0].Instruments = []config.Instrument{{Class: "sonar"}}

	w := &captureWriter{}
	r := newTestRunner(t, rawRoot, t.TempDir(), w, nil)

	require.Error(t, r.Run(context.Background(), m, pipeline.Filter{}))
	assert.Empty(t, w.paths)
}
