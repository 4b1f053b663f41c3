package netcdf_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ctessum/cdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ncwriter "github.com/cgsn-mio/moorproc/internal/adapter/netcdf"
	"github.com/cgsn-mio/moorproc/internal/domain"
)

func testDataset() *domain.Dataset {
	ds := &domain.Dataset{
		Platform:   "cp01cnsm",
		Deployment: "D00013",
		Lat:        40.1334,
		Lon:        -70.7785,
		Depth:      domain.FixedDepth(7),
		Times: []time.Time{
			time.Date(2018, 8, 12, 0, 0, 0, 0, time.UTC),
			time.Date(2018, 8, 12, 1, 0, 0, 0, time.UTC),
		},
		GlobalAttrs: domain.Attrs{
			"title":   "Writer Test",
			"comment": "Mooring ID: CP01CNSM-00013",
		},
	}
	ds.AddFloats("salinity", []float64{35.0, 35.1}, domain.Attrs{"units": "1"})
	ds.AddInts("fix_quality", []int32{1, 2}, nil)
	ds.AddStrings("deploy_id", []string{"D00013", "D00013"}, nil)
	ds.AddFloats("z_ct", []float64{1.366}, domain.Attrs{"units": "m"})
	return ds
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proc", "test.nc")
	require.NoError(t, ncwriter.Write(path, testDataset()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	ff, err := cdf.Open(f)
	require.NoError(t, err)

	assert.Equal(t, []int{2}, ff.Header.Lengths("time"))
	assert.Equal(t, []int{2}, ff.Header.Lengths("salinity"))
	assert.Equal(t, []int{2, 6}, ff.Header.Lengths("deploy_id"))

	r := ff.Reader("salinity", nil, nil)
	buf := r.Zero(2)
	_, err = r.Read(buf)
	require.NoError(t, err)
	vals, ok := buf.([]float64)
	require.True(t, ok, "data variables are written as doubles")
	assert.InDelta(t, 35.0, vals[0], 1e-9)

	ri := ff.Reader("fix_quality", nil, nil)
	ibuf := ri.Zero(2)
	_, err = ri.Read(ibuf)
	require.NoError(t, err)
	ivals, ok := ibuf.([]int32)
	require.True(t, ok, "integer variables stay 32-bit for ERDDAP")
	assert.Equal(t, []int32{1, 2}, ivals)

	title := ff.Header.GetAttribute("", "title")
	assert.Equal(t, "Writer Test", attrString(title))

	units := ff.Header.GetAttribute("salinity", "units")
	assert.Equal(t, "1", attrString(units))

	rt := ff.Reader("time", nil, nil)
	tbuf := rt.Zero(2)
	_, err = rt.Read(tbuf)
	require.NoError(t, err)
	tvals := tbuf.([]float64)
	assert.InDelta(t, 1534032000, tvals[0], 1e-6)
}

func TestWriteScalarVariable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.nc")
	require.NoError(t, ncwriter.Write(path, testDataset()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	ff, err := cdf.Open(f)
	require.NoError(t, err)

	assert.Empty(t, ff.Header.Lengths("z_ct"), "single-sample variables have no time dimension")
	assert.Empty(t, ff.Header.Lengths("lat"))
}

// attrString normalizes the attribute representation returned by the reader.
func attrString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return ""
	}
}
