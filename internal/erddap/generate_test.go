package erddap_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ncwriter "github.com/cgsn-mio/moorproc/internal/adapter/netcdf"
	"github.com/cgsn-mio/moorproc/internal/domain"
	"github.com/cgsn-mio/moorproc/internal/erddap"
)

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "20180812.ctdbp1.nc")

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
		GlobalAttrs: domain.Attrs{"featureType": "timeSeries"},
	}
	ds.AddFloats("salinity", []float64{34.9, 35.1}, domain.Attrs{"units": "1"})
	ds.AddInts("fix_quality", []int32{1, 2}, nil)
	ds.AddStrings("deploy_id", []string{"D00013", "D00013"}, nil)
	require.NoError(t, ncwriter.Write(path, ds))

	xml, err := erddap.Generate(path, "cp01cnsm-D00013-ctdbp1")
	require.NoError(t, err)

	assert.Contains(t, xml, `datasetID="cp01cnsm-D00013-ctdbp1"`)
	assert.Contains(t, xml, "<fileDir>"+dir+"</fileDir>")

	assert.Contains(t, xml, "<sourceName>salinity</sourceName>")
	assert.Contains(t, xml, "<dataType>double</dataType>")
	assert.Contains(t, xml, "<dataType>int</dataType>")
	assert.Contains(t, xml, "<dataType>String</dataType>")

	// coordinate renames for ERDDAP
	assert.Contains(t, xml, "<sourceName>lat</sourceName>")
	assert.Contains(t, xml, "<destinationName>latitude</destinationName>")
	assert.Contains(t, xml, "<destinationName>altitude</destinationName>")
	assert.Contains(t, xml, `<att name="ioos_category">Time</att>`)

	// salinity color bar comes from the data extremes
	assert.Contains(t, xml, `<att name="colorBarMinimum" type="double">34.9</att>`)
	assert.Contains(t, xml, `<att name="colorBarMaximum" type="double">35.1</att>`)
}

func TestGenerateMissingFile(t *testing.T) {
	_, err := erddap.Generate(filepath.Join(t.TempDir(), "absent.nc"), "x")
	assert.Error(t, err)
}
