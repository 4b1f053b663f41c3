// Package netcdf encodes processed datasets as classic-format NetCDF files
// suitable for ERDDAP ingestion.
package netcdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fhs/go-netcdf/netcdf"

	"github.com/cgsn-mio/moorproc/internal/domain"
)

// Write encodes the dataset at path, replacing any existing file. The file
// is written in the classic format: ERDDAP cannot ingest 64-bit integers,
// and the classic format keeps every consumer on the safe subset.
//
// The classic format separates define mode from data mode, so every
// dimension, variable, and attribute is defined first; the data writes are
// collected as closures and run after a single EndDef.
func Write(path string, ds *domain.Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	nc, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer nc.Close()

	if err := writeGlobals(nc, ds.GlobalAttrs); err != nil {
		return err
	}

	n := len(ds.Times)
	timeDim, err := nc.AddDim("time", uint64(n))
	if err != nil {
		return err
	}

	writes, err := writeCoordinates(nc, ds, timeDim)
	if err != nil {
		return err
	}

	for _, v := range ds.Variables {
		w, err := writeVariable(nc, v, timeDim, n)
		if err != nil {
			return fmt.Errorf("variable %s: %w", v.Name, err)
		}
		name := v.Name
		writes = append(writes, func() error {
			if err := w(); err != nil {
				return fmt.Errorf("variable %s: %w", name, err)
			}
			return nil
		})
	}

	if err := nc.EndDef(); err != nil {
		return err
	}
	for _, w := range writes {
		if err := w(); err != nil {
			return err
		}
	}
	return nil
}

func writeGlobals(nc netcdf.Dataset, attrs domain.Attrs) error {
	for _, name := range sortedKeys(attrs) {
		if err := writeAttr(nc.Attr(name), attrs[name]); err != nil {
			return fmt.Errorf("global attribute %s: %w", name, err)
		}
	}
	return nil
}

// writeCoordinates defines the time axis and the scalar station coordinates
// shared by every dataset and returns the deferred data writes.
func writeCoordinates(nc netcdf.Dataset, ds *domain.Dataset, timeDim netcdf.Dim) ([]func() error, error) {
	var writes []func() error

	tv, err := nc.AddVar("time", netcdf.DOUBLE, []netcdf.Dim{timeDim})
	if err != nil {
		return nil, err
	}
	if err := writeAttrs(tv, domain.SharedAttrs["time"]); err != nil {
		return nil, err
	}
	secs := make([]float64, len(ds.Times))
	for i, t := range ds.Times {
		secs[i] = float64(t.UnixNano()) / 1e9
	}
	writes = append(writes, func() error { return tv.WriteFloat64s(secs) })

	scalars := []struct {
		name  string
		value float64
	}{
		{"lat", ds.Lat},
		{"lon", ds.Lon},
		{"z", ds.Depth.Deploy},
	}
	for _, s := range scalars {
		v, err := nc.AddVar(s.name, netcdf.DOUBLE, nil)
		if err != nil {
			return nil, err
		}
		if err := writeAttrs(v, domain.SharedAttrs[s.name]); err != nil {
			return nil, err
		}
		value := s.value
		writes = append(writes, func() error { return v.WriteFloat64s([]float64{value}) })
	}

	// station holds the platform name as a fixed-length char array
	strlen, err := nc.AddDim("station_strlen", uint64(len(ds.Platform)))
	if err != nil {
		return nil, err
	}
	sv, err := nc.AddVar("station", netcdf.CHAR, []netcdf.Dim{strlen})
	if err != nil {
		return nil, err
	}
	if err := writeAttrs(sv, domain.SharedAttrs["station"]); err != nil {
		return nil, err
	}
	writes = append(writes, func() error { return sv.WriteBytes([]byte(ds.Platform)) })
	return writes, nil
}

func writeVariable(nc netcdf.Dataset, v *domain.Variable, timeDim netcdf.Dim, n int) (func() error, error) {
	switch {
	case v.Strings != nil:
		return writeStrings(nc, v, timeDim)
	case v.Ints != nil:
		nv, err := nc.AddVar(v.Name, netcdf.INT, []netcdf.Dim{timeDim})
		if err != nil {
			return nil, err
		}
		if err := writeAttrs(nv, v.Attrs); err != nil {
			return nil, err
		}
		return func() error { return nv.WriteInt32s(v.Ints) }, nil
	case v.Len() == 1 && n != 1:
		// scalar value, such as a fixed sensor depth
		nv, err := nc.AddVar(v.Name, netcdf.DOUBLE, nil)
		if err != nil {
			return nil, err
		}
		if err := writeAttrs(nv, v.Attrs); err != nil {
			return nil, err
		}
		return func() error { return nv.WriteFloat64s(v.Floats) }, nil
	default:
		nv, err := nc.AddVar(v.Name, netcdf.DOUBLE, []netcdf.Dim{timeDim})
		if err != nil {
			return nil, err
		}
		if err := writeAttrs(nv, v.Attrs); err != nil {
			return nil, err
		}
		return func() error { return nv.WriteFloat64s(v.Floats) }, nil
	}
}

// writeStrings stores a per-sample string variable as a (time, strlen) char
// matrix, padded with NUL bytes.
func writeStrings(nc netcdf.Dataset, v *domain.Variable, timeDim netcdf.Dim) (func() error, error) {
	width := 1
	for _, s := range v.Strings {
		if len(s) > width {
			width = len(s)
		}
	}
	strlen, err := nc.AddDim(v.Name+"_strlen", uint64(width))
	if err != nil {
		return nil, err
	}
	nv, err := nc.AddVar(v.Name, netcdf.CHAR, []netcdf.Dim{timeDim, strlen})
	if err != nil {
		return nil, err
	}
	if err := writeAttrs(nv, v.Attrs); err != nil {
		return nil, err
	}
	buf := make([]byte, len(v.Strings)*width)
	for i, s := range v.Strings {
		copy(buf[i*width:(i+1)*width], s)
	}
	return func() error { return nv.WriteBytes(buf) }, nil
}

func writeAttrs(v netcdf.Var, attrs domain.Attrs) error {
	for _, name := range sortedKeys(attrs) {
		if err := writeAttr(v.Attr(name), attrs[name]); err != nil {
			return fmt.Errorf("attribute %s: %w", name, err)
		}
	}
	return nil
}

func writeAttr(a netcdf.Attr, value any) error {
	switch val := value.(type) {
	case string:
		return a.WriteBytes([]byte(val))
	case float64:
		return a.WriteFloat64s([]float64{val})
	case float32:
		return a.WriteFloat32s([]float32{val})
	case int32:
		return a.WriteInt32s([]int32{val})
	case int:
		return a.WriteInt32s([]int32{int32(val)})
	case []int32:
		return a.WriteInt32s(val)
	case []float64:
		return a.WriteFloat64s(val)
	default:
		return fmt.Errorf("unsupported attribute type %T", value)
	}
}

func sortedKeys(attrs domain.Attrs) []string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
