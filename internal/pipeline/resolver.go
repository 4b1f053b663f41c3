package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Resolver maps mooring identifiers onto the on-disk layout shared with the
// data loggers: raw JSON records under
// <RawRoot>/<platform>/<deployment>/<instrument>/ and NetCDF output mirrored
// under ProcRoot with the same per-file base name.
type Resolver struct {
	RawRoot  string
	ProcRoot string
}

// RawDir returns the raw record directory for one instrument.
func (r Resolver) RawDir(platform, deployment, instrument string) string {
	return filepath.Join(r.RawRoot, platform, deployment, instrument)
}

// RawFiles lists the JSON record files for one instrument in name order,
// which is date order given the YYYYMMDD naming convention. Serialized
// calibration coefficient files sharing the directory are excluded.
func (r Resolver) RawFiles(platform, deployment, instrument string) ([]string, error) {
	dir := r.RawDir(platform, deployment, instrument)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list raw records: %w", err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if strings.Contains(name, ".cal_coeffs.") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// OutPath returns the NetCDF output path for a raw record file, preserving
// the base name so a day of ctdbp1 data stays recognizable on the data
// server (20180901.ctdbp1.json becomes 20180901.ctdbp1.nc).
func (r Resolver) OutPath(platform, deployment, instrument, rawPath string) string {
	base := strings.TrimSuffix(filepath.Base(rawPath), ".json") + ".nc"
	return filepath.Join(r.ProcRoot, platform, deployment, instrument, base)
}
