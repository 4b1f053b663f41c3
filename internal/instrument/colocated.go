package instrument

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/cgsn-mio/moorproc/internal/domain"
	"github.com/cgsn-mio/moorproc/internal/ocean"
)

// coverageSlack tolerates co-located data that ends slightly before the
// instrument record. The start must be covered exactly.
const coverageSlack = time.Hour

var recordDateRe = regexp.MustCompile(`(\d{8})(?:_\d{6})?\.\w+\.json$`)

// ErrNoColocated reports that no usable co-located data was found for the
// record's time span.
var ErrNoColocated = errors.New("no co-located data covering record")

// CTDData is a co-located CTD series interpolated onto an instrument's
// time axis.
type CTDData struct {
	Pressure    []float64
	Temperature []float64
	Salinity    []float64
}

// recordDate extracts the YYYYMMDD date from a record filename.
func recordDate(path string) (time.Time, error) {
	m := recordDateRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return time.Time{}, fmt.Errorf("no date in record name %q", filepath.Base(path))
	}
	return time.Parse("20060102", m[1])
}

// loadColocated reads the co-located instrument's records for the day of
// infile plus the day before and after, concatenated in time order. The
// sibling directory is resolved relative to infile's parent.
func loadColocated(infile, sibling string) (*domain.Record, error) {
	day, err := recordDate(infile)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(filepath.Dir(filepath.Dir(infile)), sibling)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read co-located directory: %w", err)
	}

	want := map[string]bool{
		day.AddDate(0, 0, -1).Format("20060102"): true,
		day.Format("20060102"):                   true,
		day.AddDate(0, 0, 1).Format("20060102"):  true,
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := recordDateRe.FindStringSubmatch(e.Name())
		if m != nil && want[m[1]] {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, ErrNoColocated
	}
	sort.Strings(paths)

	var merged *domain.Record
	for _, p := range paths {
		rec, err := domain.LoadRecord(p)
		if err != nil {
			if errors.Is(err, domain.ErrEmptyRecord) {
				continue
			}
			return nil, err
		}
		if merged == nil {
			merged = rec
			continue
		}
		if err := merged.Append(rec); err != nil {
			return nil, err
		}
	}
	if merged == nil || merged.Len() == 0 {
		return nil, ErrNoColocated
	}
	return merged, nil
}

// colocatedCTD loads the co-located CTD records for infile and interpolates
// pressure, temperature and salinity onto the instrument's times. Salinity
// is derived from conductivity when the CTD record is unprocessed.
func colocatedCTD(rec *domain.Record, infile, ctdName string) (*CTDData, error) {
	ctd, err := loadColocated(infile, ctdName)
	if err != nil {
		return nil, err
	}
	if !covers(ctd.Times, rec.Times) {
		return nil, ErrNoColocated
	}

	press := ctd.Floats("pressure")
	temp := ctd.Floats("temperature")
	if press == nil || temp == nil {
		return nil, fmt.Errorf("co-located CTD %q lacks pressure or temperature", ctdName)
	}
	sal := ctd.Floats("salinity")
	if sal == nil {
		cond := ctd.Floats("conductivity")
		if cond == nil {
			return nil, fmt.Errorf("co-located CTD %q lacks salinity and conductivity", ctdName)
		}
		sal = make([]float64, len(cond))
		for i := range cond {
			sal[i] = ocean.SalinityFromConductivity(cond[i]*10, temp[i], press[i])
		}
	}

	target := epochSecondsOf(rec.Times)
	source := epochSecondsOf(ctd.Times)
	return &CTDData{
		Pressure:    ocean.Interp(target, source, press),
		Temperature: ocean.Interp(target, source, temp),
		Salinity:    ocean.Interp(target, source, sal),
	}, nil
}

// covers reports whether the series spans the target times. The series must
// begin at or before the first target time; the end may fall short by up to
// the coverage slack.
func covers(series, target []time.Time) bool {
	if len(series) == 0 || len(target) == 0 {
		return false
	}
	end := series[len(series)-1].Add(coverageSlack)
	return !target[0].Before(series[0]) && !target[len(target)-1].After(end)
}

func epochSecondsOf(times []time.Time) []float64 {
	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = float64(t.UnixNano()) / 1e9
	}
	return out
}
