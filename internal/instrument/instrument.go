// Package instrument implements the per-instrument conversion processors.
// Each processor reads one parsed JSON record, applies the calibration
// coefficients and unit conversions for its sensor class, and produces a
// CF-1.7 dataset ready for NetCDF encoding.
package instrument

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/cgsn-mio/moorproc/internal/calib"
	"github.com/cgsn-mio/moorproc/internal/domain"
	"github.com/cgsn-mio/moorproc/internal/observability"
)

// Params carries the deployment context for one conversion. Latitude and
// longitude are the surveyed anchor position in decimal degrees; depth is
// the nominal instrument deployment depth in meters.
type Params struct {
	Platform   string
	Deployment string
	Lat        float64
	Lon        float64
	Depth      float64

	// Serial is the instrument serial number for calibration lookups.
	Serial string
	// CoeffFile overrides the serialized coefficient cache location,
	// which otherwise sits next to the input file.
	CoeffFile string
	// CTDName is the directory name of a co-located CTD whose data is
	// merged before computing corrected variables.
	CTDName string
	// Burst enables 15-minute median burst averaging.
	Burst bool
	// Switch selects processor-specific modes (e.g. psc or mpea).
	Switch string

	// InFile is the source record path, used to place the coefficient
	// cache and to locate co-located data by convention.
	InFile string
}

// Processor converts one parsed instrument record into a dataset.
type Processor interface {
	// Class returns the instrument class name used in configuration and
	// file paths (e.g. "ctdbp").
	Class() string
	Process(ctx context.Context, rec *domain.Record, p Params) (*domain.Dataset, error)
}

// Registry holds the available processors keyed by class.
type Registry struct {
	procs map[string]Processor
}

// NewRegistry builds the registry of all instrument processors. The finder
// may be nil, in which case calibrated processors emit filled derived
// variables when no serialized coefficients exist.
func NewRegistry(finder *calib.Finder, metrics *observability.Metrics, logger *slog.Logger) *Registry {
	r := &Registry{procs: make(map[string]Processor)}
	for _, p := range []Processor{
		NewCTDBP(),
		NewDOSTA(finder, metrics, logger),
		NewMETBK(),
		NewGPS(),
		NewPwrsys(),
		NewHYDGN(),
	} {
		r.procs[p.Class()] = p
	}
	return r
}

// Get returns the processor for the given class.
func (r *Registry) Get(class string) (Processor, error) {
	p, ok := r.procs[class]
	if !ok {
		return nil, fmt.Errorf("unknown instrument class %q (have %v)", class, r.Classes())
	}
	return p, nil
}

// Classes lists the registered classes in sorted order.
func (r *Registry) Classes() []string {
	classes := make([]string, 0, len(r.procs))
	for c := range r.procs {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	return classes
}

func errMissingColumns(class string, names ...string) error {
	return fmt.Errorf("%s record is missing one of %v", class, names)
}

// nanSeries returns n fill values for a derived variable that could not be
// computed.
func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// newDataset seeds a dataset with the deployment identity and a fixed depth
// range. Processors widen the range when the record carries pressure.
func newDataset(rec *domain.Record, p Params) *domain.Dataset {
	return &domain.Dataset{
		Platform:   p.Platform,
		Deployment: p.Deployment,
		Lat:        p.Lat,
		Lon:        p.Lon,
		Depth:      domain.FixedDepth(p.Depth),
		Times:      rec.Times,
	}
}

// passthrough copies every remaining record column into the dataset,
// attaching attributes from the instrument's attribute set when present.
// Columns named in skip are left out.
func passthrough(ds *domain.Dataset, rec *domain.Record, attrs domain.AttrSet, skip ...string) {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}
	for _, name := range rec.Names() {
		if skipped[name] || ds.Var(name) != nil {
			continue
		}
		f := rec.Fields[name]
		switch f.Kind {
		case domain.StringField:
			ds.AddStrings(name, f.Strings, attrs[name])
		case domain.IntField:
			ds.AddInts(name, f.Ints, attrs[name])
		default:
			ds.AddFloats(name, f.Floats, attrs[name])
		}
	}
}

