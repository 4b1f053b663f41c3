package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Attrs holds NetCDF attributes for a variable or the dataset globals.
// Values are strings, float64, float32, or int32.
type Attrs map[string]any

// MergeAttrs returns a copy of base with overrides applied on top.
func MergeAttrs(base, overrides Attrs) Attrs {
	out := make(Attrs, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// AttrSet maps variable names to their attribute dictionaries. The "global"
// key holds dataset-level attributes.
type AttrSet map[string]Attrs

// MergeAttrSets layers the override set on top of the base set, merging the
// attribute dictionaries of variables present in both.
func MergeAttrSets(base, overrides AttrSet) AttrSet {
	out := make(AttrSet, len(base)+len(overrides))
	for name, attrs := range base {
		out[name] = MergeAttrs(nil, attrs)
	}
	for name, attrs := range overrides {
		out[name] = MergeAttrs(out[name], attrs)
	}
	return out
}

// Variable is one data variable of a dataset. Exactly one of the data slices
// is populated.
type Variable struct {
	Name    string
	Attrs   Attrs
	Floats  []float64
	Ints    []int32
	Strings []string
}

// Len returns the number of samples in the variable.
func (v *Variable) Len() int {
	switch {
	case v.Ints != nil:
		return len(v.Ints)
	case v.Strings != nil:
		return len(v.Strings)
	default:
		return len(v.Floats)
	}
}

// Processing levels reported in the processing_level global attribute.
// Parsed datasets carry raw engineering units only, processed datasets have
// every derived variable calibrated, and partial datasets fall in between
// (typically when a calibration or co-located record was unavailable).
const (
	LevelParsed    = "parsed"
	LevelPartial   = "partial"
	LevelProcessed = "processed"
)

// DepthRange describes the vertical extent of an instrument deployment. Min
// and Max differ from Deploy only when the instrument carries a pressure
// sensor.
type DepthRange struct {
	Deploy float64
	Min    float64
	Max    float64
}

// FixedDepth returns a DepthRange pinned to a single depth.
func FixedDepth(d float64) DepthRange {
	return DepthRange{Deploy: d, Min: d, Max: d}
}

// Dataset is a single-station time series ready for NetCDF encoding.
type Dataset struct {
	Platform   string
	Deployment string
	Lat        float64
	Lon        float64
	Depth      DepthRange

	Times       []time.Time
	Variables   []*Variable
	GlobalAttrs Attrs

	// ProcessingLevel is parsed, partial, or processed.
	ProcessingLevel string
}

// AddFloats appends a float64 variable.
func (ds *Dataset) AddFloats(name string, data []float64, attrs Attrs) *Variable {
	v := &Variable{Name: name, Attrs: attrs, Floats: data}
	ds.Variables = append(ds.Variables, v)
	return v
}

// AddInts appends an int32 variable.
func (ds *Dataset) AddInts(name string, data []int32, attrs Attrs) *Variable {
	v := &Variable{Name: name, Attrs: attrs, Ints: data}
	ds.Variables = append(ds.Variables, v)
	return v
}

// AddStrings appends a string variable.
func (ds *Dataset) AddStrings(name string, data []string, attrs Attrs) *Variable {
	v := &Variable{Name: name, Attrs: attrs, Strings: data}
	ds.Variables = append(ds.Variables, v)
	return v
}

// Var returns the named variable, or nil.
func (ds *Dataset) Var(name string) *Variable {
	for _, v := range ds.Variables {
		if v.Name == name {
			return v
		}
	}
	return nil
}

var nonDigits = regexp.MustCompile(`\D`)

// DeploymentNumber strips the letter prefix from a deployment name, so
// "D00013" yields "00013". Used for the Mooring ID global attribute.
func DeploymentNumber(deployment string) string {
	return nonDigits.ReplaceAllString(deployment, "")
}

// Finalize stamps the dataset with its deployment identity and the global
// and coordinate metadata required by the CF conventions: the Mooring ID
// comment, creation time, geospatial bounds, a fresh dataset UUID, a
// per-sample deploy_id variable, and a coordinates attribute on every data
// variable. attrs supplies the per-instrument attribute set, already merged
// over the shared attributes by the caller.
func (ds *Dataset) Finalize(attrs AttrSet) {
	now := clock.Now().UTC()

	ds.GlobalAttrs = MergeAttrs(attrs["global"], Attrs{
		"comment": fmt.Sprintf("Mooring ID: %s-%s",
			strings.ToUpper(ds.Platform), DeploymentNumber(ds.Deployment)),
		"date_created":                 now.Format("2006-01-02T15:04:00Z"),
		"uuid":                         uuid.NewString(),
		"geospatial_lat_max":           ds.Lat,
		"geospatial_lat_min":           ds.Lat,
		"geospatial_lon_max":           ds.Lon,
		"geospatial_lon_min":           ds.Lon,
		"geospatial_vertical_max":      ds.Depth.Max,
		"geospatial_vertical_min":      ds.Depth.Min,
		"geospatial_vertical_positive": "down",
		"geospatial_vertical_units":    "m",
	})
	if ds.ProcessingLevel != "" {
		ds.GlobalAttrs["processing_level"] = ds.ProcessingLevel
	}

	if ds.Var("deploy_id") == nil {
		ids := make([]string, len(ds.Times))
		for i := range ids {
			ids[i] = ds.Deployment
		}
		ds.AddStrings("deploy_id", ids, attrs["deploy_id"])
	}

	for _, v := range ds.Variables {
		if v.Attrs == nil {
			v.Attrs = attrs[v.Name]
		}
		if isCoordinate(v.Name) {
			continue
		}
		v.Attrs = MergeAttrs(v.Attrs, Attrs{"coordinates": "time lat lon z station"})
	}
}

func isCoordinate(name string) bool {
	switch name {
	case "time", "lat", "lon", "z", "station", "wavelength_number":
		return true
	}
	// scalar sensor depth variables such as z_ct
	return strings.HasPrefix(name, "z_")
}
