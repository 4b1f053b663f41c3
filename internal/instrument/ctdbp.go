package instrument

import (
	"context"
	"math"

	"github.com/cgsn-mio/moorproc/internal/domain"
	"github.com/cgsn-mio/moorproc/internal/ocean"
)

// CTDBP converts records from the Sea-Bird 16plus CTD. Conductivity,
// temperature and pressure arrive in engineering units; salinity and density
// are derived here, and the pressure record widens the dataset's vertical
// extent.
type CTDBP struct{}

func NewCTDBP() *CTDBP { return &CTDBP{} }

func (*CTDBP) Class() string { return "ctdbp" }

func (c *CTDBP) Process(ctx context.Context, rec *domain.Record, p Params) (*domain.Dataset, error) {
	rec.Drop("dcl_date_time_string", "date_time_string")
	if p.Burst {
		rec = burstMedian(rec)
	}

	cond := rec.Floats("conductivity")
	temp := rec.Floats("temperature")
	press := rec.Floats("pressure")
	if cond == nil || temp == nil || press == nil {
		return nil, errMissingColumns("ctdbp", "conductivity", "temperature", "pressure")
	}

	salinity := make([]float64, len(cond))
	density := make([]float64, len(cond))
	for i := range cond {
		salinity[i] = ocean.SalinityFromConductivity(cond[i]*10, temp[i], press[i])
		density[i] = ocean.Density(salinity[i], temp[i], press[i])
	}

	ds := newDataset(rec, p)
	ds.Depth = depthFromPressure(press, p.Lat, p.Depth)
	ds.ProcessingLevel = domain.LevelProcessed

	attrs := domain.MergeAttrSets(domain.SharedAttrs, domain.CTDAttrs)
	ds.AddFloats("conductivity", cond, attrs["conductivity"])
	ds.AddFloats("temperature", temp, attrs["temperature"])
	ds.AddFloats("pressure", press, attrs["pressure"])
	ds.AddFloats("salinity", salinity, attrs["salinity"])
	ds.AddFloats("density", density, attrs["density"])
	passthrough(ds, rec, attrs, "conductivity", "temperature", "pressure")
	ds.Finalize(attrs)
	return ds, nil
}

// depthFromPressure derives the dataset's vertical extent from a pressure
// record, keeping the nominal deployment depth. NaN pressures are skipped.
func depthFromPressure(press []float64, lat, deploy float64) domain.DepthRange {
	dr := domain.FixedDepth(deploy)
	min, max := math.Inf(1), math.Inf(-1)
	for _, p := range press {
		if math.IsNaN(p) {
			continue
		}
		z := ocean.DepthFromPressure(p, lat)
		if z < min {
			min = z
		}
		if z > max {
			max = z
		}
	}
	if !math.IsInf(min, 1) {
		dr.Min, dr.Max = min, max
	}
	return dr
}
