package instrument

import (
	"context"

	"github.com/cgsn-mio/moorproc/internal/domain"
	"github.com/cgsn-mio/moorproc/internal/ocean"
)

// Sensor vertical offsets for the bulk meteorology package, in meters
// relative to the sea surface with positive down. The conductivity and
// temperature sensor hangs below the buoy; the rest sit on the tower.
const (
	metbkDepthCT  = 1.366
	metbkDepthBPR = -4.065
	metbkDepthIRR = -4.320
	metbkDepthPRC = -4.100
	metbkDepthRH  = -4.255
	metbkDepthWND = -4.740
)

var metbkAttrs = domain.AttrSet{
	"global": {
		"title": "Bulk Meteorology Measurements",
		"summary": "Surface meteorology and near-surface sea water " +
			"measurements from the bulk meteorology instrument package.",
	},
	"barometric_pressure": {
		"long_name":     "Barometric Pressure",
		"standard_name": "air_pressure",
		"units":         "mbar",
		"_FillValue":    domain.FillFloat,
	},
	"relative_humidity": {
		"long_name":     "Relative Humidity",
		"standard_name": "relative_humidity",
		"units":         "percent",
		"_FillValue":    domain.FillFloat,
	},
	"air_temperature": {
		"long_name":     "Air Temperature",
		"standard_name": "air_temperature",
		"units":         "degrees_Celsius",
		"_FillValue":    domain.FillFloat,
	},
	"longwave_irradiance": {
		"long_name":     "Downwelling Longwave Irradiance",
		"standard_name": "downwelling_longwave_flux_in_air",
		"units":         "W m-2",
		"_FillValue":    domain.FillFloat,
	},
	"shortwave_irradiance": {
		"long_name":     "Downwelling Shortwave Irradiance",
		"standard_name": "downwelling_shortwave_flux_in_air",
		"units":         "W m-2",
		"_FillValue":    domain.FillFloat,
	},
	"precipitation_level": {
		"long_name": "Precipitation Level",
		"units":     "mm",
		"comment": "Level of the self-siphoning rain gauge. Precipitation " +
			"rate must be derived from the change in level between siphon " +
			"events.",
		"_FillValue": domain.FillFloat,
	},
	"sea_surface_temperature": {
		"long_name":     "Sea Surface Temperature",
		"standard_name": "sea_surface_temperature",
		"units":         "degrees_Celsius",
		"_FillValue":    domain.FillFloat,
	},
	"sea_surface_conductivity": {
		"long_name":               "Sea Surface Conductivity",
		"standard_name":           "sea_water_electrical_conductivity",
		"units":                   "S m-1",
		"data_product_identifier": "CONDWAT_L1",
		"_FillValue":              domain.FillFloat,
	},
	"sea_surface_salinity": {
		"long_name":               "Sea Surface Practical Salinity",
		"standard_name":           "sea_water_practical_salinity",
		"units":                   "1",
		"data_product_identifier": "SALSURF_L2",
		"comment": "Practical salinity at the sea surface, derived from " +
			"conductivity and temperature per the Practical Salinity Scale " +
			"of 1978.",
		"_FillValue": domain.FillFloat,
	},
	"sea_surface_density": {
		"long_name":               "Sea Surface In-Situ Density",
		"standard_name":           "sea_water_density",
		"units":                   "kg m-3",
		"data_product_identifier": "DENSITY_L2",
		"_FillValue":              domain.FillFloat,
	},
	"eastward_wind_velocity": {
		"long_name":     "Eastward Wind Velocity",
		"standard_name": "eastward_wind",
		"units":         "m s-1",
		"_FillValue":    domain.FillFloat,
	},
	"northward_wind_velocity": {
		"long_name":     "Northward Wind Velocity",
		"standard_name": "northward_wind",
		"units":         "m s-1",
		"_FillValue":    domain.FillFloat,
	},
	"z_ct": {
		"long_name": "Conductivity and Temperature Sensor Depth",
		"units":     "m",
		"positive":  "down",
		"comment":   "Depth of the sea surface conductivity and temperature sensor.",
	},
	"z_bpr": {
		"long_name": "Barometric Pressure Sensor Height",
		"units":     "m",
		"positive":  "down",
	},
	"z_irr": {
		"long_name": "Irradiance Sensor Height",
		"units":     "m",
		"positive":  "down",
	},
	"z_prc": {
		"long_name": "Rain Gauge Height",
		"units":     "m",
		"positive":  "down",
	},
	"z_rh": {
		"long_name": "Humidity and Air Temperature Sensor Height",
		"units":     "m",
		"positive":  "down",
	},
	"z_wnd": {
		"long_name": "Wind Sensor Height",
		"units":     "m",
		"positive":  "down",
	},
}

// METBK converts records from the bulk meteorology package. Sea surface
// salinity and density are derived from the near-surface conductivity and
// temperature, and the fixed sensor offsets are recorded as scalar depth
// variables.
type METBK struct{}

func NewMETBK() *METBK { return &METBK{} }

func (*METBK) Class() string { return "metbk" }

func (m *METBK) Process(ctx context.Context, rec *domain.Record, p Params) (*domain.Dataset, error) {
	rec.Drop("dcl_date_time_string", "date_time_string")
	if p.Burst {
		rec = burstMedian(rec)
	}

	cond := rec.Floats("sea_surface_conductivity")
	sst := rec.Floats("sea_surface_temperature")
	if cond == nil || sst == nil {
		return nil, errMissingColumns("metbk", "sea_surface_conductivity", "sea_surface_temperature")
	}

	salinity := make([]float64, len(cond))
	density := make([]float64, len(cond))
	for i := range cond {
		salinity[i] = ocean.SalinityFromConductivity(cond[i]*10, sst[i], metbkDepthCT)
		density[i] = ocean.Density(salinity[i], sst[i], metbkDepthCT)
	}

	ds := newDataset(rec, p)
	ds.ProcessingLevel = domain.LevelProcessed

	attrs := domain.MergeAttrSets(domain.SharedAttrs, metbkAttrs)
	ds.AddFloats("sea_surface_salinity", salinity, attrs["sea_surface_salinity"])
	ds.AddFloats("sea_surface_density", density, attrs["sea_surface_density"])
	passthrough(ds, rec, attrs)

	for name, z := range map[string]float64{
		"z_ct":  metbkDepthCT,
		"z_bpr": metbkDepthBPR,
		"z_irr": metbkDepthIRR,
		"z_prc": metbkDepthPRC,
		"z_rh":  metbkDepthRH,
		"z_wnd": metbkDepthWND,
	} {
		ds.AddFloats(name, []float64{z}, attrs[name])
	}

	ds.Finalize(attrs)
	return ds, nil
}
