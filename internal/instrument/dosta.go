package instrument

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/cgsn-mio/moorproc/internal/calib"
	"github.com/cgsn-mio/moorproc/internal/domain"
	"github.com/cgsn-mio/moorproc/internal/observability"
	"github.com/cgsn-mio/moorproc/internal/ocean"
)

var dostaAttrs = domain.AttrSet{
	"global": {
		"title": "Dissolved Oxygen Concentration",
		"summary": "Dissolved oxygen measured by an Aanderaa Optode 4831 " +
			"mounted on the mooring riser.",
	},
	"product_number": {
		"long_name": "Product Number",
		"comment":   "Optode model number reported by the instrument.",
	},
	"serial_number": {
		"long_name": "Serial Number",
		"comment":   "Optode serial number reported by the instrument.",
	},
	"oxygen_concentration": {
		"long_name":               "Estimated Oxygen Concentration",
		"units":                   "umol L-1",
		"data_product_identifier": "DOCONCS_L1",
		"comment": "Oxygen concentration estimated onboard the optode using " +
			"factory settings for salinity and pressure.",
		"_FillValue": domain.FillFloat,
	},
	"oxygen_saturation": {
		"long_name":  "Estimated Oxygen Saturation",
		"units":      "percent",
		"comment":    "Air saturation estimated onboard the optode.",
		"_FillValue": domain.FillFloat,
	},
	"optode_temperature": {
		"long_name":  "Optode Thermistor Temperature",
		"units":      "degrees_Celsius",
		"_FillValue": domain.FillFloat,
	},
	"calibrated_phase": {
		"long_name":  "Calibrated Phase Difference",
		"units":      "degrees",
		"_FillValue": domain.FillFloat,
	},
	"temp_compensated_phase": {
		"long_name":  "Temperature Compensated Phase Difference",
		"units":      "degrees",
		"_FillValue": domain.FillFloat,
	},
	"blue_phase": {
		"long_name":  "Blue Excitation Phase",
		"units":      "degrees",
		"_FillValue": domain.FillFloat,
	},
	"red_phase": {
		"long_name":  "Red Excitation Phase",
		"units":      "degrees",
		"_FillValue": domain.FillFloat,
	},
	"blue_amplitude": {
		"long_name":  "Blue Excitation Amplitude",
		"units":      "mV",
		"_FillValue": domain.FillFloat,
	},
	"red_amplitude": {
		"long_name":  "Red Excitation Amplitude",
		"units":      "mV",
		"_FillValue": domain.FillFloat,
	},
	"raw_temperature": {
		"long_name":  "Raw Thermistor Voltage",
		"units":      "mV",
		"_FillValue": domain.FillFloat,
	},
	"svu_oxygen_concentration": {
		"long_name":               "SVU Oxygen Concentration",
		"units":                   "umol L-1",
		"data_product_identifier": "DOCONCS_L1",
		"comment": "Oxygen concentration recomputed from the calibrated " +
			"phase and optode temperature using the Stern-Volmer-Uchida " +
			"equation and the instrument's multi-point calibration.",
		"_FillValue": domain.FillFloat,
	},
	"oxygen_concentration_corrected": {
		"long_name":               "Corrected Oxygen Concentration",
		"standard_name":           "moles_of_oxygen_per_unit_mass_in_sea_water",
		"units":                   "umol kg-1",
		"data_product_identifier": "DOXYGEN_L2",
		"comment": "Oxygen concentration corrected for salinity and pressure " +
			"effects using co-located CTD measurements.",
		"_FillValue": domain.FillFloat,
	},
}

// dostaRenames maps the decoded column names onto the published variable
// names.
var dostaRenames = map[string]string{
	"estimated_oxygen_concentration": "oxygen_concentration",
	"estimated_oxygen_saturation":    "oxygen_saturation",
}

// DOSTA converts records from the Aanderaa optode. When a multi-point
// calibration sheet is available the oxygen concentration is recomputed from
// the raw phase measurements, and when a co-located CTD covers the record
// the concentration is corrected for salinity and pressure.
type DOSTA struct {
	finder  *calib.Finder
	metrics *observability.Metrics
	logger  *slog.Logger
}

func NewDOSTA(finder *calib.Finder, metrics *observability.Metrics, logger *slog.Logger) *DOSTA {
	return &DOSTA{finder: finder, metrics: metrics, logger: logger}
}

func (*DOSTA) Class() string { return "dosta" }

func (d *DOSTA) Process(ctx context.Context, rec *domain.Record, p Params) (*domain.Dataset, error) {
	rec.Drop("dcl_date_time_string", "date_time_string")
	for from, to := range dostaRenames {
		rec.Rename(from, to)
	}
	if p.Burst {
		rec = burstMedian(rec)
	}

	ds := newDataset(rec, p)
	attrs := domain.MergeAttrSets(domain.SharedAttrs,
		domain.MergeAttrSets(domain.ColocatedCTDAttrs, dostaAttrs))
	passthrough(ds, rec, attrs)

	haveCal := d.addCalibrated(ctx, ds, rec, p, attrs)
	haveCTD := d.addCorrected(ds, rec, p, attrs, haveCal)

	// Derived variables are always present so day files keep a constant
	// schema when ERDDAP aggregates a deployment.
	if !haveCal {
		ds.AddFloats("svu_oxygen_concentration", nanSeries(rec.Len()),
			attrs["svu_oxygen_concentration"])
	}
	if !haveCTD {
		for _, name := range []string{
			"ctd_pressure", "ctd_temperature", "ctd_salinity",
			"oxygen_concentration_corrected",
		} {
			ds.AddFloats(name, nanSeries(rec.Len()), attrs[name])
		}
	}

	if haveCal && haveCTD {
		ds.ProcessingLevel = domain.LevelProcessed
	} else {
		ds.ProcessingLevel = domain.LevelPartial
	}
	ds.Finalize(attrs)
	return ds, nil
}

// addCalibrated recomputes the oxygen concentration from the raw phase when
// the calibration coefficients can be resolved. Reports whether the variable
// was added.
func (d *DOSTA) addCalibrated(ctx context.Context, ds *domain.Dataset, rec *domain.Record, p Params, attrs domain.AttrSet) bool {
	phase := rec.Floats("calibrated_phase")
	temp := rec.Floats("optode_temperature")
	if phase == nil || temp == nil || len(rec.Times) == 0 {
		return false
	}

	coeffPath := p.CoeffFile
	if coeffPath == "" {
		coeffPath = filepath.Join(filepath.Dir(p.InFile), "dosta.cal_coeffs.json")
	}
	store := calib.NewStore(coeffPath)
	outcome, err := calib.Resolve(ctx, store, d.finder, "DOSTAD", p.Serial, rec.Times[0])
	d.metrics.CalibrationLookups.WithLabelValues(d.Class(), string(outcome)).Inc()
	if err != nil {
		d.logger.Warn("calibration lookup failed", "class", "dosta", "serial", p.Serial, "error", err)
		return false
	}
	if outcome == calib.OutcomeMissing {
		return false
	}
	csv, csvOK := store.VectorN("CC_csv", 7)
	conc, concOK := store.VectorN("CC_conc_coef", 2)
	if !csvOK || !concOK {
		d.logger.Warn("calibration sheet is missing CC_csv or CC_conc_coef", "serial", p.Serial)
		return false
	}

	svu := [7]float64(csv)
	two := [2]float64(conc)
	doxy := make([]float64, len(phase))
	for i := range phase {
		doxy[i] = ocean.OxygenFromPhase(phase[i], temp[i], svu, two)
	}
	ds.AddFloats("svu_oxygen_concentration", doxy, attrs["svu_oxygen_concentration"])
	return true
}

// addCorrected applies the salinity and pressure corrections using a
// co-located CTD. The SVU concentration is preferred over the optode's
// onboard estimate when available. Reports whether the corrected variable
// was added.
func (d *DOSTA) addCorrected(ds *domain.Dataset, rec *domain.Record, p Params, attrs domain.AttrSet, haveCal bool) bool {
	if p.CTDName == "" {
		return false
	}
	source := "oxygen_concentration"
	if haveCal {
		source = "svu_oxygen_concentration"
	}
	v := ds.Var(source)
	if v == nil || v.Floats == nil {
		return false
	}

	ctd, err := colocatedCTD(rec, p.InFile, p.CTDName)
	if err != nil {
		if !errors.Is(err, ErrNoColocated) {
			d.logger.Warn("co-located CTD lookup failed", "ctd", p.CTDName, "error", err)
		}
		return false
	}

	corrected := make([]float64, len(v.Floats))
	for i, doxy := range v.Floats {
		corrected[i] = ocean.OxygenSalinityCorrection(doxy, ctd.Pressure[i], ctd.Temperature[i], ctd.Salinity[i])
	}
	ds.AddFloats("ctd_pressure", ctd.Pressure, attrs["ctd_pressure"])
	ds.AddFloats("ctd_temperature", ctd.Temperature, attrs["ctd_temperature"])
	ds.AddFloats("ctd_salinity", ctd.Salinity, attrs["ctd_salinity"])
	ds.AddFloats("oxygen_concentration_corrected", corrected, attrs["oxygen_concentration_corrected"])
	return true
}
