package instrument

import (
	"context"
	"fmt"

	"github.com/cgsn-mio/moorproc/internal/domain"
)

var pscAttrs = domain.AttrSet{
	"global": {
		"title": "Mooring Power System Controller (PSC) Status Data",
		"summary": "Measures the status of the mooring power system " +
			"controller, encompassing the batteries, recharging sources " +
			"(wind and solar), and outputs.",
	},
	"main_voltage": {
		"long_name": "Main Voltage",
		"units":     "V",
		"comment":   "Output voltage supplied by the power system to the mooring.",
	},
	"main_current": {
		"long_name": "Main Current",
		"units":     "mA",
		"comment":   "Electrical current supplied by the power system to the mooring.",
	},
	"percent_charge": {
		"long_name": "Percent Charge",
		"units":     "percent",
		"comment": "Estimated percent charge of the batteries. This value is " +
			"often times incorrect and should be used with some degree of " +
			"caution, if not entirely ignored.",
	},
	"override_flag": {
		"long_name":     "Override Flag",
		"standard_name": "status_flag",
		"comment": "List of power supply (CVT) or charging sources (e.g. " +
			"solar panel 1) manually connected directly either by the user " +
			"or through the CPM1 mission file.",
		"flag_meanings": flagMeanings("override_off", pscOverrideBits),
	},
	"error_flag1": {
		"long_name":     "Error Flag 1",
		"standard_name": "status_flag",
		"comment":       "Error flags reported by the power system controller.",
		"flag_meanings": flagMeanings("no_error", pscErrorBits1),
	},
	"error_flag2": {
		"long_name":     "Error Flag 2",
		"standard_name": "status_flag",
		"comment":       "Error flags reported by the power system controller.",
		"flag_meanings": flagMeanings("no_error", pscErrorBits2),
	},
	"error_flag3": {
		"long_name":     "Error Flag 3",
		"standard_name": "status_flag",
		"comment":       "Error flags reported by the power system controller.",
		"flag_meanings": flagMeanings("no_error", pscErrorBits3),
	},
	"internal_voltage": {
		"long_name": "Internal Voltage",
		"units":     "V",
		"comment":   "Voltage level used by the power system controller.",
	},
	"internal_current": {
		"long_name": "Internal Current",
		"units":     "mA",
		"comment":   "Current draw used by the power system controller.",
	},
	"internal_temperature": {
		"long_name": "Internal Temperature",
		"units":     "degrees_Celsius",
		"comment":   "Temperature inside the power system controller enclosure.",
	},
	"external_voltage": {
		"long_name": "External Voltage",
		"units":     "V",
		"comment":   "External charger operating voltage.",
	},
	"external_current": {
		"long_name": "External Current",
		"units":     "mA",
		"comment":   "Charging current supplied by the external battery charger.",
	},
	"seawater_ground_state": {
		"long_name":     "Sea Water Ground State",
		"standard_name": "status_flag",
		"comment":       "Seawater ground monitoring, either enabled (1) or disabled (0).",
		"flag_meanings": "disabled enabled",
	},
	"seawater_ground_positve": {
		"long_name": "Sea Water Ground Positive",
		"units":     "uA",
		"comment":   "Measured positive seawater ground.",
	},
	"seawater_ground_negative": {
		"long_name": "Sea Water Ground Negative",
		"units":     "uA",
		"comment":   "Measured negative seawater ground.",
	},
	"cvt_state": {
		"long_name":     "CVT State",
		"standard_name": "status_flag",
		"comment":       "State of the CVT, either connected (1) or disconnected (0).",
		"flag_meanings": "disconnected connected",
	},
	"cvt_voltage": {
		"long_name": "CVT Voltage",
		"units":     "V",
		"comment": "CVT voltage supplied to the MFN by the power system " +
			"controller, nominally 380 VDC.",
	},
	"cvt_current": {
		"long_name": "CVT Current",
		"units":     "mA",
		"comment":   "Current draw from the CVT by the MFN.",
	},
	"cvt_interlock": {
		"long_name":     "CVT Interlock",
		"standard_name": "status_flag",
		"comment":       "CVT interlock is connected (1) or disconnected (0) by the shorting plug.",
		"flag_meanings": "disconnected connected",
	},
	"cvt_temperature": {
		"long_name": "CVT Temperature",
		"units":     "degrees_Celsius",
		"comment":   "Temperature measured on the CVT board.",
	},
}

var mpeaAttrs = domain.AttrSet{
	"global": {
		"title": "MFN Power Electronics Assembly (MPEA) Status Data",
		"summary": "Measures the status of the power converters that supply " +
			"24 VDC to the different systems on the MFN from the 380 VDC " +
			"supplied by the PSC.",
	},
	"main_voltage": {
		"long_name": "Main Voltage",
		"units":     "V",
		"comment":   "Input voltage supplied by the mooring PSC to the MPEA.",
	},
	"main_current": {
		"long_name": "Main Current",
		"units":     "mA",
		"comment":   "Current draw of the MPEA from the power supplied by the mooring PSC.",
	},
	"error_flag1": {
		"long_name":     "Error Flag 1",
		"standard_name": "status_flag",
		"comment":       "Error flags reported by the MPEA.",
		"flag_meanings": flagMeanings("no_error", mpeaErrorBits1),
	},
	"error_flag2": {
		"long_name":     "Error Flag 2",
		"standard_name": "status_flag",
		"comment":       "Error flags reported by the MPEA.",
		"flag_meanings": flagMeanings("no_error", mpeaErrorBits2),
	},
	"temperature": {
		"long_name": "Internal Temperature",
		"units":     "degrees_Celsius",
		"comment":   "Temperature measured inside the MPEA pressure housing.",
	},
	"relative_humidity": {
		"long_name": "Relative Humidity",
		"units":     "percent",
		"comment": "Humidity measured inside the MPEA pressure housing. " +
			"Steadily rising humidity represents a leak.",
	},
	"leak_detect": {
		"long_name": "Leak Detect Voltage",
		"units":     "mV",
		"comment": "Measures resistance voltage across the sensor, which " +
			"decreases in the presence of a leak. Values less than 100 mV " +
			"indicate a leak condition, values around 1250 mV indicate " +
			"normal conditions, and values greater than 2000 mV indicate an " +
			"open circuit.",
	},
	"internal_pressure": {
		"long_name": "Internal Pressure",
		"units":     "psi",
		"comment":   "Pressure measured inside the MPEA pressure housing.",
	},
}

// Columns dropped before conversion. The fuel cells were never deployed on
// any mooring, and converter channels 3 through 7 of the MPEA were reserved
// for AUV docks that were never built.
var (
	pscDrops = []string{
		"fuel_cell1_state", "fuel_cell1_voltage", "fuel_cell1_current",
		"fuel_cell2_state", "fuel_cell2_voltage", "fuel_cell2_current",
		"fuel_cell_volume",
	}
	mpeaDrops = []string{
		"cv3_state", "cv3_voltage", "cv3_current",
		"cv4_state", "cv4_voltage", "cv4_current",
		"cv5_state", "cv5_voltage", "cv5_current",
		"cv6_state", "cv6_voltage", "cv6_current",
		"cv7_state", "cv7_voltage", "cv7_current",
	}
)

// Pwrsys converts status records from the mooring power systems, either the
// buoy power system controller (psc) or the seafloor power electronics
// assembly (mpea). The packed status words are kept and additionally decoded
// into per-condition flag variables.
type Pwrsys struct{}

func NewPwrsys() *Pwrsys { return &Pwrsys{} }

func (*Pwrsys) Class() string { return "pwrsys" }

func (w *Pwrsys) Process(ctx context.Context, rec *domain.Record, p Params) (*domain.Dataset, error) {
	rec.Drop("dcl_date_time_string", "date_time_string")

	ds := newDataset(rec, p)
	ds.ProcessingLevel = domain.LevelParsed

	var attrs domain.AttrSet
	switch p.Switch {
	case "psc":
		rec.Drop(pscDrops...)
		attrs = domain.MergeAttrSets(domain.SharedAttrs, pscAttrs)
		expandFlags(ds, rec, "override_flag", pscOverrideBits)
		expandFlags(ds, rec, "error_flag1", pscErrorBits1)
		expandFlags(ds, rec, "error_flag2", pscErrorBits2)
		expandFlags(ds, rec, "error_flag3", pscErrorBits3)
	case "mpea":
		rec.Drop(mpeaDrops...)
		attrs = domain.MergeAttrSets(domain.SharedAttrs, mpeaAttrs)
		expandFlags(ds, rec, "error_flag1", mpeaErrorBits1)
		expandFlags(ds, rec, "error_flag2", mpeaErrorBits2)
	default:
		return nil, fmt.Errorf("pwrsys requires a power system type of psc or mpea, got %q", p.Switch)
	}

	passthrough(ds, rec, attrs)
	ds.Finalize(attrs)
	return ds, nil
}
