package instrument

import (
	"fmt"
	"strings"

	"github.com/cgsn-mio/moorproc/internal/domain"
)

// Bit meanings for the packed status words reported by the mooring power
// systems. Index i names bit i of the word. Empty strings mark reserved
// bits.

var pscOverrideBits = []string{
	"wt1_connected", "wt2_connected",
	"sp1_connected", "sp2_connected", "sp3_connected", "sp4_connected",
	"fc1_connected", "fc2_connected",
	"cvt_connected", "cvt_reset", "external_charger",
}

var pscErrorBits1 = []string{
	"battery1_of_string1_overtemp", "battery2_of_string1_overtemp",
	"battery1_of_string2_overtemp", "battery2_of_string2_overtemp",
	"battery1_of_string3_overtemp", "battery2_of_string3_overtemp",
	"battery1_of_string4_overtemp", "battery2_of_string4_overtemp",
	"battery_string_1_fuse_blown", "battery_string_2_fuse_blown",
	"battery_string_3_fuse_blown", "battery_string_4_fuse_blown",
	"battery_string_1_charging_sensor_fault", "battery_string_1_discharging_sensor_fault",
	"battery_string_2_charging_sensor_fault", "battery_string_2_discharging_sensor_fault",
	"battery_string_3_charging_sensor_fault", "battery_string_3_discharging_sensor_fault",
	"battery_string_4_charging_sensor_fault", "battery_string_4_discharging_sensor_fault",
	"pv1_sensor_fault", "pv2_sensor_fault", "pv3_sensor_fault", "pv4_sensor_fault",
	"wt1_sensor_fault", "wt2_sensor_fault",
	"eeprom_access_fault", "rtclk_access_fault",
	"external_power_sensor_fault", "psc_hotel_power_sensor_fault",
	"psc_internal_overtemp_fault", "hipwr_dc_dc_converter_fuse_blown",
}

var pscErrorBits2 = []string{
	"buoy_24v_power_sensor_fault", "buoy_24v_power_over_voltage_fault",
	"buoy_24v_power_under_voltage_fault", "fuse_5v_blown_non_critical",
	"wt1_control_relay_fault", "wt2_control_relay_fault",
	"pv1_control_relay_fault", "pv2_control_relay_fault",
	"pv3_control_relay_fault", "pv4_control_relay_fault",
	"fc1_control_relay_fault", "fc2_control_relay_fault",
	"cvt_swg_fault", "cvt_general_fault",
	"psc_hard_reset_flag", "psc_power_on_reset_flag",
	"wt1_fuse_blown", "wt2_fuse_blown",
	"pv1_fuse_blown", "pv2_fuse_blown", "pv3_fuse_blown", "pv4_fuse_blown",
	"cvt_shut_down_due_to_low_input_voltage",
}

var pscErrorBits3 = []string{
	"cvt_board_temp_over_100C",
	"interlock_output_supply_fuse_blown",
	"interlock_status_1_supply_fuse_blown", "interlock_status_2_supply_fuse_blown",
	"input_1_fuse_blown", "input_2_fuse_blown", "input_3_fuse_blown", "input_4_fuse_blown",
	"over_5v_voltage", "under_5v_voltage",
	"output_sensor_circuit_power_over_voltage", "output_sensor_circuit_power_under_voltage",
	"p_swgf_sensor_circuit_power_over_voltage", "p_swgf_sensor_circuit_power_under_voltage",
	"n_swgf_sensor_circuit_power_over_voltage", "n_swgf_sensor_circuit_power_under_voltage",
	"raw_24v_input_power_sensor_fault", "cvt_24v_hotel_power_sensor_fault",
	"interlock_supply_output_sensor_fault",
	"interlock_status_1_sensor_fault", "interlock_status_2_sensor_fault",
	"interlock_input_sensor_fault",
	"p_swgf_occured", "n_swgf_occured",
	"input_1_sensor_fault", "input_2_sensor_fault",
	"input_3_sensor_fault", "input_4_sensor_fault",
	"high_voltage_output_current_sensor_fault", "high_voltage_output_voltage_sensor_fault",
	"p_swgf_sensor_fault", "n_swgf_sensor_fault",
}

var mpeaErrorBits1 = []string{
	"high_voltage_input_undervoltage", "high_voltage_input_overvoltage",
	"high_voltage_input_power_sensor_fault",
	"mpm_internal_over_temp", "mpea_hotel_power_converter_over_temp",
	"hotel_power_5v_undervoltage", "hotel_power_5v_overvoltage",
	"microcontroller_core_undervoltage", "microcontroller_core_overvoltage",
	"hotel_power_status_sensor_fault", "mpea_reset_flag",
	"converter_1_input_overcurrent", "converter_1_output_overvoltage",
	"converter_1_output_undervoltage", "converter_1_output_overcurrent",
	"converter_1_dc_converter_fault",
	"converter_1_input_sensor_fault", "converter_1_output_sensor_fault",
	"converter_2_input_overcurrent", "converter_2_output_overvoltage",
	"converter_2_output_undervoltage", "converter_2_output_overcurrent",
	"converter_2_dc_converter_fault",
	"converter_2_input_sensor_fault", "converter_2_output_sensor_fault",
	"converter_3_input_overcurrent", "converter_3_output_overvoltage",
	"converter_3_output_undervoltage", "converter_3_output_overcurrent",
	"converter_3_dc_converter_fault",
	"converter_3_input_sensor_fault", "converter_3_output_sensor_fault",
}

var mpeaErrorBits2 = []string{
	"converter_4_input_overcurrent", "converter_4_output_overvoltage",
	"converter_4_output_undervoltage", "converter_4_output_overcurrent",
	"converter_4_dc_converter_fault",
	"converter_4_input_sensor_fault", "converter_4_output_sensor_fault",
}

// flagMeanings renders the flag_meanings attribute for a packed status word,
// with the all-clear sentinel first.
func flagMeanings(sentinel string, bits []string) string {
	return sentinel + " " + strings.Join(bits, " ")
}

// expandFlags decodes each named bit of a packed status word into its own
// 0/1 variable so the individual conditions can be plotted and queried
// directly. The packed word itself is kept. Missing columns are skipped.
func expandFlags(ds *domain.Dataset, rec *domain.Record, column string, bits []string) {
	vals := rec.Floats(column)
	if vals == nil {
		return
	}
	for bit, name := range bits {
		if name == "" {
			continue
		}
		data := make([]int32, len(vals))
		for i, v := range vals {
			data[i] = int32(uint32(v) >> uint(bit) & 1)
		}
		ds.AddInts(name, data, domain.Attrs{
			"long_name":           flagLongName(name),
			"standard_name":       "status_flag",
			"flag_meanings":       "clear raised",
			"comment":             fmt.Sprintf("Decoded from bit %d of %s.", bit, column),
			"ancillary_variables": column,
		})
	}
}

// flagLongName turns a flag identifier into a readable long_name.
func flagLongName(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if len(w) > 0 && w[0] >= 'a' && w[0] <= 'z' {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
