// Package domain models the data flowing through the mooring processing
// pipeline: parsed instrument records on the way in, CF-1.7 datasets on the
// way out.
//
// # Data Source
//
// Input files are JSON records produced by the upstream telemetry parsers,
// one file per instrument per day, named by convention:
//
//	<raw root>/<platform>/<deployment>/<instrument>/YYYYMMDD.<name>.json
//	<raw root>/<platform>/<deployment>/<instrument>/YYYYMMDD_HHMMSS.<name>.json
//
// Each file is column-oriented: a JSON object mapping column names to arrays
// of equal length, with a mandatory "time" column holding Unix epoch seconds
// referenced to the DCL (Data Concentrator Logger) GPS clock.
//
// # Output Conventions
//
// Datasets follow the CF Metadata Standard v1.7 for a single time series at
// a nominal fixed location (featureType=timeSeries, cdm_data_type=Station).
// Every dataset carries the coordinate set time/lat/lon/z/station plus a
// per-sample deploy_id string so overlapping deployments can be separated
// downstream.
//
// Integer data wider than 32 bits is narrowed to int32 before encoding: the
// ERDDAP server republishing these files cannot serve 64-bit integers.
// Missing integer values use the fill -9999999; missing floats use NaN.
//
// # Processing Levels
//
// Datasets are tagged with a processing_level global attribute:
//
//	parsed    - straight conversion, no calibration applied
//	partial   - calibration expected but unavailable; derived variables filled
//	processed - calibration applied and derived variables computed
package domain
