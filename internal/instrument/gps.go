package instrument

import (
	"context"

	"github.com/cgsn-mio/moorproc/internal/domain"
)

var gpsAttrs = domain.AttrSet{
	"global": {
		"title":   "Surface Mooring GPS Position",
		"summary": "Decoded GPS position fixes recorded by the buoy data logger.",
	},
	"gps_latitude": {
		"long_name":     "GPS Latitude",
		"standard_name": "latitude",
		"units":         "degrees_north",
		"comment": "GPS latitude of the surface buoy. More precise than the " +
			"surveyed anchor position reported in the lat coordinate.",
		"_FillValue": domain.FillFloat,
	},
	"gps_longitude": {
		"long_name":     "GPS Longitude",
		"standard_name": "longitude",
		"units":         "degrees_east",
		"comment": "GPS longitude of the surface buoy. More precise than the " +
			"surveyed anchor position reported in the lon coordinate.",
		"_FillValue": domain.FillFloat,
	},
	"speed_over_ground": {
		"long_name":  "Speed Over Ground",
		"units":      "knots",
		"_FillValue": domain.FillFloat,
	},
	"course_over_ground": {
		"long_name":  "Course Over Ground",
		"units":      "degrees",
		"_FillValue": domain.FillFloat,
	},
	"fix_quality": {
		"long_name":  "GPS Fix Quality",
		"comment":    "GGA fix quality indicator, 0 means no fix.",
		"_FillValue": int32(domain.FillInt),
	},
	"number_satellites": {
		"long_name":  "Number of Satellites",
		"comment":    "Number of satellites used in the position solution.",
		"_FillValue": int32(domain.FillInt),
	},
	"horiz_dilution_precision": {
		"long_name": "Horizontal Dilution of Precision",
		"comment": "Relative accuracy of the horizontal position, lower is " +
			"better.",
		"_FillValue": domain.FillFloat,
	},
	"altitude": {
		"long_name":  "Antenna Altitude",
		"units":      "m",
		"comment":    "Antenna altitude above mean sea level.",
		"_FillValue": domain.FillFloat,
	},
	"gps_date_string": {
		"long_name": "GPS Date String",
		"comment":   "Date string (ddmmyy) as reported by the receiver.",
	},
	"gps_time_string": {
		"long_name": "GPS Time String",
		"comment":   "Time string (hhmmss.ss UTC) as reported by the receiver.",
	},
	"latitude_string": {
		"long_name": "Latitude String",
		"comment":   "Latitude in the receiver's ddmm.mmmmH format.",
	},
	"longitude_string": {
		"long_name": "Longitude String",
		"comment":   "Longitude in the receiver's dddmm.mmmmH format.",
	},
}

// GPS converts position fix records from the buoy GPS receiver. The decoded
// latitude and longitude are renamed so they cannot shadow the surveyed
// anchor coordinates.
type GPS struct{}

func NewGPS() *GPS { return &GPS{} }

func (*GPS) Class() string { return "gps" }

func (g *GPS) Process(ctx context.Context, rec *domain.Record, p Params) (*domain.Dataset, error) {
	rec.Drop("dcl_date_time_string", "date_time_string")
	rec.Rename("latitude", "gps_latitude")
	rec.Rename("longitude", "gps_longitude")

	ds := newDataset(rec, p)
	ds.ProcessingLevel = domain.LevelParsed

	attrs := domain.MergeAttrSets(domain.SharedAttrs, gpsAttrs)
	passthrough(ds, rec, attrs)
	ds.Finalize(attrs)
	return ds, nil
}
