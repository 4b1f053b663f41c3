package instrument

import (
	"context"

	"github.com/cgsn-mio/moorproc/internal/domain"
)

var hydgnAttrs = domain.AttrSet{
	"global": {
		"title":   "Buoy Well Hydrogen Concentration",
		"summary": "Hydrogen gas concentration measured inside the buoy well.",
	},
	"hydrogen_concentration": {
		"long_name": "Hydrogen Concentration",
		"units":     "percent",
		"comment": "Hydrogen concentration in the buoy well as a percentage " +
			"of the lower explosive limit.",
		"_FillValue": domain.FillFloat,
	},
}

// HYDGN converts records from the buoy well hydrogen sensors. The records
// need no calibration, so the output is a parsed-level passthrough.
type HYDGN struct{}

func NewHYDGN() *HYDGN { return &HYDGN{} }

func (*HYDGN) Class() string { return "hydgn" }

func (h *HYDGN) Process(ctx context.Context, rec *domain.Record, p Params) (*domain.Dataset, error) {
	rec.Drop("dcl_date_time_string", "date_time_string")

	ds := newDataset(rec, p)
	ds.ProcessingLevel = domain.LevelParsed

	attrs := domain.MergeAttrSets(domain.SharedAttrs, hydgnAttrs)
	passthrough(ds, rec, attrs)
	ds.Finalize(attrs)
	return ds, nil
}
