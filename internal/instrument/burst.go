package instrument

import (
	"sort"
	"time"

	"github.com/cgsn-mio/moorproc/internal/domain"
	"github.com/cgsn-mio/moorproc/internal/ocean"
)

const burstWindow = 15 * time.Minute

// burstMedian resamples the record into 15-minute bins, replacing each
// numeric column with its per-bin median. Bin times are the window starts.
// String columns do not survive averaging and are dropped.
func burstMedian(rec *domain.Record) *domain.Record {
	if rec.Len() == 0 {
		return rec
	}

	bins := make(map[int64][]int)
	for i, t := range rec.Times {
		key := t.Truncate(burstWindow).Unix()
		bins[key] = append(bins[key], i)
	}
	keys := make([]int64, 0, len(bins))
	for k := range bins {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := &domain.Record{
		Times:  make([]time.Time, len(keys)),
		Fields: make(map[string]domain.Field, len(rec.Fields)),
	}
	for i, k := range keys {
		out.Times[i] = time.Unix(k, 0).UTC()
	}

	scratch := make([]float64, 0, rec.Len())
	for _, name := range rec.Names() {
		f := rec.Fields[name]
		if f.Kind == domain.StringField {
			continue
		}
		vals := f.AsFloats()
		medians := make([]float64, len(keys))
		for i, k := range keys {
			scratch = scratch[:0]
			for _, idx := range bins[k] {
				scratch = append(scratch, vals[idx])
			}
			medians[i] = ocean.Median(scratch)
		}
		out.Fields[name] = domain.Field{Kind: domain.FloatField, Floats: medians}
	}
	return out
}
