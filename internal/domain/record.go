package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"
)

// Fill values applied to missing samples, matching what the data server
// expects for this project.
const FillInt int32 = -9999999

// FillFloat is the fill for missing floating point samples.
var FillFloat = math.NaN()

// ErrEmptyRecord reports a record file that parsed cleanly but holds no
// samples. Empty files are routine (an instrument powered down for the day)
// and callers skip them rather than failing a run.
var ErrEmptyRecord = errors.New("record contains no samples")

// FieldKind discriminates the storage type of a record column.
type FieldKind int

const (
	FloatField FieldKind = iota
	IntField
	StringField
)

// Field holds one column of a parsed record. Exactly one of the slices is
// populated, selected by Kind.
type Field struct {
	Kind    FieldKind
	Floats  []float64
	Ints    []int32
	Strings []string
}

// Len returns the number of samples in the field.
func (f Field) Len() int {
	switch f.Kind {
	case IntField:
		return len(f.Ints)
	case StringField:
		return len(f.Strings)
	default:
		return len(f.Floats)
	}
}

// AsFloats returns the field data as float64, converting integer columns.
// String columns return nil.
func (f Field) AsFloats() []float64 {
	switch f.Kind {
	case FloatField:
		return f.Floats
	case IntField:
		out := make([]float64, len(f.Ints))
		for i, v := range f.Ints {
			if v == FillInt {
				out[i] = FillFloat
				continue
			}
			out[i] = float64(v)
		}
		return out
	default:
		return nil
	}
}

// Record is one parsed instrument data file: a time axis plus named columns
// of equal length.
type Record struct {
	Times  []time.Time
	Fields map[string]Field
}

// LoadRecord reads a column-oriented JSON record file produced by the
// upstream parser. The file must contain a "time" column of Unix epoch
// seconds; all other columns must match its length. Returns ErrEmptyRecord
// when the file holds no samples.
func LoadRecord(path string) (*Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	return ParseRecord(raw)
}

// ParseRecord decodes raw column-oriented JSON into a Record.
func ParseRecord(raw []byte) (*Record, error) {
	var cols map[string]json.RawMessage
	if err := json.Unmarshal(raw, &cols); err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}

	tcol, ok := cols["time"]
	if !ok {
		return nil, errors.New("parse record: missing time column")
	}
	var epochs []float64
	if err := json.Unmarshal(tcol, &epochs); err != nil {
		return nil, fmt.Errorf("parse record: time column: %w", err)
	}
	if len(epochs) == 0 {
		return nil, ErrEmptyRecord
	}

	rec := &Record{
		Times:  make([]time.Time, len(epochs)),
		Fields: make(map[string]Field, len(cols)-1),
	}
	for i, ep := range epochs {
		sec, frac := math.Modf(ep)
		rec.Times[i] = time.Unix(int64(sec), int64(frac*1e9)).UTC()
	}

	for name, col := range cols {
		if name == "time" {
			continue
		}
		field, err := parseColumn(col)
		if err != nil {
			return nil, fmt.Errorf("parse record: column %s: %w", name, err)
		}
		if field == nil {
			// nested array column, not representable as a flat field
			continue
		}
		if field.Len() != len(epochs) {
			return nil, fmt.Errorf("parse record: column %s has %d samples, want %d",
				name, field.Len(), len(epochs))
		}
		rec.Fields[name] = *field
	}

	return rec, nil
}

// parseColumn classifies and decodes a single JSON column. Numeric columns
// whose values are all exact 32-bit integers become IntFields; any other
// numeric column becomes a FloatField. Returns nil for nested array columns.
func parseColumn(raw json.RawMessage) (*Field, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var vals []any
	if err := dec.Decode(&vals); err != nil {
		return nil, err
	}

	kind := FloatField
	integral := true
	for _, v := range vals {
		switch t := v.(type) {
		case nil:
			continue
		case string:
			kind = StringField
		case json.Number:
			if integral && !fitsInt32(t) {
				integral = false
			}
		case []any:
			return nil, nil
		default:
			return nil, fmt.Errorf("unsupported value %v", v)
		}
	}

	if kind == StringField {
		out := make([]string, len(vals))
		for i, v := range vals {
			s, ok := v.(string)
			if !ok {
				// pandas fills missing strings with "unknown"; keep that
				s = "unknown"
			}
			out[i] = s
		}
		return &Field{Kind: StringField, Strings: out}, nil
	}

	if integral {
		out := make([]int32, len(vals))
		for i, v := range vals {
			n, ok := v.(json.Number)
			if !ok {
				out[i] = FillInt
				continue
			}
			iv, err := n.Int64()
			if err != nil {
				return nil, err
			}
			out[i] = int32(iv)
		}
		return &Field{Kind: IntField, Ints: out}, nil
	}

	out := make([]float64, len(vals))
	for i, v := range vals {
		n, ok := v.(json.Number)
		if !ok {
			out[i] = FillFloat
			continue
		}
		fv, err := n.Float64()
		if err != nil {
			return nil, err
		}
		out[i] = fv
	}
	return &Field{Kind: FloatField, Floats: out}, nil
}

// fitsInt32 reports whether a JSON number is an integer representable in 32
// bits. Wider integers force the column to float64, which is how the data
// server expects long counters to arrive.
func fitsInt32(n json.Number) bool {
	s := n.String()
	if strings.ContainsAny(s, ".eE") {
		return false
	}
	v, err := n.Int64()
	if err != nil {
		return false
	}
	return v >= math.MinInt32 && v <= math.MaxInt32
}

// Len returns the number of samples in the record.
func (r *Record) Len() int { return len(r.Times) }

// Names returns the column names in a stable (sorted) order.
func (r *Record) Names() []string {
	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the record contains the named column.
func (r *Record) Has(name string) bool {
	_, ok := r.Fields[name]
	return ok
}

// Floats returns the named column as float64 values, converting integer
// columns. Returns nil if the column is missing or holds strings.
func (r *Record) Floats(name string) []float64 {
	f, ok := r.Fields[name]
	if !ok {
		return nil
	}
	return f.AsFloats()
}

// Strings returns the named string column, or nil.
func (r *Record) Strings(name string) []string {
	f, ok := r.Fields[name]
	if !ok || f.Kind != StringField {
		return nil
	}
	return f.Strings
}

// Rename moves a column to a new name. Missing source columns are ignored.
func (r *Record) Rename(from, to string) {
	if f, ok := r.Fields[from]; ok {
		delete(r.Fields, from)
		r.Fields[to] = f
	}
}

// Append concatenates another record onto this one. Columns present in only
// one of the two records are dropped; for the rest the kinds must agree.
func (r *Record) Append(other *Record) error {
	for name, f := range r.Fields {
		of, ok := other.Fields[name]
		if !ok {
			delete(r.Fields, name)
			continue
		}
		if of.Kind != f.Kind {
			return fmt.Errorf("column %q: kind mismatch between records", name)
		}
		f.Floats = append(f.Floats, of.Floats...)
		f.Ints = append(f.Ints, of.Ints...)
		f.Strings = append(f.Strings, of.Strings...)
		r.Fields[name] = f
	}
	r.Times = append(r.Times, other.Times...)
	return nil
}

// Drop removes the named columns if present.
func (r *Record) Drop(names ...string) {
	for _, name := range names {
		delete(r.Fields, name)
	}
}
