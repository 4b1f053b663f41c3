// Package calib manages instrument calibration coefficients: a JSON-backed
// store serialized next to the input data (coefficients never change in the
// middle of a deployment, so the first lookup is cached for the rest of it)
// and a finder that locates the applicable calibration file in the OOI
// asset-management repository by instrument class, serial number, and
// calibration date.
package calib

import (
	"encoding/json"
	"fmt"
	"os"
)

// Value is a single calibration coefficient, either a scalar or a vector.
type Value struct {
	Scalar float64
	Vector []float64
}

// IsVector reports whether the value holds a vector coefficient.
func (v Value) IsVector() bool { return v.Vector != nil }

// MarshalJSON encodes vectors as JSON arrays and scalars as numbers, so the
// serialized store stays interchangeable with the upstream format.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsVector() {
		return json.Marshal(v.Vector)
	}
	return json.Marshal(v.Scalar)
}

// UnmarshalJSON accepts either a JSON array or a number.
func (v *Value) UnmarshalJSON(data []byte) error {
	var vec []float64
	if err := json.Unmarshal(data, &vec); err == nil {
		v.Vector = vec
		return nil
	}
	v.Vector = nil
	return json.Unmarshal(data, &v.Scalar)
}

// Scalar wraps a scalar coefficient.
func Scalar(f float64) Value { return Value{Scalar: f} }

// Vector wraps a vector coefficient.
func Vector(fs ...float64) Value { return Value{Vector: fs} }

// Store holds the calibration coefficients for one instrument and
// deployment, serialized to a JSON file alongside the input data.
type Store struct {
	Path   string
	Coeffs map[string]Value
}

// NewStore creates an empty store bound to the given file path.
func NewStore(path string) *Store {
	return &Store{Path: path, Coeffs: make(map[string]Value)}
}

// Exists reports whether the serialized coefficient file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

// Load reads the serialized coefficients from disk.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return fmt.Errorf("load coefficients: %w", err)
	}
	coeffs := make(map[string]Value)
	if err := json.Unmarshal(data, &coeffs); err != nil {
		return fmt.Errorf("load coefficients: %w", err)
	}
	s.Coeffs = coeffs
	return nil
}

// Save writes the coefficients to disk.
func (s *Store) Save() error {
	data, err := json.Marshal(s.Coeffs)
	if err != nil {
		return fmt.Errorf("save coefficients: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("save coefficients: %w", err)
	}
	return nil
}

// VectorN returns the named vector coefficient and requires it to hold
// exactly n elements.
func (s *Store) VectorN(name string, n int) ([]float64, bool) {
	v, ok := s.Coeffs[name]
	if !ok || !v.IsVector() || len(v.Vector) != n {
		return nil, false
	}
	return v.Vector, true
}
