package ocean

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSalinityFromConductivity(t *testing.T) {
	// Standard seawater: C(35,15,0) by definition yields S = 35.
	assert.InDelta(t, 35.0, SalinityFromConductivity(42.914, 15, 0), 1e-3)

	// Fresher water reads lower.
	assert.Less(t, SalinityFromConductivity(40.0, 15, 0), 35.0)

	// Non-positive conductivity short-circuits to zero.
	assert.Zero(t, SalinityFromConductivity(0, 15, 0))
	assert.Zero(t, SalinityFromConductivity(-1, 15, 0))
}

func TestDensity(t *testing.T) {
	// EOS-80 check values.
	assert.InDelta(t, 999.96675, Density(0, 5, 0), 1e-3)
	assert.InDelta(t, 1027.67547, Density(35, 5, 0), 1e-3)

	// Compression: density increases with pressure.
	assert.Greater(t, Density(35, 15, 1000), Density(35, 15, 0))

	// Warmer water is lighter.
	assert.Less(t, Density(35, 25, 0), Density(35, 5, 0))
}

func TestDepthFromPressure(t *testing.T) {
	// UNESCO check value: 10000 dbar at 30 degrees latitude.
	assert.InDelta(t, 9712.653, DepthFromPressure(10000, 30), 0.01)

	// Shallow water is close to 1 m per dbar.
	assert.InDelta(t, 99.2, DepthFromPressure(100, 45), 0.5)
	assert.Zero(t, DepthFromPressure(0, 45))
}

func TestOxygenFromPhase(t *testing.T) {
	svu := [7]float64{0.002, 0, 0, 25, 0, 5, 0.5}
	conc := [2]float64{0, 1}

	// ksv = 0.002, P0 = 25, Pc = 5 + 0.5*30 = 20:
	// (25/20 - 1) / 0.002 = 125 umol/L.
	got := OxygenFromPhase(30, 10, svu, conc)
	assert.InDelta(t, 125.0, got, 1e-9)

	// The two-point calibration shifts and scales the result.
	got = OxygenFromPhase(30, 10, svu, [2]float64{10, 2})
	assert.InDelta(t, 260.0, got, 1e-9)
}

func TestOxygenSalinityCorrection(t *testing.T) {
	fresh := OxygenSalinityCorrection(250, 0, 15, 0)
	salty := OxygenSalinityCorrection(250, 0, 15, 35)

	// The optode assumes zero salinity, so real seawater reads lower.
	assert.Less(t, salty, fresh)

	// Freshwater at the surface only picks up the density normalization.
	assert.InDelta(t, 250*1000/Density(0, 15, 0), fresh, 1e-6)

	// 1000 dbar applies the 3.2 percent pressure factor.
	deep := OxygenSalinityCorrection(250, 1000, 15, 35)
	shallow := OxygenSalinityCorrection(250, 0, 15, 35)
	assert.InDelta(t, 1.032, deep/shallow*Density(35, 15, 1000)/Density(35, 15, 0), 1e-6)
}

func TestInterp(t *testing.T) {
	xs := []float64{0, 10, 20}
	ys := []float64{0, 100, 50}

	got := Interp([]float64{5, 15, 10}, xs, ys)
	assert.InDelta(t, 50.0, got[0], 1e-9)
	assert.InDelta(t, 75.0, got[1], 1e-9)
	assert.InDelta(t, 100.0, got[2], 1e-9)

	t.Run("clamps outside the source range", func(t *testing.T) {
		got := Interp([]float64{-5, 25}, xs, ys)
		assert.Equal(t, 0.0, got[0])
		assert.Equal(t, 50.0, got[1])
	})

	t.Run("empty source yields NaN", func(t *testing.T) {
		got := Interp([]float64{1, 2}, nil, nil)
		assert.True(t, math.IsNaN(got[0]))
		assert.True(t, math.IsNaN(got[1]))
	})
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 2, 3}))
	assert.Equal(t, 2.0, Median([]float64{math.NaN(), 2, math.NaN()}))
	assert.True(t, math.IsNaN(Median(nil)))
	assert.True(t, math.IsNaN(Median([]float64{math.NaN()})))
}
