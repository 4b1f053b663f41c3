// Package ocean implements the published seawater conversion formulas the
// instrument processors depend on: PSS-78 practical salinity, the UNESCO
// EOS-80 equation of state, pressure-to-depth conversion, and the Aanderaa
// optode oxygen calibration and compensation equations from the OOI data
// product specifications. It is deliberately not a general oceanographic
// library; only the conversions the processors apply are present.
package ocean

import (
	"math"
	"sort"
)

// conductivityRatio is C(35,15,0) in mS/cm, the conductivity of standard
// seawater used to normalize measured conductivity in PSS-78.
const conductivityRatio = 42.914

// SalinityFromConductivity computes practical salinity (PSS-78) from
// conductivity (mS/cm), temperature (deg C, IPTS-68) and pressure (dbar).
func SalinityFromConductivity(c, t, p float64) float64 {
	if c <= 0 {
		return 0
	}
	r := c / conductivityRatio

	// rt: temperature dependence of standard seawater conductivity
	rt := 0.6766097 + t*(2.00564e-2+t*(1.104259e-4+t*(-6.9698e-7+t*1.0031e-9)))

	// Rp: pressure correction
	rp := 1 + (p*(2.070e-5+p*(-6.370e-10+p*3.989e-15)))/
		(1+t*(3.426e-2+t*4.464e-4)+(4.215e-1+t*(-3.107e-3))*r)

	x := r / (rp * rt)
	if x <= 0 {
		return 0
	}
	sq := math.Sqrt(x)

	sp := 0.0080 + sq*(-0.1692+sq*(25.3851+sq*(14.0941+sq*(-7.0261+sq*2.7081))))
	ds := (t - 15) / (1 + 0.0162*(t-15)) *
		(0.0005 + sq*(-0.0056+sq*(-0.0066+sq*(-0.0375+sq*(0.0636+sq*(-0.0144))))))
	return sp + ds
}

// densityAtSurface evaluates the EOS-80 density of seawater at zero pressure
// for salinity s (PSS-78) and temperature t (deg C).
func densityAtSurface(s, t float64) float64 {
	// density of pure water
	rhoW := 999.842594 + t*(6.793952e-2+t*(-9.095290e-3+
		t*(1.001685e-4+t*(-1.120083e-6+t*6.536332e-9))))

	b := 8.24493e-1 + t*(-4.0899e-3+t*(7.6438e-5+t*(-8.2467e-7+t*5.3875e-9)))
	c := -5.72466e-3 + t*(1.0227e-4+t*(-1.6546e-6))
	const d = 4.8314e-4

	return rhoW + s*(b+c*math.Sqrt(s)+d*s)
}

// secantBulkModulus evaluates the EOS-80 secant bulk modulus K(s,t,p) with
// pressure in bar.
func secantBulkModulus(s, t, p float64) float64 {
	kw := 19652.21 + t*(148.4206+t*(-2.327105+t*(1.360477e-2+t*(-5.155288e-5))))
	k0 := kw + s*(54.6746+t*(-0.603459+t*(1.09987e-2+t*(-6.1670e-5)))) +
		math.Pow(s, 1.5)*(7.944e-2+t*(1.6483e-2+t*(-5.3009e-4)))

	aw := 3.239908 + t*(1.43713e-3+t*(1.16092e-4+t*(-5.77905e-7)))
	a := aw + s*(2.2838e-3+t*(-1.0981e-5+t*(-1.6078e-6))) + 1.91075e-4*math.Pow(s, 1.5)

	bw := 8.50935e-5 + t*(-6.12293e-6+t*5.2787e-8)
	b := bw + s*(-9.9348e-7+t*(2.0816e-8+t*9.1697e-10))

	return k0 + p*(a+b*p)
}

// Density computes the in-situ density of seawater (kg/m3) from practical
// salinity, temperature (deg C) and pressure (dbar) using the UNESCO EOS-80
// equation of state.
func Density(s, t, p float64) float64 {
	rho0 := densityAtSurface(s, t)
	if p == 0 {
		return rho0
	}
	pb := p / 10 // dbar to bar
	k := secantBulkModulus(s, t, pb)
	return rho0 / (1 - pb/k)
}

// DepthFromPressure converts seawater pressure (dbar) to depth (m, positive
// down) at the given latitude using the UNESCO formula.
func DepthFromPressure(p, lat float64) float64 {
	sinLat := math.Sin(lat * math.Pi / 180)
	sin2 := sinLat * sinLat
	g := 9.780318*(1+(5.2788e-3+2.36e-5*sin2)*sin2) + 1.092e-6*p
	return (((-1.82e-15*p+2.279e-10)*p-2.2512e-5)*p + 9.72659) * p / g
}

// OxygenFromPhase computes the oxygen concentration (umol/L) measured by an
// Aanderaa optode from the calibrated phase (deg) and the optode thermistor
// temperature (deg C), applying the Stern-Volmer-Uchida multipoint factory
// calibration (svu, 7 coefficients) and the two-point secondary calibration
// (conc, offset and slope).
func OxygenFromPhase(phase, t float64, svu [7]float64, conc [2]float64) float64 {
	ksv := svu[0] + t*(svu[1]+t*svu[2])
	p0 := svu[3] + t*svu[4]
	pc := svu[5] + svu[6]*phase
	doxy := (p0/pc - 1) / ksv
	return conc[0] + conc[1]*doxy
}

// Garcia and Gordon (1992) salinity compensation coefficients, combined fit.
var (
	solB = [4]float64{-6.24523e-3, -7.37614e-3, -1.03410e-2, -8.17083e-3}
	solC = -4.88682e-7
)

// OxygenSalinityCorrection compensates an optode oxygen concentration
// (umol/L) for salinity and pressure, converting the result to umol/kg using
// the in-situ density. The optode reports concentrations assuming zero
// salinity, so the correction scales by the Garcia and Gordon solubility
// terms, applies the empirical 3.2% per 1000 dbar pressure factor, and
// normalizes by density.
func OxygenSalinityCorrection(doxy, p, t, s float64) float64 {
	// scaled temperature for the solubility polynomial
	ts := math.Log((298.15 - t) / (273.15 + t))

	sc := math.Exp(s*(solB[0]+ts*(solB[1]+ts*(solB[2]+ts*solB[3]))) + solC*s*s)
	pc := 1 + (0.032*p)/1000

	rho := Density(s, t, p)
	return doxy * sc * pc / (rho / 1000)
}

// Interp linearly interpolates the series (xs, ys) onto the target points
// xt, clamping to the end values outside the source range. xs must be
// ascending. Mirrors how co-located CTD data is resampled onto instrument
// timestamps.
func Interp(xt, xs, ys []float64) []float64 {
	out := make([]float64, len(xt))
	if len(xs) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	for i, x := range xt {
		out[i] = interp1(x, xs, ys)
	}
	return out
}

func interp1(x float64, xs, ys []float64) float64 {
	n := len(xs)
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}
	// binary search for the bracketing interval
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if xs[mid] <= x {
			lo = mid
		} else {
			hi = mid
		}
	}
	if xs[hi] == xs[lo] {
		return ys[lo]
	}
	frac := (x - xs[lo]) / (xs[hi] - xs[lo])
	return ys[lo] + frac*(ys[hi]-ys[lo])
}

// Median returns the median of vs, ignoring NaNs. Returns NaN when no valid
// samples remain. Used by burst averaging.
func Median(vs []float64) float64 {
	valid := make([]float64, 0, len(vs))
	for _, v := range vs {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return math.NaN()
	}
	sort.Float64s(valid)
	n := len(valid)
	if n%2 == 1 {
		return valid[n/2]
	}
	return (valid[n/2-1] + valid[n/2]) / 2
}
