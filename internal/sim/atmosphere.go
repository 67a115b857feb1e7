// internal/sim/atmosphere.go
package sim

import "math"

// AirDensity is the exponential-atmosphere density at altitude h,
// exactly zero at and above the cutoff. Negative altitudes clamp to
// sea level.
func AirDensity(h float64) float64 {
	if h >= AtmosphereCutoff {
		return 0
	}
	if h < 0 {
		h = 0
	}
	return SeaLevelDensity * math.Exp(-h/ScaleHeight)
}

// GravityAt is the inverse-square gravitational acceleration at
// altitude h above sea level.
func GravityAt(h float64) float64 {
	r := EarthRadius + h
	return G0 * (EarthRadius / r) * (EarthRadius / r)
}

// DynamicPressure is q = 1/2 rho v^2.
func DynamicPressure(h, v float64) float64 {
	return 0.5 * AirDensity(h) * v * v
}
