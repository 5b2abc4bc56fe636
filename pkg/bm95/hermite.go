// Package bm95 implements the equatorial wave decomposition of Boulanger &
// Menkes (1995): sea level is projected on the meridional structures of the
// Kelvin and long Rossby modes, built from Hermite functions of the
// nondimensional latitude.
package bm95

import (
	"math"
)

const (
	earthRadius     = 6.37122e6    // m
	earthOmega      = 7.2921159e-5 // rad/s
	metersPerDegree = 111.1949e3   // m per degree of latitude

	// DefaultPhaseSpeed is the first baroclinic mode gravity wave speed in m/s
	DefaultPhaseSpeed = 2.5

	// Gravity in m/s²
	Gravity = 9.81
)

// HeightScale is the nondimensional sea level scale c²/g
const HeightScale = DefaultPhaseSpeed * DefaultPhaseSpeed / Gravity

// Scales returns the equatorial length scale L = sqrt(c/β) in meters and
// time scale T = 1/sqrt(βc) in seconds at the given latitude.
func Scales(lat, c float64) (L, T float64) {
	beta := 2 * earthOmega * math.Cos(lat*math.Pi/180) / earthRadius
	return math.Sqrt(c / beta), 1 / math.Sqrt(beta*c)
}

// ScaleLat nondimensionalizes a latitude in degrees by the local
// equatorial length scale.
func ScaleLat(lat, c float64) float64 {
	L, _ := Scales(lat, c)
	return lat * metersPerDegree / L
}

// ScaleLats applies ScaleLat to every latitude
func ScaleLats(lats []float64, c float64) []float64 {
	out := make([]float64, len(lats))
	for i, lat := range lats {
		out[i] = ScaleLat(lat, c)
	}
	return out
}

// HermiteFunction evaluates the normalized Hermite function
//
//	ψ_n(x) = H_n(x) exp(-x²/2) / sqrt(2^n n! sqrt(π))
//
// using the three-term recursion on ψ itself, so neither the polynomial
// nor the normalization is ever formed explicitly.
func HermiteFunction(n int, x float64) float64 {
	if n < 0 {
		return 0
	}
	prev := math.Pow(math.Pi, -0.25) * math.Exp(-x*x/2)
	if n == 0 {
		return prev
	}
	cur := math.Sqrt2 * x * prev
	for k := 1; k < n; k++ {
		next := math.Sqrt(2/float64(k+1))*x*cur - math.Sqrt(float64(k)/float64(k+1))*prev
		prev, cur = cur, next
	}
	return cur
}

// HermiteFunctions returns ψ_0..ψ_n evaluated at every x, indexed [order][point]
func HermiteFunctions(n int, x []float64) [][]float64 {
	out := make([][]float64, n+1)
	for k := range out {
		out[k] = make([]float64, len(x))
	}
	for i, xi := range x {
		prev := math.Pow(math.Pi, -0.25) * math.Exp(-xi*xi/2)
		out[0][i] = prev
		if n == 0 {
			continue
		}
		cur := math.Sqrt2 * xi * prev
		out[1][i] = cur
		for k := 1; k < n; k++ {
			next := math.Sqrt(2/float64(k+1))*xi*cur - math.Sqrt(float64(k)/float64(k+1))*prev
			prev, cur = cur, next
			out[k+1][i] = cur
		}
	}
	return out
}
