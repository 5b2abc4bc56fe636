package bm95

import "math"

// Constants of the long-wave dispersion curves
const (
	dispersionBeta  = 2.29e-11 // 1/(m s)
	dispersionSpeed = 2.7      // m/s
)

// RossbyDispersion returns the dispersion curve of the m-th meridional
// Rossby mode, ω = -k / (2m + 1 + k²), for nondimensional k in [-10, 10)
// with step 0.1. Frequencies are in cycles per day and wavenumbers in
// cycles per degree of longitude.
func RossbyDispersion(m int) (freq, wavenumber []float64) {
	timeScale := math.Sqrt(dispersionBeta * dispersionSpeed)
	lengthScale := math.Sqrt(dispersionBeta / dispersionSpeed)

	const n = 200
	freq = make([]float64, n)
	wavenumber = make([]float64, n)
	for i := 0; i < n; i++ {
		k := -10 + 0.1*float64(i)
		w := -k / (float64(2*m+1) + k*k)
		freq[i] = w * timeScale * 86400 / (2 * math.Pi)
		wavenumber[i] = k * lengthScale * 110e3 / (2 * math.Pi)
	}
	return freq, wavenumber
}
