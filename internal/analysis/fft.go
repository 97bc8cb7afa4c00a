package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// FFT returns the non-negative frequency coefficients of a real series,
// len(data)/2+1 of them. Any length is accepted; Pad to a power of two when
// bins should line up with a power-of-two period.
func FFT(data []float64) []complex128 {
	if len(data) == 0 {
		return nil
	}
	return fourier.NewFFT(len(data)).Coefficients(nil, data)
}

// Pad returns a copy of data zero-extended to the next power of two.
func Pad(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, data)
	return padded
}

// Detrend returns data with its mean removed so the zero bin does not
// dominate the spectrum.
func Detrend(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	mean := stat.Mean(data, nil)
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = v - mean
	}
	return out
}

// PowerSpectrum returns the magnitudes of the first half of the transform
// of the detrended, padded series.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	padded := Pad(Detrend(data))
	coeffs := FFT(padded)
	ps := make([]float64, len(padded)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantPeriod finds the strongest non-zero frequency bin of a per-tick
// series and returns its period in ticks. It returns 0 when the series is
// flat or too short.
func DominantPeriod(data []float64) float64 {
	ps := PowerSpectrum(data)
	if len(ps) < 2 {
		return 0
	}

	best, bestIdx := 0.0, 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > best {
			best = ps[i]
			bestIdx = i
		}
	}
	if bestIdx == 0 || best < 1e-9 {
		return 0
	}
	return float64(2*len(ps)) / float64(bestIdx)
}
