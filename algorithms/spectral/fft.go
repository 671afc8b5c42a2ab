package spectral

import (
	"github.com/mjibson/go-dsp/fft"
)

// FFT provides Fast Fourier Transform functionality
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes Fast Fourier Transform using mjibson/go-dsp
// Takes []float64 input and returns []complex128 output
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	// mjibson/go-dsp handles all sizes efficiently, including non-power-of-2
	return fft.FFTReal(x)
}

// ComputeN computes an n-point FFT of x, truncating x or padding it with
// zeros to n samples first.
func (f *FFT) ComputeN(x []float64, n int) []complex128 {
	if n <= 0 || n == len(x) {
		return f.Compute(x)
	}

	buf := make([]float64, n)
	copy(buf, x)
	return f.Compute(buf)
}
