package spectral

import (
	"math"
)

// MelScale provides mel frequency conversion utilities
type MelScale struct{}

// NewMelScale creates a new mel scale converter
func NewMelScale() *MelScale {
	return &MelScale{}
}

// HzToMel converts frequency in Hz to mel scale
func (ms *MelScale) HzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

// MelToHz converts mel scale to frequency in Hz
func (ms *MelScale) MelToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// CreateMelFilterBank creates numFilters triangular filters spaced evenly on
// the mel scale between lowFreq and highFreq, each spanning fftSize/2+1 bins.
// Filter edges sit on FFT bins floor((fftSize+1)*hz/sampleRate).
func (ms *MelScale) CreateMelFilterBank(numFilters int, fftSize int, sampleRate int, lowFreq, highFreq float64) [][]float64 {
	if numFilters <= 0 || fftSize <= 0 || sampleRate <= 0 {
		return nil
	}

	lowMel := ms.HzToMel(lowFreq)
	highMel := ms.HzToMel(highFreq)

	numBins := fftSize/2 + 1

	// Create equally spaced mel points and map them onto FFT bins
	binPoints := make([]int, numFilters+2)
	melStep := (highMel - lowMel) / float64(numFilters+1)
	for i := range binPoints {
		hz := ms.MelToHz(lowMel + float64(i)*melStep)
		binPoints[i] = int(math.Floor((float64(fftSize) + 1.0) * hz / float64(sampleRate)))
		binPoints[i] = min(binPoints[i], numBins-1)
	}

	filterBank := make([][]float64, numFilters)
	for i := range filterBank {
		filterBank[i] = make([]float64, numBins)
	}

	// Build triangular filters
	for m := 1; m <= numFilters; m++ {
		leftBin := binPoints[m-1]
		centerBin := binPoints[m]
		rightBin := binPoints[m+1]

		// Rising edge
		for k := leftBin; k < centerBin; k++ {
			filterBank[m-1][k] = float64(k-leftBin) / float64(centerBin-leftBin)
		}

		// Falling edge
		for k := centerBin; k < rightBin; k++ {
			filterBank[m-1][k] = float64(rightBin-k) / float64(rightBin-centerBin)
		}
	}

	return filterBank
}

// ApplyFilterBank applies mel filter bank to power spectrum
func (ms *MelScale) ApplyFilterBank(powerSpectrum []float64, filterBank [][]float64) []float64 {
	if len(filterBank) == 0 || len(powerSpectrum) == 0 {
		return []float64{}
	}

	melSpectrum := make([]float64, len(filterBank))

	for i, filter := range filterBank {
		sum := 0.0
		for j := 0; j < len(filter) && j < len(powerSpectrum); j++ {
			sum += powerSpectrum[j] * filter[j]
		}
		melSpectrum[i] = sum
	}

	return melSpectrum
}
