package spectral

// PowerSpectrum converts magnitude spectra into power spectra
type PowerSpectrum struct{}

// NewPowerSpectrum creates a new power spectrum calculator
func NewPowerSpectrum() *PowerSpectrum {
	return &PowerSpectrum{}
}

// Compute returns |X|^2 / nfft for one magnitude spectrum
func (ps *PowerSpectrum) Compute(magnitudeSpectrum []float64, nfft int) []float64 {
	power := make([]float64, len(magnitudeSpectrum))
	if nfft <= 0 {
		return power
	}

	scale := 1.0 / float64(nfft)
	for i, mag := range magnitudeSpectrum {
		power[i] = scale * mag * mag
	}

	return power
}

// ComputeFrames processes multiple magnitude spectrum frames
func (ps *PowerSpectrum) ComputeFrames(spectrogram [][]float64, nfft int) [][]float64 {
	power := make([][]float64, len(spectrogram))

	for t, magnitudeSpectrum := range spectrogram {
		power[t] = ps.Compute(magnitudeSpectrum, nfft)
	}

	return power
}
