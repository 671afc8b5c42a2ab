package spectral

import (
	"fmt"
	"math"
)

// smallestPositive replaces empty filter bank energies before taking the log
const smallestPositive = 2.220446049250313e-16

// MFCC computes Mel-Frequency Cepstral Coefficients from power spectra
type MFCC struct {
	numCoefficients int
	numMelFilters   int
	sampleRate      int
	lifterCoeff     float64

	melScale    *MelScale
	filterBank  [][]float64
	dctMatrix   [][]float64
	initialized bool
}

// MFCCParams contains parameters for MFCC computation
type MFCCParams struct {
	NumCoefficients int     `json:"num_coefficients"` // Number of cepstral coefficients kept (default: 20)
	NumMelFilters   int     `json:"num_mel_filters"`  // Number of mel filter bank filters (default: 40)
	LifterCoeff     float64 `json:"lifter_coeff"`     // Sinusoidal lifter length, 0 disables (default: 20)
}

// MFCCResult contains MFCC computation results for a sequence of frames
type MFCCResult struct {
	Coefficients [][]float64 `json:"coefficients"` // Time x coefficient matrix
	FilterBanks  [][]float64 `json:"filter_banks"` // Time x filter log energies in dB
}

// DefaultMFCCParams returns the filter bank and cepstrum sizes used by the mel front-end
func DefaultMFCCParams() MFCCParams {
	return MFCCParams{
		NumCoefficients: 20,
		NumMelFilters:   40,
		LifterCoeff:     20,
	}
}

// NewMFCC creates a new MFCC computer
func NewMFCC(sampleRate int, params MFCCParams) *MFCC {
	defaults := DefaultMFCCParams()
	if params.NumCoefficients <= 0 {
		params.NumCoefficients = defaults.NumCoefficients
	}
	if params.NumMelFilters <= 0 {
		params.NumMelFilters = defaults.NumMelFilters
	}
	if params.LifterCoeff < 0 {
		params.LifterCoeff = 0
	}

	return &MFCC{
		numCoefficients: params.NumCoefficients,
		numMelFilters:   params.NumMelFilters,
		sampleRate:      sampleRate,
		lifterCoeff:     params.LifterCoeff,
		melScale:        NewMelScale(),
	}
}

// Initialize prepares the MFCC computer for the given FFT size
func (mfcc *MFCC) Initialize(fftSize int) error {
	if fftSize <= 0 {
		return fmt.Errorf("invalid FFT size: %d", fftSize)
	}
	if mfcc.numCoefficients >= mfcc.numMelFilters {
		return fmt.Errorf("number of coefficients (%d) must be below the number of mel filters (%d)",
			mfcc.numCoefficients, mfcc.numMelFilters)
	}

	mfcc.filterBank = mfcc.melScale.CreateMelFilterBank(
		mfcc.numMelFilters,
		fftSize,
		mfcc.sampleRate,
		0,
		float64(mfcc.sampleRate)/2.0,
	)
	if len(mfcc.filterBank) == 0 {
		return fmt.Errorf("failed to create mel filter bank")
	}

	mfcc.createDCTMatrix()

	mfcc.initialized = true
	return nil
}

// ComputeFrames turns power spectra (time x NFFT/2+1) into liftered cepstra.
// The zeroth coefficient is skipped: row t holds coefficients 1..NumCoefficients.
func (mfcc *MFCC) ComputeFrames(power [][]float64, fftSize int) (*MFCCResult, error) {
	if len(power) == 0 {
		return nil, fmt.Errorf("empty power spectrogram")
	}
	if !mfcc.initialized {
		if err := mfcc.Initialize(fftSize); err != nil {
			return nil, fmt.Errorf("failed to initialize MFCC: %w", err)
		}
	}

	result := &MFCCResult{
		Coefficients: make([][]float64, len(power)),
		FilterBanks:  make([][]float64, len(power)),
	}

	lift := mfcc.lifter()
	for t, spectrum := range power {
		energies := mfcc.melScale.ApplyFilterBank(spectrum, mfcc.filterBank)
		for i, e := range energies {
			if e == 0 {
				e = smallestPositive
			}
			energies[i] = 20 * math.Log10(e)
		}

		coeffs := mfcc.applyDCT(energies)
		for i := range coeffs {
			coeffs[i] *= lift[i]
		}

		result.FilterBanks[t] = energies
		result.Coefficients[t] = coeffs
	}

	return result, nil
}

// createDCTMatrix creates the rows 1..numCoefficients of the orthonormal DCT-II matrix
func (mfcc *MFCC) createDCTMatrix() {
	n := float64(mfcc.numMelFilters)
	mfcc.dctMatrix = make([][]float64, mfcc.numCoefficients)

	for row := range mfcc.dctMatrix {
		k := float64(row + 1)
		mfcc.dctMatrix[row] = make([]float64, mfcc.numMelFilters)
		for j := range mfcc.dctMatrix[row] {
			mfcc.dctMatrix[row][j] = math.Sqrt(2.0/n) * math.Cos(math.Pi*k*(float64(j)+0.5)/n)
		}
	}
}

func (mfcc *MFCC) applyDCT(logMelSpectrum []float64) []float64 {
	coeffs := make([]float64, mfcc.numCoefficients)

	for k := range coeffs {
		sum := 0.0
		for n := 0; n < len(logMelSpectrum) && n < len(mfcc.dctMatrix[k]); n++ {
			sum += logMelSpectrum[n] * mfcc.dctMatrix[k][n]
		}
		coeffs[k] = sum
	}

	return coeffs
}

// lifter returns the sinusoidal lifter 1 + L/2*sin(pi*n/L), n = 0..numCoefficients-1
func (mfcc *MFCC) lifter() []float64 {
	lift := make([]float64, mfcc.numCoefficients)
	for n := range lift {
		lift[n] = 1
		if mfcc.lifterCoeff > 0 {
			lift[n] += (mfcc.lifterCoeff / 2.0) * math.Sin(math.Pi*float64(n)/mfcc.lifterCoeff)
		}
	}
	return lift
}

// GetFilterBank returns the mel filter bank
func (mfcc *MFCC) GetFilterBank() [][]float64 {
	return mfcc.filterBank
}
