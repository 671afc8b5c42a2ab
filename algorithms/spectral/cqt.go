package spectral

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/spectro/algorithms/windowing"
)

// CQTParams contains parameters for the constant-Q transform
type CQTParams struct {
	SampleRate    int     `json:"sample_rate"`
	FMin          float64 `json:"fmin"`            // Centre frequency of the lowest bin
	NumBins       int     `json:"num_bins"`        // Total number of bins
	BinsPerOctave int     `json:"bins_per_octave"` // Bins per octave
	Hop           int     `json:"hop"`             // Hop between frame centres in samples
}

// CQT computes constant-Q magnitude spectra by direct evaluation of one
// hamming-windowed complex kernel per bin. Frames are centred on multiples of
// Hop and the signal is zero outside its extent.
type CQT struct {
	params  CQTParams
	kernels []cqtKernel
}

type cqtKernel struct {
	re, im []float64
}

// NewCQT validates params and precomputes the kernels
func NewCQT(params CQTParams) (*CQT, error) {
	if params.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", params.SampleRate)
	}
	if params.FMin <= 0 {
		return nil, fmt.Errorf("minimum frequency must be positive, got %v", params.FMin)
	}
	if params.NumBins <= 0 || params.BinsPerOctave <= 0 {
		return nil, fmt.Errorf("invalid bin layout: %d bins, %d per octave", params.NumBins, params.BinsPerOctave)
	}
	if params.Hop <= 0 {
		return nil, fmt.Errorf("hop must be positive, got %d", params.Hop)
	}

	nyquist := 0.5 * float64(params.SampleRate)
	top := params.FMin * math.Pow(2, float64(params.NumBins-1)/float64(params.BinsPerOctave))
	if top > nyquist {
		return nil, fmt.Errorf("highest bin (%.1f Hz) exceeds the Nyquist frequency (%.1f Hz)", top, nyquist)
	}

	q := 1.0 / (math.Pow(2, 1.0/float64(params.BinsPerOctave)) - 1)

	c := &CQT{params: params, kernels: make([]cqtKernel, params.NumBins)}
	for k := range c.kernels {
		fk := params.FMin * math.Pow(2, float64(k)/float64(params.BinsPerOctave))
		n := int(math.Ceil(q * float64(params.SampleRate) / fk))
		w := windowing.NewHamming(n, true).GetCoefficients()

		kern := cqtKernel{re: make([]float64, n), im: make([]float64, n)}
		for i := range n {
			arg := -2 * math.Pi * q * float64(i) / float64(n)
			kern.re[i] = w[i] * math.Cos(arg) / float64(n)
			kern.im[i] = w[i] * math.Sin(arg) / float64(n)
		}
		c.kernels[k] = kern
	}

	return c, nil
}

// NumFrames returns the number of frames Compute produces for n samples
func (c *CQT) NumFrames(n int) int {
	return 1 + n/c.params.Hop
}

// Compute returns the time x bin magnitude matrix of signal
func (c *CQT) Compute(signal []float64) [][]float64 {
	numFrames := c.NumFrames(len(signal))
	out := make([][]float64, numFrames)

	for t := range out {
		out[t] = make([]float64, len(c.kernels))
		centre := t * c.params.Hop

		for k, kern := range c.kernels {
			start := centre - len(kern.re)/2
			var re, im float64
			for i := range kern.re {
				j := start + i
				if j < 0 || j >= len(signal) {
					continue
				}
				re += signal[j] * kern.re[i]
				im += signal[j] * kern.im[i]
			}
			out[t][k] = math.Hypot(re, im)
		}
	}

	return out
}
