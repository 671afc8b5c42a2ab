package common

import (
	"math"

	"gonum.org/v1/gonum/interp"
)

// ResampleQuality selects the interpolant used when resampling audio
type ResampleQuality int

const (
	// ResampleLinear joins samples with straight lines
	ResampleLinear ResampleQuality = iota
	// ResampleSpline fits an Akima spline through the samples
	ResampleSpline
)

func (q ResampleQuality) predictor() interp.FittablePredictor {
	if q == ResampleSpline {
		return &interp.AkimaSpline{}
	}
	return &interp.PiecewiseLinear{}
}

// fitSamples fits p to data sampled at 0, 1, ..., len(data)-1.
// data must hold at least two samples.
func fitSamples(p interp.FittablePredictor, data []float64) interp.Predictor {
	xs := make([]float64, len(data))
	for i := range xs {
		xs[i] = float64(i)
	}
	if err := p.Fit(xs, data); err != nil {
		// xs is strictly increasing
		panic(err)
	}
	return p
}

// ResampleSignal resamples signal from originalRate to targetRate. Before
// decimating, the signal is low-passed with a gaussian so content above the
// new Nyquist frequency does not fold back. Reads past the last sample hold
// its value.
func ResampleSignal(signal []float64, originalRate, targetRate int, quality ResampleQuality) []float64 {
	if len(signal) == 0 || originalRate <= 0 || targetRate <= 0 || originalRate == targetRate {
		return signal
	}

	ratio := float64(originalRate) / float64(targetRate)
	newLength := int(math.Round(float64(len(signal)) / ratio))
	if newLength <= 0 {
		return []float64{}
	}

	resampled := make([]float64, newLength)
	if len(signal) == 1 {
		for i := range resampled {
			resampled[i] = signal[0]
		}
		return resampled
	}

	src := signal
	if ratio > 1 {
		src = GaussianFilter1D(signal, (ratio-1)/2)
	}

	p := fitSamples(quality.predictor(), src)
	for i := range resampled {
		resampled[i] = p.Predict(float64(i) * ratio)
	}
	return resampled
}
