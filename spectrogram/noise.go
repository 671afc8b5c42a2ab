package spectrogram

import (
	"fmt"
	"math"
	"time"

	"github.com/RyanBlaney/spectro/algorithms/common"
	"github.com/RyanBlaney/spectro/logging"
)

// Tonal noise reduction methods
const (
	TonalMedian      = "MEDIAN"
	TonalRunningMean = "RUNNING_MEAN"
)

// ReduceTonalNoise removes continuous tones and slowly varying background.
// MEDIAN subtracts from every frequency bin its median over time.
// RUNNING_MEAN subtracts an exponential running mean with time constant
// timeConstant seconds. An unknown method is logged and leaves the image
// unchanged.
func (s *Spectrogram) ReduceTonalNoise(method string, timeConstant float64) (*Spectrogram, error) {
	out := s.Clone()

	switch method {
	case TonalMedian:
		medians := common.ColumnMedians(s.Image)
		for _, row := range out.Image {
			for j := range row {
				row[j] -= medians[j]
			}
		}
	case TonalRunningMean:
		if timeConstant <= 0 {
			return nil, fmt.Errorf("%w: %s needs a positive time constant, got %v", ErrInvalidArgument, method, timeConstant)
		}
		out.Image = runningMeanReduction(s.Image, s.TRes, timeConstant)
	default:
		logging.WithFields(logging.Fields{
			"component": "spectrogram",
			"function":  "ReduceTonalNoise",
		}).Warn("Invalid tonal noise reduction method, spectrogram is unchanged", logging.Fields{
			"method":    method,
			"available": []string{TonalMedian, TonalRunningMean},
		})
	}

	return out, nil
}

// runningMeanReduction follows Baumgartner & Mussoline, JASA 129, 2889 (2011):
// the mean starts at the time average and is updated with weight
// eps = 1 - exp(ln(0.15)*dt/T) after each bin.
func runningMeanReduction(img [][]float64, dt, timeConstant float64) [][]float64 {
	eps := 1 - math.Exp(math.Log(0.15)*dt/timeConstant)
	rmean := common.ColumnMeans(img)

	out := make([][]float64, len(img))
	for i, row := range img {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = v - rmean[j]
			rmean[j] = (1-eps)*rmean[j] + eps*v
		}
	}
	return out
}

// Normalize rescales the image to [0, 1]
func (s *Spectrogram) Normalize() *Spectrogram {
	out := s.Clone()
	out.Image = common.MinMaxNormalize(s.Image)
	return out
}

// Axis selects the direction of a reduction
type Axis int

const (
	TimeAxis      Axis = 0 // reduce over time, one value per frequency bin
	FrequencyAxis Axis = 1 // reduce over frequency, one value per time bin
)

// region crops the image to opts without touching annotations or tracking
func (s *Spectrogram) region(opts []CropOption) [][]float64 {
	if len(opts) == 0 {
		return s.Image
	}
	c := s.Crop(opts...)
	if c == nil {
		return nil
	}
	return c.Image
}

// Mean returns the average value inside the crop window, NaN when the window
// misses the image.
func (s *Spectrogram) Mean(opts ...CropOption) float64 {
	m := s.region(opts)
	if len(m) == 0 {
		return math.NaN()
	}
	return common.Mean(common.Flatten(m))
}

// MeanAlong averages along axis inside the crop window, nil when the window
// misses the image.
func (s *Spectrogram) MeanAlong(axis Axis, opts ...CropOption) []float64 {
	m := s.region(opts)
	if len(m) == 0 {
		return nil
	}
	if axis == TimeAxis {
		return common.ColumnMeans(m)
	}
	return common.RowMeans(m)
}

// Median returns the median value inside the crop window, NaN when the
// window misses the image.
func (s *Spectrogram) Median(opts ...CropOption) float64 {
	m := s.region(opts)
	if len(m) == 0 {
		return math.NaN()
	}
	return common.Median(common.Flatten(m))
}

// MedianAlong takes medians along axis inside the crop window
func (s *Spectrogram) MedianAlong(axis Axis, opts ...CropOption) []float64 {
	m := s.region(opts)
	if len(m) == 0 {
		return nil
	}
	if axis == TimeAxis {
		return common.ColumnMedians(m)
	}
	return common.RowMedians(m)
}

// BlurGaussian smooths the image with a gaussian kernel of standard
// deviation tsigma seconds along time and fsigma along frequency.
func (s *Spectrogram) BlurGaussian(tsigma, fsigma float64) (*Spectrogram, error) {
	if tsigma <= 0 {
		return nil, fmt.Errorf("%w: tsigma must be strictly positive, got %v", ErrInvalidArgument, tsigma)
	}
	fsigma = math.Max(fsigma, 0)

	out := s.Clone()
	out.Image = common.GaussianFilter2D(s.Image, tsigma/s.TRes, fsigma/s.FRes)
	return out, nil
}

// timeLabelLayout formats time bin labels of timestamped spectrograms
const timeLabelLayout = "2006-01-02 15:04:05.000"

// TimeLabels labels the time bins "t0", "t1", ... or, with a timestamp,
// with the wall-clock time of each bin.
func (s *Spectrogram) TimeLabels() []string {
	labels := make([]string, s.TBins())
	if s.Timestamp.IsZero() {
		for i := range labels {
			labels[i] = fmt.Sprintf("t%d", i)
		}
		return labels
	}

	origin := s.Timestamp.Add(seconds(s.TMin))
	for i := range labels {
		labels[i] = origin.Add(seconds(float64(i) * s.TRes)).Format(timeLabelLayout)
	}
	return labels
}

// FrequencyLabels returns FLabels, or "f0", "f1", ... when unset
func (s *Spectrogram) FrequencyLabels() []string {
	if s.FLabels != nil {
		return append([]string(nil), s.FLabels...)
	}
	labels := make([]string, s.FBins())
	for i := range labels {
		labels[i] = fmt.Sprintf("f%d", i)
	}
	return labels
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
