package spectrogram

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/spectro/algorithms/common"
)

type addRequest struct {
	delay     float64
	scale     float64
	smooth    bool
	smoothPar float64
	tScale    float64
	fScale    float64
}

// AddOption configures Add
type AddOption func(*addRequest)

// WithDelay shifts the added spectrogram by delay seconds; a negative delay
// drops its first -delay seconds.
func WithDelay(delay float64) AddOption {
	return func(r *addRequest) {
		r.delay = delay
	}
}

// WithGain multiplies the added image by scale
func WithGain(scale float64) AddOption {
	return func(r *addRequest) {
		r.scale = scale
	}
}

// WithSmoothing fades the added image in and out along time. Larger par
// gives a flatter envelope with sharper edges.
func WithSmoothing(par float64) AddOption {
	return func(r *addRequest) {
		r.smooth = true
		r.smoothPar = par
	}
}

// WithTimeScale stretches (>1) or squeezes (<1) the added image along time
func WithTimeScale(factor float64) AddOption {
	return func(r *addRequest) {
		r.tScale = factor
	}
}

// WithFreqScale stretches or squeezes the added image along frequency,
// keeping its number of frequency bins.
func WithFreqScale(factor float64) AddOption {
	return func(r *addRequest) {
		r.fScale = factor
	}
}

// Add overlays other onto s and returns the composite, which has the shape
// of s. other is rescaled, cropped to the part that lands inside s, and
// added elementwise. Its annotations move with it. Tracking data of the
// composite is reset to a single placeholder source.
func (s *Spectrogram) Add(other *Spectrogram, opts ...AddOption) (*Spectrogram, error) {
	r := addRequest{scale: 1, tScale: 1, fScale: 1, smoothPar: 5}
	for _, opt := range opts {
		opt(&r)
	}

	if !s.sameResolution(other) {
		return nil, fmt.Errorf("%w: (%v s, %v) vs (%v s, %v)", ErrResolutionMismatch, s.TRes, s.FRes, other.TRes, other.FRes)
	}
	if r.tScale <= 0 || r.fScale <= 0 {
		return nil, fmt.Errorf("%w: scale factors must be positive, got %v and %v", ErrInvalidArgument, r.tScale, r.fScale)
	}
	if r.smooth && r.smoothPar <= 0 {
		return nil, fmt.Errorf("%w: smoothing parameter must be positive, got %v", ErrInvalidArgument, r.smoothPar)
	}

	sp := other.ScaleTimeAxis(r.tScale, false).ScaleFreqAxis(r.fScale, true)

	tlow := sp.TMin
	if r.delay < 0 {
		tlow = sp.TMin - r.delay
	}
	thigh := sp.TMin + s.Duration() - r.delay

	out := s.Clone()
	out.resetTracking(compositeTag)

	sp = sp.Crop(TimeRange(tlow, thigh), FreqRange(s.FMin, s.FMax()), ResetTime())
	if sp == nil {
		return out, nil
	}

	if r.smooth {
		applyEnvelope(sp.Image, r.smoothPar)
	}

	start := s.TMin + math.Max(r.delay, 0)
	t0 := s.FindTimeBin(start, false, true).Index
	f0 := max(s.FindFreqBin(sp.FMin, false, true).Index, 0)
	for i, row := range sp.Image {
		ti := t0 + i
		if ti < 0 {
			continue
		}
		if ti >= out.TBins() {
			break
		}
		for j, v := range row {
			if f0+j >= out.FBins() {
				break
			}
			out.Image[ti][f0+j] += r.scale * v
		}
	}

	out.addAnnotations(sp.Annotations.Shift(start))
	return out, nil
}

// applyEnvelope multiplies every frequency bin of img by
// exp(-(t-mu)^p / (2*sigma_p)) with p = 2*ceil(par) and sigma_p = mu^p/9,
// mu being the central time bin.
func applyEnvelope(img [][]float64, par float64) {
	nt := len(img)
	mu := float64(nt / 2)
	if nt%2 != 0 {
		mu = float64(nt-1) / 2
	}
	if mu == 0 {
		return
	}

	p := 2 * math.Ceil(par)
	sigp := math.Pow(mu, p) / 9
	for t, row := range img {
		env := math.Exp(-math.Pow(float64(t)-mu, p) / (2 * sigp))
		for j := range row {
			row[j] *= env
		}
	}
}

// Append joins other to the end of s. Both must share time and frequency
// resolution and number of frequency bins. Annotations of other are moved
// behind s and source files are merged by name.
func (s *Spectrogram) Append(other *Spectrogram) (*Spectrogram, error) {
	if !s.sameResolution(other) {
		return nil, fmt.Errorf("%w: (%v s, %v) vs (%v s, %v)", ErrResolutionMismatch, s.TRes, s.FRes, other.TRes, other.FRes)
	}
	if s.FBins() != other.FBins() || s.FMin != other.FMin {
		return nil, fmt.Errorf("%w: %d bins from %v vs %d bins from %v", ErrFrequencyRangeMismatch, s.FBins(), s.FMin, other.FBins(), other.FMin)
	}

	shift := s.TMax() - other.TMin
	out := s.Clone()

	out.Image = append(out.Image, common.CloneMatrix(other.Image)...)
	out.TimeVector = append(out.TimeVector, other.TimeVector...)

	files, translate := mergeFiles(s.Files, other.Files)
	out.Files = files
	for _, id := range other.FileVector {
		out.FileVector = append(out.FileVector, translate[id])
	}

	out.addAnnotations(other.Annotations.Shift(shift))
	return out, nil
}

// EnsureSameLength brings all specs to the same number of time bins: the
// shortest one, or with pad the longest one, zero-padding at the end.
func EnsureSameLength(specs []*Spectrogram, pad bool) ([]*Spectrogram, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	n := specs[0].TBins()
	for _, s := range specs {
		if s.TRes != specs[0].TRes {
			return nil, fmt.Errorf("%w: %v s vs %v s", ErrResolutionMismatch, s.TRes, specs[0].TRes)
		}
		if pad {
			n = max(n, s.TBins())
		} else {
			n = min(n, s.TBins())
		}
	}

	out := make([]*Spectrogram, len(specs))
	for i, s := range specs {
		if pad {
			out[i] = s.Crop(TimeRange(0, float64(n)), PadTime(), InBins())
			continue
		}
		out[i] = s.Crop(TimeRange(0, float64(n)), InBins())
	}
	return out, nil
}

// ScaleTimeAxis stretches (factor > 1) or squeezes (factor < 1) the image
// along time. With preserveShape a stretched image is truncated to its old
// length and a squeezed one is filled up with the tail of the original.
// Annotation times are scaled about TMin.
func (s *Spectrogram) ScaleTimeAxis(factor float64, preserveShape bool) *Spectrogram {
	if factor == 1 {
		return s.Clone()
	}

	n := s.TBins()
	out := s.Clone()
	out.Image = common.RescaleAxis(s.Image, 0, factor, preserveShape)

	m := common.ScaledLength(n, factor)
	times, files := resampleTracking(s.TimeVector, s.FileVector, m)
	if preserveShape {
		if m > n {
			times, files = times[:n], files[:n]
		} else {
			times = append(times, s.TimeVector[m:]...)
			files = append(files, s.FileVector[m:]...)
		}
	}
	out.TimeVector = times
	out.FileVector, out.Files = compactFiles(files, s.Files)

	out.Annotations = s.Annotations.Shift(-s.TMin).Scale(factor).Shift(s.TMin)
	out.Annotations = out.Annotations.Crop(out.TMin, out.TMax(), math.Inf(-1), math.Inf(1))
	return out
}

// ScaleFreqAxis stretches or squeezes the image along frequency. With
// preserveShape the number of frequency bins is kept the same way
// ScaleTimeAxis keeps the number of time bins.
func (s *Spectrogram) ScaleFreqAxis(factor float64, preserveShape bool) *Spectrogram {
	if factor == 1 {
		return s.Clone()
	}

	out := s.Clone()
	out.Image = common.RescaleAxis(s.Image, 1, factor, preserveShape)
	if out.FBins() != s.FBins() {
		out.FLabels = nil
	}
	return out
}
