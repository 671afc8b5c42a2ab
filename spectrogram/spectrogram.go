// Package spectrogram is the time-frequency bookkeeping engine: it maps
// physical coordinates to bins, tracks the provenance of every time bin,
// keeps annotations consistent with crops and rescales, segments and
// extracts regions, and composites spectrograms for data augmentation.
//
// The image is time-major: Image[t][f]. Spectrograms are values; every
// transforming method returns a new *Spectrogram and leaves its receiver
// untouched.
package spectrogram

import (
	"fmt"
	"slices"
	"time"

	"github.com/RyanBlaney/spectro/algorithms/common"
	"github.com/RyanBlaney/spectro/annotation"
)

// Kind identifies the front-end that produced a spectrogram
type Kind int

const (
	Generic Kind = iota
	Magnitude
	Power
	Mel
	CQT
)

func (k Kind) String() string {
	switch k {
	case Magnitude:
		return "Mag"
	case Power:
		return "Pow"
	case Mel:
		return "Mel"
	case CQT:
		return "CQT"
	default:
		return "Generic"
	}
}

// ParseKind is the inverse of Kind.String
func ParseKind(name string) (Kind, error) {
	for _, k := range []Kind{Generic, Magnitude, Power, Mel, CQT} {
		if k.String() == name {
			return k, nil
		}
	}
	return Generic, fmt.Errorf("%w: unknown spectrogram kind %q", ErrInvalidArgument, name)
}

// Spectrogram is a time x frequency image with axis metadata, per-bin
// provenance and annotations.
type Spectrogram struct {
	Image [][]float64

	TMin float64 // start time, seconds
	TRes float64 // seconds per time bin
	FMin float64 // lower edge of frequency bin 0, Hz
	FRes float64 // Hz per frequency bin, or octaves per bin on a log scale

	Timestamp time.Time // wall-clock origin, zero if unknown
	Decibel   bool

	// frequency bins removed from each edge by earlier crops
	FCropLow  int
	FCropHigh int

	// Tracking: TimeVector[i] is the source time of bin i, FileVector[i]
	// indexes Files.
	TimeVector []float64
	FileVector []int
	Files      []string

	Annotations annotation.Set

	Kind        Kind
	Scale       FrequencyScale
	NFFT        int
	Hop         int
	Hamming     bool
	FLabels     []string
	FilterBanks [][]float64 // mel filter bank energies, Mel only
}

// Option configures New
type Option func(*Spectrogram)

// WithTime sets the start time and time resolution
func WithTime(tmin, tres float64) Option {
	return func(s *Spectrogram) {
		s.TMin = tmin
		s.TRes = tres
	}
}

// WithFrequency sets the lowest frequency and frequency resolution
func WithFrequency(fmin, fres float64) Option {
	return func(s *Spectrogram) {
		s.FMin = fmin
		s.FRes = fres
	}
}

// WithTag names the source of the image
func WithTag(tag string) Option {
	return func(s *Spectrogram) {
		s.Files = []string{tag}
	}
}

// WithTimestamp sets the wall-clock origin
func WithTimestamp(ts time.Time) Option {
	return func(s *Spectrogram) {
		s.Timestamp = ts
	}
}

// WithDecibel marks the image as log scaled
func WithDecibel(decibel bool) Option {
	return func(s *Spectrogram) {
		s.Decibel = decibel
	}
}

// WithKind records the producing front-end
func WithKind(kind Kind) Option {
	return func(s *Spectrogram) {
		s.Kind = kind
	}
}

// WithScale sets the frequency scale strategy
func WithScale(scale FrequencyScale) Option {
	return func(s *Spectrogram) {
		s.Scale = scale
	}
}

// WithNFFT records the FFT size
func WithNFFT(nfft int) Option {
	return func(s *Spectrogram) {
		s.NFFT = nfft
	}
}

// WithFrequencyLabels sets labels for the frequency bins
func WithFrequencyLabels(labels []string) Option {
	return func(s *Spectrogram) {
		s.FLabels = slices.Clone(labels)
	}
}

// New wraps a copy of image. Defaults: TMin 0, TRes 1, FMin 0, FRes 1, linear
// frequency scale, tag "".
func New(image [][]float64, opts ...Option) (*Spectrogram, error) {
	if len(image) == 0 || len(image[0]) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidArgument)
	}
	for i, row := range image {
		if len(row) != len(image[0]) {
			return nil, fmt.Errorf("%w: row %d has %d bins, want %d", ErrInvalidArgument, i, len(row), len(image[0]))
		}
	}

	s := &Spectrogram{
		Image: common.CloneMatrix(image),
		TRes:  1,
		FRes:  1,
		Files: []string{""},
		Scale: LinearScale{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.TRes <= 0 {
		return nil, fmt.Errorf("%w: time resolution must be positive, got %v", ErrInvalidArgument, s.TRes)
	}
	if s.FRes <= 0 {
		return nil, fmt.Errorf("%w: frequency resolution must be positive, got %v", ErrInvalidArgument, s.FRes)
	}
	if s.FLabels != nil && len(s.FLabels) != s.FBins() {
		return nil, fmt.Errorf("%w: %d frequency labels for %d bins", ErrInvalidArgument, len(s.FLabels), s.FBins())
	}

	s.resetTracking(s.Files[0])
	return s, nil
}

// TBins returns the number of time bins
func (s *Spectrogram) TBins() int {
	return len(s.Image)
}

// FBins returns the number of frequency bins
func (s *Spectrogram) FBins() int {
	if len(s.Image) == 0 {
		return 0
	}
	return len(s.Image[0])
}

// Duration returns TBins()*TRes
func (s *Spectrogram) Duration() float64 {
	return float64(s.TBins()) * s.TRes
}

// TMax returns the end of the time axis
func (s *Spectrogram) TMax() float64 {
	return s.TMin + s.Duration()
}

// FMax returns the upper edge of the frequency axis
func (s *Spectrogram) FMax() float64 {
	return s.scale().BinLow(s.FBins(), s.FMin, s.FRes)
}

// Tag returns the first source identifier
func (s *Spectrogram) Tag() string {
	if len(s.Files) == 0 {
		return ""
	}
	return s.Files[0]
}

// Clone returns a deep copy
func (s *Spectrogram) Clone() *Spectrogram {
	c := *s
	c.Image = common.CloneMatrix(s.Image)
	c.TimeVector = slices.Clone(s.TimeVector)
	c.FileVector = slices.Clone(s.FileVector)
	c.Files = slices.Clone(s.Files)
	c.Annotations = s.Annotations.Clone()
	c.FLabels = slices.Clone(s.FLabels)
	c.FilterBanks = common.CloneMatrix(s.FilterBanks)
	return &c
}

func (s *Spectrogram) scale() FrequencyScale {
	if s.Scale == nil {
		return LinearScale{}
	}
	return s.Scale
}

// sameResolution reports whether s and other can be combined
func (s *Spectrogram) sameResolution(other *Spectrogram) bool {
	return s.TRes == other.TRes && s.FRes == other.FRes && s.scale() == other.scale()
}
