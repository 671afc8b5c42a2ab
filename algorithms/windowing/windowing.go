package windowing

import (
	"fmt"
	"math"
	"strings"
)

// Type names a window function
type Type string

const (
	Hamming     Type = "hamming"
	Hann        Type = "hann"
	Blackman    Type = "blackman"
	Bartlett    Type = "bartlett"
	Rectangular Type = "rectangular"
)

// Window holds the precomputed coefficients of a window function.
// Periodic windows (the default for spectral analysis) are the first size
// samples of a symmetric window of size+1 samples.
type Window struct {
	kind         Type
	size         int
	symmetric    bool
	coefficients []float64
}

// ParseType resolves a window name. "boxcar" and "hanning" are accepted aliases.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hamming":
		return Hamming, nil
	case "hann", "hanning":
		return Hann, nil
	case "blackman":
		return Blackman, nil
	case "bartlett", "triangular":
		return Bartlett, nil
	case "rectangular", "boxcar", "none", "":
		return Rectangular, nil
	default:
		return "", fmt.Errorf("unknown window function: %q", name)
	}
}

// New creates a periodic window by name
func New(name string, size int) (*Window, error) {
	kind, err := ParseType(name)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}
	return newWindow(kind, size, false), nil
}

// NewSymmetric creates a symmetric window by name
func NewSymmetric(name string, size int) (*Window, error) {
	kind, err := ParseType(name)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}
	return newWindow(kind, size, true), nil
}

// NewHamming creates a new Hamming window
func NewHamming(size int, symmetric bool) *Window {
	return newWindow(Hamming, size, symmetric)
}

func newWindow(kind Type, size int, symmetric bool) *Window {
	w := &Window{
		kind:      kind,
		size:      size,
		symmetric: symmetric,
	}
	w.generate()
	return w
}

func (w *Window) generate() {
	w.coefficients = make([]float64, w.size)
	if w.size == 1 {
		w.coefficients[0] = 1
		return
	}

	// length of the symmetric window the coefficients are taken from
	m := w.size
	if !w.symmetric {
		m = w.size + 1
	}
	denominator := float64(m - 1)

	for i := range w.size {
		arg := 2 * math.Pi * float64(i) / denominator
		switch w.kind {
		case Hamming:
			w.coefficients[i] = 0.54 - 0.46*math.Cos(arg)
		case Hann:
			w.coefficients[i] = 0.5 - 0.5*math.Cos(arg)
		case Blackman:
			w.coefficients[i] = 0.42 - 0.5*math.Cos(arg) + 0.08*math.Cos(2*arg)
		case Bartlett:
			w.coefficients[i] = 1 - math.Abs(2*float64(i)/denominator-1)
		default:
			w.coefficients[i] = 1
		}
	}
}

// Apply applies the window to a signal (creates new array)
func (w *Window) Apply(signal []float64) []float64 {
	if len(signal) != w.size {
		return nil
	}

	windowed := make([]float64, w.size)
	for i := 0; i < w.size; i++ {
		windowed[i] = signal[i] * w.coefficients[i]
	}

	return windowed
}

// ApplyInPlace applies the window to a signal in-place
func (w *Window) ApplyInPlace(signal []float64) error {
	if len(signal) != w.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), w.size)
	}

	for i := 0; i < w.size; i++ {
		signal[i] *= w.coefficients[i]
	}

	return nil
}

// GetCoefficients returns a copy of the window coefficients
func (w *Window) GetCoefficients() []float64 {
	coeffs := make([]float64, len(w.coefficients))
	copy(coeffs, w.coefficients)
	return coeffs
}

// GetSize returns the window size
func (w *Window) GetSize() int {
	return w.size
}

// GetType returns the window type
func (w *Window) GetType() string {
	return string(w.kind)
}
