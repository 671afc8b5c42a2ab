package spectrogram

import (
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/spectro/annotation"
	"github.com/RyanBlaney/spectro/internal/testutil"
)

// rampSpec returns a rows x cols spectrogram with Image[i][j] = i*cols+j
func rampSpec(t *testing.T, rows, cols int, tres, fres float64, tag string) *Spectrogram {
	t.Helper()
	s, err := New(testutil.Ramp(rows, cols), WithTime(0, tres), WithFrequency(0, fres), WithTag(tag))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func constSpec(t *testing.T, rows, cols int, value float64) *Spectrogram {
	t.Helper()
	s, err := New(testutil.Matrix(rows, cols, value))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func mustAnnotate(t *testing.T, s *Spectrogram, label int, values ...float64) *Spectrogram {
	t.Helper()
	box, err := annotation.NewBox(values...)
	if err != nil {
		t.Fatalf("NewBox: %v", err)
	}
	out, err := s.Annotate([]int{label}, []annotation.Box{box})
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	return out
}

func requireBox(t *testing.T, got, want annotation.Box) {
	t.Helper()
	const eps = 1e-9
	if math.Abs(got.TStart-want.TStart) > eps || math.Abs(got.TEnd-want.TEnd) > eps ||
		math.Abs(got.FStart-want.FStart) > eps || math.Abs(got.FEnd-want.FEnd) > eps {
		t.Fatalf("box = %+v, want %+v", got, want)
	}
}

func requireShape(t *testing.T, s *Spectrogram, rows, cols int) {
	t.Helper()
	if s == nil {
		t.Fatalf("spectrogram is nil, want %dx%d", rows, cols)
	}
	if s.TBins() != rows || s.FBins() != cols {
		t.Fatalf("shape = %dx%d, want %dx%d", s.TBins(), s.FBins(), rows, cols)
	}
	if len(s.TimeVector) != rows || len(s.FileVector) != rows {
		t.Fatalf("tracking lengths = %d/%d, want %d", len(s.TimeVector), len(s.FileVector), rows)
	}
}

func TestNewValidates(t *testing.T) {
	tests := []struct {
		name  string
		image [][]float64
		opts  []Option
	}{
		{"empty", nil, nil},
		{"ragged", [][]float64{{1, 2}, {3}}, nil},
		{"zero time resolution", [][]float64{{1}}, []Option{WithTime(0, 0)}},
		{"negative frequency resolution", [][]float64{{1}}, []Option{WithFrequency(0, -1)}},
		{"label count", [][]float64{{1, 2}}, []Option{WithFrequencyLabels([]string{"a"})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.image, tt.opts...)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestNewCreatesTracking(t *testing.T) {
	s, err := New(testutil.Ramp(4, 3), WithTime(2, 0.5), WithTag("a.wav"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	requireShape(t, s, 4, 3)
	testutil.RequireSliceNearlyEqual(t, s.TimeVector, []float64{2, 2.5, 3, 3.5}, 1e-12)
	if len(s.Files) != 1 || s.Files[0] != "a.wav" || s.Tag() != "a.wav" {
		t.Fatalf("files = %v", s.Files)
	}
	testutil.RequireNearlyEqual(t, s.Duration(), 2, 1e-12)
	testutil.RequireNearlyEqual(t, s.TMax(), 4, 1e-12)
	testutil.RequireNearlyEqual(t, s.FMax(), 3, 1e-12)
}

func TestNewCopiesImage(t *testing.T) {
	img := testutil.Ramp(2, 2)
	s, err := New(img)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	img[0][0] = 99
	if s.Image[0][0] != 0 {
		t.Fatalf("spectrogram shares its image with the caller")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := mustAnnotate(t, rampSpec(t, 3, 2, 1, 1, "a"), 1, 0, 1)
	c := s.Clone()
	c.Image[0][0] = 42
	c.TimeVector[0] = 42
	c.Annotations[0].Label = 9
	c.Files[0] = "b"
	if s.Image[0][0] != 0 || s.TimeVector[0] != 0 || s.Annotations[0].Label != 1 || s.Files[0] != "a" {
		t.Fatalf("clone shares state with original")
	}
}

func TestAnnotateResolvesAndClips(t *testing.T) {
	s := rampSpec(t, 10, 5, 0.1, 100, "")
	s = mustAnnotate(t, s, 1, 0.5, 2.0)

	if len(s.Annotations) != 1 {
		t.Fatalf("annotations = %v", s.Annotations)
	}
	requireBox(t, s.Annotations[0].Box, annotation.Box{TStart: 0.5, TEnd: 1.0, FStart: 0, FEnd: 500})

	s = mustAnnotate(t, s, 2, 3, 4)
	if len(s.Annotations) != 1 {
		t.Fatalf("box outside the time axis was kept: %v", s.Annotations)
	}

	if _, err := s.Annotate([]int{1, 2}, nil); err == nil {
		t.Fatalf("expected error for mismatched labels and boxes")
	}
}

func TestKindRoundTrip(t *testing.T) {
	for _, k := range []Kind{Generic, Magnitude, Power, Mel, CQT} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Fatalf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("Wavelet"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}
