package spectrogram

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/RyanBlaney/spectro/config"
	"github.com/RyanBlaney/spectro/internal/testutil"
	"github.com/RyanBlaney/spectro/transcode"
)

// writeTone writes one second of a 1 kHz tone sampled at 8 kHz
func writeTone(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	sig := transcode.NewAudioData(testutil.Sine(8000, 8000, 1000, 0.5), 8000, "tone")
	if err := transcode.EncodeFile(path, sig, 16); err != nil {
		t.Fatalf("EncodeFile: %v", err)
	}
	return path
}

func loaderConfig() config.SpectrogramConfig {
	cfg := config.DefaultSpectrogramConfig()
	cfg.WindowSize = 0.02
	cfg.StepSize = 0.01
	cfg.Decibel = false
	return cfg
}

func TestFromWAV(t *testing.T) {
	path := writeTone(t)

	s, err := FromWAV(path, loaderConfig())
	if err != nil {
		t.Fatalf("FromWAV: %v", err)
	}
	requireShape(t, s, 100, 81)
	if s.TMin != 0 || s.Tag() != path {
		t.Fatalf("TMin %v, tag %q", s.TMin, s.Tag())
	}
	// 1 kHz is bin 20 of a 160-point FFT at 8 kHz
	if got := argmax(s.Image[50]); got != 20 {
		t.Fatalf("tone peaks at bin %d, want 20", got)
	}
}

func TestLoaderLoadOffset(t *testing.T) {
	path := writeTone(t)
	l, err := NewLoader(loaderConfig(), nil, nil)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	s, err := l.Load(path, 0.5, 0.25)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	requireShape(t, s, 25, 81)
	testutil.RequireNearlyEqual(t, s.TMin, 0.5, 0)
	testutil.RequireNearlyEqual(t, s.TimeVector[0], 0.5, 1e-12)

	if _, err := l.Load(path, 1.0, 0.25); !errors.Is(err, ErrEmptySegment) {
		t.Fatalf("err = %v, want ErrEmptySegment", err)
	}
	if _, err := l.Load(path, -1, 0.25); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestLoaderAdjustDuration(t *testing.T) {
	path := writeTone(t)

	cfg := loaderConfig()
	l, err := NewLoader(cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	s, err := l.Load(path, 0, 0.255)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	requireShape(t, s, 26, 81)

	cfg.AdjustDuration = false
	strict, err := NewLoader(cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	if _, err := strict.Load(path, 0, 0.255); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestLoaderFrequencyCut(t *testing.T) {
	path := writeTone(t)

	cfg := loaderConfig()
	cfg.LowFrequencyCut = 500
	cfg.HighFrequencyCut = 1500
	l, err := NewLoader(cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	s, err := l.Load(path, 0, 0.1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.FMin > 500 || s.FMin <= 500-s.FRes {
		t.Fatalf("FMin = %v, want the bin holding 500 Hz", s.FMin)
	}
	if s.FMax() < 1500 || s.FMax() >= 1500+s.FRes {
		t.Fatalf("FMax = %v, want the bin holding 1500 Hz", s.FMax())
	}
	if s.FCropLow == 0 || s.FCropHigh == 0 {
		t.Fatalf("crop counters = %d/%d", s.FCropLow, s.FCropHigh)
	}
}

func TestLoaderSegments(t *testing.T) {
	path := writeTone(t)

	cfg := loaderConfig()
	cfg.Length = 0.25
	l, err := NewLoader(cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	segs, err := l.LoadSegments(path)
	if err != nil {
		t.Fatalf("LoadSegments: %v", err)
	}
	if len(segs) != 4 {
		t.Fatalf("got %d segments, want 4", len(segs))
	}
	for i, s := range segs {
		requireShape(t, s, 25, 81)
		testutil.RequireNearlyEqual(t, s.TMin, 0.25*float64(i), 1e-12)
	}
}

func TestLoaderCQT(t *testing.T) {
	path := writeTone(t)

	cfg := config.DefaultSpectrogramConfig()
	cfg.Type = config.TypeCQT
	cfg.StepSize = 0.016
	cfg.LowFrequencyCut = 250
	cfg.HighFrequencyCut = 2000
	cfg.BinsPerOctave = 12
	cfg.Decibel = false
	l, err := NewLoader(cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	s, err := l.Load(path, 0, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Kind != CQT || s.FBins() != 36 {
		t.Fatalf("kind %v with %d bins", s.Kind, s.FBins())
	}
	if got := argmax(s.Image[s.TBins()/2]); got != 24 {
		t.Fatalf("1 kHz peaks at bin %d, want 24", got)
	}
}

func TestNewLoaderRejectsInvalidConfig(t *testing.T) {
	cfg := loaderConfig()
	cfg.Overlap = 1
	if _, err := NewLoader(cfg, nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}
