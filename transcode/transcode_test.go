package transcode

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RyanBlaney/spectro/internal/testutil"
)

func writeFixture(t *testing.T, pcm []float64, rate int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.wav")
	if err := EncodeFile(path, NewAudioData(pcm, rate, "fixture"), 16); err != nil {
		t.Fatalf("EncodeFile: %v", err)
	}
	return path
}

func TestDecodeFileRoundTrip(t *testing.T) {
	pcm := testutil.Sine(8000, 8000, 440, 0.5)
	path := writeFixture(t, pcm, 8000)

	got, err := NewDecoder(nil).DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	if got.SampleRate != 8000 || got.Channels != 1 {
		t.Fatalf("rate/channels = %d/%d, want 8000/1", got.SampleRate, got.Channels)
	}
	testutil.RequireSliceNearlyEqual(t, got.PCM, pcm, 1e-4)
	testutil.RequireNearlyEqual(t, got.Duration(), 1, 1e-12)
	if got.WallDuration() != time.Second {
		t.Fatalf("wall duration = %v, want 1s", got.WallDuration())
	}
}

func TestDecodeSegment(t *testing.T) {
	path := writeFixture(t, testutil.Sine(8000, 8000, 100, 0.5), 8000)
	dec := NewDecoder(nil)

	got, err := dec.DecodeSegment(path, 0.5, 0.25)
	if err != nil {
		t.Fatalf("DecodeSegment: %v", err)
	}
	if len(got.PCM) != 2000 {
		t.Fatalf("samples = %d, want 2000", len(got.PCM))
	}
	testutil.RequireNearlyEqual(t, got.Start, 0.5, 1e-12)

	tail, err := dec.DecodeSegment(path, 0.75, 10)
	if err != nil {
		t.Fatalf("DecodeSegment past end: %v", err)
	}
	if len(tail.PCM) != 2000 {
		t.Fatalf("tail samples = %d, want 2000", len(tail.PCM))
	}

	if _, err := dec.DecodeSegment(path, 1.0, 0); !errors.Is(err, ErrEmptySegment) {
		t.Fatalf("err = %v, want ErrEmptySegment", err)
	}
}

func TestDecodeResamples(t *testing.T) {
	path := writeFixture(t, testutil.Sine(8000, 8000, 100, 0.5), 8000)

	for _, quality := range []string{"fast", "high"} {
		t.Run(quality, func(t *testing.T) {
			cfg := DefaultDecoderConfig()
			cfg.ResampleQuality = quality

			cfg.TargetSampleRate = 4000
			down, err := NewDecoder(cfg).DecodeFile(path)
			if err != nil {
				t.Fatalf("DecodeFile: %v", err)
			}
			if down.SampleRate != 4000 || len(down.PCM) != 4000 {
				t.Fatalf("rate/samples = %d/%d, want 4000/4000", down.SampleRate, len(down.PCM))
			}

			cfg.TargetSampleRate = 16000
			up, err := NewDecoder(cfg).DecodeFile(path)
			if err != nil {
				t.Fatalf("DecodeFile: %v", err)
			}
			if len(up.PCM) != 16000 {
				t.Fatalf("samples = %d, want 16000", len(up.PCM))
			}
			// the last output sample lies past the final input sample and holds it
			want := testutil.Sine(16000, 16000, 100, 0.5)
			testutil.RequireSliceNearlyEqual(t, up.PCM[:15999], want[:15999], 1e-3)
		})
	}
}

func TestDecodeMaxDuration(t *testing.T) {
	path := writeFixture(t, make([]float64, 8000), 8000)

	cfg := DefaultDecoderConfig()
	cfg.MaxDuration = 100 * time.Millisecond
	got, err := NewDecoder(cfg).DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	if len(got.PCM) != 800 {
		t.Fatalf("samples = %d, want 800", len(got.PCM))
	}
}

func TestDecodeErrors(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "bogus.wav")
	if err := os.WriteFile(bogus, []byte("definitely not a riff file"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := NewDecoder(nil).DecodeFile(bogus); !errors.Is(err, ErrInvalidWAV) {
		t.Fatalf("err = %v, want ErrInvalidWAV", err)
	}
	if _, err := NewDecoder(nil).DecodeFile(filepath.Join(dir, "missing.wav")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	path := writeFixture(t, make([]float64, 100), 8000)
	cfg := DefaultDecoderConfig()
	cfg.Channel = 1
	if _, err := NewDecoder(cfg).DecodeFile(path); err == nil {
		t.Fatalf("expected error for missing channel")
	}
}

func TestProbe(t *testing.T) {
	path := writeFixture(t, make([]float64, 4000), 8000)

	meta, err := NewDecoder(nil).Probe(path)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if meta.SampleRate != 8000 || meta.Channels != 1 || meta.BitDepth != 16 || meta.Frames != 4000 {
		t.Fatalf("metadata = %+v", meta)
	}
	testutil.RequireNearlyEqual(t, meta.Duration, 0.5, 1e-12)
}

func TestDecoderConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*DecoderConfig)
		wantErr bool
	}{
		{"defaults", func(*DecoderConfig) {}, false},
		{"negative rate", func(c *DecoderConfig) { c.TargetSampleRate = -1 }, true},
		{"negative channel", func(c *DecoderConfig) { c.Channel = -1 }, true},
		{"unknown quality", func(c *DecoderConfig) { c.ResampleQuality = "kaiser_best" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultDecoderConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMakeFrames(t *testing.T) {
	a := NewAudioData(make([]float64, 1000), 1000, "x")

	if n := a.WindowSamples(0.011, true); n != 12 {
		t.Fatalf("even window = %d, want 12", n)
	}
	frames := a.MakeFrames(0.1, 0.05, true, false)
	if len(frames) != 19 || len(frames[0]) != 100 {
		t.Fatalf("frames = %d x %d, want 19 x 100", len(frames), len(frames[0]))
	}
}
