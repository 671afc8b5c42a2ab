package spectrogram

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/spectro/algorithms/common"
	"github.com/RyanBlaney/spectro/algorithms/spectral"
	"github.com/RyanBlaney/spectro/algorithms/windowing"
	"github.com/RyanBlaney/spectro/config"
	"github.com/RyanBlaney/spectro/logging"
	"github.com/RyanBlaney/spectro/transcode"
)

// Transform builds a spectrogram from an audio signal
type Transform interface {
	Kind() Kind
	Build(sig *transcode.AudioData) (*Spectrogram, error)
}

// FromAudio builds a spectrogram of sig with t
func FromAudio(sig *transcode.AudioData, t Transform) (*Spectrogram, error) {
	return t.Build(sig)
}

// NewTransform returns the front-end described by cfg
func NewTransform(cfg config.SpectrogramConfig) (Transform, error) {
	frames := FrameConfig{
		WindowSize: cfg.WindowSize,
		StepSize:   cfg.StepSize,
		Window:     cfg.WindowFunction,
	}

	switch cfg.Type {
	case config.TypeMagnitude, "":
		return &MagnitudeTransform{FrameConfig: frames, Decibel: cfg.Decibel}, nil
	case config.TypePower:
		return &PowerTransform{FrameConfig: frames, Decibel: cfg.Decibel}, nil
	case config.TypeMel:
		return &MelTransform{
			FrameConfig: frames,
			NumFilters:  cfg.NumFilters,
			NumCeps:     cfg.NumCeps,
			CepLifter:   cfg.CepLifter,
		}, nil
	case config.TypeCQT:
		return &CQTTransform{
			StepSize:      cfg.StepSize,
			FMin:          cfg.LowFrequencyCut,
			FMax:          cfg.HighFrequencyCut,
			BinsPerOctave: cfg.BinsPerOctave,
			Decibel:       cfg.Decibel,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown spectrogram type %q", ErrInvalidArgument, cfg.Type)
	}
}

// FrameConfig describes how a signal is cut into windowed frames
type FrameConfig struct {
	WindowSize float64 // seconds, rounded to an even number of samples
	StepSize   float64 // seconds
	Window     string  // window function, "" means hamming
	NFFT       int     // FFT size, 0 means the frame length
	Logger     logging.Logger
}

// spectrum frames sig and returns its one-sided magnitude spectrum
func (c FrameConfig) spectrum(sig *transcode.AudioData) (*spectral.STFTResult, error) {
	if sig == nil || sig.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: missing audio signal", ErrInvalidArgument)
	}
	if len(sig.PCM) == 0 {
		return nil, ErrEmptySegment
	}
	if c.WindowSize <= 0 || c.StepSize <= 0 {
		return nil, fmt.Errorf("%w: window %v s, step %v s", ErrInvalidArgument, c.WindowSize, c.StepSize)
	}

	frames := sig.MakeFrames(c.WindowSize, c.StepSize, true, false)
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: step of %v s is below one sample", ErrInvalidArgument, c.StepSize)
	}

	name := c.Window
	if name == "" {
		name = string(windowing.Hamming)
	}
	kind, err := windowing.ParseType(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	var window spectral.Window
	if kind != windowing.Rectangular {
		w, err := windowing.NewSymmetric(name, len(frames[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		window = w
	}

	return spectral.NewSTFT(c.Logger).ComputeFrames(frames, c.NFFT, window)
}

func (c FrameConfig) windowed() bool {
	kind, err := windowing.ParseType(c.Window)
	return c.Window == "" || (err == nil && kind != windowing.Rectangular)
}

// wrap turns a time x frequency matrix computed from sig into a spectrogram
func wrap(sig *transcode.AudioData, img [][]float64, tres, fmin, fres float64, opts ...Option) (*Spectrogram, error) {
	base := []Option{
		WithTime(sig.Start, tres),
		WithFrequency(fmin, fres),
		WithTag(sig.Tag),
		WithTimestamp(sig.Timestamp),
	}
	s, err := New(img, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	s.addAnnotations(sig.Annotations)
	return s, nil
}

// linearSpectrum builds the frequency-linear spectrogram shared by the
// magnitude and power front-ends.
func linearSpectrum(c FrameConfig, sig *transcode.AudioData, kind Kind, toPower, decibel bool) (*Spectrogram, error) {
	res, err := c.spectrum(sig)
	if err != nil {
		return nil, err
	}

	img := res.Magnitude
	if toPower {
		img = spectral.NewPowerSpectrum().ComputeFrames(img, res.NFFT)
	}
	if decibel {
		img = common.MatrixToDecibel(img)
	}

	fres := float64(sig.SampleRate) / 2 / float64(res.FreqBins)
	s, err := wrap(sig, img, c.StepSize, 0, fres, WithKind(kind), WithDecibel(decibel), WithNFFT(res.NFFT))
	if err != nil {
		return nil, err
	}
	s.Hop = int(math.Round(c.StepSize * float64(sig.SampleRate)))
	s.Hamming = c.windowed()
	return s, nil
}

// MagnitudeTransform computes |FFT| of windowed frames
type MagnitudeTransform struct {
	FrameConfig
	Decibel bool
}

func (t *MagnitudeTransform) Kind() Kind { return Magnitude }

func (t *MagnitudeTransform) Build(sig *transcode.AudioData) (*Spectrogram, error) {
	return linearSpectrum(t.FrameConfig, sig, Magnitude, false, t.Decibel)
}

// PowerTransform computes |FFT|^2/NFFT of windowed frames
type PowerTransform struct {
	FrameConfig
	Decibel bool
}

func (t *PowerTransform) Kind() Kind { return Power }

func (t *PowerTransform) Build(sig *transcode.AudioData) (*Spectrogram, error) {
	return linearSpectrum(t.FrameConfig, sig, Power, true, t.Decibel)
}

// MelTransform computes liftered mel cepstra. The filter bank energies (in
// dB) are kept in FilterBanks.
type MelTransform struct {
	FrameConfig
	NumFilters int
	NumCeps    int
	CepLifter  float64
}

func (t *MelTransform) Kind() Kind { return Mel }

func (t *MelTransform) Build(sig *transcode.AudioData) (*Spectrogram, error) {
	res, err := t.spectrum(sig)
	if err != nil {
		return nil, err
	}

	power := spectral.NewPowerSpectrum().ComputeFrames(res.Magnitude, res.NFFT)
	mfcc := spectral.NewMFCC(sig.SampleRate, spectral.MFCCParams{
		NumCoefficients: t.NumCeps,
		NumMelFilters:   t.NumFilters,
		LifterCoeff:     t.CepLifter,
	})
	cepstra, err := mfcc.ComputeFrames(power, res.NFFT)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	fres := float64(sig.SampleRate) / 2 / float64(res.FreqBins)
	s, err := wrap(sig, cepstra.Coefficients, t.StepSize, 0, fres, WithKind(Mel), WithNFFT(res.NFFT))
	if err != nil {
		return nil, err
	}
	s.FilterBanks = cepstra.FilterBanks
	s.Hop = int(math.Round(t.StepSize * float64(sig.SampleRate)))
	s.Hamming = t.windowed()
	return s, nil
}

// CQTTransform computes a constant-Q spectrogram with a logarithmic
// frequency axis starting at FMin.
type CQTTransform struct {
	StepSize      float64 // seconds, rounded up to the hop the octave count allows
	FMin          float64 // Hz
	FMax          float64 // Hz, 0 means the Nyquist frequency
	BinsPerOctave int
	Decibel       bool
}

func (t *CQTTransform) Kind() Kind { return CQT }

// Layout returns the number of octaves and the hop in samples at rate. The
// hop is StepSize rounded up to a multiple of 2^octaves.
func (t *CQTTransform) Layout(rate int) (octaves, hop int, err error) {
	if t.FMin <= 0 || t.BinsPerOctave <= 0 || t.StepSize <= 0 {
		return 0, 0, fmt.Errorf("%w: CQT needs positive fmin, bins per octave and step", ErrInvalidArgument)
	}

	nyquist := 0.5 * float64(rate)
	octaves = int(math.Floor(math.Log2(nyquist / t.FMin)))
	if t.FMax > 0 {
		octaves = min(octaves, int(math.Ceil(math.Log2(t.FMax/t.FMin))))
	}
	if octaves < 1 {
		return 0, 0, fmt.Errorf("%w: no full octave between %v Hz and %v Hz", ErrInvalidArgument, t.FMin, nyquist)
	}

	h0 := 1 << octaves
	hop = int(math.Ceil(t.StepSize*float64(rate)/float64(h0))) * h0
	return octaves, hop, nil
}

func (t *CQTTransform) Build(sig *transcode.AudioData) (*Spectrogram, error) {
	if sig == nil || sig.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: missing audio signal", ErrInvalidArgument)
	}
	if len(sig.PCM) == 0 {
		return nil, ErrEmptySegment
	}

	octaves, hop, err := t.Layout(sig.SampleRate)
	if err != nil {
		return nil, err
	}

	cqt, err := spectral.NewCQT(spectral.CQTParams{
		SampleRate:    sig.SampleRate,
		FMin:          t.FMin,
		NumBins:       octaves * t.BinsPerOctave,
		BinsPerOctave: t.BinsPerOctave,
		Hop:           hop,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	img := cqt.Compute(sig.PCM)
	if t.Decibel {
		img = common.MatrixToDecibel(img)
	}

	tres := float64(hop) / float64(sig.SampleRate)
	s, err := wrap(sig, img, tres, t.FMin, 1/float64(t.BinsPerOctave),
		WithKind(CQT),
		WithDecibel(t.Decibel),
		WithScale(LogScale{BinsPerOctave: t.BinsPerOctave}),
	)
	if err != nil {
		return nil, err
	}
	s.Hop = hop
	return s, nil
}
