package spectrogram

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/spectro/config"
	"github.com/RyanBlaney/spectro/logging"
	"github.com/RyanBlaney/spectro/transcode"
)

// Loader computes spectrograms of WAV files
type Loader struct {
	config    config.SpectrogramConfig
	decoder   *transcode.Decoder
	transform Transform
	logger    logging.Logger
}

// NewLoader validates cfg and prepares a decoder for it. decoderConfig may
// be nil; its target sample rate is replaced by cfg.Rate when set.
func NewLoader(cfg config.SpectrogramConfig, decoderConfig *transcode.DecoderConfig, logger logging.Logger) (*Loader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	dcfg := transcode.DefaultDecoderConfig()
	if decoderConfig != nil {
		*dcfg = *decoderConfig
	}
	if cfg.Rate > 0 {
		dcfg.TargetSampleRate = cfg.Rate
	}
	if err := dcfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	t, err := NewTransform(cfg)
	if err != nil {
		return nil, err
	}

	return &Loader{
		config:    cfg,
		decoder:   transcode.NewDecoder(dcfg),
		transform: t,
		logger: logging.OrGlobal(logger).WithFields(logging.Fields{
			"component": "spectrogram_loader",
		}),
	}, nil
}

// FromWAV computes the spectrogram of the first cfg.Length seconds of path,
// or of the whole file when Length is 0.
func FromWAV(path string, cfg config.SpectrogramConfig) (*Spectrogram, error) {
	l, err := NewLoader(cfg, nil, nil)
	if err != nil {
		return nil, err
	}
	return l.Load(path, 0, cfg.Length)
}

// Load computes the spectrogram of duration seconds of path starting at
// offset; duration 0 reads to the end of the file. Frames are centred on
// offset + i*step, with zeros outside the file, so TMin equals offset. An
// offset at or past the end of the file is ErrEmptySegment.
func (l *Loader) Load(path string, offset, duration float64) (*Spectrogram, error) {
	meta, err := l.decoder.Probe(path)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: negative offset %v", ErrInvalidArgument, offset)
	}
	if offset >= meta.Duration {
		return nil, fmt.Errorf("%s: offset %.3fs beyond %.3fs: %w", path, offset, meta.Duration, ErrEmptySegment)
	}
	if duration <= 0 {
		duration = meta.Duration - offset
	}

	var spec *Spectrogram
	if l.config.Type == config.TypeCQT {
		spec, err = l.loadCQT(path, offset, duration)
	} else {
		spec, err = l.loadFramed(path, meta, offset, duration)
	}
	if err != nil {
		return nil, err
	}

	if l.config.Type != config.TypeCQT && l.config.Type != config.TypeMel {
		spec = l.cutFrequencies(spec)
		if spec == nil {
			return nil, fmt.Errorf("%w: frequency cut leaves no bins", ErrInvalidArgument)
		}
	}

	l.logger.Debug("Spectrogram computed", logging.Fields{
		"path":       path,
		"offset":     offset,
		"type":       spec.Kind.String(),
		"time_bins":  spec.TBins(),
		"freq_bins":  spec.FBins(),
		"resolution": spec.TRes,
	})
	return spec, nil
}

// loadFramed decodes exactly the samples the frames of a linear front-end
// cover: numSteps frames whose centres are step samples apart, the first
// at offset.
func (l *Loader) loadFramed(path string, meta *transcode.AudioMetadata, offset, duration float64) (*Spectrogram, error) {
	rate := meta.SampleRate
	if l.config.Rate > 0 {
		rate = l.config.Rate
	}
	r := float64(rate)

	win := int(math.Round(l.config.WindowSize * r))
	if win%2 != 0 {
		win++
	}
	step := int(math.Round(l.config.StepSize * r))
	if step <= 0 || win <= 0 {
		return nil, fmt.Errorf("%w: window %v s and step %v s at %d Hz", ErrInvalidArgument, l.config.WindowSize, l.config.StepSize, rate)
	}

	seg := int(math.Round(duration * r))
	if seg%step != 0 {
		if !l.config.AdjustDuration {
			return nil, fmt.Errorf("%w: duration %v s is not a multiple of the step %v s", ErrInvalidArgument, duration, l.config.StepSize)
		}
		seg = (seg/step + 1) * step
	}
	numSteps := max(seg/step, 1)
	total := (numSteps-1)*step + win

	first := int(math.Round(offset*r)) - win/2
	lead := max(-first, 0)
	from := float64(max(first, 0)) / r

	sig, err := l.decoder.DecodeSegment(path, from, float64(total-lead)/r)
	if err != nil {
		return nil, err
	}

	pcm := make([]float64, total)
	copy(pcm[lead:], sig.PCM)

	framed := &transcode.AudioData{
		PCM:        pcm,
		SampleRate: sig.SampleRate,
		Channels:   sig.Channels,
		Start:      offset,
		Tag:        path,
	}
	return l.transform.Build(framed)
}

func (l *Loader) loadCQT(path string, offset, duration float64) (*Spectrogram, error) {
	sig, err := l.decoder.DecodeSegment(path, offset, duration)
	if err != nil {
		return nil, err
	}
	sig.Start = offset
	return l.transform.Build(sig)
}

// cutFrequencies applies the configured frequency cuts
func (l *Loader) cutFrequencies(s *Spectrogram) *Spectrogram {
	var opts []CropOption
	if l.config.LowFrequencyCut > 0 {
		opts = append(opts, FreqLow(l.config.LowFrequencyCut))
	}
	if l.config.HighFrequencyCut > 0 {
		opts = append(opts, FreqHigh(l.config.HighFrequencyCut))
	}
	if len(opts) == 0 {
		return s
	}
	return s.Crop(opts...)
}

// LoadSegments cuts path into spectrograms of cfg.Length seconds whose
// starts are Length*(1-Overlap) apart. With Length 0 the whole file is one
// spectrogram.
func (l *Loader) LoadSegments(path string) ([]*Spectrogram, error) {
	if l.config.Length <= 0 {
		s, err := l.Load(path, 0, 0)
		if err != nil {
			return nil, err
		}
		return []*Spectrogram{s}, nil
	}

	meta, err := l.decoder.Probe(path)
	if err != nil {
		return nil, err
	}

	advance := l.config.Length * (1 - l.config.Overlap)
	var out []*Spectrogram
	for i := 0; ; i++ {
		offset := float64(i) * advance
		if offset >= meta.Duration {
			break
		}
		s, err := l.Load(path, offset, l.config.Length)
		if err != nil {
			return out, fmt.Errorf("segment at %.3fs: %w", offset, err)
		}
		out = append(out, s)
	}

	l.logger.Info("Audio file segmented", logging.Fields{
		"path":     path,
		"segments": len(out),
		"length":   l.config.Length,
	})
	return out, nil
}
