package transcode

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/RyanBlaney/spectro/algorithms/common"
	"github.com/RyanBlaney/spectro/logging"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var (
	// ErrInvalidWAV is returned for files that are not RIFF/WAVE PCM
	ErrInvalidWAV = errors.New("invalid wav file")
	// ErrEmptySegment is returned when the requested segment holds no samples
	ErrEmptySegment = errors.New("selected audio segment is empty")
)

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	TargetSampleRate int           `json:"target_sample_rate"` // 0 keeps the source rate
	Channel          int           `json:"channel"`            // Source channel to extract
	ResampleQuality  string        `json:"resample_quality"`   // "fast" (linear) or "high" (Akima spline)
	MaxDuration      time.Duration `json:"max_duration"`       // 0 means no limit
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 0,
		Channel:          0,
		ResampleQuality:  "fast",
		MaxDuration:      0,
	}
}

// Validate checks the decoder configuration
func (c *DecoderConfig) Validate() error {
	if c.TargetSampleRate < 0 {
		return fmt.Errorf("target sample rate must not be negative: %d", c.TargetSampleRate)
	}
	if c.Channel < 0 {
		return fmt.Errorf("channel must not be negative: %d", c.Channel)
	}
	switch c.ResampleQuality {
	case "", "fast", "high":
	default:
		return fmt.Errorf("unknown resample quality: %q", c.ResampleQuality)
	}
	if c.MaxDuration < 0 {
		return fmt.Errorf("max duration must not be negative: %v", c.MaxDuration)
	}
	return nil
}

// AudioMetadata holds the properties of a WAV file
type AudioMetadata struct {
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	BitDepth   int     `json:"bit_depth"`
	Duration   float64 `json:"duration"` // seconds
	Frames     int     `json:"frames"`
}

// Decoder decodes WAV files into AudioData
type Decoder struct {
	config *DecoderConfig
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{config: config}
}

// Probe reads the header of a WAV file
func (d *Decoder) Probe(filename string) (*AudioMetadata, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: %w", filename, ErrInvalidWAV)
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%s: failed to locate PCM data: %w", filename, err)
	}

	return metadataFrom(dec), nil
}

func metadataFrom(dec *wav.Decoder) *AudioMetadata {
	meta := &AudioMetadata{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}
	bytesPerFrame := meta.Channels * ((meta.BitDepth-1)/8 + 1)
	if bytesPerFrame > 0 {
		meta.Frames = dec.PCMSize / bytesPerFrame
	}
	if meta.SampleRate > 0 {
		meta.Duration = float64(meta.Frames) / float64(meta.SampleRate)
	}
	return meta
}

// DecodeFile decodes a whole WAV file
func (d *Decoder) DecodeFile(filename string) (*AudioData, error) {
	return d.DecodeSegment(filename, 0, 0)
}

// DecodeSegment decodes duration seconds of one channel starting offset
// seconds into the file, resampled to the configured rate. A duration of zero
// reads to the end of the file. An offset at or past the end of the file is
// ErrEmptySegment.
func (d *Decoder) DecodeSegment(filename string, offset, duration float64) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "DecodeSegment",
		"filename":  filename,
	})

	logger.Debug("Starting audio file decode", logging.Fields{"offset": offset, "duration": duration})

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: %w", filename, ErrInvalidWAV)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		logger.Error(err, "Failed to read PCM data")
		return nil, fmt.Errorf("%s: failed to read PCM data: %w", filename, err)
	}

	meta := metadataFrom(dec)
	logger.Debug("Audio metadata detected", logging.Fields{
		"input_sample_rate": meta.SampleRate,
		"input_channels":    meta.Channels,
		"input_bit_depth":   meta.BitDepth,
	})

	if d.config.Channel >= meta.Channels {
		return nil, fmt.Errorf("%s: channel %d requested but file has %d channels", filename, d.config.Channel, meta.Channels)
	}

	samples := channelSamples(buf, d.config.Channel, meta.BitDepth)

	offset = math.Max(0, offset)
	start := int(math.Round(offset * float64(meta.SampleRate)))
	if start >= len(samples) {
		return nil, fmt.Errorf("%s: offset %.3fs beyond %.3fs: %w", filename, offset, meta.Duration, ErrEmptySegment)
	}

	if d.config.MaxDuration > 0 && (duration <= 0 || duration > d.config.MaxDuration.Seconds()) {
		duration = d.config.MaxDuration.Seconds()
	}

	stop := len(samples)
	if duration > 0 {
		stop = min(stop, start+int(math.Round(duration*float64(meta.SampleRate))))
	}
	samples = samples[start:stop]

	rate := meta.SampleRate
	if target := d.config.TargetSampleRate; target > 0 && target != rate {
		samples = common.ResampleSignal(samples, rate, target, d.resampleQuality())
		rate = target
	}

	audioData := &AudioData{
		PCM:        samples,
		SampleRate: rate,
		Channels:   meta.Channels,
		Start:      float64(start) / float64(meta.SampleRate),
		Tag:        filename,
	}

	logger.Debug("Audio decode completed", logging.Fields{
		"samples":     len(audioData.PCM),
		"sample_rate": audioData.SampleRate,
		"duration":    audioData.WallDuration().String(),
	})

	return audioData, nil
}

func (d *Decoder) resampleQuality() common.ResampleQuality {
	if d.config.ResampleQuality == "high" {
		return common.ResampleSpline
	}
	return common.ResampleLinear
}

// channelSamples extracts one channel of an interleaved integer buffer and
// scales it to [-1, 1]
func channelSamples(buf *audio.IntBuffer, channel, bitDepth int) []float64 {
	numChans := 1
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		numChans = buf.Format.NumChannels
	}

	scale := 1.0
	if bitDepth > 1 {
		scale = 1.0 / math.Pow(2, float64(bitDepth-1))
	}

	n := len(buf.Data) / numChans
	out := make([]float64, n)
	for i := range out {
		v := float64(buf.Data[i*numChans+channel])
		if bitDepth == 8 {
			// 8-bit WAV is unsigned
			v -= 128
		}
		out[i] = v * scale
	}
	return out
}
