package transcode

import (
	"math"
	"time"

	"github.com/RyanBlaney/spectro/algorithms/spectral"
	"github.com/RyanBlaney/spectro/annotation"
)

// AudioData represents a decoded mono audio signal
type AudioData struct {
	PCM         []float64      `json:"-"` // Samples in [-1, 1]
	SampleRate  int            `json:"sample_rate"`
	Channels    int            `json:"channels"`  // Channel count of the source
	Start       float64        `json:"start"`     // Offset of PCM[0] in the source, in seconds
	Tag         string         `json:"tag"`       // Source identifier, usually the file name
	Timestamp   time.Time      `json:"timestamp"` // Wall-clock time of PCM[0], zero if unknown
	Annotations annotation.Set `json:"annotations,omitempty"`
}

// NewAudioData wraps samples taken at rate Hz
func NewAudioData(pcm []float64, rate int, tag string) *AudioData {
	return &AudioData{
		PCM:        pcm,
		SampleRate: rate,
		Channels:   1,
		Tag:        tag,
	}
}

// Duration returns the signal length in seconds
func (a *AudioData) Duration() float64 {
	if a.SampleRate <= 0 {
		return 0
	}
	return float64(len(a.PCM)) / float64(a.SampleRate)
}

// WallDuration returns the signal length as a time.Duration
func (a *AudioData) WallDuration() time.Duration {
	return time.Duration(a.Duration() * float64(time.Second))
}

// WindowSamples converts a window length in seconds into samples, rounding to
// the nearest sample and, when even is set, up to an even count.
func (a *AudioData) WindowSamples(seconds float64, even bool) int {
	n := int(math.Round(seconds * float64(a.SampleRate)))
	if even && n%2 != 0 {
		n++
	}
	return n
}

// MakeFrames splits the signal into frames of winlen seconds taken every
// winstep seconds. An odd frame length is rounded up to even samples when
// evenWinlen is set.
func (a *AudioData) MakeFrames(winlen, winstep float64, evenWinlen, zeroPadding bool) [][]float64 {
	return spectral.MakeFrames(
		a.PCM,
		a.WindowSamples(winlen, evenWinlen),
		a.WindowSamples(winstep, false),
		zeroPadding,
	)
}
