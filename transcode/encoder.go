package transcode

import (
	"fmt"
	"math"
	"os"

	"github.com/RyanBlaney/spectro/algorithms/common"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavFormatPCM is the WAVE_FORMAT_PCM format tag
const wavFormatPCM = 1

// EncodeFile writes a as a mono PCM WAV file with the given bit depth
func EncodeFile(filename string, a *AudioData, bitDepth int) error {
	if a.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", a.SampleRate)
	}
	switch bitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}

	enc := wav.NewEncoder(f, a.SampleRate, bitDepth, 1, wavFormatPCM)

	full := math.Pow(2, float64(bitDepth-1)) - 1
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: a.SampleRate},
		Data:           make([]int, len(a.PCM)),
		SourceBitDepth: bitDepth,
	}
	for i, v := range a.PCM {
		buf.Data[i] = int(math.Round(common.Clamp(v, -1, 1) * full))
	}

	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finalize %s: %w", filename, err)
	}
	return f.Close()
}
