package spectral

import "math"

// MakeFrames splits x into frames of winlen samples, consecutive frames
// shifted by winstep samples.
//
// Without zero padding trailing samples that do not fill a frame are dropped,
// and a signal shorter than winlen becomes a single frame of the whole signal.
// With zero padding the signal is extended with zeros so that every sample
// lands in a frame: there are ceil(len(x)/winstep) frames.
func MakeFrames(x []float64, winlen, winstep int, zeroPadding bool) [][]float64 {
	if winlen <= 0 || winstep <= 0 || len(x) == 0 {
		return nil
	}

	total := len(x)
	var numFrames int
	padded := x

	if zeroPadding {
		numFrames = int(math.Ceil(float64(total) / float64(winstep)))
		zeros := max(0, (numFrames-1)*winstep+winlen-total)
		if zeros > 0 {
			padded = make([]float64, total+zeros)
			copy(padded, x)
		}
	} else if winlen > total {
		numFrames = 1
		winlen = total
	} else {
		numFrames = (total-winlen)/winstep + 1
	}

	frames := make([][]float64, numFrames)
	for i := range frames {
		start := i * winstep
		frame := make([]float64, winlen)
		copy(frame, padded[start:start+winlen])
		frames[i] = frame
	}
	return frames
}
