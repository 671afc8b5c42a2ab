package spectrogram

import (
	"math"
	"slices"

	"github.com/RyanBlaney/spectro/algorithms/common"
)

type cropRequest struct {
	tlow, thigh, flow, fhigh         float64
	hasTLow, hasTHigh                bool
	hasFLow, hasFHigh                bool
	padTime, padFreq                 bool
	maxTimePad                       float64
	hasMaxTimePad, resetTime, inBins bool
}

// CropOption configures Crop
type CropOption func(*cropRequest)

// TimeRange crops the time axis to [lo, hi]
func TimeRange(lo, hi float64) CropOption {
	return func(r *cropRequest) {
		TimeLow(lo)(r)
		TimeHigh(hi)(r)
	}
}

// TimeLow sets the lower time cut
func TimeLow(t float64) CropOption {
	return func(r *cropRequest) {
		r.tlow, r.hasTLow = t, true
	}
}

// TimeHigh sets the upper time cut
func TimeHigh(t float64) CropOption {
	return func(r *cropRequest) {
		r.thigh, r.hasTHigh = t, true
	}
}

// FreqRange crops the frequency axis to [lo, hi]
func FreqRange(lo, hi float64) CropOption {
	return func(r *cropRequest) {
		FreqLow(lo)(r)
		FreqHigh(hi)(r)
	}
}

// FreqLow sets the lower frequency cut
func FreqLow(f float64) CropOption {
	return func(r *cropRequest) {
		r.flow, r.hasFLow = f, true
	}
}

// FreqHigh sets the upper frequency cut
func FreqHigh(f float64) CropOption {
	return func(r *cropRequest) {
		r.fhigh, r.hasFHigh = f, true
	}
}

// PadTime zero-pads the result so it spans the requested time window even
// where s does not cover it.
func PadTime() CropOption {
	return func(r *cropRequest) {
		r.padTime = true
	}
}

// PadFreq keeps the full frequency axis, zeroing the bins outside the cut.
func PadFreq() CropOption {
	return func(r *cropRequest) {
		r.padFreq = true
	}
}

// MaxTimePadding makes a padded crop return nil when more than frac of the
// requested time window lies outside s.
func MaxTimePadding(frac float64) CropOption {
	return func(r *cropRequest) {
		r.maxTimePad, r.hasMaxTimePad = frac, true
	}
}

// ResetTime moves the time axis of the result to start at 0
func ResetTime() CropOption {
	return func(r *cropRequest) {
		r.resetTime = true
	}
}

// InBins interprets the cuts as bin numbers: [low, high) on both axes
func InBins() CropOption {
	return func(r *cropRequest) {
		r.inBins = true
	}
}

// Crop cuts s along time, frequency or both. Both the lower and the upper
// bin touched by a physical cut are included. The result is nil when the
// window does not overlap s, or when a padded crop exceeds MaxTimePadding.
// Annotations are clipped to the window and tracking data follows the image.
func (s *Spectrogram) Crop(opts ...CropOption) *Spectrogram {
	var r cropRequest
	for _, opt := range opts {
		opt(&r)
	}

	nt, nf := s.TBins(), s.FBins()

	// bin window
	t1, t2, f1, f2 := 0, nt, 0, nf
	switch {
	case r.inBins:
		if r.hasTLow {
			t1 = int(r.tlow)
		}
		if r.hasTHigh {
			t2 = int(r.thigh)
		}
		if r.hasFLow {
			f1 = int(r.flow)
		}
		if r.hasFHigh {
			f2 = int(r.fhigh)
		}
	default:
		if r.hasTLow {
			t1 = s.FindTimeBin(r.tlow, false, true).Index
		}
		if r.hasTHigh {
			t2 = s.FindTimeBin(r.thigh, false, false).Index + 1
		}
		if r.hasFLow {
			f1 = s.FindFreqBin(r.flow, false, true).Index
		}
		if r.hasFHigh {
			f2 = s.FindFreqBin(r.fhigh, false, false).Index + 1
		}
	}

	// physical window, unbounded where no cut was given
	tlo, thi := math.Inf(-1), math.Inf(1)
	flo, fhi := math.Inf(-1), math.Inf(1)
	switch {
	case r.inBins:
		if r.hasTLow {
			tlo = s.TimeBinLow(t1)
		}
		if r.hasTHigh {
			thi = s.TimeBinLow(t2)
		}
		if r.hasFLow {
			flo = s.FreqBinLow(f1)
		}
		if r.hasFHigh {
			fhi = s.FreqBinLow(f2)
		}
	default:
		if r.hasTLow {
			tlo = r.tlow
		}
		if r.hasTHigh {
			thi = r.thigh
		}
		if r.hasFLow {
			flo = r.flow
		}
		if r.hasFHigh {
			fhi = r.fhigh
		}
	}

	if r.padTime && r.hasMaxTimePad && !math.IsInf(tlo, 0) && !math.IsInf(thi, 0) && thi > tlo {
		padding := (math.Max(thi-s.TMax(), 0) + math.Max(s.TMin-tlo, 0)) / (thi - tlo)
		if padding > r.maxTimePad {
			return nil
		}
	}

	if t2 <= t1 {
		return nil
	}

	t1r, t2r := max(t1, 0), min(t2, nt)
	f1r, f2r := max(f1, 0), min(f2, nf)

	rows := t2r - t1r
	if r.padTime {
		rows = t2 - t1
	}
	cols := f2r - f1r
	if r.padFreq {
		cols = nf
	}
	if rows <= 0 || cols <= 0 || (r.padFreq && f2r <= f1r) {
		return nil
	}

	img := common.Zeros(rows, cols)
	rowOff := 0
	if r.padTime {
		rowOff = max(-t1, 0)
	}
	colOff := 0
	if r.padFreq {
		colOff = f1r
	}
	for i := t1r; i < t2r; i++ {
		copy(img[rowOff+i-t1r][colOff:], s.Image[i][f1r:f2r])
	}

	out := s.Clone()
	out.Image = img
	out.Annotations = s.Annotations.Crop(tlo, thi, flo, fhi)
	out.TimeVector, out.FileVector, out.Files = s.cropTracking(t1, t2, r.padTime)

	if !r.padFreq {
		out.FMin = s.FreqBinLow(f1r)
		out.FCropLow += f1r
		out.FCropHigh += nf - f2r
		if s.FLabels != nil {
			out.FLabels = slices.Clone(s.FLabels[f1r:f2r])
		}
	}

	start := t1r
	if r.padTime {
		start = t1
	}
	if r.resetTime {
		dt := s.TimeBinLow(start)
		out.TMin = 0
		out.Annotations = out.Annotations.Shift(-dt)
	} else {
		out.TMin = s.TimeBinLow(start)
	}

	return out
}
