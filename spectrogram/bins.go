package spectrogram

import (
	"math"

	"github.com/RyanBlaney/spectro/algorithms/common"
)

// binEpsilon decides when a coordinate sits on a bin edge
const binEpsilon = 1e-12

// Position tells where a coordinate fell relative to the axis
type Position int

const (
	Within Position = iota
	Below
	Above
)

// Bin is the result of mapping a coordinate onto an axis of Count bins.
//
// Index is floor((x-min)/dx) and may lie outside [0, Count) so that callers
// can count padding bins; with truncation it is clamped to [0, Count-1].
type Bin struct {
	Index    int
	Position Position
	Count    int
}

// Sentinel returns Index for coordinates inside the axis, -1 below it and
// Count above it.
func (b Bin) Sentinel() int {
	switch b.Position {
	case Below:
		return -1
	case Above:
		return b.Count
	default:
		return b.Index
	}
}

// FindBin maps x onto bins equal bins spanning [min, max). A value on a bin
// edge goes to the upper bin when roundup is set and to the lower bin
// otherwise. With truncate the index is clamped to [0, bins-1].
func FindBin(x float64, bins int, min, max float64, truncate, roundup bool) Bin {
	dx := (max - min) / float64(bins)
	if math.Abs(dx-math.Trunc(dx)) < binEpsilon {
		dx = math.Trunc(dx)
	}
	return locate((x-min)/dx, bins, truncate, roundup)
}

// locate converts a fractional bin coordinate into a Bin
func locate(b float64, bins int, truncate, roundup bool) Bin {
	res := Bin{Count: bins}

	switch {
	case math.IsInf(b, -1) || math.IsNaN(b):
		res.Position = Below
		res.Index = -1
	case math.IsInf(b, 1):
		res.Position = Above
		res.Index = bins
	default:
		frac := b - math.Floor(b)
		if frac < binEpsilon || math.Abs(frac-1) < binEpsilon {
			if roundup {
				b += binEpsilon
			} else {
				b -= binEpsilon
			}
		}
		res.Index = int(math.Floor(b))
		switch {
		case b < 0:
			res.Position = Below
		case b >= float64(bins):
			res.Position = Above
		}
	}

	if truncate {
		res.Index = common.ClampInt(res.Index, 0, bins-1)
	}
	return res
}

// FrequencyScale maps frequencies onto bins. It is injected into a
// spectrogram so that linear and logarithmic axes share the bookkeeping.
type FrequencyScale interface {
	FindBin(f float64, bins int, fmin, fres float64, truncate, roundup bool) Bin
	// BinLow returns the lower edge of bin
	BinLow(bin int, fmin, fres float64) float64
}

// LinearScale spaces bins fres Hz apart
type LinearScale struct{}

func (LinearScale) FindBin(f float64, bins int, fmin, fres float64, truncate, roundup bool) Bin {
	return FindBin(f, bins, fmin, fmin+fres*float64(bins), truncate, roundup)
}

func (LinearScale) BinLow(bin int, fmin, fres float64) float64 {
	return fmin + float64(bin)*fres
}

// LogScale spaces bins geometrically: bin = BinsPerOctave*log2(f/fmin)
type LogScale struct {
	BinsPerOctave int
}

func (l LogScale) FindBin(f float64, bins int, fmin, _ float64, truncate, roundup bool) Bin {
	b := math.Inf(-1)
	if f > 0 && fmin > 0 {
		b = float64(l.BinsPerOctave) * math.Log2(f/fmin)
	}
	return locate(b, bins, truncate, roundup)
}

func (l LogScale) BinLow(bin int, fmin, _ float64) float64 {
	return fmin * math.Pow(2, float64(bin)/float64(l.BinsPerOctave))
}

// FindTimeBin maps a time in seconds onto the time axis
func (s *Spectrogram) FindTimeBin(t float64, truncate, roundup bool) Bin {
	return FindBin(t, s.TBins(), s.TMin, s.TMax(), truncate, roundup)
}

// FindFreqBin maps a frequency in Hz onto the frequency axis
func (s *Spectrogram) FindFreqBin(f float64, truncate, roundup bool) Bin {
	return s.scale().FindBin(f, s.FBins(), s.FMin, s.FRes, truncate, roundup)
}

// TimeBinLow returns the start time of bin
func (s *Spectrogram) TimeBinLow(bin int) float64 {
	return s.TMin + float64(bin)*s.TRes
}

// FreqBinLow returns the lower frequency of bin
func (s *Spectrogram) FreqBinLow(bin int) float64 {
	return s.scale().BinLow(bin, s.FMin, s.FRes)
}
