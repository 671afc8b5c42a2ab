package spectrogram

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/RyanBlaney/spectro/annotation"
)

// SegmentOptions configures Segment. Number takes precedence over Length.
type SegmentOptions struct {
	Number   int     // split into this many equal segments
	Length   float64 // or into segments of this many seconds
	Pad      bool    // zero-pad a final partial segment instead of dropping it
	Overlap  float64 // fractional overlap of consecutive segments, Length only, ignored with Pad
	KeepTime bool    // keep the time axis of s instead of starting each segment at 0
}

// Segment splits s into equal-length pieces along the time axis. With
// Number the pieces have floor(T/Number) bins, or ceil with Pad. With
// Length the piece count is floor(T/bins), or ceil with Pad.
func (s *Spectrogram) Segment(opts SegmentOptions) []*Spectrogram {
	nt := s.TBins()
	round := math.Floor
	if opts.Pad {
		round = math.Ceil
	}

	var number, bins, step int
	switch {
	case opts.Number > 1:
		number = opts.Number
		bins = int(round(float64(nt) / float64(number)))
		step = bins
	case opts.Length > 0 && math.Abs(opts.Length-s.Duration()) > binEpsilon:
		bins = int(math.Round(opts.Length / s.TRes))
		if bins <= 0 {
			return nil
		}
		number = int(round(float64(nt) / float64(bins)))
		step = bins
		if opts.Overlap > 0 && !opts.Pad {
			step = max(1, int((1-opts.Overlap)*float64(bins)))
			number = 0
			if nt >= bins {
				number = (nt-bins)/step + 1
			}
		}
	default:
		out := s.Clone()
		if !opts.KeepTime {
			out = s.Crop(ResetTime())
		}
		return []*Spectrogram{out}
	}

	if bins <= 0 || number <= 0 {
		return nil
	}

	boxes := make([]annotation.Box, number)
	for i := range boxes {
		t1 := float64(i * step)
		boxes[i] = annotation.Box{TStart: t1, TEnd: t1 + float64(bins), FStart: 0, FEnd: float64(s.FBins())}
	}

	return s.clipSegments(boxes, ClipOptions{PadTime: opts.Pad, KeepTime: opts.KeepTime, InBins: true})
}

// ClipOptions configures Clip
type ClipOptions struct {
	PadTime  bool // pad boxes reaching beyond s with zeros
	PadFreq  bool // keep the full frequency axis
	KeepTime bool // keep the time axis of s instead of starting each clip at 0
	InBins   bool // boxes hold bin numbers instead of seconds and Hz
}

func (o ClipOptions) cropOptions(b annotation.Box) []CropOption {
	opts := []CropOption{TimeRange(b.TStart, b.TEnd), FreqRange(b.FStart, b.FEnd)}
	if o.PadTime {
		opts = append(opts, PadTime())
	}
	if o.PadFreq {
		opts = append(opts, PadFreq())
	}
	if !o.KeepTime {
		opts = append(opts, ResetTime())
	}
	if o.InBins {
		opts = append(opts, InBins())
	}
	return opts
}

// Clip crops out every box, in chronological order, and returns the clips
// together with the remainder of s: the time bins not covered by any box,
// joined in order and starting at t=0. The remainder is nil when nothing
// is left. Boxes that do not overlap s produce no clip.
func (s *Spectrogram) Clip(boxes []annotation.Box, opts ClipOptions) ([]*Spectrogram, *Spectrogram) {
	sorted := sortBoxes(boxes)
	return s.clipSegments(sorted, opts), s.complement(sorted, opts.InBins)
}

func sortBoxes(boxes []annotation.Box) []annotation.Box {
	sorted := slices.Clone(boxes)
	slices.SortStableFunc(sorted, func(a, b annotation.Box) int {
		switch {
		case a.TStart < b.TStart:
			return -1
		case a.TStart > b.TStart:
			return 1
		default:
			return 0
		}
	})
	return sorted
}

func (s *Spectrogram) clipSegments(boxes []annotation.Box, opts ClipOptions) []*Spectrogram {
	var out []*Spectrogram
	for _, b := range boxes {
		if clip := s.Crop(opts.cropOptions(b)...); clip != nil {
			out = append(out, clip)
		}
	}
	return out
}

// complement joins the time bins of s outside the (sorted) boxes
func (s *Spectrogram) complement(boxes []annotation.Box, inBins bool) *Spectrogram {
	nt := s.TBins()

	type span struct{ lo, hi int }
	var gaps []span
	covered := 0
	for _, b := range boxes {
		lo, hi := int(b.TStart), int(b.TEnd)
		if !inBins {
			lo = s.FindTimeBin(b.TStart, true, true).Index
			hi = s.FindTimeBin(b.TEnd, true, false).Index + 1
		}
		lo, hi = max(lo, 0), min(hi, nt)
		if lo > covered {
			gaps = append(gaps, span{covered, lo})
		}
		covered = max(covered, hi)
	}
	if covered < nt {
		gaps = append(gaps, span{covered, nt})
	}

	out := s.Clone()
	out.Image = nil
	out.TimeVector = nil
	out.FileVector = nil
	out.Annotations = nil
	out.TMin = 0

	for _, g := range gaps {
		offset := float64(len(out.Image)) * s.TRes
		gapStart := s.TimeBinLow(g.lo)
		kept := s.Annotations.Crop(gapStart, s.TimeBinLow(g.hi), math.Inf(-1), math.Inf(1))
		out.Annotations = out.Annotations.Merge(kept.Shift(offset - gapStart))

		for i := g.lo; i < g.hi; i++ {
			out.Image = append(out.Image, slices.Clone(s.Image[i]))
		}
		out.TimeVector = append(out.TimeVector, s.TimeVector[g.lo:g.hi]...)
		out.FileVector = append(out.FileVector, s.FileVector[g.lo:g.hi]...)
	}

	if len(out.Image) == 0 {
		return nil
	}
	out.FileVector, out.Files = compactFiles(out.FileVector, s.Files)
	return out
}

// ExtractOptions configures Extract
type ExtractOptions struct {
	Length    float64    // extend or divide boxes to exactly this many seconds
	MinLength float64    // or extend boxes to at least this many seconds
	Center    bool       // centre boxes in their segments instead of placing them randomly
	PadFreq   bool       // keep the full frequency axis
	KeepTime  bool       // keep the time axis of s
	Rand      *rand.Rand // source for random placement, nil uses the global source
}

// Extract cuts out the regions annotated with label and returns them along
// with what remains of s once those regions and their annotations are
// removed. Boxes are first brought to Length (or at least MinLength) and
// every segment of a given box length gets the same number of bins.
func (s *Spectrogram) Extract(label int, opts ExtractOptions) ([]*Spectrogram, *Spectrogram) {
	boxes, indices := s.Annotations.Select(label)
	switch {
	case opts.Length > 0:
		boxes = annotation.EnsureLength(boxes, opts.Length, opts.Center, opts.Rand)
	case opts.MinLength > 0:
		boxes = annotation.Stretch(boxes, opts.MinLength, opts.Center, opts.Rand)
	}

	binBoxes := make([]annotation.Box, len(boxes))
	for i, b := range boxes {
		numBins := int(math.Round(b.Duration() / s.TRes))
		t1 := s.FindTimeBin(b.TStart, false, true).Index
		binBoxes[i] = annotation.Box{
			TStart: float64(t1),
			TEnd:   float64(t1 + numBins),
			FStart: float64(s.FindFreqBin(b.FStart, false, true).Index),
			FEnd:   float64(s.FindFreqBin(b.FEnd, false, false).Index + 1),
		}
	}
	binBoxes = sortBoxes(binBoxes)

	segments := s.clipSegments(binBoxes, ClipOptions{
		PadTime:  true,
		PadFreq:  opts.PadFreq,
		KeepTime: opts.KeepTime,
		InBins:   true,
	})

	rest := s.Clone()
	rest.Annotations = s.Annotations.Delete(indices...)
	return segments, rest.complement(binBoxes, true)
}
