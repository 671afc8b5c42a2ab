package spectrogram

import (
	"slices"

	"github.com/RyanBlaney/spectro/algorithms/common"
)

// compositeTag names the placeholder source of composited spectrograms
const compositeTag = "composite"

// resetTracking attributes every time bin to a single source, with source
// times following the time axis.
func (s *Spectrogram) resetTracking(tag string) {
	n := s.TBins()
	s.TimeVector = make([]float64, n)
	for i := range s.TimeVector {
		s.TimeVector[i] = s.TMin + float64(i)*s.TRes
	}
	s.FileVector = make([]int, n)
	s.Files = []string{tag}
}

// cropTracking slices the tracking vectors to bins [b1, b2). With pad, bins
// outside the current range are included with time 0 and file id 0;
// otherwise the range is intersected with the valid bins.
func (s *Spectrogram) cropTracking(b1, b2 int, pad bool) ([]float64, []int, []string) {
	n := len(s.TimeVector)
	lo, hi := common.ClampInt(b1, 0, n), min(b2, n)
	if hi < lo {
		hi = lo
	}

	var times []float64
	var files []int
	if pad {
		front := min(max(-b1, 0), max(b2-b1, 0))
		back := max(b2-b1-front-(hi-lo), 0)
		times = make([]float64, front, front+(hi-lo)+back)
		files = make([]int, front, front+(hi-lo)+back)
		times = append(times, s.TimeVector[lo:hi]...)
		files = append(files, s.FileVector[lo:hi]...)
		times = append(times, make([]float64, back)...)
		files = append(files, make([]int, back)...)
	} else {
		times = slices.Clone(s.TimeVector[lo:hi])
		files = slices.Clone(s.FileVector[lo:hi])
	}

	files, dict := compactFiles(files, s.Files)
	return times, files, dict
}

// compactFiles drops the entries of dict that ids no longer references and
// renumbers the rest contiguously from 0, keeping their order.
func compactFiles(ids []int, dict []string) ([]int, []string) {
	used := make([]bool, len(dict))
	for _, id := range ids {
		if id >= 0 && id < len(dict) {
			used[id] = true
		}
	}

	remap := make([]int, len(dict))
	var out []string
	for id, name := range dict {
		if used[id] {
			remap[id] = len(out)
			out = append(out, name)
		}
	}

	renumbered := make([]int, len(ids))
	for i, id := range ids {
		if id >= 0 && id < len(dict) {
			renumbered[i] = remap[id]
		}
	}
	return renumbered, out
}

// mergeFiles returns the union of dict and other (by name) and the
// translation from ids in other to ids in the union.
func mergeFiles(dict, other []string) ([]string, []int) {
	merged := slices.Clone(dict)
	translate := make([]int, len(other))
	for id, name := range other {
		if idx := slices.Index(merged, name); idx >= 0 {
			translate[id] = idx
			continue
		}
		translate[id] = len(merged)
		merged = append(merged, name)
	}
	return merged, translate
}

// resampleTracking maps tracking onto m bins using the nearest source bin
func resampleTracking(times []float64, files []int, m int) ([]float64, []int) {
	n := len(times)
	outT := make([]float64, m)
	outF := make([]int, m)
	if n == 0 {
		return outT, outF
	}
	for i := range m {
		src := min(int((float64(i)+0.5)*float64(n)/float64(m)), n-1)
		outT[i] = times[src]
		outF[i] = files[src]
	}
	return outT, outF
}
