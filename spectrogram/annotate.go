package spectrogram

import (
	"math"

	"github.com/RyanBlaney/spectro/annotation"
)

// Annotate returns a copy of s with the given annotations added. Boxes
// without an upper frequency are closed at FMax and every box is clipped
// to the time extent of s.
func (s *Spectrogram) Annotate(labels []int, boxes []annotation.Box) (*Spectrogram, error) {
	set, err := annotation.Annotate(labels, boxes)
	if err != nil {
		return nil, err
	}
	out := s.Clone()
	out.addAnnotations(set)
	return out, nil
}

// addAnnotations merges set into s in place
func (s *Spectrogram) addAnnotations(set annotation.Set) {
	merged := s.Annotations.Merge(set).ResolveInf(s.FMax())
	s.Annotations = merged.Crop(s.TMin, s.TMax(), math.Inf(-1), math.Inf(1))
}

// LabelVector returns one value per time bin: 1 where a box with label
// covers the bin and 0 elsewhere.
func (s *Spectrogram) LabelVector(label int) []float64 {
	y := make([]float64, s.TBins())
	boxes, _ := s.Annotations.Select(label)
	for _, b := range boxes {
		t1 := s.FindTimeBin(b.TStart, true, true).Index
		t2 := min(s.FindTimeBin(b.TEnd, true, false).Index+1, s.TBins())
		for i := t1; i < t2; i++ {
			y[i] = 1
		}
	}
	return y
}
