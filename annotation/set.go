// Package annotation keeps labelled time-frequency boxes consistent with the
// crops, shifts and rescales applied to the data they annotate.
package annotation

import (
	"fmt"
	"math"
	"slices"
)

// Annotation pairs a label with a box.
type Annotation struct {
	Label int `json:"label"`
	Box   Box `json:"box"`
}

// Set is an ordered collection of annotations. Methods never modify the
// receiver; they return a new Set.
type Set []Annotation

// Annotate builds a set from parallel label and box sequences.
func Annotate(labels []int, boxes []Box) (Set, error) {
	if len(labels) != len(boxes) {
		return nil, fmt.Errorf("got %d labels but %d boxes", len(labels), len(boxes))
	}
	s := make(Set, len(labels))
	for i := range labels {
		s[i] = Annotation{Label: labels[i], Box: boxes[i]}
	}
	return s, nil
}

// Clone returns a copy of s.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}

// Add appends one annotation.
func (s Set) Add(label int, box Box) Set {
	return append(s.Clone(), Annotation{Label: label, Box: box})
}

// Merge appends all annotations of other.
func (s Set) Merge(other Set) Set {
	out := make(Set, 0, len(s)+len(other))
	out = append(out, s...)
	return append(out, other...)
}

// Labels returns the labels in order.
func (s Set) Labels() []int {
	out := make([]int, len(s))
	for i, a := range s {
		out[i] = a.Label
	}
	return out
}

// Boxes returns the boxes in order.
func (s Set) Boxes() []Box {
	out := make([]Box, len(s))
	for i, a := range s {
		out[i] = a.Box
	}
	return out
}

// Crop clips every box to [tlow, thigh) x [flow, fhigh) and drops boxes
// outside it. Use math.Inf for an unbounded side.
func (s Set) Crop(tlow, thigh, flow, fhigh float64) Set {
	out := make(Set, 0, len(s))
	for _, a := range s {
		if b, ok := a.Box.Clip(tlow, thigh, flow, fhigh); ok {
			out = append(out, Annotation{Label: a.Label, Box: b})
		}
	}
	return out
}

// Shift moves every box by dt seconds.
func (s Set) Shift(dt float64) Set {
	out := s.Clone()
	for i := range out {
		out[i].Box = out[i].Box.Shift(dt)
	}
	return out
}

// Scale multiplies every box's time bounds by factor.
func (s Set) Scale(factor float64) Set {
	out := s.Clone()
	for i := range out {
		out[i].Box = out[i].Box.Scale(factor)
	}
	return out
}

// Select returns the boxes carrying label and their indices in s.
func (s Set) Select(label int) (boxes []Box, indices []int) {
	for i, a := range s {
		if a.Label == label {
			boxes = append(boxes, a.Box)
			indices = append(indices, i)
		}
	}
	return boxes, indices
}

// Delete removes the annotations at the given indices. Out of range indices
// are ignored.
func (s Set) Delete(indices ...int) Set {
	out := make(Set, 0, len(s))
	for i, a := range s {
		if !slices.Contains(indices, i) {
			out = append(out, a)
		}
	}
	return out
}

// ResolveInf replaces an infinite FEnd by fmax.
func (s Set) ResolveInf(fmax float64) Set {
	out := s.Clone()
	for i := range out {
		if math.IsInf(out[i].Box.FEnd, 1) {
			out[i].Box.FEnd = fmax
		}
	}
	return out
}

// Limit returns at most the first n annotations.
func (s Set) Limit(n int) Set {
	if n < 0 || len(s) <= n {
		return s.Clone()
	}
	return slices.Clone(s[:n])
}
