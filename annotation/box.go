package annotation

import (
	"fmt"
	"math"
)

// Box is an annotated time-frequency region. Times are in seconds and
// frequencies in Hz; FEnd may be +Inf until resolved against a spectrogram.
type Box struct {
	TStart float64 `json:"t_start"`
	TEnd   float64 `json:"t_end"`
	FStart float64 `json:"f_start"`
	FEnd   float64 `json:"f_end"`
}

// NewBox builds a box from (t_start, t_end) or (t_start, t_end, f_start, f_end).
// A time-only box covers all frequencies, [0, +Inf).
func NewBox(values ...float64) (Box, error) {
	switch len(values) {
	case 2:
		return Box{TStart: values[0], TEnd: values[1], FStart: 0, FEnd: math.Inf(1)}, nil
	case 4:
		return Box{TStart: values[0], TEnd: values[1], FStart: values[2], FEnd: values[3]}, nil
	default:
		return Box{}, fmt.Errorf("box needs 2 or 4 values, got %d", len(values))
	}
}

// Duration returns TEnd - TStart.
func (b Box) Duration() float64 {
	return b.TEnd - b.TStart
}

// Clip intersects b with the window [t1, t2) x [f1, f2). ok is false when
// the intersection is empty.
func (b Box) Clip(t1, t2, f1, f2 float64) (clipped Box, ok bool) {
	if b.TEnd <= t1 || b.TStart >= t2 || b.FEnd <= f1 || b.FStart >= f2 {
		return Box{}, false
	}
	return Box{
		TStart: math.Max(b.TStart, t1),
		TEnd:   math.Min(b.TEnd, t2),
		FStart: math.Max(b.FStart, f1),
		FEnd:   math.Min(b.FEnd, f2),
	}, true
}

// Shift moves b by dt seconds.
func (b Box) Shift(dt float64) Box {
	b.TStart += dt
	b.TEnd += dt
	return b
}

// Scale multiplies the time bounds of b by factor.
func (b Box) Scale(factor float64) Box {
	b.TStart *= factor
	b.TEnd *= factor
	return b
}
