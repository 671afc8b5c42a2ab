package annotation

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

const lengthEpsilon = 1e-6

// offsetFraction returns 0.5 for centred boxes and otherwise a uniform draw
// from [0, 1). A nil rng draws from the global source.
func offsetFraction(center bool, rng *rand.Rand) float64 {
	if center {
		return 0.5
	}
	u := distuv.Uniform{Min: 0, Max: 1}
	if rng != nil {
		u.Src = rng
	}
	return u.Rand()
}

// Stretch extends every box shorter than minLength to exactly minLength,
// adding r*deficit before and (1-r)*deficit after it. A box pushed below
// zero is moved forward to start at zero.
func Stretch(boxes []Box, minLength float64, center bool, rng *rand.Rand) []Box {
	out := make([]Box, len(boxes))
	for i, b := range boxes {
		dt := minLength - b.Duration()
		if dt > 0 {
			r := offsetFraction(center, rng)
			b.TStart -= r * dt
			b.TEnd += (1 - r) * dt
			if b.TStart < 0 {
				b.TEnd -= b.TStart
				b.TStart = 0
			}
		}
		out[i] = b
	}
	return out
}

// EnsureLength returns boxes that all last exactly length seconds. Short
// boxes are stretched; long boxes are tiled into consecutive windows whose
// first start is moved back by a fraction of the overhang so the tiling
// covers the whole box.
func EnsureLength(boxes []Box, length float64, center bool, rng *rand.Rand) []Box {
	var out []Box
	for _, b := range boxes {
		dt := length - b.Duration()
		switch {
		case dt > 0:
			out = append(out, Stretch([]Box{b}, length, center, rng)...)
		case dt == 0:
			out = append(out, b)
		default:
			diff := math.Ceil(b.Duration()/length)*length - b.Duration()
			if math.Abs(diff) > lengthEpsilon {
				diff *= offsetFraction(center, rng)
			} else {
				diff = 0
			}
			for start := b.TStart - diff; start < b.TEnd-lengthEpsilon; start += length {
				w := b
				w.TStart = start
				w.TEnd = start + length
				out = append(out, w)
			}
		}
	}
	return out
}
