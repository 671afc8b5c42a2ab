package common

import (
	"math"

	"gonum.org/v1/gonum/interp"
)

// ScaledLength returns the number of samples an axis of n samples has after
// scaling by factor. Halves round to even.
func ScaledLength(n int, factor float64) int {
	return int(math.RoundToEven(float64(n) * factor))
}

// Resize resamples data onto m samples with pixel-centred linear interpolation.
// Output sample i reads the input at (i+0.5)*n/m - 0.5, clamped to the ends.
// When shrinking, data is first smoothed with a gaussian of sigma (n/m-1)/2.
func Resize(data []float64, m int) []float64 {
	n := len(data)
	out := make([]float64, max(m, 0))
	if n == 0 || m <= 0 {
		return out
	}
	if n == m {
		copy(out, data)
		return out
	}
	if n == 1 {
		for i := range out {
			out[i] = data[0]
		}
		return out
	}

	src := data
	if m < n {
		src = GaussianFilter1D(data, (float64(n)/float64(m)-1)/2)
	}

	pl := fitSamples(&interp.PiecewiseLinear{}, src)
	ratio := float64(n) / float64(m)
	for i := range out {
		out[i] = pl.Predict((float64(i)+0.5)*ratio - 0.5)
	}
	return out
}

// ResizeAxis resizes every line of img along axis (0 = rows, 1 = columns) to m samples.
func ResizeAxis(img [][]float64, axis, m int) [][]float64 {
	if len(img) == 0 {
		if axis == 0 {
			return Zeros(max(m, 0), 0)
		}
		return [][]float64{}
	}

	if axis == 1 {
		out := make([][]float64, len(img))
		for i, row := range img {
			out[i] = Resize(row, m)
		}
		return out
	}

	cols := len(img[0])
	out := Zeros(max(m, 0), cols)
	for j := 0; j < cols; j++ {
		col := Resize(Column(img, j), m)
		for i := range out {
			out[i][j] = col[i]
		}
	}
	return out
}

// RescaleAxis scales img along axis by factor. With preserveShape the result
// keeps the original length: a stretched image is truncated and a compressed
// one is padded with the tail of the original image.
func RescaleAxis(img [][]float64, axis int, factor float64, preserveShape bool) [][]float64 {
	n := len(img)
	if axis == 1 && n > 0 {
		n = len(img[0])
	}

	m := ScaledLength(n, factor)
	scaled := ResizeAxis(img, axis, m)
	if !preserveShape || m == n {
		return scaled
	}

	if axis == 0 {
		if m > n {
			return scaled[:n]
		}
		return append(scaled, CloneMatrix(img[m:])...)
	}

	out := make([][]float64, len(img))
	for i := range img {
		if m > n {
			out[i] = scaled[i][:n]
			continue
		}
		out[i] = append(scaled[i], img[i][m:]...)
	}
	return out
}
