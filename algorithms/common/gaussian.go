package common

import "math"

// gaussianTruncate is the kernel half-width in standard deviations.
const gaussianTruncate = 4.0

// GaussianKernel returns a normalised gaussian kernel of radius
// int(4*sigma+0.5). sigma <= 0 yields the identity kernel.
func GaussianKernel(sigma float64) []float64 {
	if sigma <= 0 {
		return []float64{1}
	}
	radius := int(gaussianTruncate*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		w := math.Exp(-0.5 * float64(i*i) / (sigma * sigma))
		kernel[i+radius] = w
		sum += w
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// reflectIndex maps k into [0, n) using half-sample symmetric reflection
// (d c b a | a b c d | d c b a).
func reflectIndex(k, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	k %= period
	if k < 0 {
		k += period
	}
	if k >= n {
		k = period - 1 - k
	}
	return k
}

// GaussianFilter1D smooths data with a gaussian of the given sigma (in samples).
func GaussianFilter1D(data []float64, sigma float64) []float64 {
	out := make([]float64, len(data))
	if sigma <= 0 || len(data) == 0 {
		copy(out, data)
		return out
	}
	kernel := GaussianKernel(sigma)
	radius := len(kernel) / 2
	for i := range data {
		acc := 0.0
		for k, w := range kernel {
			acc += w * data[reflectIndex(i+k-radius, len(data))]
		}
		out[i] = acc
	}
	return out
}

// GaussianFilter2D smooths m separately along rows (axis 0) and columns
// (axis 1). A non-positive sigma leaves that axis untouched.
func GaussianFilter2D(m [][]float64, sigmaRows, sigmaCols float64) [][]float64 {
	out := CloneMatrix(m)
	if len(out) == 0 {
		return out
	}

	if sigmaCols > 0 {
		for i := range out {
			out[i] = GaussianFilter1D(out[i], sigmaCols)
		}
	}

	if sigmaRows > 0 {
		for j := range out[0] {
			col := GaussianFilter1D(Column(out, j), sigmaRows)
			for i := range out {
				out[i][j] = col[i]
			}
		}
	}

	return out
}
