package common

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic statistical functions shared by the spectrogram engine, using gonum where it fits

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	return stat.Mean(data, nil)
}

// Median returns the median of data, averaging the two central values for
// even lengths. data is not modified.
func Median(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}

	sorted := slices.Clone(data)
	slices.Sort(sorted)

	// the empirical quantile at 0.5 is the lower of the two central values
	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	if n := len(sorted); n%2 == 0 {
		median = 0.5 * (median + sorted[n/2])
	}
	return median
}

// Column returns column j of a row-major matrix.
func Column(m [][]float64, j int) []float64 {
	col := make([]float64, len(m))
	for i, row := range m {
		col[i] = row[j]
	}
	return col
}

// Flatten concatenates the rows of m.
func Flatten(m [][]float64) []float64 {
	n := 0
	for _, row := range m {
		n += len(row)
	}
	out := make([]float64, 0, n)
	for _, row := range m {
		out = append(out, row...)
	}
	return out
}

// ColumnMedians returns the median of every column of m.
func ColumnMedians(m [][]float64) []float64 {
	if len(m) == 0 {
		return nil
	}
	out := make([]float64, len(m[0]))
	for j := range out {
		out[j] = Median(Column(m, j))
	}
	return out
}

// ColumnMeans returns the mean of every column of m.
func ColumnMeans(m [][]float64) []float64 {
	if len(m) == 0 {
		return nil
	}
	out := make([]float64, len(m[0]))
	for j := range out {
		out[j] = stat.Mean(Column(m, j), nil)
	}
	return out
}

// RowMeans returns the mean of every row of m.
func RowMeans(m [][]float64) []float64 {
	out := make([]float64, len(m))
	for i, row := range m {
		out[i] = Mean(row)
	}
	return out
}

// RowMedians returns the median of every row of m.
func RowMedians(m [][]float64) []float64 {
	out := make([]float64, len(m))
	for i, row := range m {
		out[i] = Median(row)
	}
	return out
}

// MatrixMax returns the largest element of m, or -Inf when m is empty.
func MatrixMax(m [][]float64) float64 {
	best := math.Inf(-1)
	for _, row := range m {
		if len(row) == 0 {
			continue
		}
		best = math.Max(best, floats.Max(row))
	}
	return best
}

// MatrixMin returns the smallest element of m, or +Inf when m is empty.
func MatrixMin(m [][]float64) float64 {
	best := math.Inf(1)
	for _, row := range m {
		if len(row) == 0 {
			continue
		}
		best = math.Min(best, floats.Min(row))
	}
	return best
}

// MinMaxNormalize rescales m to [0, 1]. A constant matrix maps to zeros.
func MinMaxNormalize(m [][]float64) [][]float64 {
	lo, hi := MatrixMin(m), MatrixMax(m)
	span := hi - lo

	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
		floats.AddConst(-lo, out[i])
		if span > 0 {
			floats.Scale(1/span, out[i])
		}
	}
	return out
}

// Clamp limits value to [lo, hi]
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// ClampInt limits value to [lo, hi]
func ClampInt(value, lo, hi int) int {
	return max(lo, min(value, hi))
}

// CloneMatrix returns a deep copy of m.
func CloneMatrix(m [][]float64) [][]float64 {
	if m == nil {
		return nil
	}
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = slices.Clone(row)
	}
	return out
}

// Zeros returns a rows x cols zero matrix.
func Zeros(rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	return out
}
