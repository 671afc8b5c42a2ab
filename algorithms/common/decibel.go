package common

import "math"

// AmplitudeFloor is the smallest amplitude converted to decibels; anything
// smaller maps to -240 dB instead of -Inf.
const AmplitudeFloor = 1e-12

// ToDecibel converts an amplitude to decibels, 20*log10(x).
func ToDecibel(x float64) float64 {
	return 20 * math.Log10(math.Max(x, AmplitudeFloor))
}

// FromDecibel converts decibels back to an amplitude.
func FromDecibel(db float64) float64 {
	return math.Pow(10, db/20)
}

// MatrixToDecibel applies ToDecibel to every element of m.
func MatrixToDecibel(m [][]float64) [][]float64 {
	return mapMatrix(m, ToDecibel)
}

// MatrixFromDecibel applies FromDecibel to every element of m.
func MatrixFromDecibel(m [][]float64) [][]float64 {
	return mapMatrix(m, FromDecibel)
}

func mapMatrix(m [][]float64, f func(float64) float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = f(v)
		}
	}
	return out
}
