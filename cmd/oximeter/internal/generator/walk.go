package generator

import "math"

const (
	MinSpO2     = 0.0
	MaxSpO2     = 100.0
	InitialSpO2 = 97.0

	// perturbations are drawn from {-maxStep..maxStep} tenths
	maxStep = 5
)

// Next advances the random walk by one uniformly drawn perturbation.
func Next(previous float64, rnd Rand) float64 {
	return Step(previous, Perturbation(rnd))
}

// Perturbation draws k from {-5..5} and returns k/10.
func Perturbation(rnd Rand) float64 {
	k := rnd.Intn(2*maxStep+1) - maxStep
	return float64(k) / 10
}

// Step applies delta to previous, clamps into [MinSpO2, MaxSpO2] and rounds
// to one decimal place.
func Step(previous, delta float64) float64 {
	v := math.Max(MinSpO2, math.Min(MaxSpO2, previous+delta))
	return math.Round(v*10) / 10
}
