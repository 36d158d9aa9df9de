// Package usage projects how long an item will last from a short weight history.
package usage

import (
	"errors"
	"math"
	"time"
)

const (
	// NoDepletion is the DaysUntilEmpty value when stock is flat or rising
	NoDepletion = -1

	// RestockWindowDays is how close to empty an item must be to warn
	RestockWindowDays = 7
)

var (
	// ErrInsufficientHistory is returned for series with fewer than two readings
	ErrInsufficientHistory = errors.New("at least two readings are needed to estimate usage")

	// ErrNoElapsedTime is returned when the first and last samples share a time
	ErrNoElapsedTime = errors.New("readings do not span any time")
)

// Sample is a weight observed at a point in time
type Sample struct {
	Weight float64
	At     time.Time
}

// Projection is the linear depletion estimate for one item
type Projection struct {
	Series         []float64 `json:"series"`
	DailyRate      float64   `json:"dailyRate"`
	DaysUntilEmpty int       `json:"daysUntilEmpty"`
	Depleting      bool      `json:"depleting"`
	RestockSoon    bool      `json:"restockSoon"`
}

// MockHistory is the illustrative daily series ending in the current weight
func MockHistory(current float64) []float64 {
	return []float64{300, 280, 250, 200, 180, 150, current}
}

// Estimate fits a straight line from the first to the last reading.
// The series is ordered oldest first and ends in the current weight; one
// reading per day is assumed.
func Estimate(series []float64) (Projection, error) {
	if len(series) < 2 {
		return Projection{}, ErrInsufficientHistory
	}
	rate := (series[0] - series[len(series)-1]) / float64(len(series)-1)
	return project(append([]float64(nil), series...), rate), nil
}

// EstimateSamples fits the same line through timed samples, ordered oldest
// first, and scales the rate by the time between the first and last sample.
// Samples may be any distance apart.
func EstimateSamples(samples []Sample) (Projection, error) {
	if len(samples) < 2 {
		return Projection{}, ErrInsufficientHistory
	}

	first, last := samples[0], samples[len(samples)-1]
	elapsed := last.At.Sub(first.At)
	if elapsed <= 0 {
		return Projection{}, ErrNoElapsedTime
	}

	series := make([]float64, len(samples))
	for i, s := range samples {
		series[i] = s.Weight
	}
	days := elapsed.Hours() / 24
	return project(series, (first.Weight-last.Weight)/days), nil
}

func project(series []float64, rate float64) Projection {
	p := Projection{
		Series:         series,
		DailyRate:      rate,
		DaysUntilEmpty: NoDepletion,
	}
	if rate <= 0 {
		return p
	}

	current := series[len(series)-1]
	p.Depleting = true
	p.DaysUntilEmpty = int(math.Round(current / rate))
	p.RestockSoon = p.DaysUntilEmpty <= RestockWindowDays
	return p
}
