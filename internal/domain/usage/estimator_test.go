package usage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimate_MockSeries(t *testing.T) {
	p, err := Estimate(MockHistory(100))
	require.NoError(t, err)

	assert.InDelta(t, 33.33, p.DailyRate, 0.01)
	assert.Equal(t, 3, p.DaysUntilEmpty)
	assert.True(t, p.Depleting)
	assert.True(t, p.RestockSoon)
	assert.Len(t, p.Series, 7)
}

func TestEstimate_FlatOrRising(t *testing.T) {
	for _, series := range [][]float64{{200, 200}, {100, 150, 300}} {
		p, err := Estimate(series)
		require.NoError(t, err)
		assert.False(t, p.Depleting)
		assert.False(t, p.RestockSoon)
		assert.Equal(t, NoDepletion, p.DaysUntilEmpty)
	}
}

func TestEstimate_SlowDepletion(t *testing.T) {
	p, err := Estimate([]float64{1000, 990, 980})
	require.NoError(t, err)

	assert.Equal(t, 10.0, p.DailyRate)
	assert.Equal(t, 98, p.DaysUntilEmpty)
	assert.False(t, p.RestockSoon)
}

func TestEstimate_InsufficientHistory(t *testing.T) {
	_, err := Estimate([]float64{100})
	assert.ErrorIs(t, err, ErrInsufficientHistory)

	_, err = Estimate(nil)
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestEstimate_CopiesSeries(t *testing.T) {
	series := []float64{300, 200}
	p, err := Estimate(series)
	require.NoError(t, err)

	series[0] = 0
	assert.Equal(t, 300.0, p.Series[0])
}

func samples(start time.Time, spacing time.Duration, weights ...float64) []Sample {
	out := make([]Sample, len(weights))
	for i, w := range weights {
		out[i] = Sample{Weight: w, At: start.Add(time.Duration(i) * spacing)}
	}
	return out
}

func TestEstimateSamples_DailySpacing(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	p, err := EstimateSamples(samples(start, 24*time.Hour, 300, 250, 200))
	require.NoError(t, err)
	assert.InDelta(t, 50.0, p.DailyRate, 1e-9)
	assert.Equal(t, 4, p.DaysUntilEmpty)
	assert.Equal(t, []float64{300, 250, 200}, p.Series)
}

func TestEstimateSamples_ShortPollingInterval(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	// 200g used over one minute empties the remaining 100g within the day
	p, err := EstimateSamples(samples(start, 10*time.Second, 300, 266, 233, 200, 166, 133, 100))
	require.NoError(t, err)
	assert.InDelta(t, 288000.0, p.DailyRate, 1e-6)
	assert.Equal(t, 0, p.DaysUntilEmpty)
	assert.True(t, p.Depleting)
	assert.True(t, p.RestockSoon)
}

func TestEstimateSamples_HalfDay(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	p, err := EstimateSamples(samples(start, 12*time.Hour, 600, 500))
	require.NoError(t, err)
	assert.InDelta(t, 200.0, p.DailyRate, 1e-9)
	assert.Equal(t, 3, p.DaysUntilEmpty)
}

func TestEstimateSamples_Rejects(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	_, err := EstimateSamples(samples(start, time.Hour, 100))
	assert.ErrorIs(t, err, ErrInsufficientHistory)

	_, err = EstimateSamples(samples(start, 0, 300, 200))
	assert.ErrorIs(t, err, ErrNoElapsedTime)

	p, err := EstimateSamples(samples(start, time.Hour, 100, 120))
	require.NoError(t, err)
	assert.Equal(t, NoDepletion, p.DaysUntilEmpty)
}
