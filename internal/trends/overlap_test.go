package trends_test

import (
	"testing"
	"time"

	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/trends"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wellnessOrder = []string{"sleep", "energy", "mood", "stress", "soreness"}

func TestResolveOffsets_FiveWellnessMetricsTied(t *testing.T) {
	// given in reverse, the fixed order decides the positions
	values := []trends.MetricValue{
		{MetricKey: "soreness", Value: 3},
		{MetricKey: "stress", Value: 3},
		{MetricKey: "mood", Value: 3},
		{MetricKey: "energy", Value: 3},
		{MetricKey: "sleep", Value: 3},
	}

	offsets := trends.ResolveOffsets(values, wellnessOrder, 6)
	assert.Equal(t, map[string]float64{
		"sleep":    -12,
		"energy":   -6,
		"mood":     0,
		"stress":   6,
		"soreness": 12,
	}, offsets)
}

func TestResolveOffsets_MixedGroups(t *testing.T) {
	values := []trends.MetricValue{
		{MetricKey: "sleep", Value: 4},
		{MetricKey: "energy", Value: 2},
		{MetricKey: "mood", Value: 4},
		{MetricKey: "stress", Value: 1},
	}

	offsets := trends.ResolveOffsets(values, wellnessOrder, trends.DefaultSpacingUnit)
	assert.Equal(t, -3.0, offsets["sleep"])
	assert.Equal(t, 3.0, offsets["mood"])
	assert.Equal(t, 0.0, offsets["energy"])
	assert.Equal(t, 0.0, offsets["stress"])
}

func TestResolveOffsets_RepeatedMetricCountsOnce(t *testing.T) {
	values := []trends.MetricValue{
		{MetricKey: "mood", Value: 3},
		{MetricKey: "sleep", Value: 3},
		{MetricKey: "mood", Value: 3},
	}
	assert.Equal(t, map[string]float64{"sleep": -3, "mood": 3}, trends.ResolveOffsets(values, wellnessOrder, 6))

	// the later value wins, mood leaves the tie
	values = []trends.MetricValue{
		{MetricKey: "mood", Value: 3},
		{MetricKey: "sleep", Value: 3},
		{MetricKey: "mood", Value: 4},
	}
	assert.Equal(t, map[string]float64{"sleep": 0, "mood": 0}, trends.ResolveOffsets(values, wellnessOrder, 6))
}

func TestResolveOffsets_UnknownMetricsFollowSortedByKey(t *testing.T) {
	values := []trends.MetricValue{
		{MetricKey: "zinc", Value: 1},
		{MetricKey: "alpha", Value: 1},
		{MetricKey: "mood", Value: 1},
	}

	offsets := trends.ResolveOffsets(values, wellnessOrder, 6)
	assert.Equal(t, -6.0, offsets["mood"])
	assert.Equal(t, 0.0, offsets["alpha"])
	assert.Equal(t, 6.0, offsets["zinc"])
}

func TestResolveOffsets_Empty(t *testing.T) {
	assert.Empty(t, trends.ResolveOffsets(nil, wellnessOrder, 6))
}

func TestResolveOffsets_SymmetricAndDistinct(t *testing.T) {
	faker := gofakeit.New(42)
	for iteration := 0; iteration < 100; iteration++ {
		values := make([]trends.MetricValue, 0, len(wellnessOrder))
		for _, key := range wellnessOrder {
			values = append(values, trends.MetricValue{
				MetricKey: key,
				Value:     float64(faker.IntRange(1, 3)),
			})
		}

		offsets := trends.ResolveOffsets(values, wellnessOrder, 6)
		require.Len(t, offsets, len(wellnessOrder))

		groups := make(map[float64][]float64)
		for _, mv := range values {
			groups[mv.Value] = append(groups[mv.Value], offsets[mv.MetricKey])
		}
		for value, groupOffsets := range groups {
			sum := 0.0
			seen := make(map[float64]bool)
			for _, o := range groupOffsets {
				sum += o
				assert.False(t, seen[o], "duplicate offset %v for value %v", o, value)
				seen[o] = true
			}
			assert.InDelta(t, 0, sum, 1e-9, "offsets for value %v not symmetric", value)
		}
	}
}

func TestOverlayOffsets_PerDate(t *testing.T) {
	rng := weightRange(t)
	d0, d1 := rng.Start, rng.Start.AddDays(1)

	sleep, err := trends.Sparse([]trends.Measurement{
		trends.NewMeasurement("sleep", at(d0, 7), 3),
		trends.NewMeasurement("sleep", at(d1, 7), 4),
	}, rng, time.UTC)
	require.NoError(t, err)
	mood, err := trends.Sparse([]trends.Measurement{
		trends.NewMeasurement("mood", at(d0, 9), 3),
		trends.NewMeasurement("mood", at(d1, 9), 2),
	}, rng, time.UTC)
	require.NoError(t, err)

	offsets := trends.OverlayOffsets([]trends.Series{mood, sleep}, wellnessOrder, 6)
	require.Len(t, offsets, 2)
	assert.Equal(t, map[string]float64{"sleep": -3, "mood": 3}, offsets[d0])
	assert.Equal(t, map[string]float64{"sleep": 0, "mood": 0}, offsets[d1])
}
