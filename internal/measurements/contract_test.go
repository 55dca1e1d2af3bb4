package measurements_test

import (
	"context"
	"testing"
	"time"

	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/measurements"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/trends"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type source interface {
	Add(ctx context.Context, clientID string, m trends.Measurement) (int64, error)
	List(ctx context.Context, params measurements.ListParams) ([]trends.Measurement, error)
}

var (
	rangeFrom  = time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)
	rangeUntil = time.Date(2026, 1, 23, 0, 0, 0, 0, time.UTC)
)

func weight(ts time.Time, v float64) trends.Measurement {
	return trends.NewMeasurement("weight", ts, v)
}

func values(ms []trends.Measurement) []float64 {
	out := make([]float64, 0, len(ms))
	for _, m := range ms {
		if m.Value == nil {
			out = append(out, -1)
			continue
		}
		out = append(out, *m.Value)
	}
	return out
}

// runSourceContract checks the List semantics every measurement source must share.
func runSourceContract(t *testing.T, newSource func(t *testing.T) source) {
	ctx := context.Background()

	t.Run("RangeAndLatestPrior", func(t *testing.T) {
		src := newSource(t)
		add := func(clientID string, m trends.Measurement) {
			_, err := src.Add(ctx, clientID, m)
			require.NoError(t, err)
		}

		add("c-1", weight(rangeFrom.Add(-72*time.Hour), 71.0))
		add("c-1", weight(rangeFrom.Add(-48*time.Hour), 70.5))
		// null values never act as the prior sample
		add("c-1", trends.Measurement{MetricKey: "weight", Timestamp: rangeFrom.Add(-time.Hour)})
		add("c-1", weight(rangeFrom.Add(8*time.Hour), 70.0))
		add("c-1", trends.Measurement{MetricKey: "weight", Timestamp: rangeFrom.Add(2 * 24 * time.Hour)})
		add("c-1", weight(rangeFrom.Add(4*24*time.Hour+8*time.Hour), 69.5))
		// outside the range or another client / metric
		add("c-1", weight(rangeUntil, 68.0))
		add("c-2", weight(rangeFrom.Add(9*time.Hour), 90.0))
		add("c-1", trends.NewMeasurement("grip", rangeFrom.Add(9*time.Hour), 40))

		ms, err := src.List(ctx, measurements.ListParams{
			ClientID:  "c-1",
			MetricKey: "weight",
			From:      rangeFrom,
			Until:     rangeUntil,
		})
		require.NoError(t, err)
		assert.Equal(t, []float64{70.5, 70.0, -1, 69.5}, values(ms))
		for _, m := range ms {
			assert.Equal(t, "weight", m.MetricKey)
		}
		assert.True(t, ms[0].Timestamp.Equal(rangeFrom.Add(-48*time.Hour)))
	})

	t.Run("EqualTimestampsKeepInsertOrder", func(t *testing.T) {
		src := newSource(t)
		ts := rangeFrom.Add(10 * time.Hour)
		for _, v := range []float64{1, 2, 3} {
			_, err := src.Add(ctx, "c-1", weight(ts, v))
			require.NoError(t, err)
		}

		ms, err := src.List(ctx, measurements.ListParams{ClientID: "c-1", MetricKey: "weight", From: rangeFrom, Until: rangeUntil})
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 3}, values(ms))
	})

	t.Run("MetaRoundTrip", func(t *testing.T) {
		src := newSource(t)
		m := weight(rangeFrom.Add(time.Hour), 70)
		m.Meta = map[string]string{"scale": "withings", "fasted": "true"}
		id, err := src.Add(ctx, "c-1", m)
		require.NoError(t, err)
		assert.Positive(t, id)

		ms, err := src.List(ctx, measurements.ListParams{ClientID: "c-1", MetricKey: "weight", From: rangeFrom, Until: rangeUntil})
		require.NoError(t, err)
		require.Len(t, ms, 1)
		assert.Equal(t, m.Meta, ms[0].Meta)
	})

	t.Run("Empty", func(t *testing.T) {
		src := newSource(t)
		ms, err := src.List(ctx, measurements.ListParams{ClientID: "nobody", MetricKey: "weight", From: rangeFrom, Until: rangeUntil})
		require.NoError(t, err)
		assert.Empty(t, ms)
	})

	t.Run("InvalidParams", func(t *testing.T) {
		src := newSource(t)
		_, err := src.List(ctx, measurements.ListParams{ClientID: "c-1", MetricKey: "weight", From: rangeUntil, Until: rangeFrom})
		assert.ErrorIs(t, err, measurements.ErrInvalidListParams)
		_, err = src.List(ctx, measurements.ListParams{MetricKey: "weight", From: rangeFrom, Until: rangeUntil})
		assert.ErrorIs(t, err, measurements.ErrInvalidListParams)
	})

	t.Run("RandomizedAgainstFilter", func(t *testing.T) {
		src := newSource(t)
		faker := gofakeit.New(1601)

		var (
			expectedInRange int
			latestPrior     time.Time
		)
		for i := 0; i < 60; i++ {
			ts := rangeFrom.Add(time.Duration(faker.IntRange(-10*24, 10*24)) * time.Hour)
			_, err := src.Add(ctx, "c-9", weight(ts, faker.Float64Range(60, 80)))
			require.NoError(t, err)
			switch {
			case ts.Before(rangeFrom):
				if ts.After(latestPrior) {
					latestPrior = ts
				}
			case ts.Before(rangeUntil):
				expectedInRange++
			}
		}

		ms, err := src.List(ctx, measurements.ListParams{ClientID: "c-9", MetricKey: "weight", From: rangeFrom, Until: rangeUntil})
		require.NoError(t, err)

		expected := expectedInRange
		if !latestPrior.IsZero() {
			expected++
			assert.True(t, ms[0].Timestamp.Equal(latestPrior))
		}
		require.Len(t, ms, expected)
		for i := 1; i < len(ms); i++ {
			assert.False(t, ms[i].Timestamp.Before(ms[i-1].Timestamp), "not ascending at %d", i)
		}
	})
}
