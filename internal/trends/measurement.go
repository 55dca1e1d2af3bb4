package trends

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Measurement is one observed sample of a metric: a logged weight, a grip strength
// test, a daily nutrient total, a wellness rating.
type Measurement struct {
	MetricKey string            `json:"metricKey"`
	Timestamp time.Time         `json:"timestamp"`
	Value     *float64          `json:"value"`
	Meta      map[string]string `json:"meta,omitempty"`
}

func NewMeasurement(metricKey string, timestamp time.Time, value float64) Measurement {
	return Measurement{
		MetricKey: metricKey,
		Timestamp: timestamp,
		Value:     &value,
	}
}

func (m Measurement) Validate() error {
	if m.Timestamp.IsZero() {
		return fmt.Errorf("%w: metric %q", ErrMalformedTimestamp, m.MetricKey)
	}
	if m.Value != nil && (math.IsNaN(*m.Value) || math.IsInf(*m.Value, 0)) {
		return fmt.Errorf("%w: metric %q at %s", ErrInvalidValue, m.MetricKey, m.Timestamp.Format(time.RFC3339))
	}
	return nil
}

// sample is a measurement reduced to its calendar day.
type sample struct {
	date  Date
	value float64
}

// dailySamples validates ms and reduces it to at most one value per calendar day,
// the latest timestamp of the day winning. It also returns the latest sample
// strictly before rng.Start, if any. ms is never mutated.
func dailySamples(ms []Measurement, rng DateRange, loc *time.Location) (map[Date]float64, *sample, error) {
	if rng.End.Before(rng.Start) {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidRange, rng)
	}

	sorted := make([]Measurement, 0, len(ms))
	metricKey := ""
	for i, m := range ms {
		if err := m.Validate(); err != nil {
			return nil, nil, err
		}
		if i == 0 {
			metricKey = m.MetricKey
		} else if m.MetricKey != metricKey {
			return nil, nil, fmt.Errorf("%w: %q and %q", ErrMixedMetrics, metricKey, m.MetricKey)
		}
		// nil values carry no observation
		if m.Value == nil {
			continue
		}
		sorted = append(sorted, m)
	}

	// stable, so equal timestamps keep input order and the later one wins below
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	daily := make(map[Date]float64)
	var prior *sample
	for _, m := range sorted {
		day := DateOf(m.Timestamp, loc)
		switch {
		case day.Before(rng.Start):
			prior = &sample{date: day, value: *m.Value}
		case day.After(rng.End):
			// future relative to the range, irrelevant
		default:
			daily[day] = *m.Value
		}
	}

	return daily, prior, nil
}

func floatPtr(v float64) *float64 {
	return &v
}
