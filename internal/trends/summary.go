package trends

import (
	"fmt"
	"strings"
)

// Polarity tells whether a lower or a higher value is the better outcome for a metric.
// It only drives presentation (Direction), never the numbers.
type Polarity string

const (
	LowerIsBetter  Polarity = "lowerIsBetter"
	HigherIsBetter Polarity = "higherIsBetter"
)

func ParsePolarity(s string) (Polarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "higher", "higherisbetter":
		return HigherIsBetter, nil
	case "lower", "lowerisbetter":
		return LowerIsBetter, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolarity, s)
	}
}

type Direction string

const (
	DirectionImproving Direction = "improving"
	DirectionWorsening Direction = "worsening"
	DirectionUnchanged Direction = "unchanged"
)

// Summary holds the headline numbers of a series. Nil fields mean "no data".
type Summary struct {
	Baseline  *float64  `json:"baseline"`
	Current   *float64  `json:"current"`
	Delta     *float64  `json:"delta"`
	Polarity  Polarity  `json:"polarity"`
	Direction Direction `json:"direction,omitempty"`
}

// Summarize derives baseline, current and delta from the in-range points of s.
//
// Baseline is the first actual point, not the first point, since a carried value at the
// start of the range has no real basis in it. Current is the last point, carried values
// included: they are the reading as of that day. A sparse gap on the last day falls back
// to the last value seen in range. Delta needs both.
func Summarize(s Series, polarity Polarity) Summary {
	summary := Summary{Polarity: polarity}

	points := s.InRange()
	for _, p := range points {
		if p.IsActual && p.Value != nil {
			summary.Baseline = floatPtr(*p.Value)
			break
		}
	}
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Value != nil {
			summary.Current = floatPtr(*points[i].Value)
			break
		}
	}

	if summary.Baseline != nil && summary.Current != nil {
		summary.Delta = floatPtr(*summary.Current - *summary.Baseline)
		summary.Direction = direction(*summary.Delta, polarity)
	}

	return summary
}

func direction(delta float64, polarity Polarity) Direction {
	switch {
	case delta == 0:
		return DirectionUnchanged
	case (delta < 0) == (polarity == LowerIsBetter):
		return DirectionImproving
	default:
		return DirectionWorsening
	}
}
