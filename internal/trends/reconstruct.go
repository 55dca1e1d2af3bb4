package trends

import (
	"fmt"
	"strings"
	"time"
)

type Mode string

const (
	// ModeCarryForward fills days without a sample with the last known value.
	ModeCarryForward Mode = "carry"
	// ModeSparse leaves days without a sample as gaps, and anchors the curve
	// with the last sample before the range.
	ModeSparse Mode = "sparse"
)

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "carry", "carry-forward", "carryforward":
		return ModeCarryForward, nil
	case "sparse", "smoothing":
		return ModeSparse, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Point is one day of a reconstructed series.
// Value is nil for a gap.
type Point struct {
	Date     Date     `json:"date"`
	Value    *float64 `json:"value"`
	IsActual bool     `json:"isActual"`
	IsAnchor bool     `json:"isAnchor,omitempty"`
}

// Series holds one point per day of Range, optionally preceded by a single anchor
// point dated before Range.Start (sparse mode only).
type Series struct {
	MetricKey string    `json:"metricKey"`
	Range     DateRange `json:"range"`
	Mode      Mode      `json:"mode"`
	Points    []Point   `json:"points"`
}

// Anchor returns the leading anchor point, or nil.
func (s Series) Anchor() *Point {
	if len(s.Points) > 0 && s.Points[0].IsAnchor {
		p := s.Points[0]
		return &p
	}
	return nil
}

// InRange returns the points of the series without the anchor.
func (s Series) InRange() []Point {
	if s.Anchor() != nil {
		return s.Points[1:]
	}
	return s.Points
}

// ValueAt returns the value on day d, if the day is in range and holds one.
func (s Series) ValueAt(d Date) (float64, bool) {
	if !s.Range.Contains(d) {
		return 0, false
	}
	points := s.InRange()
	idx := d.DaysSince(s.Range.Start)
	if idx >= len(points) || points[idx].Value == nil {
		return 0, false
	}
	return *points[idx].Value, true
}

// Reconstruct builds the dense daily series of ms over rng using the given mode.
// All measurements must belong to the same metric.
func Reconstruct(mode Mode, ms []Measurement, rng DateRange, loc *time.Location) (Series, error) {
	switch mode {
	case ModeCarryForward:
		return CarryForward(ms, rng, loc)
	case ModeSparse:
		return Sparse(ms, rng, loc)
	default:
		return Series{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// CarryForward emits one point per day in rng. Days with a sample are actual; other
// days carry the last known value, seeded from the latest sample before rng.Start.
// Days before the first ever sample stay nil.
func CarryForward(ms []Measurement, rng DateRange, loc *time.Location) (Series, error) {
	daily, prior, err := dailySamples(ms, rng, loc)
	if err != nil {
		return Series{}, err
	}

	var lastKnown *float64
	if prior != nil {
		lastKnown = floatPtr(prior.value)
	}

	points := make([]Point, 0, rng.Days())
	for d := rng.Start; !d.After(rng.End); d = d.AddDays(1) {
		if v, ok := daily[d]; ok {
			lastKnown = floatPtr(v)
			points = append(points, Point{
				Date:     d,
				Value:    floatPtr(v),
				IsActual: true,
			})
			continue
		}

		var carried *float64
		if lastKnown != nil {
			carried = floatPtr(*lastKnown)
		}
		points = append(points, Point{
			Date:  d,
			Value: carried,
		})
	}

	return Series{
		MetricKey: metricKeyOf(ms),
		Range:     rng,
		Mode:      ModeCarryForward,
		Points:    points,
	}, nil
}

// Sparse emits one point per day in rng, leaving days without a sample as nil gaps.
// The latest sample before rng.Start, if any, leads the series as an anchor point.
func Sparse(ms []Measurement, rng DateRange, loc *time.Location) (Series, error) {
	daily, prior, err := dailySamples(ms, rng, loc)
	if err != nil {
		return Series{}, err
	}

	points := make([]Point, 0, rng.Days()+1)
	if prior != nil {
		points = append(points, Point{
			Date:     prior.date,
			Value:    floatPtr(prior.value),
			IsActual: true,
			IsAnchor: true,
		})
	}

	for d := rng.Start; !d.After(rng.End); d = d.AddDays(1) {
		p := Point{Date: d}
		if v, ok := daily[d]; ok {
			p.Value = floatPtr(v)
			p.IsActual = true
		}
		points = append(points, p)
	}

	return Series{
		MetricKey: metricKeyOf(ms),
		Range:     rng,
		Mode:      ModeSparse,
		Points:    points,
	}, nil
}

func metricKeyOf(ms []Measurement) string {
	if len(ms) == 0 {
		return ""
	}
	return ms[0].MetricKey
}
