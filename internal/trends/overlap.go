package trends

import (
	"sort"
)

// DefaultSpacingUnit is the lateral distance between two tied metrics.
const DefaultSpacingUnit = 6.0

// MetricValue is one metric plotted on a given date.
type MetricValue struct {
	MetricKey string
	Value     float64
}

// ResolveOffsets computes lateral offsets for metrics plotted together on one date.
// Metrics sharing a value are spread symmetrically around zero, ordered by their
// position in order (metrics missing from order follow, sorted by key). A metric
// alone on its value gets 0. A metric listed more than once keeps its last value.
func ResolveOffsets(values []MetricValue, order []string, spacing float64) map[string]float64 {
	offsets := make(map[string]float64, len(values))
	if len(values) == 0 {
		return offsets
	}

	rank := make(map[string]int, len(order))
	for i, key := range order {
		if _, seen := rank[key]; !seen {
			rank[key] = i
		}
	}

	latest := make(map[string]float64, len(values))
	for _, mv := range values {
		latest[mv.MetricKey] = mv.Value
	}
	groups := make(map[float64][]string)
	for key, v := range latest {
		groups[v] = append(groups[v], key)
	}

	for _, keys := range groups {
		sort.SliceStable(keys, func(i, j int) bool {
			ri, iKnown := rank[keys[i]]
			rj, jKnown := rank[keys[j]]
			switch {
			case iKnown && jKnown:
				return ri < rj
			case iKnown != jKnown:
				return iKnown
			default:
				return keys[i] < keys[j]
			}
		})

		k := len(keys)
		for i, key := range keys {
			offsets[key] = (float64(i) - float64(k-1)/2) * spacing
		}
	}

	return offsets
}

// OverlayOffsets resolves offsets independently for every in-range date of the given
// series. Dates where no series has a value are left out.
func OverlayOffsets(series []Series, order []string, spacing float64) map[Date]map[string]float64 {
	dates := make(map[Date]struct{})
	for _, s := range series {
		for _, p := range s.InRange() {
			if p.Value != nil {
				dates[p.Date] = struct{}{}
			}
		}
	}

	result := make(map[Date]map[string]float64, len(dates))
	for d := range dates {
		values := make([]MetricValue, 0, len(series))
		for _, s := range series {
			if v, ok := s.ValueAt(d); ok {
				values = append(values, MetricValue{MetricKey: s.MetricKey, Value: v})
			}
		}
		result[d] = ResolveOffsets(values, order, spacing)
	}

	return result
}
