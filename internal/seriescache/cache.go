// Package seriescache memoizes reconstructed daily series keyed on
// (client, metric, range, mode). Each (client, metric) pair carries a generation
// number that is part of every entry key; bumping it on ingestion makes all
// cached ranges of that metric unreachable without scanning for them.
//
// Get reports the generation it looked under and SetAt stores under exactly that
// one. A series computed before an Invalidate can then only land under the
// retired generation, where nobody reads it.
package seriescache

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/trends"
)

type Key struct {
	ClientID  string
	MetricKey string
	Range     trends.DateRange
	Mode      trends.Mode
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", k.ClientID, k.MetricKey, k.Range, k.Mode)
}

func generationKey(clientID, metricKey string) string {
	return fmt.Sprintf("seriesgen:%s:%s", url.QueryEscape(clientID), url.QueryEscape(metricKey))
}

func entryKey(k Key, generation int64) string {
	return fmt.Sprintf(
		"series:%s:%s:%d:%s:%s",
		url.QueryEscape(k.ClientID), url.QueryEscape(k.MetricKey), generation, k.Range, k.Mode,
	)
}

func encode(s trends.Series) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal series: %w", err)
	}
	return b, nil
}

func decode(b []byte) (*trends.Series, error) {
	var s trends.Series
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("unmarshal series: %w", err)
	}
	return &s, nil
}
