//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/dashboard"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/trends"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) postMeasurement(ctx context.Context, clientID string, m trends.Measurement) *http.Response {
	t := s.T()

	body, err := json.Marshal(m)
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(
		ctx,
		"POST",
		fmt.Sprintf("%s/clients/%s/measurements", serverEndpoint, clientID),
		bytes.NewReader(body),
	)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	return resp
}

func (s *IntegrationTestSuite) getJSON(ctx context.Context, path string, target any) {
	t := s.T()

	req, err := http.NewRequestWithContext(ctx, "GET", serverEndpoint+path, nil)
	require.NoError(t, err)

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(respBytes))
	require.NoError(t, json.Unmarshal(respBytes, target))
}

func (s *IntegrationTestSuite) TestTrend_NewMeasurementInvalidatesCache() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t := s.T()
	now := time.Now()

	resp := s.postMeasurement(ctx, "athlete-1", trends.NewMeasurement("weight", now.Add(-72*time.Hour), 80))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var view dashboard.TrendView
	s.getJSON(ctx, "/clients/athlete-1/trends/weight?period=last7&polarity=lower", &view)
	require.Len(t, view.Series.Points, 7)
	require.NotNil(t, view.Summary.Current)
	assert.Equal(t, 80.0, *view.Summary.Current)
	assert.Equal(t, trends.DirectionUnchanged, view.Summary.Direction)

	resp = s.postMeasurement(ctx, "athlete-1", trends.NewMeasurement("weight", now, 79))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	s.getJSON(ctx, "/clients/athlete-1/trends/weight?period=last7&polarity=lower", &view)
	require.NotNil(t, view.Summary.Delta)
	assert.Equal(t, 79.0, *view.Summary.Current)
	assert.Equal(t, -1.0, *view.Summary.Delta)
	assert.Equal(t, trends.DirectionImproving, view.Summary.Direction)
}

func (s *IntegrationTestSuite) TestTrend_SparseAnchor() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t := s.T()
	resp := s.postMeasurement(ctx, "athlete-3", trends.NewMeasurement("grip", time.Now().AddDate(0, 0, -20), 44.5))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var view dashboard.TrendView
	s.getJSON(ctx, "/clients/athlete-3/trends/grip?period=last7&mode=sparse", &view)

	anchor := view.Series.Anchor()
	require.NotNil(t, anchor)
	assert.Equal(t, 44.5, *anchor.Value)
	for _, p := range view.Series.InRange() {
		assert.Nil(t, p.Value)
	}
	assert.Nil(t, view.Summary.Baseline)
}

func (s *IntegrationTestSuite) TestOverlay_TiedWellnessMetrics() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t := s.T()
	now := time.Now()
	for _, key := range []string{"stress", "mood"} {
		resp := s.postMeasurement(ctx, "athlete-2", trends.NewMeasurement(key, now, 3))
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	var view dashboard.OverlayView
	s.getJSON(ctx, "/clients/athlete-2/overlay?metric=stress&metric=mood&period=today", &view)

	require.Len(t, view.Metrics, 2)
	require.Len(t, view.Offsets, 1)
	for _, offsets := range view.Offsets {
		assert.Equal(t, map[string]float64{"mood": -3, "stress": 3}, offsets)
	}
}

func (s *IntegrationTestSuite) TestMeasurements_RateLimited() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t := s.T()
	now := time.Now()
	for i := 0; i < measurementsRateLimit; i++ {
		resp := s.postMeasurement(ctx, "athlete-rl", trends.NewMeasurement("steps", now.Add(-time.Duration(i)*time.Minute), float64(i)))
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode, "request %d", i)
	}

	resp := s.postMeasurement(ctx, "athlete-rl", trends.NewMeasurement("steps", now, 1))
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	// limits are per client
	resp = s.postMeasurement(ctx, "athlete-other", trends.NewMeasurement("steps", now, 1))
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestMetricsEndpoint() {
	t := s.T()

	resp, err := s.httpClient.Get("http://localhost:9001/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "nutrition_trends_life_signal")
	assert.Contains(t, string(body), "pgxpool_")
}
