//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/nutrition"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestNutrition_ScaleAndAggregate() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t := s.T()

	post := func(path, body string) []byte {
		req, err := http.NewRequestWithContext(ctx, "POST", serverEndpoint+path, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		respBytes, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return respBytes
	}

	var scaled nutrition.ScaleResult
	require.NoError(t, json.Unmarshal(post("/nutrition/scale", `{
		"reference": {"calories": 100, "protein": 5, "fat": 3, "carbs": 15, "fibre": 2},
		"referenceQuantity": 25,
		"consumedQuantity": 76,
		"unit": "g"
	}`), &scaled))
	assert.Equal(t, nutrition.Profile{Calories: 304, Protein: 15.2, Fat: 9.1, Carbs: 45.6, Fibre: 6.1}, scaled.Profile)

	var aggregated nutrition.AggregateResponse
	require.NoError(t, json.Unmarshal(post("/nutrition/aggregate", `{
		"components": [{"calories": 304, "protein": 15.2, "fat": 9.1, "carbs": 45.6, "fibre": 6.1}],
		"beverage": {"calories": 120, "protein": 8, "fat": 4.8, "carbs": 12, "fibre": 0},
		"starRating": {"stars": 4}
	}`), &aggregated))
	assert.Equal(t, nutrition.Profile{Calories: 424, Protein: 23.2, Fat: 13.9, Carbs: 57.6, Fibre: 6.1}, aggregated.Total)
	assert.JSONEq(t, `{"stars": 4}`, string(aggregated.StarRating))
}
