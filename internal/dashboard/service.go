package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/measurements"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/seriescache"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/telemetry/metrics"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/telemetry/tracing"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/trends"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=dashboard_test

type measurementsSource interface {
	Add(ctx context.Context, clientID string, m trends.Measurement) (int64, error)
	List(ctx context.Context, params measurements.ListParams) ([]trends.Measurement, error)
}

type seriesCache interface {
	Get(ctx context.Context, key seriescache.Key) (s *trends.Series, generation int64, found bool, err error)
	SetAt(ctx context.Context, key seriescache.Key, generation int64, s trends.Series) error
	Invalidate(ctx context.Context, clientID, metricKey string) error
}

type TrendParams struct {
	ClientID  string
	MetricKey string
	Period    trends.Period
	Mode      trends.Mode
	Polarity  trends.Polarity
}

type TrendView struct {
	ClientID string         `json:"clientId"`
	Period   trends.Period  `json:"period"`
	Series   trends.Series  `json:"series"`
	Summary  trends.Summary `json:"summary"`
}

type OverlayParams struct {
	ClientID   string
	MetricKeys []string
	Period     trends.Period
	Mode       trends.Mode
	// Polarities is optional, metrics without an entry are higherIsBetter.
	Polarities map[string]trends.Polarity
}

type MetricTrend struct {
	Series  trends.Series  `json:"series"`
	Summary trends.Summary `json:"summary"`
}

type OverlayView struct {
	ClientID    string                             `json:"clientId"`
	Period      trends.Period                      `json:"period"`
	Range       trends.DateRange                   `json:"range"`
	Mode        trends.Mode                        `json:"mode"`
	SpacingUnit float64                            `json:"spacingUnit"`
	Metrics     []MetricTrend                      `json:"metrics"`
	Offsets     map[trends.Date]map[string]float64 `json:"offsets"`
}

type OverlayOptions struct {
	SpacingUnit float64
	MetricOrder []string
}

type Service struct {
	source         measurementsSource
	cache          seriesCache
	resolver       *trends.Resolver
	metricsManager *metrics.Manager
	overlay        OverlayOptions
}

func NewService(
	source measurementsSource,
	cache seriesCache,
	resolver *trends.Resolver,
	metricsManager *metrics.Manager,
	overlay OverlayOptions,
) *Service {
	if cache == nil {
		cache = seriescache.Nop{}
	}
	if overlay.SpacingUnit == 0 {
		overlay.SpacingUnit = trends.DefaultSpacingUnit
	}
	return &Service{
		source:         source,
		cache:          cache,
		resolver:       resolver,
		metricsManager: metricsManager,
		overlay:        overlay,
	}
}

func (s *Service) Trend(ctx context.Context, params TrendParams) (_ *TrendView, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.dashboard.trend")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("client", params.ClientID),
		attribute.String("metric", params.MetricKey),
		attribute.String("period", string(params.Period)),
		attribute.String("mode", string(params.Mode)),
	)

	if err := requireIDs(params.ClientID, params.MetricKey); err != nil {
		return nil, err
	}
	if params.Polarity == "" {
		params.Polarity = trends.HigherIsBetter
	}

	rng, err := s.resolver.Resolve(params.Period)
	if err != nil {
		return nil, err
	}

	series, err := s.series(ctx, params.ClientID, params.MetricKey, rng, params.Mode)
	if err != nil {
		return nil, err
	}

	return &TrendView{
		ClientID: params.ClientID,
		Period:   params.Period,
		Series:   series,
		Summary:  trends.Summarize(series, params.Polarity),
	}, nil
}

func (s *Service) Overlay(ctx context.Context, params OverlayParams) (_ *OverlayView, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.dashboard.overlay")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("client", params.ClientID),
		attribute.StringSlice("metrics", params.MetricKeys),
		attribute.String("period", string(params.Period)),
	)

	metricKeys := dedupe(params.MetricKeys)
	if len(metricKeys) == 0 {
		return nil, fmt.Errorf("%w: at least one metric required", trends.ErrValidation)
	}
	for _, metricKey := range metricKeys {
		if err := requireIDs(params.ClientID, metricKey); err != nil {
			return nil, err
		}
	}

	rng, err := s.resolver.Resolve(params.Period)
	if err != nil {
		return nil, err
	}

	allSeries := make([]trends.Series, len(metricKeys))
	g, gctx := errgroup.WithContext(ctx)
	for i, metricKey := range metricKeys {
		g.Go(func() error {
			series, err := s.series(gctx, params.ClientID, metricKey, rng, params.Mode)
			if err != nil {
				return fmt.Errorf("series [%s]: %w", metricKey, err)
			}
			allSeries[i] = series
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := &OverlayView{
		ClientID:    params.ClientID,
		Period:      params.Period,
		Range:       rng,
		Mode:        params.Mode,
		SpacingUnit: s.overlay.SpacingUnit,
		Metrics:     make([]MetricTrend, 0, len(allSeries)),
		Offsets:     trends.OverlayOffsets(allSeries, s.overlay.MetricOrder, s.overlay.SpacingUnit),
	}
	for _, series := range allSeries {
		polarity := params.Polarities[series.MetricKey]
		if polarity == "" {
			polarity = trends.HigherIsBetter
		}
		view.Metrics = append(view.Metrics, MetricTrend{
			Series:  series,
			Summary: trends.Summarize(series, polarity),
		})
	}

	return view, nil
}

// AddMeasurement stores m and drops every cached series of its metric for the client.
func (s *Service) AddMeasurement(ctx context.Context, clientID string, m trends.Measurement) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.dashboard.add_measurement")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("client", clientID),
		attribute.String("metric", m.MetricKey),
	)

	if err := requireIDs(clientID, m.MetricKey); err != nil {
		return -1, err
	}
	if err := m.Validate(); err != nil {
		return -1, err
	}

	id, err := s.source.Add(ctx, clientID, m)
	if err != nil {
		return -1, fmt.Errorf("store measurement: %w", err)
	}
	s.metricsManager.CounterMeasurementsIngested.Inc()

	if err := s.cache.Invalidate(ctx, clientID, m.MetricKey); err != nil {
		log.Errorf("invalidate series cache [%s/%s]: %s", clientID, m.MetricKey, err)
	}

	return id, nil
}

// series returns the reconstructed series, from cache when possible.
func (s *Service) series(
	ctx context.Context,
	clientID, metricKey string,
	rng trends.DateRange,
	mode trends.Mode,
) (trends.Series, error) {
	key := seriescache.Key{
		ClientID:  clientID,
		MetricKey: metricKey,
		Range:     rng,
		Mode:      mode,
	}

	cached, generation, found, err := s.cache.Get(ctx, key)
	// without a known generation the computed series is not stored
	storable := err == nil
	if err != nil {
		log.Warnf("series cache get [%s]: %s", key, err)
	}
	if found {
		s.metricsManager.CounterSeriesCache.WithLabelValues(metrics.CacheHit).Inc()
		return *cached, nil
	}
	s.metricsManager.CounterSeriesCache.WithLabelValues(metrics.CacheMiss).Inc()

	loc := s.resolver.Location()
	ms, err := s.source.List(ctx, measurements.ListParams{
		ClientID:  clientID,
		MetricKey: metricKey,
		From:      rng.Start.Midnight(loc),
		Until:     rng.End.AddDays(1).Midnight(loc),
	})
	if err != nil {
		return trends.Series{}, fmt.Errorf("list measurements: %w", err)
	}

	begin := time.Now()
	series, err := trends.Reconstruct(mode, ms, rng, loc)
	if err != nil {
		return trends.Series{}, err
	}
	s.metricsManager.HistogramReconstructionDuration.WithLabelValues(string(mode)).Observe(time.Since(begin).Seconds())
	s.metricsManager.CounterSeriesReconstructed.WithLabelValues(string(mode)).Inc()

	// an empty source gives no metric key to the reconstructor
	series.MetricKey = metricKey

	if storable {
		if err := s.cache.SetAt(ctx, key, generation, series); err != nil {
			log.Warnf("series cache set [%s]: %s", key, err)
		}
	}

	return series, nil
}

func requireIDs(clientID, metricKey string) error {
	if clientID == "" {
		return fmt.Errorf("%w: client id required", trends.ErrValidation)
	}
	if metricKey == "" {
		return fmt.Errorf("%w: metric key required", trends.ErrValidation)
	}
	return nil
}

func dedupe(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
