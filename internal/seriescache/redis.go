package seriescache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/telemetry/tracing"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/trends"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// RedisCache shares cached series between service replicas. Generation keys
// never expire, entries expire after ttl.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		rdb: rdb,
		ttl: ttl,
	}
}

func (c *RedisCache) generation(ctx context.Context, clientID, metricKey string) (int64, error) {
	genStr, err := c.rdb.Get(ctx, generationKey(clientID, metricKey)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get generation: %w", err)
	}

	gen, err := strconv.ParseInt(genStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse generation [%s]: %w", genStr, err)
	}
	return gen, nil
}

func (c *RedisCache) Get(ctx context.Context, key Key) (_ *trends.Series, _ int64, _ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cache.series.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("key", key.String()))

	gen, err := c.generation(ctx, key.ClientID, key.MetricKey)
	if err != nil {
		return nil, 0, false, err
	}
	span.SetAttributes(attribute.Int64("generation", gen))

	cacheKey := entryKey(key, gen)
	seriesJson, err := c.rdb.Get(ctx, cacheKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("get series: %w", err)
	}

	s, err := decode([]byte(seriesJson))
	if err != nil {
		log.Errorf("series cache, dropping corrupt entry [%s]: %s", cacheKey, err)
		c.rdb.Del(ctx, cacheKey)
		return nil, gen, false, nil
	}
	return s, gen, true, nil
}

// SetAt stores s under the given generation, the one a preceding Get reported.
func (c *RedisCache) SetAt(ctx context.Context, key Key, generation int64, s trends.Series) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cache.series.set")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("key", key.String()),
		attribute.Int64("generation", generation),
	)

	seriesJson, err := encode(s)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, entryKey(key, generation), string(seriesJson), c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, clientID, metricKey string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cache.series.invalidate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	gen, err := c.rdb.Incr(ctx, generationKey(clientID, metricKey)).Result()
	if err != nil {
		return fmt.Errorf("incr generation: %w", err)
	}
	span.SetAttributes(attribute.Int64("generation", gen))
	return nil
}
