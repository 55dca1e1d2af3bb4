package seriescache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/trends"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

// FreeCache is the in-process backend. Generations are stored in freecache
// next to the entries, so they share its memory bound and may be evicted.
// Every generation is drawn from one process-wide counter: a generation
// recreated after an eviction is a value never used before and cannot expose
// entries written under an older one.
type FreeCache struct {
	cache      *freecache.Cache
	ttlSeconds int

	genMutex sync.Mutex
	lastGen  int64
}

func NewFreeCache(sizeBytes int, ttl time.Duration) *FreeCache {
	return &FreeCache{
		cache:      freecache.NewCache(sizeBytes),
		ttlSeconds: int(ttl.Seconds()),
	}
}

// generation returns the current generation of the pair, allocating one when
// none is stored.
func (c *FreeCache) generation(clientID, metricKey string) (int64, error) {
	c.genMutex.Lock()
	defer c.genMutex.Unlock()

	genKey := []byte(generationKey(clientID, metricKey))
	genBytes, err := c.cache.Get(genKey)
	switch {
	case err == nil && len(genBytes) == 8:
		return int64(binary.BigEndian.Uint64(genBytes)), nil
	case err == nil, errors.Is(err, freecache.ErrNotFound):
		return c.bumpLocked(genKey)
	default:
		return 0, fmt.Errorf("get generation: %w", err)
	}
}

func (c *FreeCache) bumpLocked(genKey []byte) (int64, error) {
	c.lastGen++
	genBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(genBytes, uint64(c.lastGen))
	// no expiry, eviction is safe since the next value is always fresh
	if err := c.cache.Set(genKey, genBytes, 0); err != nil {
		return 0, fmt.Errorf("set generation: %w", err)
	}
	return c.lastGen, nil
}

func (c *FreeCache) Get(_ context.Context, key Key) (*trends.Series, int64, bool, error) {
	gen, err := c.generation(key.ClientID, key.MetricKey)
	if err != nil {
		return nil, 0, false, err
	}

	cacheKey := entryKey(key, gen)
	seriesBytes, err := c.cache.Get([]byte(cacheKey))
	if errors.Is(err, freecache.ErrNotFound) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}

	s, err := decode(seriesBytes)
	if err != nil {
		log.Errorf("series cache, dropping corrupt entry [%s]: %s", cacheKey, err)
		c.cache.Del([]byte(cacheKey))
		return nil, gen, false, nil
	}
	return s, gen, true, nil
}

func (c *FreeCache) SetAt(_ context.Context, key Key, generation int64, s trends.Series) error {
	seriesBytes, err := encode(s)
	if err != nil {
		return err
	}
	return c.cache.Set([]byte(entryKey(key, generation)), seriesBytes, c.ttlSeconds)
}

func (c *FreeCache) Invalidate(_ context.Context, clientID, metricKey string) error {
	c.genMutex.Lock()
	defer c.genMutex.Unlock()
	_, err := c.bumpLocked([]byte(generationKey(clientID, metricKey)))
	return err
}

func (c *FreeCache) EntryCount() int64 {
	return c.cache.EntryCount()
}
