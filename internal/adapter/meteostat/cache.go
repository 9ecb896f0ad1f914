package meteostat

import (
	"context"
	"fmt"
	"time"

	"github.com/couchcryptid/ballpark-weather-etl/internal/domain"
	"github.com/couchcryptid/ballpark-weather-etl/internal/observability"
	"github.com/patrickmn/go-cache"
)

// CachedLookup wraps a StationLookup with an in-memory TTL cache. The same
// stadium coordinates are queried once per year, so nearby lists and station
// metadata repeat across the whole run. Observations are never cached.
type CachedLookup struct {
	inner   StationLookup
	cache   *cache.Cache
	metrics *observability.Metrics
}

// NewCachedLookup creates a cache decorator around a station lookup.
func NewCachedLookup(inner StationLookup, ttl time.Duration, metrics *observability.Metrics) *CachedLookup {
	return &CachedLookup{
		inner:   inner,
		cache:   cache.New(ttl, 2*ttl),
		metrics: metrics,
	}
}

func (c *CachedLookup) Nearby(ctx context.Context, lat, lon float64, limit int) ([]domain.StationID, error) {
	key := fmt.Sprintf("nearby:%.6f,%.6f|%d", lat, lon, limit)
	if v, ok := c.cache.Get(key); ok {
		c.metrics.CacheLookup.WithLabelValues("nearby", "hit").Inc()
		return v.([]domain.StationID), nil
	}
	c.metrics.CacheLookup.WithLabelValues("nearby", "miss").Inc()

	ids, err := c.inner.Nearby(ctx, lat, lon, limit)
	if err != nil {
		return nil, err
	}
	// Only cache non-empty results so a transient empty response can be retried.
	if len(ids) > 0 {
		c.cache.SetDefault(key, ids)
	}
	return ids, nil
}

func (c *CachedLookup) StationMeta(ctx context.Context, id domain.StationID) (domain.Station, error) {
	key := "meta:" + string(id)
	if v, ok := c.cache.Get(key); ok {
		c.metrics.CacheLookup.WithLabelValues("meta", "hit").Inc()
		return v.(domain.Station), nil
	}
	c.metrics.CacheLookup.WithLabelValues("meta", "miss").Inc()

	station, err := c.inner.StationMeta(ctx, id)
	if err != nil {
		return station, err
	}
	c.cache.SetDefault(key, station)
	return station, nil
}
