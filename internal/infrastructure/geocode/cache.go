package geocode

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/devcamper/devcamper-api/internal/api/metrics"
	"github.com/devcamper/devcamper-api/internal/core/domain"
	"github.com/devcamper/devcamper-api/internal/core/ports"
)

// Cache is the store behind Cached (Redis in production).
type Cache interface {
	Get(ctx context.Context, address string) (*domain.Location, bool, error)
	Set(ctx context.Context, address string, loc *domain.Location, ttl time.Duration) error
}

// Cached memoizes successful lookups. Cache failures are logged and fall
// through to the wrapped geocoder.
type Cached struct {
	next  ports.Geocoder
	cache Cache
	ttl   time.Duration
	log   zerolog.Logger
}

func NewCached(next ports.Geocoder, cache Cache, ttl time.Duration, log zerolog.Logger) *Cached {
	return &Cached{next: next, cache: cache, ttl: ttl, log: log}
}

func (c *Cached) Geocode(ctx context.Context, address string) (*domain.Location, error) {
	loc, ok, err := c.cache.Get(ctx, address)
	switch {
	case err != nil:
		c.log.Warn().Err(err).Msg("geocode cache read failed")
	case ok:
		metrics.GeocodeLookupsTotal.WithLabelValues("hit").Inc()
		return loc, nil
	}

	loc, err = c.next.Geocode(ctx, address)
	if err != nil {
		metrics.GeocodeLookupsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.GeocodeLookupsTotal.WithLabelValues("miss").Inc()

	if err := c.cache.Set(ctx, address, loc, c.ttl); err != nil {
		c.log.Warn().Err(err).Msg("geocode cache write failed")
	}
	return loc, nil
}
