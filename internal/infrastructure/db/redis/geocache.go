package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/devcamper/devcamper-api/internal/core/domain"
)

// GeocodeCache stores geocoding results as JSON.
// Key format: geocode:<normalized address>
type GeocodeCache struct {
	client *redis.Client
}

func NewGeocodeCache(client *redis.Client) *GeocodeCache {
	return &GeocodeCache{client: client}
}

// Get reports ok=false on a cache miss.
func (c *GeocodeCache) Get(ctx context.Context, address string) (*domain.Location, bool, error) {
	raw, err := c.client.Get(ctx, geocodeKey(address)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("geocode cache get: %w", err)
	}
	var loc domain.Location
	if err := json.Unmarshal(raw, &loc); err != nil {
		return nil, false, fmt.Errorf("geocode cache decode: %w", err)
	}
	return &loc, true, nil
}

func (c *GeocodeCache) Set(ctx context.Context, address string, loc *domain.Location, ttl time.Duration) error {
	raw, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("geocode cache encode: %w", err)
	}
	return c.client.Set(ctx, geocodeKey(address), raw, ttl).Err()
}

// geocodeKey folds case and whitespace so trivially different spellings of an
// address share an entry.
func geocodeKey(address string) string {
	return "geocode:" + strings.Join(strings.Fields(strings.ToLower(address)), " ")
}
