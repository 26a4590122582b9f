package geo

import (
	"context"
	"log/slog"
	"strings"
)

// GeocodeCache persists successful lookups between runs.
type GeocodeCache interface {
	GetGeocode(address string) (*Coordinate, error)
	SaveGeocode(address string, coord Coordinate) error
}

type CachedLocator struct {
	locator Locator
	cache   GeocodeCache
}

func NewCachedLocator(locator Locator, cache GeocodeCache) *CachedLocator {
	return &CachedLocator{locator: locator, cache: cache}
}

// Geocode serves from the cache when possible. Cache failures are logged and
// fall back to the wrapped locator; only OK answers are stored.
func (c *CachedLocator) Geocode(ctx context.Context, address string) (Coordinate, error) {
	key := cacheKey(address)

	cached, err := c.cache.GetGeocode(key)
	if err != nil {
		slog.Warn("Geocode cache lookup failed", "address", address, "error", err)
	} else if cached != nil {
		slog.Debug("Geocode cache hit", "address", address)
		return *cached, nil
	}

	coord, err := c.locator.Geocode(ctx, address)
	if err != nil {
		return Coordinate{}, err
	}

	if coord.OK() {
		if err := c.cache.SaveGeocode(key, coord); err != nil {
			slog.Warn("Failed to store geocode", "address", address, "error", err)
		}
	}

	return coord, nil
}

func cacheKey(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}
