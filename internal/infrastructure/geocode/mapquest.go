// Package geocode resolves addresses to GeoJSON points.
package geocode

import (
	"context"
	"fmt"
	"strings"

	geo "github.com/codingsince1985/geo-golang"
	"github.com/codingsince1985/geo-golang/mapquest/open"

	"github.com/devcamper/devcamper-api/internal/core/domain"
)

// Geocoder adapts a geo-golang provider to ports.Geocoder.
type Geocoder struct {
	provider geo.Geocoder
}

// NewMapQuest returns a Geocoder backed by the MapQuest Open API.
func NewMapQuest(apiKey string) *Geocoder {
	return New(open.Geocoder(apiKey))
}

func New(provider geo.Geocoder) *Geocoder {
	return &Geocoder{provider: provider}
}

type result[T any] struct {
	v   T
	err error
}

// call runs a blocking provider request, giving up when ctx ends. The
// provider applies its own HTTP timeout so the goroutine always finishes.
func call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	ch := make(chan result[T], 1)
	go func() {
		v, err := fn()
		ch <- result[T]{v, err}
	}()
	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Geocode resolves address to a point and fills the structured address from
// a reverse lookup. An address the provider cannot place is a validation
// error; transport failures are returned as is.
func (g *Geocoder) Geocode(ctx context.Context, address string) (*domain.Location, error) {
	loc, err := call(ctx, func() (*geo.Location, error) { return g.provider.Geocode(address) })
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", address, err)
	}
	if loc == nil {
		return nil, domain.Errorf(domain.ErrValidation, "Could not find a location for %s", address)
	}

	out := &domain.Location{
		Type:        "Point",
		Coordinates: [2]float64{loc.Lng, loc.Lat},
	}

	addr, err := call(ctx, func() (*geo.Address, error) { return g.provider.ReverseGeocode(loc.Lat, loc.Lng) })
	if err != nil || addr == nil {
		// The point is what queries need; the address parts are cosmetic.
		out.FormattedAddress = address
		return out, nil
	}

	out.FormattedAddress = addr.FormattedAddress
	out.Street = strings.TrimSpace(addr.HouseNumber + " " + addr.Street)
	out.City = addr.City
	out.State = firstNonEmpty(addr.StateCode, addr.State)
	out.Zipcode = addr.Postcode
	out.Country = firstNonEmpty(addr.CountryCode, addr.Country)
	if out.FormattedAddress == "" {
		out.FormattedAddress = address
	}
	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
