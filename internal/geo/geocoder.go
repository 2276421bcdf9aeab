// Package geo turns a user's city into a weather.Location the providers can query.
package geo

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"
	"go.uber.org/zap"

	"github.com/i474232898/plant-care/internal/weather"
)

// ErrNoAPIKey is returned by GoogleGeocoder when it was built without a key.
var ErrNoAPIKey = errors.New("geocoder api key not configured")

// Geocoder resolves a city to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, city, country string) (lat, lon float64, err error)
}

// GoogleGeocoder uses the Google Geocoding API through kelvins/geocoder.
type GoogleGeocoder struct {
	apiKey string
	mu     sync.Mutex
}

// NewGoogleGeocoder creates a geocoder for the given Google API key.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{apiKey: apiKey}
}

// Geocode looks up the first match for city and country. ctx cancels the wait, not the request.
func (g *GoogleGeocoder) Geocode(ctx context.Context, city, country string) (float64, float64, error) {
	if g.apiKey == "" {
		return 0, 0, ErrNoAPIKey
	}

	type result struct {
		loc geocoder.Location
		err error
	}
	ch := make(chan result, 1)
	go func() {
		// the library reads its key from a package variable
		g.mu.Lock()
		defer g.mu.Unlock()
		geocoder.ApiKey = g.apiKey
		loc, err := geocoder.Geocoding(geocoder.Address{City: city, Country: country})
		ch <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return 0, 0, r.err
		}
		return r.loc.Latitude, r.loc.Longitude, nil
	}
}

// Resolver picks the location hint for a user. Order of preference: geocoded user city,
// user city by name, configured default, provider-side IP detection.
type Resolver struct {
	geocoder Geocoder
	fallback weather.Location
	logger   *zap.Logger

	mu    sync.Mutex
	cache map[string]weather.Location
}

// NewResolver builds a Resolver. geocoder may be nil.
func NewResolver(g Geocoder, fallback weather.Location, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		geocoder: g,
		fallback: fallback,
		logger:   logger,
		cache:    make(map[string]weather.Location),
	}
}

// Resolve never fails; a geocoding error degrades to a city-name lookup.
func (r *Resolver) Resolve(ctx context.Context, city, country string) weather.Location {
	city, country = strings.TrimSpace(city), strings.TrimSpace(country)
	if city == "" {
		return r.fallback
	}
	loc := weather.Location{City: city, Country: country}
	if r.geocoder == nil {
		return loc
	}

	key := strings.ToLower(loc.Key())
	r.mu.Lock()
	cached, ok := r.cache[key]
	r.mu.Unlock()
	if ok {
		return cached
	}

	lat, lon, err := r.geocoder.Geocode(ctx, city, country)
	if err != nil {
		r.logger.Warn("geocoding failed, using city name",
			zap.String("city", city), zap.String("country", country), zap.Error(err))
		return loc
	}
	loc.Lat, loc.Lon = &lat, &lon

	r.mu.Lock()
	r.cache[key] = loc
	r.mu.Unlock()
	return loc
}
