package providers

import (
	"context"
	"fmt"

	"github.com/i474232898/plant-care/internal/weather"
	"golang.org/x/time/rate"
)

// RateLimitedProvider wraps a weather.Provider with a token-bucket limiter so a burst of
// syncs cannot exhaust a free-tier quota.
type RateLimitedProvider struct {
	provider weather.Provider
	limiter  *rate.Limiter
}

// NewRateLimitedProvider allows rps requests per second (fractional is fine) with the given burst.
func NewRateLimitedProvider(provider weather.Provider, rps float64, burst int) *RateLimitedProvider {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedProvider{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *RateLimitedProvider) Name() string {
	return r.provider.Name()
}

// Fetch waits for a token or for ctx to end, then forwards to the wrapped provider.
func (r *RateLimitedProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return weather.ProviderReading{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.provider.Fetch(ctx, loc)
}

var _ weather.Provider = (*RateLimitedProvider)(nil)
