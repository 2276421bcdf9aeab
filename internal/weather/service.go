package weather

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNoProviders is returned when the service was built without providers.
	ErrNoProviders = errors.New("no weather providers configured")
	// ErrNoReadings is returned when every provider failed.
	ErrNoReadings = errors.New("no successful provider readings")
)

// Service fans out to every provider and aggregates the successful readings.
// It keeps no state between calls: each Current call hits the providers.
type Service struct {
	providers []Provider
	logger    *zap.Logger
}

// NewService creates a new Service.
func NewService(providers []Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		providers: providers,
		logger:    logger,
	}
}

// Current fetches data from all providers concurrently for the given location
// and aggregates the successful readings into one snapshot.
func (s *Service) Current(ctx context.Context, loc Location) (WeatherSnapshot, error) {
	if len(s.providers) == 0 {
		return WeatherSnapshot{}, ErrNoProviders
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		readings = make([]ProviderReading, 0, len(s.providers))
	)

	for _, p := range s.providers {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := p.Fetch(ctx, loc)
			if err != nil {
				// Log and continue; we want partial success when possible.
				s.logger.Warn("provider fetch failed",
					zap.String("provider", p.Name()),
					zap.String("location", loc.Key()),
					zap.Error(err))
				return
			}

			mu.Lock()
			readings = append(readings, r)
			mu.Unlock()
		}()
	}

	wg.Wait()

	if len(readings) == 0 {
		return WeatherSnapshot{}, ErrNoReadings
	}

	snapshot := AggregateReadings(loc, readings)
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}

	s.logger.Debug("weather aggregated",
		zap.String("location", loc.Key()),
		zap.Int("readings", len(readings)),
		zap.Float64("tempC", snapshot.Temperature),
		zap.Float64("precipMm", snapshot.PrecipMM))

	return snapshot, nil
}
