package weather

import (
	"context"
	"time"
)

// ProviderReading represents a single provider's normalized reading
// that can be aggregated into a WeatherSnapshot.
type ProviderReading struct {
	ProviderName string
	Timestamp    time.Time

	TemperatureC float64
	HumidityPct  float64
	WindSpeedMS  float64
	PressureHpa  float64
	PrecipMm     float64
	Condition    Condition
	Description  string

	// Where the provider resolved the request to, when it reports it.
	LocationName string
	Lat          *float64
	Lon          *float64
}

// Provider abstracts a weather data source (e.g. WeatherAPI, OpenWeatherMap, Open-Meteo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (ProviderReading, error)
}

// Source is what the care engines consume: one fresh current-weather reading.
type Source interface {
	Current(ctx context.Context, loc Location) (WeatherSnapshot, error)
}
