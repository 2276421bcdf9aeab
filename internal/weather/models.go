package weather

import (
	"fmt"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Location is a hint for where to read the weather.
// Lat/Lon win over City/Country; an empty Location means "detect by caller IP".
type Location struct {
	City    string   `json:"city,omitempty"`
	Country string   `json:"country,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// HasCoordinates reports whether both Lat and Lon are set.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lon != nil
}

// IsAuto reports whether the location should be auto-detected.
func (l Location) IsAuto() bool {
	return !l.HasCoordinates() && l.City == ""
}

// Key returns a canonical string key for logging.
func (l Location) Key() string {
	switch {
	case l.HasCoordinates():
		return fmt.Sprintf("%.4f,%.4f", *l.Lat, *l.Lon)
	case l.City != "":
		return l.City + ":" + l.Country
	default:
		return "auto"
	}
}

// WeatherSnapshot is the normalized, aggregated weather view at a point in time.
// It is never persisted.
type WeatherSnapshot struct {
	Location     Location  `json:"location"`
	LocationName string    `json:"locationName,omitempty"`
	Timestamp    time.Time `json:"timestamp"` // always UTC
	Temperature  float64   `json:"temperatureC"`
	Humidity     float64   `json:"humidityPercent"`
	WindSpeed    float64   `json:"windSpeed"`
	Pressure     float64   `json:"pressureHpa"`
	PrecipMM     float64   `json:"precipMm"`
	Condition    Condition `json:"condition"`
	Description  string    `json:"description,omitempty"`

	// Providers contributing to this snapshot.
	Providers []ProviderContribution `json:"providers,omitempty"`
}

// ProviderContribution describes data coming from a single provider used in aggregation.
type ProviderContribution struct {
	ProviderName string    `json:"provider"`
	Timestamp    time.Time `json:"timestamp"`
}
