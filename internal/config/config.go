package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/plant-care/internal/weather"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

// AppConfig is the process configuration read from the environment.
type AppConfig struct {
	Port string

	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeocoderAPIKey    string

	// WeatherTimeout bounds one aggregated weather lookup.
	WeatherTimeout time.Duration
	// HTTPTimeout is the per-request timeout of the outbound provider client.
	HTTPTimeout time.Duration
	// ProviderRPS caps requests per second to each weather provider (0 = unlimited).
	ProviderRPS float64

	// SyncInterval controls how often all WATER tasks are resynced.
	SyncInterval time.Duration

	// DefaultLocation is used for users without a saved city.
	DefaultLocation weather.Location

	StoreBackend string
	MongoURI     string
	MongoDB      string

	JWTSecret string
	TokenTTL  time.Duration

	LogLevel string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return FromEnv()
}

// FromEnv builds the config from the current environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", "8080")

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = getenvDefault("WEATHERAPI_KEY", os.Getenv("WEATHER_API_KEY"))
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	if cfg.WeatherTimeout, err = getenvDuration("WEATHER_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.SyncInterval, err = getenvDuration("SYNC_INTERVAL", 60*time.Minute); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = getenvDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	cfg.ProviderRPS = getenvFloat("PROVIDER_RPS", 5)

	cfg.DefaultLocation = weather.Location{
		City:    strings.TrimSpace(os.Getenv("WEATHER_LOCATION_CITY")),
		Country: strings.TrimSpace(os.Getenv("WEATHER_LOCATION_COUNTRY")),
	}

	cfg.StoreBackend = strings.ToLower(getenvDefault("STORE_BACKEND", BackendMemory))
	cfg.MongoURI = getenvDefault("MONGODB_URI", "mongodb://localhost:27017")
	cfg.MongoDB = getenvDefault("MONGODB_DB", "plantcare")
	switch cfg.StoreBackend {
	case BackendMemory, BackendMongo:
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: want %s or %s", cfg.StoreBackend, BackendMemory, BackendMongo)
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}
