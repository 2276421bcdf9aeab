package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	for _, key := range []string{"PORT", "WEATHERAPI_KEY", "WEATHER_API_KEY", "SYNC_INTERVAL", "STORE_BACKEND", "PROVIDER_RPS", "WEATHER_LOCATION_CITY"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.StoreBackend != BackendMemory {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.WeatherTimeout != 15*time.Second || cfg.SyncInterval != time.Hour {
		t.Fatalf("unexpected durations %v %v", cfg.WeatherTimeout, cfg.SyncInterval)
	}
	if cfg.ProviderRPS != 5 {
		t.Fatalf("expected default rps 5, got %v", cfg.ProviderRPS)
	}
	if !cfg.DefaultLocation.IsAuto() {
		t.Fatalf("expected auto default location, got %+v", cfg.DefaultLocation)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("WEATHERAPI_KEY", "")
	t.Setenv("WEATHER_API_KEY", "legacy-key")
	t.Setenv("SYNC_INTERVAL", "15m")
	t.Setenv("STORE_BACKEND", "Mongo")
	t.Setenv("WEATHER_LOCATION_CITY", " Vienna ")
	t.Setenv("WEATHER_LOCATION_COUNTRY", "AT")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WeatherAPIKey != "legacy-key" {
		t.Fatalf("expected legacy key alias, got %q", cfg.WeatherAPIKey)
	}
	if cfg.SyncInterval != 15*time.Minute || cfg.StoreBackend != BackendMongo {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.DefaultLocation.City != "Vienna" || cfg.DefaultLocation.Country != "AT" {
		t.Fatalf("unexpected default location %+v", cfg.DefaultLocation)
	}
}

func TestFromEnvErrors(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SYNC_INTERVAL", "often")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error for bad SYNC_INTERVAL")
	}

	t.Setenv("SYNC_INTERVAL", "")
	t.Setenv("STORE_BACKEND", "sqlite")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
