package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	httpapi "github.com/i474232898/plant-care/internal/api/http"
	"github.com/i474232898/plant-care/internal/auth"
	"github.com/i474232898/plant-care/internal/care"
	"github.com/i474232898/plant-care/internal/common"
	"github.com/i474232898/plant-care/internal/config"
	"github.com/i474232898/plant-care/internal/geo"
	"github.com/i474232898/plant-care/internal/scheduler"
	"github.com/i474232898/plant-care/internal/store"
	"github.com/i474232898/plant-care/internal/tasks"
	"github.com/i474232898/plant-care/internal/weather"
	"github.com/i474232898/plant-care/internal/weather/providers"
)

const providerBurst = 2

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	careStore, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		zl.Fatal("failed to open store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer closeStore()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Providers with resilience (backoff + circuit breaker) behind a rate limiter.
	var provs []weather.Provider
	if cfg.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey))
	}
	if cfg.OpenWeatherAPIKey != "" {
		provs = append(provs, providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey))
	}
	// Open-Meteo needs no key but only answers coordinate lookups.
	provs = append(provs, providers.NewOpenMeteoProvider(httpClient))
	if cfg.ProviderRPS > 0 {
		for i, p := range provs {
			provs[i] = providers.NewRateLimitedProvider(p, cfg.ProviderRPS, providerBurst)
		}
	}
	weatherSvc := weather.NewService(provs, zl.Named("weather"))

	var geocoder geo.Geocoder
	if cfg.GeocoderAPIKey != "" {
		geocoder = geo.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	}
	resolver := geo.NewResolver(geocoder, cfg.DefaultLocation, zl.Named("geo"))

	clock := common.SystemClock
	engine := tasks.NewEngine(careStore, careStore, weatherSvc, clock, cfg.WeatherTimeout, zl.Named("sync"))
	taskSvc := tasks.NewService(careStore, engine, resolver, clock, zl.Named("tasks"))

	careSvc := care.NewService(careStore, clock,
		care.WithWeather(weatherSvc, resolver, cfg.WeatherTimeout),
		care.WithLogger(zl.Named("care")),
		care.WithResync(func(ctx context.Context, userID string) {
			if _, err := taskSvc.Sync(ctx, userID); err != nil {
				zl.Warn("resync after plant change failed", zap.String("user", userID), zap.Error(err))
			}
		}),
	)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := auth.NewService(careStore, tokens)

	// Scheduler that periodically resyncs every user's tasks.
	sched := scheduler.New(taskSvc, cfg.SyncInterval, zl.Named("scheduler"))
	if err := sched.Start(); err != nil {
		zl.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "plant-care",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler(zl.Named("http")),
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "plant-care",
			"store":   cfg.StoreBackend,
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Auth:    authSvc,
		Tokens:  tokens,
		Care:    careSvc,
		Tasks:   taskSvc,
		Weather: weatherSvc,
		Logger:  zl.Named("http"),
	})

	go func() {
		zl.Info("listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zl.Warn("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zl.Error("error during shutdown", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func openStore(ctx context.Context, cfg *config.AppConfig) (care.Store, func(), error) {
	if cfg.StoreBackend != config.BackendMongo {
		return store.NewMemoryStore(), func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	ms, err := store.NewMongoStore(connectCtx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, nil, err
	}
	return ms, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = ms.Close(closeCtx)
	}, nil
}
