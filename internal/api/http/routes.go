package httpapi

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/plant-care/internal/auth"
	"github.com/i474232898/plant-care/internal/care"
	"github.com/i474232898/plant-care/internal/common"
	"github.com/i474232898/plant-care/internal/tasks"
	"github.com/i474232898/plant-care/internal/weather"
)

var validate = validator.New()

// Deps are the services behind the API.
type Deps struct {
	Auth    *auth.Service
	Tokens  *auth.Tokens
	Care    *care.Service
	Tasks   *tasks.Service
	Weather weather.Source
	Logger  *zap.Logger
}

type handler struct {
	Deps
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	h := &handler{Deps: d}

	v1 := app.Group("/api/v1")

	v1.Post("/auth/register", h.register)
	v1.Post("/auth/login", h.login)

	api := v1.Group("", auth.Middleware(d.Tokens))

	api.Get("/me", h.me)
	api.Put("/me/location", h.updateLocation)

	api.Get("/plants", h.listPlants)
	api.Post("/plants", h.createPlant)
	api.Get("/plants/:id", h.getPlant)
	api.Put("/plants/:id", h.updatePlant)
	api.Delete("/plants/:id", h.deletePlant)
	api.Post("/plants/:id/water", h.waterPlant)
	api.Get("/plants/:id/advice", h.plantAdvice)
	api.Get("/plants/:id/tasks", h.plantTasks)
	api.Get("/plants/:id/journal", h.listJournal)
	api.Post("/plants/:id/journal", h.createJournalEntry)
	api.Delete("/journal/:id", h.deleteJournalEntry)

	api.Get("/tasks", h.listTasks)
	api.Get("/tasks/upcoming", h.upcomingTasks)
	api.Get("/tasks/notifications", h.taskNotifications)
	api.Post("/tasks/sync", h.syncTasks)
	api.Post("/tasks/:id/done", h.markDone)
	api.Post("/tasks/:id/missed", h.markMissed)
	api.Post("/tasks/:id/cancel", h.cancelTask)

	api.Get("/logs", h.listLogs)
	api.Post("/logs", h.createLog)

	api.Get("/supplies", h.listSupplies)
	api.Post("/supplies", h.createSupply)
	api.Post("/supplies/:id/adjust", h.adjustSupply)
	api.Delete("/supplies/:id", h.deleteSupply)

	api.Get("/weather/current", h.currentWeather)
}

// ErrorHandler renders every error as {"error": true, "message": ...} and maps
// domain errors to status codes.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx, err error) error {
		code, msg := statusFor(err)
		if code >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{
			"error":   true,
			"message": msg,
		})
	}
}

func statusFor(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case errors.Is(err, tasks.ErrInvalidTransition):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, care.ErrInvalid):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, care.ErrNotFound):
		return fiber.StatusNotFound, "not found"
	case errors.Is(err, care.ErrForbidden):
		return fiber.StatusForbidden, "forbidden"
	case errors.Is(err, care.ErrDuplicate):
		return fiber.StatusConflict, "already exists"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, err.Error()
	default:
		return fiber.StatusInternalServerError, "internal error"
	}
}

// bind parses the JSON body into req and validates it.
func bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// parseOptionalDate accepts YYYY-MM-DD or RFC3339; an empty string yields nil.
func parseOptionalDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if d, err := common.ParseDate(s); err == nil {
		return &d, nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return common.DatePtr(ts), nil
	}
	return nil, fiber.NewError(fiber.StatusBadRequest, "invalid date; use YYYY-MM-DD")
}

// queryFloat parses an optional finite float query parameter.
func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+key)
	}
	return &v, nil
}

func queryBool(c *fiber.Ctx, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+key)
	}
	return &v, nil
}
