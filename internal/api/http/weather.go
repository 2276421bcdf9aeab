package httpapi

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/plant-care/internal/advice"
	"github.com/i474232898/plant-care/internal/auth"
	"github.com/i474232898/plant-care/internal/weather"
)

const weatherTimeout = 15 * time.Second

// locationQuery holds query parameters for identifying a location.
// All fields are optional; lat and lon must be given together.
type locationQuery struct {
	City    string   `validate:"max=80"`
	Country string   `validate:"max=80"`
	Lat     *float64 `validate:"omitempty,min=-90,max=90"`
	Lon     *float64 `validate:"omitempty,min=-180,max=180"`
}

func (l locationQuery) empty() bool {
	return l.City == "" && l.Lat == nil && l.Lon == nil
}

func (l locationQuery) toLocation() weather.Location {
	return weather.Location{
		City:    l.City,
		Country: l.Country,
		Lat:     l.Lat,
		Lon:     l.Lon,
	}
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	var q locationQuery
	var err error

	q.City = c.Query("city")
	q.Country = c.Query("country")
	if q.Lat, err = queryFloat(c, "lat"); err != nil {
		return q, err
	}
	if q.Lon, err = queryFloat(c, "lon"); err != nil {
		return q, err
	}

	if (q.Lat == nil) != (q.Lon == nil) {
		return q, fiber.NewError(fiber.StatusBadRequest, "lat and lon must be given together")
	}
	if err := validate.Struct(q); err != nil {
		return q, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return q, nil
}

// currentWeather returns the aggregated weather plus a one-line watering hint.
// Without a location query the caller's saved city is used.
func (h *handler) currentWeather(c *fiber.Ctx) error {
	q, err := parseLocationQuery(c)
	if err != nil {
		return err
	}

	var snap *weather.WeatherSnapshot
	if q.empty() {
		snap = h.Care.CurrentWeather(c.UserContext(), auth.UserID(c))
	} else if h.Weather != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), weatherTimeout)
		defer cancel()
		loc := q.toLocation()
		s, err := h.Weather.Current(ctx, loc)
		if err != nil {
			h.Logger.Warn("weather unavailable for location query", zap.String("location", loc.Key()), zap.Error(err))
		} else {
			snap = &s
		}
	}
	if snap == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "weather data unavailable")
	}

	return c.JSON(fiber.Map{
		"weather": snap,
		"advice":  advice.QuickAdvice(snap.PrecipMM, snap.Temperature),
	})
}
