// Package tasks keeps each plant's single WATER task in step with its schedule and the weather.
package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/plant-care/internal/advice"
	"github.com/i474232898/plant-care/internal/care"
	"github.com/i474232898/plant-care/internal/common"
	"github.com/i474232898/plant-care/internal/weather"
)

// DefaultWeatherTimeout bounds the single weather fetch of a sync pass.
const DefaultWeatherTimeout = 15 * time.Second

const dueNote = "Watering due"

// SyncResult summarizes one sync pass.
type SyncResult struct {
	Synced      int  `json:"synced"`
	Removed     int  `json:"removed"`
	Skipped     int  `json:"skipped"`
	WeatherUsed bool `json:"weatherUsed"`
}

// Engine recomputes WATER tasks. It holds no state between calls.
type Engine struct {
	plants         care.PlantStore
	tasks          care.TaskStore
	weather        weather.Source
	clock          common.Clock
	weatherTimeout time.Duration
	newID          func() string
	logger         *zap.Logger
}

// NewEngine wires an Engine. src may be nil, in which case syncs use schedule math only.
func NewEngine(plants care.PlantStore, tasks care.TaskStore, src weather.Source, clock common.Clock, weatherTimeout time.Duration, logger *zap.Logger) *Engine {
	if weatherTimeout <= 0 {
		weatherTimeout = DefaultWeatherTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		plants:         plants,
		tasks:          tasks,
		weather:        src,
		clock:          clock,
		weatherTimeout: weatherTimeout,
		newID:          uuid.NewString,
		logger:         logger,
	}
}

// SyncAllWaterTasks reconciles the WATER task of every plant owned by userID
// (every plant when userID is empty). Weather failures degrade to schedule-only math;
// store errors are returned as-is and stop the pass.
func (e *Engine) SyncAllWaterTasks(ctx context.Context, userID string, hint weather.Location) (SyncResult, error) {
	var res SyncResult
	today := common.Today(e.clock)

	w := e.fetchWeather(ctx, hint)
	res.WeatherUsed = w != nil

	plants, err := e.plants.ListPlants(ctx, userID)
	if err != nil {
		return res, err
	}

	for _, p := range plants {
		if p.ID == "" {
			e.logger.Warn("skipping plant without id", zap.String("name", p.Name))
			res.Skipped++
			continue
		}

		if !p.HasSchedule() {
			if err := e.tasks.DeleteTasksByPlantAndType(ctx, p.ID, care.TaskWater, p.UserID); err != nil {
				return res, err
			}
			res.Removed++
			continue
		}

		next := NextWaterDue(p.LastWatered, *p.WaterEveryDays, w, today)
		status := StatusFor(next, today)

		task := care.CareTask{
			ID:            e.newID(),
			UserID:        p.UserID,
			PlantID:       p.ID,
			PlantName:     p.Name,
			Type:          care.TaskWater,
			DueDate:       next,
			Status:        status,
			FrequencyDays: common.IntPtr(*p.WaterEveryDays),
		}
		if status == care.StatusDue || status == care.StatusToday {
			task.Notes = dueNote
		}

		if err := e.tasks.ReplaceWaterTask(ctx, p.ID, task); err != nil {
			return res, err
		}
		res.Synced++
	}

	e.logger.Info("water tasks synced",
		zap.String("user", userOrAll(userID)),
		zap.Int("synced", res.Synced),
		zap.Int("removed", res.Removed),
		zap.Int("skipped", res.Skipped),
		zap.Bool("weather", res.WeatherUsed))
	return res, nil
}

func (e *Engine) fetchWeather(ctx context.Context, hint weather.Location) *weather.WeatherSnapshot {
	if e.weather == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, e.weatherTimeout)
	defer cancel()

	snap, err := e.weather.Current(ctx, hint)
	if err != nil {
		e.logger.Warn("weather unavailable, syncing on schedule only",
			zap.String("location", hint.Key()), zap.Error(err))
		return nil
	}
	return &snap
}

// NextWaterDue is (lastWatered or today) + everyDays, nudged by the weather.
//
// The nudge only applies when the date is today or later. Overdue tasks are neither
// pushed further back by rain nor pulled earlier by heat. Whether that asymmetry is
// intended product behavior is unresolved; keep it until someone decides.
func NextWaterDue(lastWatered *time.Time, everyDays int, w *weather.WeatherSnapshot, today time.Time) time.Time {
	base := today
	if lastWatered != nil {
		base = common.DateOf(*lastWatered)
	}
	next := common.AddDays(base, everyDays)

	if w != nil && !next.Before(today) {
		switch {
		case w.PrecipMM >= advice.RainSkipThresholdMM:
			next = common.AddDays(next, 1)
		case w.Temperature >= advice.HotDayC:
			next = common.AddDays(next, -1)
			if next.Before(today) {
				next = today
			}
		}
	}
	return next
}

// StatusFor derives DUE, TODAY or UPCOMING from a due date.
func StatusFor(due, today time.Time) care.TaskStatus {
	switch {
	case due.Before(today):
		return care.StatusDue
	case due.Equal(today):
		return care.StatusToday
	default:
		return care.StatusUpcoming
	}
}

func userOrAll(userID string) string {
	if userID == "" {
		return "all"
	}
	return userID
}
