package tasks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/plant-care/internal/care"
	"github.com/i474232898/plant-care/internal/common"
	"github.com/i474232898/plant-care/internal/weather"
)

// ErrInvalidTransition is returned when a task is already DONE, MISSED or CANCELLED.
var ErrInvalidTransition = fmt.Errorf("%w: task is no longer open", care.ErrInvalid)

const completedNote = "Completed scheduled task"

// LocationResolver picks the weather location for a user's city.
type LocationResolver interface {
	Resolve(ctx context.Context, city, country string) weather.Location
}

// Service is the user-facing task API. Every call is scoped to an explicit user id.
type Service struct {
	store    care.Store
	engine   *Engine
	resolver LocationResolver
	clock    common.Clock
	logger   *zap.Logger
	locks    *syncLocks
	newID    func() string
}

// NewService creates a Service. resolver may be nil (provider IP detection is used).
func NewService(store care.Store, engine *Engine, resolver LocationResolver, clock common.Clock, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		engine:   engine,
		resolver: resolver,
		clock:    clock,
		logger:   logger,
		locks:    newSyncLocks(),
		newID:    uuid.NewString,
	}
}

// Sync recomputes WATER tasks for userID, or for every user when userID is empty.
// Passes for the same user never overlap, and an all-users pass excludes every other pass.
func (s *Service) Sync(ctx context.Context, userID string) (SyncResult, error) {
	release := s.locks.lock(userID)
	defer release()

	return s.engine.SyncAllWaterTasks(ctx, userID, s.locationFor(ctx, userID))
}

func (s *Service) locationFor(ctx context.Context, userID string) weather.Location {
	if s.resolver == nil {
		return weather.Location{}
	}
	if userID == "" {
		return s.resolver.Resolve(ctx, "", "")
	}
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, care.ErrNotFound) {
			s.logger.Warn("user lookup failed, using default location", zap.String("user", userID), zap.Error(err))
		}
		return s.resolver.Resolve(ctx, "", "")
	}
	return s.resolver.Resolve(ctx, u.City, u.Country)
}

// NeedingAttention lists open and missed tasks: DUE and TODAY first, then by due date.
func (s *Service) NeedingAttention(ctx context.Context, userID string) ([]care.CareTask, error) {
	tasks, err := s.store.ListTasksNeedingAttention(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		ui, uj := urgent(tasks[i].Status), urgent(tasks[j].Status)
		if ui != uj {
			return ui
		}
		return tasks[i].DueDate.Before(tasks[j].DueDate)
	})
	return tasks, nil
}

func urgent(st care.TaskStatus) bool {
	return st == care.StatusDue || st == care.StatusToday
}

const upcomingDays = 7

// Upcoming lists open tasks due from tomorrow through a week from today, by due date.
func (s *Service) Upcoming(ctx context.Context, userID string) ([]care.CareTask, error) {
	all, err := s.store.ListTasksNeedingAttention(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := common.Today(s.clock)
	from, to := today.AddDate(0, 0, 1), today.AddDate(0, 0, upcomingDays)

	out := []care.CareTask{}
	for _, t := range all {
		if !t.Status.Open() || t.DueDate.Before(from) || t.DueDate.After(to) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

// Notifications counts the user's DUE and MISSED tasks.
type Notifications struct {
	Due    int `json:"due"`
	Missed int `json:"missed"`
}

// Notifications summarizes tasks that need the user's attention.
func (s *Service) Notifications(ctx context.Context, userID string) (Notifications, error) {
	all, err := s.store.ListTasksNeedingAttention(ctx, userID)
	if err != nil {
		return Notifications{}, err
	}
	var n Notifications
	for _, t := range all {
		switch t.Status {
		case care.StatusDue:
			n.Due++
		case care.StatusMissed:
			n.Missed++
		}
	}
	return n, nil
}

// TasksForPlant lists every task of a plant owned by userID.
func (s *Service) TasksForPlant(ctx context.Context, userID, plantID string) ([]care.CareTask, error) {
	p, err := s.store.GetPlant(ctx, plantID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, care.ErrForbidden
	}
	return s.store.ListTasksByPlant(ctx, plantID)
}

// MarkDone completes a task, logs it, and for WATER tasks records today as the plant's
// last watering before resyncing, so the next task is scheduled from today.
func (s *Service) MarkDone(ctx context.Context, userID, taskID string) (care.CareTask, error) {
	t, err := s.openTask(ctx, userID, taskID)
	if err != nil {
		return care.CareTask{}, err
	}

	today := common.Today(s.clock)
	if err := s.store.UpdateTaskStatus(ctx, t.ID, care.StatusDone, &today); err != nil {
		return care.CareTask{}, err
	}
	t.Status = care.StatusDone
	t.LastCompleted = &today

	entry := care.CareLogEntry{
		ID:        s.newID(),
		UserID:    t.UserID,
		PlantID:   t.PlantID,
		PlantName: t.PlantName,
		Date:      today,
		Action:    t.Type,
		Notes:     completedNote,
		CreatedAt: s.now(),
	}
	if err := s.store.InsertLog(ctx, entry); err != nil {
		return t, err
	}

	if t.Type != care.TaskWater {
		return t, nil
	}

	p, err := s.store.GetPlant(ctx, t.PlantID)
	switch {
	case errors.Is(err, care.ErrNotFound):
		s.logger.Warn("completed task for missing plant", zap.String("task", t.ID), zap.String("plant", t.PlantID))
		return t, nil
	case err != nil:
		return t, err
	}
	p.LastWatered = &today
	if err := s.store.UpdatePlant(ctx, p); err != nil {
		return t, err
	}

	if _, err := s.Sync(ctx, userID); err != nil {
		return t, err
	}
	return t, nil
}

// MarkMissed moves an open task to MISSED.
func (s *Service) MarkMissed(ctx context.Context, userID, taskID string) (care.CareTask, error) {
	return s.transition(ctx, userID, taskID, care.StatusMissed)
}

// Cancel moves an open task to CANCELLED.
func (s *Service) Cancel(ctx context.Context, userID, taskID string) (care.CareTask, error) {
	return s.transition(ctx, userID, taskID, care.StatusCancelled)
}

func (s *Service) transition(ctx context.Context, userID, taskID string, to care.TaskStatus) (care.CareTask, error) {
	t, err := s.openTask(ctx, userID, taskID)
	if err != nil {
		return care.CareTask{}, err
	}
	if err := s.store.UpdateTaskStatus(ctx, t.ID, to, nil); err != nil {
		return care.CareTask{}, err
	}
	t.Status = to
	return t, nil
}

func (s *Service) openTask(ctx context.Context, userID, taskID string) (care.CareTask, error) {
	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return care.CareTask{}, err
	}
	if t.UserID != userID {
		return care.CareTask{}, care.ErrForbidden
	}
	if !t.Status.Open() {
		return care.CareTask{}, ErrInvalidTransition
	}
	return t, nil
}

func (s *Service) now() time.Time {
	if s.clock == nil {
		return common.SystemClock()
	}
	return s.clock().UTC()
}
