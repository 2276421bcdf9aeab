package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/plant-care/internal/tasks"
)

const jobTimeout = 2 * time.Minute

// Syncer runs one task sync pass; "" means every user.
type Syncer interface {
	Sync(ctx context.Context, userID string) (tasks.SyncResult, error)
}

// Scheduler periodically resyncs every user's WATER tasks.
type Scheduler struct {
	scheduler *gocron.Scheduler
	syncer    Syncer
	interval  time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler.
func New(syncer Syncer, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := gocron.NewScheduler(time.UTC)
	// a slow pass must not stack up behind itself
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		syncer:    syncer,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	s.logger.Info("scheduler: running task sync")

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	res, err := s.syncer.Sync(ctx, "")
	if err != nil {
		s.logger.Error("scheduler: task sync failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduler: completed task sync",
		zap.Int("synced", res.Synced),
		zap.Int("removed", res.Removed))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
