package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"estatescout/internal/queue"
)

type Enqueuer interface {
	Enqueue(ctx context.Context, task queue.Task) error
}

// Scheduler periodically asks the worker to sweep orphaned listings.
type Scheduler struct {
	cron     *cron.Cron
	tasks    Enqueuer
	schedule string
	log      zerolog.Logger
}

func NewScheduler(tasks Enqueuer, schedule string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		tasks:    tasks,
		schedule: schedule,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if s.tasks == nil || s.schedule == "" {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.enqueueSweep); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info().Str("schedule", s.schedule).Msg("orphan sweep scheduled")
	return nil
}

// Stop waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) enqueueSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	task := queue.Task{Type: queue.TaskSweep, Reason: "scheduled"}
	if err := s.tasks.Enqueue(ctx, task); err != nil {
		s.log.Error().Err(err).Msg("enqueue sweep failed")
	}
}
