package tasks

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"estatescout/internal/queue"
)

type MediaRemover interface {
	Remove(ctx context.Context, keys ...string) error
}

type OrphanSweeper interface {
	SweepOrphans(ctx context.Context) (int, error)
}

// Processor executes tasks read from the media stream.
type Processor struct {
	media   MediaRemover
	sweeper OrphanSweeper
	logger  zerolog.Logger
}

func NewProcessor(media MediaRemover, sweeper OrphanSweeper, logger zerolog.Logger) *Processor {
	return &Processor{
		media:   media,
		sweeper: sweeper,
		logger:  logger,
	}
}

func (p *Processor) Handle(ctx context.Context, task queue.Task) error {
	switch task.Type {
	case queue.TaskPurge:
		return p.handlePurge(ctx, task)
	case queue.TaskSweep:
		return p.handleSweep(ctx, task)
	default:
		p.logger.Warn().Str("type", string(task.Type)).Msg("unknown task type")
		return nil
	}
}

func (p *Processor) handlePurge(ctx context.Context, task queue.Task) error {
	if len(task.Keys) == 0 {
		return nil
	}
	if err := p.media.Remove(ctx, task.Keys...); err != nil {
		return fmt.Errorf("purge: %w", err)
	}
	p.logger.Info().
		Int("objects", len(task.Keys)).
		Str("reason", task.Reason).
		Msg("media purged")
	return nil
}

func (p *Processor) handleSweep(ctx context.Context, task queue.Task) error {
	removed, err := p.sweeper.SweepOrphans(ctx)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	p.logger.Info().
		Int("removed", removed).
		Str("reason", task.Reason).
		Msg("orphan sweep finished")
	return nil
}
