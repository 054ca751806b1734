package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatescout/internal/queue"
)

type recorder struct {
	mu    sync.Mutex
	tasks []queue.Task
}

func (r *recorder) Enqueue(_ context.Context, task queue.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
	return nil
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

func TestSchedulerEnqueuesSweep(t *testing.T) {
	rec := &recorder{}
	s := NewScheduler(rec, "* * * * * *", zerolog.Nop())
	require.NoError(t, s.Start())
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return rec.len() > 0 }, 3*time.Second, 50*time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, queue.TaskSweep, rec.tasks[0].Type)
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(&recorder{}, "every tuesday", zerolog.Nop())
	require.Error(t, s.Start())
}

func TestSchedulerDisabled(t *testing.T) {
	s := NewScheduler(&recorder{}, "", zerolog.Nop())
	require.NoError(t, s.Start())
	s.Stop(context.Background())
}
