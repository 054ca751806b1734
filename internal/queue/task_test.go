package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskValuesRoundTrip(t *testing.T) {
	task := Task{
		Type:   TaskPurge,
		Keys:   []string{"properties/2026/01/01/a.jpeg", "properties/2026/01/01/b.png"},
		Reason: "property deleted",
	}

	got, err := DecodeTask(task.values())
	require.NoError(t, err)
	assert.Equal(t, task, got)
}

func TestDecodeTaskWithoutKeys(t *testing.T) {
	got, err := DecodeTask(map[string]any{"type": "sweep", "keys": ""})
	require.NoError(t, err)
	assert.Equal(t, TaskSweep, got.Type)
	assert.Nil(t, got.Keys)
}

func TestDecodeTaskRequiresType(t *testing.T) {
	_, err := DecodeTask(map[string]any{"keys": "a"})
	require.Error(t, err)
}

func TestNilProducerDropsTasks(t *testing.T) {
	var p *Producer
	require.NoError(t, p.Enqueue(context.Background(), Task{Type: TaskSweep}))
	require.NoError(t, NewProducer(nil, "s").Enqueue(context.Background(), Task{Type: TaskSweep}))
}
