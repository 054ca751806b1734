package queue

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

type TaskType string

const (
	// TaskPurge deletes the listed media objects.
	TaskPurge TaskType = "purge"
	// TaskSweep removes listings whose owner account no longer exists.
	TaskSweep TaskType = "sweep"
)

type Task struct {
	Type   TaskType
	Keys   []string
	Reason string
}

func (t Task) values() map[string]any {
	return map[string]any{
		"type":   string(t.Type),
		"keys":   strings.Join(t.Keys, ","),
		"reason": t.Reason,
	}
}

// DecodeTask reads a task back from stream message values.
func DecodeTask(values map[string]any) (Task, error) {
	typ, _ := values["type"].(string)
	if typ == "" {
		return Task{}, fmt.Errorf("task without type")
	}
	task := Task{Type: TaskType(typ)}
	if keys, _ := values["keys"].(string); keys != "" {
		task.Keys = strings.Split(keys, ",")
	}
	task.Reason, _ = values["reason"].(string)
	return task, nil
}

// Producer appends tasks to the media stream. A nil client drops tasks.
type Producer struct {
	client *redis.Client
	stream string
}

func NewProducer(client *redis.Client, stream string) *Producer {
	return &Producer{client: client, stream: stream}
}

func (p *Producer) Enqueue(ctx context.Context, task Task) error {
	if p == nil || p.client == nil {
		return nil
	}
	_, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: task.values(),
	}).Result()
	return err
}
