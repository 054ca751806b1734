package queue

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type Handler interface {
	Handle(ctx context.Context, task Task) error
}

// Consumer reads the media stream as a member of a consumer group and
// reclaims messages left pending by crashed members.
type Consumer struct {
	client        *redis.Client
	stream        string
	group         string
	name          string
	claimInterval time.Duration
	log           zerolog.Logger
	handler       Handler
}

func NewConsumer(client *redis.Client, stream, group, name string, claimInterval time.Duration, log zerolog.Logger, handler Handler) *Consumer {
	return &Consumer{
		client:        client,
		stream:        stream,
		group:         group,
		name:          name,
		claimInterval: claimInterval,
		log:           log.With().Str("stream", stream).Str("consumer", name).Logger(),
		handler:       handler,
	}
}

// EnsureGroup creates the stream and group when missing.
func (c *Consumer) EnsureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (c *Consumer) Start(ctx context.Context) error {
	if err := c.EnsureGroup(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(c.claimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := c.read(ctx); err != nil && !errors.Is(err, context.Canceled) {
				c.log.Error().Err(err).Msg("stream read error")
				time.Sleep(2 * time.Second)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.claimStalled(ctx); err != nil {
				c.log.Error().Err(err).Msg("claim stalled failed")
			}
		default:
		}
	}
}

func (c *Consumer) read(ctx context.Context) error {
	result, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.name,
		Streams:  []string{c.stream, ">"},
		Count:    10,
		Block:    5 * time.Second,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	for _, stream := range result {
		for _, msg := range stream.Messages {
			c.process(ctx, msg)
		}
	}
	return nil
}

// process acks a message once handled. Undecodable messages are acked too so
// they do not cycle through claims forever.
func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	task, err := DecodeTask(msg.Values)
	if err != nil {
		c.log.Warn().Err(err).Str("message_id", msg.ID).Msg("dropping malformed task")
		c.ack(ctx, msg.ID)
		return
	}

	if err := c.handler.Handle(ctx, task); err != nil {
		c.log.Error().
			Err(err).
			Str("message_id", msg.ID).
			Str("type", string(task.Type)).
			Msg("handle task failed")
		return
	}
	c.ack(ctx, msg.ID)
}

func (c *Consumer) ack(ctx context.Context, id string) {
	if err := c.client.XAck(ctx, c.stream, c.group, id).Err(); err != nil {
		c.log.Error().Err(err).Str("message_id", id).Msg("ack failed")
	}
}

func (c *Consumer) claimStalled(ctx context.Context) error {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.stream,
		Group:  c.group,
		Start:  "-",
		End:    "+",
		Count:  10,
	}).Result()
	if err != nil {
		return err
	}

	for _, entry := range pending {
		if entry.Idle < c.claimInterval {
			continue
		}
		msgs, err := c.client.XClaim(ctx, &redis.XClaimArgs{
			Stream:   c.stream,
			Group:    c.group,
			Consumer: c.name,
			MinIdle:  c.claimInterval,
			Messages: []string{entry.ID},
		}).Result()
		if err != nil {
			c.log.Error().Err(err).Str("message_id", entry.ID).Msg("claim error")
			continue
		}
		for _, msg := range msgs {
			c.process(ctx, msg)
		}
	}
	return nil
}
