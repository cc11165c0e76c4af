package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "marketscope:queue:"

// RedisPublisher pushes jobs onto Redis lists, one list per queue. Delayed
// jobs go into a per-queue sorted set scored by their due time; a worker
// side sweeper moves due members onto the list.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher builds a publisher over an existing Redis client.
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish implements Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, queue string, payload interface{}) error {
	body, err := wrap(queue, payload)
	if err != nil {
		return err
	}
	if err := p.client.LPush(ctx, keyPrefix+queue, body).Err(); err != nil {
		return fmt.Errorf("push to %s: %w", queue, err)
	}
	return nil
}

// PublishDelayed implements Publisher.
func (p *RedisPublisher) PublishDelayed(ctx context.Context, queue string, payload interface{}, delay time.Duration) error {
	if delay <= 0 {
		return p.Publish(ctx, queue, payload)
	}
	body, err := wrap(queue, payload)
	if err != nil {
		return err
	}
	due := time.Now().Add(delay)
	member := redis.Z{Score: float64(due.UnixMilli()), Member: body}
	if err := p.client.ZAdd(ctx, keyPrefix+queue+":delayed", member).Err(); err != nil {
		return fmt.Errorf("schedule on %s: %w", queue, err)
	}
	return nil
}
