package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/YusovID/donor-match-service/internal/config"
	"github.com/YusovID/donor-match-service/internal/domain"
	"github.com/go-redis/redis/v8"
)

// StreamAdder is the part of *redis.Client the dispatcher needs.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisDispatcher appends events to a Redis stream capped at roughly maxLen
// entries.
type RedisDispatcher struct {
	client StreamAdder
	stream string
	maxLen int64
}

func NewRedisDispatcher(client StreamAdder, stream string, maxLen int64) *RedisDispatcher {
	return &RedisDispatcher{
		client: client,
		stream: stream,
		maxLen: maxLen,
	}
}

func (d *RedisDispatcher) Dispatch(ctx context.Context, event domain.RequestEvent) error {
	const op = "internal.notify.RedisDispatcher.Dispatch"

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal event: %w", op, err)
	}

	args := &redis.XAddArgs{
		Stream: d.stream,
		MaxLen: d.maxLen,
		Approx: d.maxLen > 0,
		Values: map[string]interface{}{
			"kind":       string(event.Kind),
			"request_id": event.RequestID,
			"data":       string(data),
		},
	}

	if err := d.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("%s: failed to add to stream '%s': %w", op, d.stream, err)
	}

	return nil
}

func NewRedisClient(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("can't connect to redis at %s: %w", cfg.Addr, err)
	}

	return client, nil
}
