// Package notify hands request events to whatever delivers them to donors and
// hospitals. Delivery itself happens elsewhere; a Dispatcher only enqueues.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/YusovID/donor-match-service/internal/config"
	"github.com/YusovID/donor-match-service/internal/domain"
	"github.com/YusovID/donor-match-service/pkg/logger/sl"
)

const (
	BackendLog   = "log"
	BackendRedis = "redis"
	BackendMQTT  = "mqtt"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, event domain.RequestEvent) error
}

type LogDispatcher struct {
	log *slog.Logger
}

func NewLogDispatcher(log *slog.Logger) *LogDispatcher {
	return &LogDispatcher{log: log}
}

func (d *LogDispatcher) Dispatch(_ context.Context, event domain.RequestEvent) error {
	d.log.Info("request event",
		slog.String("event_id", event.ID),
		slog.String("kind", string(event.Kind)),
		slog.String("request_id", event.RequestID),
		slog.String("donor_id", event.DonorID),
		slog.String("status", string(event.Status)),
		slog.Any("ranked_donor_ids", event.RankedDonorIDs),
	)

	return nil
}

// New builds the configured backend. The returned close func releases its
// connection and is safe to call when nothing was opened.
func New(ctx context.Context, cfg config.Notifier, log *slog.Logger) (Dispatcher, func(), error) {
	const op = "internal.notify.New"

	log = log.With(slog.String("op", op), slog.String("backend", cfg.Backend))

	switch cfg.Backend {
	case "", BackendLog:
		return NewLogDispatcher(log), func() {}, nil
	case BackendRedis:
		client, err := NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}

		log.Info("notifier connected", slog.String("addr", cfg.Redis.Addr), slog.String("stream", cfg.Redis.Stream))

		closeFn := func() {
			if err := client.Close(); err != nil {
				log.Warn("failed to close redis client", sl.Err(err))
			}
		}

		return NewRedisDispatcher(client, cfg.Redis.Stream, cfg.Redis.MaxLen), closeFn, nil
	case BackendMQTT:
		client, err := NewMQTTClient(cfg.MQTT)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}

		log.Info("notifier connected", slog.String("broker", cfg.MQTT.Broker), slog.String("topic", cfg.MQTT.Topic))

		closeFn := func() { client.Disconnect(250) }

		return NewMQTTDispatcher(client, cfg.MQTT.Topic, cfg.MQTT.QoS, cfg.MQTT.PublishTimeout), closeFn, nil
	default:
		return nil, nil, fmt.Errorf("%s: unknown notifier backend '%s'", op, cfg.Backend)
	}
}
