package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/YusovID/donor-match-service/internal/config"
	"github.com/YusovID/donor-match-service/internal/domain"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	connectTimeout        = 10 * time.Second
	defaultPublishTimeout = 2 * time.Second
)

var ErrPublishTimeout = errors.New("mqtt publish timed out")

// Publisher is the part of mqtt.Client the dispatcher needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTDispatcher publishes each event to {topic}/{request_id}.
type MQTTDispatcher struct {
	client  Publisher
	topic   string
	qos     byte
	timeout time.Duration
}

func NewMQTTDispatcher(client Publisher, topic string, qos byte, timeout time.Duration) *MQTTDispatcher {
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}

	return &MQTTDispatcher{
		client:  client,
		topic:   topic,
		qos:     qos,
		timeout: timeout,
	}
}

func (d *MQTTDispatcher) Dispatch(ctx context.Context, event domain.RequestEvent) error {
	const op = "internal.notify.MQTTDispatcher.Dispatch"

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal event: %w", op, err)
	}

	topic := fmt.Sprintf("%s/%s", d.topic, event.RequestID)
	token := d.client.Publish(topic, d.qos, false, payload)

	timer := time.NewTimer(d.timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	case <-timer.C:
		return fmt.Errorf("%s: %w: topic '%s'", op, ErrPublishTimeout, topic)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("%s: failed to publish to '%s': %w", op, topic, err)
	}

	return nil
}

func NewMQTTClient(cfg config.MQTT) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)

	client := mqtt.NewClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("can't connect to mqtt broker at %s: timed out", cfg.Broker)
	}

	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("can't connect to mqtt broker at %s: %w", cfg.Broker, err)
	}

	return client, nil
}
