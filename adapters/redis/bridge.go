package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bhargav676/intern/domain"
	"github.com/bhargav676/intern/domain/repositories"
)

// wireEvent is the pub/sub encoding of domain.Event
type wireEvent struct {
	Type       domain.EventType `json:"event"`
	Key        string           `json:"key,omitempty"`
	Origin     string           `json:"origin"`
	Data       json.RawMessage  `json:"data"`
	OccurredAt time.Time        `json:"occurredAt"`
}

// Bridge relays events between server instances over a Redis channel so that
// dashboards connected to any instance see every reading. Events published
// here are tagged with this instance's origin id and ignored when they come
// back.
type Bridge struct {
	client  *redis.Client
	channel string
	origin  string
	local   repositories.EventSink
	logger  *zap.Logger
}

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewBridge creates a bridge delivering remote events to local
func NewBridge(client *redis.Client, channel string, local repositories.EventSink, logger *zap.Logger) *Bridge {
	return &Bridge{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		local:   local,
		logger:  logger,
	}
}

func (b *Bridge) Origin() string { return b.origin }

// Publish implements repositories.EventSink
func (b *Bridge) Publish(ctx context.Context, event domain.Event) error {
	if event.Origin != "" && event.Origin != b.origin {
		// Already relayed from another instance
		return nil
	}
	data, err := encodeEvent(event, b.origin)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	return nil
}

// Run subscribes to the channel until ctx is cancelled
func (b *Bridge) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	// Wait for confirmation that subscription is created
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}
	b.logger.Info("Redis bridge subscribed",
		zap.String("channel", b.channel),
		zap.String("origin", b.origin))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.handle(ctx, []byte(msg.Payload))
		}
	}
}

func (b *Bridge) handle(ctx context.Context, payload []byte) {
	event, err := decodeEvent(payload)
	if err != nil {
		b.logger.Warn("Dropping malformed relayed event", zap.Error(err))
		return
	}
	if event.Origin == b.origin {
		return
	}
	if err := b.local.Publish(ctx, event); err != nil {
		b.logger.Warn("Failed to deliver relayed event",
			zap.String("event", string(event.Type)),
			zap.Error(err))
	}
}

// Ping implements repositories.Pinger
func (b *Bridge) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *Bridge) Close() error {
	return b.client.Close()
}

func encodeEvent(event domain.Event, origin string) ([]byte, error) {
	data, err := json.Marshal(event.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", event.Type, err)
	}
	return json.Marshal(wireEvent{
		Type:       event.Type,
		Key:        event.Key,
		Origin:     origin,
		Data:       data,
		OccurredAt: event.OccurredAt,
	})
}

func decodeEvent(payload []byte) (domain.Event, error) {
	var w wireEvent
	if err := json.Unmarshal(payload, &w); err != nil {
		return domain.Event{}, err
	}
	if w.Type == "" {
		return domain.Event{}, fmt.Errorf("event type missing")
	}
	return domain.Event{
		Type:       w.Type,
		Key:        w.Key,
		Origin:     w.Origin,
		Payload:    w.Data,
		OccurredAt: w.OccurredAt,
	}, nil
}
