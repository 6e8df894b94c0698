package live

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type envelope struct {
	InstanceID string `json:"instanceId"`
	Change     Change `json:"change"`
}

// RedisBridge relays changes between server instances over Redis pub/sub.
type RedisBridge struct {
	client     *redis.Client
	hub        *Hub
	channel    string
	instanceID string
	logger     *zap.Logger
}

func NewRedisBridge(client *redis.Client, hub *Hub, channel string, logger *zap.Logger) *RedisBridge {
	return &RedisBridge{
		client:     client,
		hub:        hub,
		channel:    channel,
		instanceID: uuid.New().String(),
		logger:     logger,
	}
}

// Forward publishes a local change for other instances.
func (b *RedisBridge) Forward(c Change) {
	data, err := json.Marshal(envelope{InstanceID: b.instanceID, Change: c})
	if err != nil {
		b.logger.Warn("failed to marshal change", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		b.logger.Warn("failed to publish change",
			zap.String("collection", c.Collection),
			zap.String("doc_id", c.DocID),
			zap.Error(err),
		)
	}
}

// Run relays remote changes into the local hub until ctx is done.
func (b *RedisBridge) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.logger.Warn("failed to unmarshal change", zap.String("payload", msg.Payload), zap.Error(err))
				continue
			}
			if env.InstanceID == b.instanceID {
				continue
			}
			b.hub.deliver(env.Change)
		}
	}
}
