package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/oms/backend/internal/domain/fulfillment"
)

// RedisDispatcher publishes CreateFulfillment messages onto a Redis stream.
// Consumers process the stream asynchronously; the dispatcher never waits for
// them.
type RedisDispatcher struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewRedisDispatcher creates a dispatcher publishing to the given stream
func NewRedisDispatcher(client *redis.Client, stream string, logger *zap.Logger) *RedisDispatcher {
	return &RedisDispatcher{
		client: client,
		stream: stream,
		logger: logger.Named("dispatcher"),
	}
}

var _ fulfillment.Dispatcher = (*RedisDispatcher)(nil)

// Dispatch appends the message to the stream
func (d *RedisDispatcher) Dispatch(ctx context.Context, msg fulfillment.CreateFulfillment) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal fulfillment message: %w", err)
	}

	id, err := d.client.XAdd(ctx, &redis.XAddArgs{
		Stream: d.stream,
		Values: map[string]any{
			"type":    "create_fulfillment",
			"payload": string(payload),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish fulfillment message: %w", err)
	}

	d.logger.Debug("dispatched fulfillment message",
		zap.String("stream", d.stream),
		zap.String("message_id", id),
		zap.String("order_id", msg.OrderID.String()))
	return nil
}
