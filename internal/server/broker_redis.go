package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisChannelPrefix = "scramble:game:"

// RedisBridge fans events out across server instances via Redis pub/sub.
// Publish goes to Redis only; the Run loop feeds everything the channel
// carries — this instance's events included — into the local broker, so
// delivery order is the same for local and remote subscribers.
type RedisBridge struct {
	rdb    *redis.Client
	local  *Broker
	logger *slog.Logger
}

func NewRedisBridge(rdb *redis.Client, local *Broker, logger *slog.Logger) *RedisBridge {
	return &RedisBridge{rdb: rdb, local: local, logger: logger}
}

func (b *RedisBridge) Publish(gameID string, event Event) {
	data, _ := json.Marshal(event)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.rdb.Publish(ctx, redisChannelPrefix+gameID, data).Err(); err != nil {
		b.logger.Error("redis publish failed", "game_id", gameID, "error", err)
	}
}

// Run consumes the Redis pattern subscription until ctx is cancelled.
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.rdb.PSubscribe(ctx, redisChannelPrefix+"*")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			gameID := strings.TrimPrefix(msg.Channel, redisChannelPrefix)
			b.local.deliver(gameID, []byte(msg.Payload))
		}
	}
}
