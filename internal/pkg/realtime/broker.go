package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const channelPrefix = "user_notifications:"

// Publisher pushes an event to a user's connected clients
type Publisher interface {
	Publish(ctx context.Context, userID int64, event Event) error
}

// Channel returns the pub/sub channel of a user
func Channel(userID int64) string {
	return channelPrefix + strconv.FormatInt(userID, 10)
}

func userFromChannel(channel string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimPrefix(channel, channelPrefix), 10, 64)
	return id, err == nil
}

// RedisBroker fans events out through Redis so every API instance can reach its own sockets
type RedisBroker struct {
	rdb    *redis.Client
	hub    *Hub
	logger zerolog.Logger
}

// NewRedisBroker creates a broker feeding the local hub
func NewRedisBroker(rdb *redis.Client, hub *Hub, logger zerolog.Logger) *RedisBroker {
	return &RedisBroker{rdb: rdb, hub: hub, logger: logger}
}

// Publish sends the event on the user's channel
func (b *RedisBroker) Publish(ctx context.Context, userID int64, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, Channel(userID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	return nil
}

// Run subscribes to every user channel and forwards messages to the local hub until ctx ends
func (b *RedisBroker) Run(ctx context.Context) error {
	pubsub := b.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to redis channel: %w", err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			userID, ok := userFromChannel(msg.Channel)
			if !ok {
				b.logger.Warn().Str("channel", msg.Channel).Msg("Ignoring message on malformed channel")
				continue
			}
			if b.hub.ClientCount(userID) == 0 {
				continue
			}
			if err := b.hub.Deliver(ctx, userID, []byte(msg.Payload)); err != nil {
				return nil
			}
		}
	}
}
