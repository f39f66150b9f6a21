package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier publishes envelopes to a Redis channel of the same name, so
// every server instance running a Relay receives them.
type RedisNotifier struct {
	rdb *redis.Client
}

func NewRedisNotifier(rdb *redis.Client) *RedisNotifier {
	return &RedisNotifier{rdb: rdb}
}

func (n *RedisNotifier) Publish(ctx context.Context, channel, event string, payload any) error {
	env, err := NewEnvelope(channel, event, payload)
	if err != nil {
		return err
	}
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	if err := n.rdb.Publish(ctx, channel, b).Err(); err != nil {
		return fmt.Errorf("redis publish %s/%s: %w", channel, event, err)
	}
	return nil
}

// Relay copies messages from Redis channels into the local Hub until ctx is
// done. Frames that fail to decode are reported to onErr and skipped.
func Relay(ctx context.Context, rdb *redis.Client, hub *Hub, onErr func(error), channels ...string) error {
	ps := rdb.Subscribe(ctx, channels...)
	defer ps.Close()

	// wait for the subscription to be confirmed before reporting ready
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}

	msgs := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-msgs:
			if !ok {
				return nil
			}
			env, err := DecodeEnvelope([]byte(m.Payload))
			if err != nil {
				if onErr != nil {
					onErr(err)
				}
				continue
			}
			hub.Broadcast(env)
		}
	}
}
