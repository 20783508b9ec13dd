package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const DefaultRelayChannel = "platewise:changes"

type relayMessage struct {
	Origin string   `json:"origin"`
	Paths  []string `json:"paths"`
}

// RedisRelay shares committed change paths between instances that use the
// same database, so watchers in every process see every write.
type RedisRelay struct {
	client     *redis.Client
	channel    string
	instanceID string
	logger     zerolog.Logger
}

func NewRedisRelay(client *redis.Client, channel string, logger zerolog.Logger) *RedisRelay {
	if channel == "" {
		channel = DefaultRelayChannel
	}
	return &RedisRelay{
		client:     client,
		channel:    channel,
		instanceID: uuid.NewString(),
		logger:     logger,
	}
}

func (relay *RedisRelay) Publish(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	payload, err := json.Marshal(relayMessage{Origin: relay.instanceID, Paths: paths})
	if err != nil {
		return fmt.Errorf("marshal relay message: %w", err)
	}
	if err := relay.client.Publish(ctx, relay.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish relay message: %w", err)
	}
	return nil
}

// Run re-broadcasts changes from other instances to local watchers until ctx ends.
func (relay *RedisRelay) Run(ctx context.Context, store *Store) error {
	pubsub := relay.client.Subscribe(ctx, relay.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe relay channel: %w", err)
	}

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case message, ok := <-messages:
			if !ok {
				return errors.New("relay channel closed")
			}
			paths, err := relay.decode([]byte(message.Payload))
			if err != nil {
				relay.logger.Warn().Err(err).Msg("drop malformed relay message")
				continue
			}
			if len(paths) > 0 {
				store.hub.notify(paths)
			}
		}
	}
}

// decode returns the paths carried by a foreign message; own echoes yield none.
func (relay *RedisRelay) decode(payload []byte) ([]string, error) {
	message := relayMessage{}
	if err := json.Unmarshal(payload, &message); err != nil {
		return nil, fmt.Errorf("decode relay message: %w", err)
	}
	if message.Origin == relay.instanceID {
		return nil, nil
	}

	paths := make([]string, 0, len(message.Paths))
	for _, path := range message.Paths {
		if ValidateDocumentPath(path) == nil {
			paths = append(paths, path)
		}
	}
	return paths, nil
}
