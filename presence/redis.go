package presence

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "chat:presence:"

// Redis keeps the registry in redis so any process can resolve reachability.
// No TTL: presence is cleared by the explicit end event only.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func key(userID string) string { return keyPrefix + userID }

func (r *Redis) Register(ctx context.Context, userID, sessionID string) error {
	if err := r.client.Set(ctx, key(userID), sessionID, 0).Err(); err != nil {
		return errors.Wrap(err, "presence: register")
	}

	return nil
}

func (r *Redis) Resolve(ctx context.Context, userID string) (string, bool, error) {
	sessionID, err := r.client.Get(ctx, key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "presence: resolve")
	}

	return sessionID, true, nil
}

func (r *Redis) Unregister(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, key(userID)).Err(); err != nil {
		return errors.Wrap(err, "presence: unregister")
	}

	return nil
}
