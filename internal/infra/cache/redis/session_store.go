package redis

import (
	"context"
	"time"

	"evault/internal/domain/entity"
	"evault/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// sessionStore implements the domain SessionStore interface on a Redis
// client. Plain values use string keys; sessions use hashes so the fields
// stay inspectable with redis-cli.
type sessionStore struct {
	client *redis.Client
}

// NewSessionStore is the constructor for sessionStore.
func NewSessionStore(client *redis.Client) service.SessionStore {
	return &sessionStore{client: client}
}

func (s *sessionStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set failed")
	}

	return nil
}

func (s *sessionStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", service.ErrKeyExpired
		}

		return "", errors.Wrap(err, "redis get failed")
	}

	return value, nil
}

// GetDelete rides Redis GETDEL, so concurrent readers of the same key see
// the value at most once.
func (s *sessionStore) GetDelete(ctx context.Context, key string) (string, error) {
	value, err := s.client.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", service.ErrKeyExpired
		}

		return "", errors.Wrap(err, "redis getdel failed")
	}

	return value, nil
}

func (s *sessionStore) Renew(ctx context.Context, key string, ttl time.Duration) error {
	renewed, err := s.client.Expire(ctx, key, ttl).Result()
	if err != nil {
		return errors.Wrap(err, "redis expire failed")
	}
	if !renewed {
		return service.ErrKeyExpired
	}

	return nil
}

func (s *sessionStore) Delete(ctx context.Context, key string) (int64, error) {
	removed, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return 0, errors.Wrap(err, "redis del failed")
	}

	return removed, nil
}

func (s *sessionStore) PutSession(ctx context.Context, key string, session *entity.UserSession, ttl time.Duration) error {
	fields := session.ToFields()

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "redis hset failed")
	}

	return nil
}

func (s *sessionStore) GetSession(ctx context.Context, key string) (*entity.UserSession, error) {
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis hgetall failed")
	}
	// HGETALL reports a missing key as an empty map, not redis.Nil
	if len(fields) == 0 {
		return nil, service.ErrKeyExpired
	}

	session, err := entity.SessionFromFields(fields)
	if err != nil {
		return nil, errors.Wrap(err, "stored session is malformed")
	}

	return session, nil
}
