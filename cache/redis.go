// Package cache is the redis-backed store the refresh pipeline publishes to
// and the API serves from.
package cache

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("cache key not found")

// Store holds published snapshots as JSON strings under
// "{network}_{artifact}" keys plus the global "eth-price" key. Writes are
// per-key and not transactional; a reader may briefly observe entries from two
// refresh cycles.
type Store struct {
	client *redis.Client
}

func NewStore(addr, password string) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "setting key [%s]", key)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "getting key [%s]", key)
	}
	return value, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
