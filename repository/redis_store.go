package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"loan-widget/domain"
)

// RedisStore keeps records in Redis without expiry.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string, db int) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	return &RedisStore{
		client: rdb,
	}
}

// Ping checks connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return &domain.OpError{Op: "redis.ping", Kind: domain.KindStorage, Err: err}
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", &domain.OpError{Op: "redis.get", Kind: domain.KindStorage, Key: key, Err: err}
	}
	return val, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return &domain.OpError{Op: "redis.set", Kind: domain.KindStorage, Key: key, Err: err}
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
