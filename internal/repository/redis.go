package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/nprokhorov/sgdns-discovery/internal/domain"
)

// Redis is a Repository backed by github.com/redis/go-redis/v9,
// selected when db_provider=redis. create relies on SETNX for the
// conditional-create semantics spec.md §4.2 requires.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewProviderError("redis", "get", key, err)
	}
	return val, nil
}

func (r *Redis) Create(ctx context.Context, key string, value []byte) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, value, 0).Result()
	if err != nil {
		return false, domain.NewProviderError("redis", "create", key, err)
	}
	return ok, nil
}

func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return domain.NewProviderError("redis", "put", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return false, domain.NewProviderError("redis", "delete", key, err)
	}
	return n > 0, nil
}
