package kv

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

const KeyPrefix = "khosta:"

// RedisBackend stores each collection under KeyPrefix+name. Calls go
// through a circuit breaker so an unreachable server fails fast.
type RedisBackend struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker
}

func NewRedisBackend(client *redis.Client, breaker *gobreaker.CircuitBreaker) *RedisBackend {
	return &RedisBackend{client: client, breaker: breaker}
}

func (b *RedisBackend) Load(ctx context.Context, key string) ([]byte, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		value, err := b.client.Get(ctx, KeyPrefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return []byte(nil), nil
		}
		return value, err
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (b *RedisBackend) Save(ctx context.Context, key string, value []byte) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, b.client.Set(ctx, KeyPrefix+key, value, 0).Err()
	})
	return err
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, b.client.Ping(ctx).Err()
	})
	return err
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
