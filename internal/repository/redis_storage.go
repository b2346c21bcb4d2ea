package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/nikolayk812/cartstore-demo/internal/port"
)

// the snapshot lives in the "cart" field of a hash named after the key
const redisField = "cart"

type redisStorage struct {
	client *redis.Client
	key    string
}

func NewRedisStorage(client *redis.Client, key string) (port.CartStorage, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	return &redisStorage{
		client: client,
		key:    key,
	}, nil
}

// NewRedisClient accepts either a redis:// URL or a plain host:port address.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{
			Addr:         addr,
			MinIdleConns: 1,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("client.Ping: %w", err)
	}

	return client, nil
}

func (s *redisStorage) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.HGet(ctx, s.key, redisField).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("client.HGet: %w", err)
	}

	return data, nil
}

func (s *redisStorage) Save(ctx context.Context, data []byte) error {
	if err := s.client.HSet(ctx, s.key, redisField, data).Err(); err != nil {
		return fmt.Errorf("client.HSet: %w", err)
	}

	return nil
}
