package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/lwhx/OVH/types/config"
	goredis "github.com/redis/go-redis/v9"
)

type RedisDocumentStore struct {
	client *goredis.Client
	prefix string
}

// Open connects to the configured server and checks it answers.
func Open(ctx context.Context, cfg config.RedisConfig) (*RedisDocumentStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisDocumentStore(client, cfg.Prefix), nil
}

func NewRedisDocumentStore(client *goredis.Client, prefix string) *RedisDocumentStore {
	return &RedisDocumentStore{client: client, prefix: prefix}
}

func (s *RedisDocumentStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", key, err)
	}
	return data, nil
}

func (s *RedisDocumentStore) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save document %s: %w", key, err)
	}
	return nil
}

func (s *RedisDocumentStore) Close() error {
	return s.client.Close()
}
