package app

import (
	"database/sql"

	"github.com/lwhx/OVH/internal/ovhapi"
	"github.com/lwhx/OVH/internal/store"
	"github.com/lwhx/OVH/types"
	"github.com/redis/go-redis/v9"
)

// ContainerOption configures Container creation. Used for testing and customization.
type ContainerOption func(*containerConfig)

type containerConfig struct {
	db       *sql.DB
	redis    *redis.Client
	docs     store.DocumentStore
	pool     *ovhapi.Pool
	seed     types.Settings
	notifier string
}

// WithDB injects a Postgres connection instead of opening one from config.
func WithDB(db *sql.DB) ContainerOption {
	return func(c *containerConfig) {
		c.db = db
	}
}

// WithRedis injects a Redis client instead of dialing one from config.
func WithRedis(redis *redis.Client) ContainerOption {
	return func(c *containerConfig) {
		c.redis = redis
	}
}

// WithDocumentStore bypasses the configured storage driver entirely.
func WithDocumentStore(docs store.DocumentStore) ContainerOption {
	return func(c *containerConfig) {
		c.docs = docs
	}
}

func WithClientPool(pool *ovhapi.Pool) ContainerOption {
	return func(c *containerConfig) {
		c.pool = pool
	}
}

// WithSettingsSeed fills persisted settings fields that are still empty,
// typically from environment variables on first start.
func WithSettingsSeed(seed types.Settings) ContainerOption {
	return func(c *containerConfig) {
		c.seed = seed
	}
}

// WithTelegramBaseURL points the Telegram sink at another Bot API host.
func WithTelegramBaseURL(u string) ContainerOption {
	return func(c *containerConfig) {
		c.notifier = u
	}
}
