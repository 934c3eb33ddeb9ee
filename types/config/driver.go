package config

import "strings"

type StorageDriver int

const (
	File StorageDriver = iota + 1
	Memory
	Postgres
	Redis
)

// String converts the StorageDriver enum to a human-readable string.
func (d StorageDriver) String() string {
	switch d {
	case File:
		return "file"
	case Memory:
		return "memory"
	case Postgres:
		return "postgres"
	case Redis:
		return "redis"
	}
	return "unknown"
}

// ParseStorageDriver is the inverse of String; ok is false for unknown names.
func ParseStorageDriver(name string) (StorageDriver, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "file", "":
		return File, true
	case "memory":
		return Memory, true
	case "postgres", "postgresql":
		return Postgres, true
	case "redis":
		return Redis, true
	}
	return 0, false
}

type MessageQueueDriver int

const (
	NoBroker MessageQueueDriver = iota
	RabbitMQ
)

func (d MessageQueueDriver) String() string {
	switch d {
	case RabbitMQ:
		return "rabbitmq"
	case NoBroker:
		return "none"
	default:
		return "unknown"
	}
}
