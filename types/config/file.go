package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML shape of AppConfig.
type FileConfig struct {
	ListenPort     uint     `yaml:"listen_port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	ControlAuth    struct {
		Username     string `yaml:"username"`
		PasswordHash string `yaml:"password_hash"`
	} `yaml:"control_auth"`
	Storage struct {
		Driver      string `yaml:"driver"`
		DataDir     string `yaml:"data_dir"`
		PostgresURL string `yaml:"postgres_url"`
		Redis       struct {
			Address  string `yaml:"address"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"storage"`
	RabbitMQ struct {
		URL        string `yaml:"url"`
		Exchange   string `yaml:"exchange"`
		Queue      string `yaml:"queue"`
		RoutingKey string `yaml:"routing_key"`
	} `yaml:"rabbitmq"`
	Scheduler struct {
		TickInterval        time.Duration `yaml:"tick_interval"`
		WorkerCount         int           `yaml:"worker_count"`
		AvailabilityRefresh *string       `yaml:"availability_refresh"`
	} `yaml:"scheduler"`
	NotifyTimeout time.Duration `yaml:"notify_timeout"`
	Logging       LoggingFile   `yaml:"logging"`
}

type LoggingFile struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	FilePath   string `yaml:"file_path"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// LoadFile reads a YAML config file and builds the AppConfig from it.
// Fields left out of the file keep their defaults.
func LoadFile(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds an AppConfig from YAML bytes.
func Parse(data []byte) (*AppConfig, error) {
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	opts, err := fc.Options()
	if err != nil {
		return nil, err
	}
	return NewAppConfig(opts...)
}

// Options converts the file representation into functional options. The
// storage driver is applied first because the driver-specific options check it.
func (fc FileConfig) Options() ([]ConfigOption, error) {
	var opts []ConfigOption

	driver, ok := ParseStorageDriver(fc.Storage.Driver)
	if !ok {
		return nil, fmt.Errorf("unsupported storage driver: %q", fc.Storage.Driver)
	}
	opts = append(opts, WithStorageDriver(driver))

	if fc.Storage.DataDir != "" {
		opts = append(opts, WithDataDir(fc.Storage.DataDir))
	}
	switch driver {
	case Postgres:
		opts = append(opts, WithPostgresConfig(PostgresConfig{ConnectionUrl: fc.Storage.PostgresURL}))
	case Redis:
		r := fc.Storage.Redis
		opts = append(opts, WithRedisConfig(RedisConfig{Address: r.Address, Password: r.Password, DB: r.DB, Prefix: r.Prefix}))
	}

	if fc.ListenPort != 0 {
		opts = append(opts, WithListenPort(fc.ListenPort))
	}
	if len(fc.AllowedOrigins) > 0 {
		opts = append(opts, WithAllowedOrigins(fc.AllowedOrigins...))
	}
	if fc.ControlAuth.Username != "" || fc.ControlAuth.PasswordHash != "" {
		opts = append(opts, WithControlAuth(fc.ControlAuth.Username, fc.ControlAuth.PasswordHash))
	}
	if fc.RabbitMQ.URL != "" {
		opts = append(opts, WithRabbitMQConfig(RabbitMQConfig{
			URL:        fc.RabbitMQ.URL,
			Exchange:   fc.RabbitMQ.Exchange,
			Queue:      fc.RabbitMQ.Queue,
			RoutingKey: fc.RabbitMQ.RoutingKey,
		}))
	}
	if fc.Scheduler.TickInterval != 0 {
		opts = append(opts, WithTickInterval(fc.Scheduler.TickInterval))
	}
	if fc.Scheduler.WorkerCount != 0 {
		opts = append(opts, WithWorkerCount(fc.Scheduler.WorkerCount))
	}
	if fc.Scheduler.AvailabilityRefresh != nil {
		opts = append(opts, WithAvailabilityRefresh(*fc.Scheduler.AvailabilityRefresh))
	}
	if fc.NotifyTimeout != 0 {
		opts = append(opts, WithNotifyTimeout(fc.NotifyTimeout))
	}
	l := fc.Logging
	if l != (LoggingFile{}) {
		opts = append(opts, WithLogging(LoggingConfig{
			Level:      l.Level,
			Format:     l.Format,
			Output:     l.Output,
			FilePath:   l.FilePath,
			MaxSize:    l.MaxSize,
			MaxBackups: l.MaxBackups,
			MaxAge:     l.MaxAge,
			Compress:   l.Compress,
		}))
	}
	return opts, nil
}
