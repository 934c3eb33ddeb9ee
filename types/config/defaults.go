package config

import "time"

const (
	DefaultListenPort          = 5000
	DefaultStorageDriver       = File
	DefaultDataDir             = "data"
	DefaultTickInterval        = time.Second
	DefaultWorkerCount         = 1
	DefaultNotifyTimeout       = 10 * time.Second
	DefaultAvailabilityRefresh = "@every 10m"
	DefaultRedisPrefix         = "ovh-sniper:"
)

func defaultLogging() LoggingConfig {
	return LoggingConfig{
		Level:      "info",
		Format:     "text",
		Output:     "stdout",
		FilePath:   "logs/sniper.log",
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
}
