package logging

import "github.com/lwhx/OVH/types/config"

func defaultTestConfig(level string) config.LoggingConfig {
	return config.LoggingConfig{Level: level, Format: "json", Output: "stdout"}
}
