// internal/workers/intake/analyze-query/config.go
package analyzequery

import "time"

type Config struct {
	Timeout    time.Duration
	MaxRetries int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    30 * time.Second,
		MaxRetries: 1,
	}
}
