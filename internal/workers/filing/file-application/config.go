// internal/workers/filing/file-application/config.go
package fileapplication

import "time"

type Config struct {
	Timeout      time.Duration
	DeadlineDays int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      15 * time.Second,
		DeadlineDays: 30,
	}
}
