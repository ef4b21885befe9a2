// internal/workers/drafting/draft-application/config.go
package draftapplication

import "time"

type Config struct {
	Timeout      time.Duration
	DeadlineDays int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      45 * time.Second,
		DeadlineDays: 30,
	}
}
