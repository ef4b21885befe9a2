// internal/workers/search/index-application/config.go
package indexapplication

import "time"

type Config struct {
	Timeout   time.Duration
	IndexName string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   15 * time.Second,
		IndexName: "rti-applications",
	}
}
