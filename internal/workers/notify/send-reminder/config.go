// internal/workers/notify/send-reminder/config.go
package sendreminder

import "time"

type Config struct {
	Timeout      time.Duration
	EmailEnabled bool
	SMSEnabled   bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      20 * time.Second,
		EmailEnabled: true,
		SMSEnabled:   false,
	}
}
