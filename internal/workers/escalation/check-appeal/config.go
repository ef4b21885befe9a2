// internal/workers/escalation/check-appeal/config.go
package checkappeal

import "time"

type Config struct {
	Timeout          time.Duration
	DeadlineDays     int
	ReminderLeadDays int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:          30 * time.Second,
		DeadlineDays:     30,
		ReminderLeadDays: 5,
	}
}
