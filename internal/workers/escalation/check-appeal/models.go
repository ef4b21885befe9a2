// internal/workers/escalation/check-appeal/models.go
package checkappeal

import "time"

type Input struct {
	RefNumber string `json:"refNumber"`
}

type Output struct {
	RefNumber       string    `json:"refNumber"`
	Action          string    `json:"action"`
	DaysSinceFiling int       `json:"daysSinceFiling"`
	DaysRemaining   int       `json:"daysRemaining"`
	Deadline        time.Time `json:"deadline"`
	Letter          string    `json:"letter,omitempty"`
	UsedFallback    bool      `json:"usedFallback"`
}
