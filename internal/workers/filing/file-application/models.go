// internal/workers/filing/file-application/models.go
package fileapplication

import (
	"time"

	"rti-saarthi/internal/models"
	"rti-saarthi/internal/routing"
)

type Input struct {
	Analysis  models.QueryAnalysis `json:"analysis"`
	Routing   routing.Decision     `json:"routing"`
	Applicant models.Applicant     `json:"applicant"`
	Draft     models.Draft         `json:"draft"`
}

type Output struct {
	RefNumber  string    `json:"refNumber"`
	AckNumber  string    `json:"ackNumber"`
	Status     string    `json:"status"`
	FiledAt    time.Time `json:"filedAt"`
	DeadlineAt time.Time `json:"deadlineAt"`
	Fee        int       `json:"fee"`
	Portal     string    `json:"portal,omitempty"`
}
