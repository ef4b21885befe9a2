// internal/workers/drafting/draft-application/models.go
package draftapplication

import (
	"rti-saarthi/internal/models"
	"rti-saarthi/internal/routing"
)

type Input struct {
	Analysis  models.QueryAnalysis `json:"analysis"`
	Routing   routing.Decision     `json:"routing"`
	Applicant models.Applicant     `json:"applicant"`
}

type Output struct {
	Draft        models.Draft `json:"draft"`
	UsedFallback bool         `json:"usedFallback"`
}
