// internal/workers/intake/analyze-query/models.go
package analyzequery

import "rti-saarthi/internal/models"

type Input struct {
	Question string `json:"question"`
	Language string `json:"language,omitempty"`
	Region   string `json:"region,omitempty"`
}

type Output struct {
	Analysis     models.QueryAnalysis `json:"analysis"`
	UsedFallback bool                 `json:"usedFallback"`
}
