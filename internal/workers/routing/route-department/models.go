// internal/workers/routing/route-department/models.go
package routedepartment

import (
	"rti-saarthi/internal/models"
	"rti-saarthi/internal/routing"
)

type Input struct {
	Analysis models.QueryAnalysis `json:"analysis"`
	Region   string               `json:"region,omitempty"`
	IsBPL    bool                 `json:"isBpl"`
}

type Output struct {
	Routing routing.Decision `json:"routing"`
}
