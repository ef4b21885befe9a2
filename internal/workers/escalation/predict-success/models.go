// internal/workers/escalation/predict-success/models.go
package predictsuccess

import (
	"rti-saarthi/internal/models"
	"rti-saarthi/internal/routing"
)

type Input struct {
	Draft   models.Draft     `json:"draft"`
	Routing routing.Decision `json:"routing"`
}

type Output struct {
	Prediction   models.Prediction `json:"prediction"`
	UsedFallback bool              `json:"usedFallback"`
}
