// internal/workers/search/index-application/models.go
package indexapplication

import "time"

type Input struct {
	RefNumber     string     `json:"refNumber"`
	Subject       string     `json:"subject"`
	Category      string     `json:"category,omitempty"`
	Department    string     `json:"department"`
	PIOID         string     `json:"pioId"`
	Jurisdiction  string     `json:"jurisdiction"`
	Region        string     `json:"region,omitempty"`
	Status        string     `json:"status"`
	Language      string     `json:"language,omitempty"`
	OriginalQuery string     `json:"originalQuery"`
	FiledAt       *time.Time `json:"filedAt,omitempty"`
	DeadlineAt    *time.Time `json:"deadlineAt,omitempty"`
}

type Output struct {
	RefNumber string `json:"refNumber"`
	Index     string `json:"index"`
	Result    string `json:"result"`
}
