// internal/models/analysis.go
package models

// ExtractedInfo is the structured detail pulled out of a citizen question.
type ExtractedInfo struct {
	WhatIsNeeded  string `json:"whatIsNeeded"`
	TimePeriod    string `json:"timePeriod"`
	Location      string `json:"location"`
	SpecificIssue string `json:"specificIssue"`
}

// QueryAnalysis is the understanding step's output for one citizen question.
type QueryAnalysis struct {
	OriginalQuestion   string        `json:"originalQuestion"`
	DetectedLanguage   string        `json:"detectedLanguage"`
	TranslatedQuestion string        `json:"translatedQuestion,omitempty"`
	Subject            string        `json:"subject"`
	Category           string        `json:"category"`
	ExtractedInfo      ExtractedInfo `json:"extractedInfo"`
	SuggestedQuestions []string      `json:"suggestedQuestions"`
	Urgency            string        `json:"urgency"`
	IsValidRTI         bool          `json:"isValidRti"`
	InvalidReason      string        `json:"invalidReason,omitempty"`
}

// Draft is the drafting step's output: a complete formal application.
type Draft struct {
	Subject             string   `json:"subject"`
	FormalQuestions     []string `json:"formalQuestions"`
	FullApplicationText string   `json:"fullApplicationText"`
	RelevantSections    []string `json:"relevantSections"`
	Tips                string   `json:"tips,omitempty"`
	FiledDate           string   `json:"filedDate"`
	DeadlineDate        string   `json:"deadlineDate"`
}

// PredictionFactors breaks a success estimate into its components.
type PredictionFactors struct {
	QuestionClarity          float64 `json:"questionClarity"`
	DepartmentResponsiveness float64 `json:"departmentResponsiveness"`
	InformationAvailability  float64 `json:"informationAvailability"`
}

// Prediction is a success-probability estimate for a drafted application.
type Prediction struct {
	SuccessProbability    float64           `json:"successProbability"`
	Factors               PredictionFactors `json:"factors"`
	RiskLevel             string            `json:"riskLevel"`
	Tips                  []string          `json:"tips"`
	EstimatedResponseDays int               `json:"estimatedResponseDays"`
}
