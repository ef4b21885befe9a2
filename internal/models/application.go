// internal/models/application.go
package models

import "time"

// Application status lifecycle. Status only ever advances; the escalation
// check never regresses a record.
const (
	StatusDrafted           = "drafted"
	StatusFiled             = "filed"
	StatusAcknowledged      = "acknowledged"
	StatusResponseReceived  = "response_received"
	StatusFirstAppealFiled  = "first_appeal_filed"
	StatusSecondAppealFiled = "second_appeal_filed"
	StatusClosed            = "closed"
)

// Application is the persisted record of one filed RTI request.
type Application struct {
	ID               int64      `json:"id"`
	RefNumber        string     `json:"refNumber"`
	ApplicantName    string     `json:"applicantName"`
	ApplicantEmail   string     `json:"applicantEmail"`
	ApplicantMobile  string     `json:"applicantMobile"`
	ApplicantAddress string     `json:"applicantAddress"`
	IsBPL            bool       `json:"isBpl"`
	BPLCardNo        string     `json:"bplCardNo,omitempty"`
	OriginalQuery    string     `json:"originalQuery"`
	Language         string     `json:"language"`
	Department       string     `json:"department"`
	PIOID            string     `json:"pioId"`
	PIOName          string     `json:"pioName"`
	PIOEmail         string     `json:"pioEmail"`
	Jurisdiction     string     `json:"jurisdiction"`
	Subject          string     `json:"subject"`
	Questions        []string   `json:"questions"`
	DraftText        string     `json:"draftText"`
	Status           string     `json:"status"`
	FiledAt          *time.Time `json:"filedAt,omitempty"`
	DeadlineAt       *time.Time `json:"deadlineAt,omitempty"`
	ResponseText     string     `json:"responseText,omitempty"`
	ResponseAt       *time.Time `json:"responseAt,omitempty"`
	AppealFiled      bool       `json:"appealFiled"`
	AppealAt         *time.Time `json:"appealAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Applicant carries the contact fields collected at filing time.
type Applicant struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Mobile    string `json:"mobile"`
	Email     string `json:"email"`
	IsBPL     bool   `json:"isBpl"`
	BPLCardNo string `json:"bplCardNo,omitempty"`
}
