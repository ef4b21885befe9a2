package escalation

import (
	"time"

	"rti-saarthi/internal/common/metrics"
	"rti-saarthi/internal/models"
)

// Actions an evaluation can recommend, from least to most urgent.
const (
	ActionNoAction              = "no_action"
	ActionWaiting               = "waiting"
	ActionReminder              = "reminder"
	ActionFirstAppeal           = "first_appeal"
	ActionAwaitingAppealOutcome = "awaiting_appeal_response"
)

// Policy holds the statutory timeline: the PIO's response deadline under
// Section 7(1) and how many days before it a reminder goes out.
type Policy struct {
	DeadlineDays     int
	ReminderLeadDays int
}

// DefaultPolicy is the RTI Act, 2005 timeline.
var DefaultPolicy = Policy{
	DeadlineDays:     30,
	ReminderLeadDays: 5,
}

// Evaluation is the outcome of checking one application against the policy.
type Evaluation struct {
	Action          string    `json:"action"`
	DaysSinceFiling int       `json:"daysSinceFiling"`
	DaysRemaining   int       `json:"daysRemaining"`
	Deadline        time.Time `json:"deadline"`
}

// Evaluate checks an application's filing age against the policy at the
// given instant. Responded applications need no action; an application past
// the deadline without an appeal is due for a first appeal under Section
// 19(1); an appeal already filed parks the application until the appellate
// authority responds; inside the reminder window a reminder is due.
func (p Policy) Evaluate(app *models.Application, now time.Time) Evaluation {
	ev := Evaluation{Action: ActionWaiting}
	if app.FiledAt != nil {
		ev.DaysSinceFiling = int(now.Sub(*app.FiledAt).Hours() / 24)
		ev.Deadline = app.FiledAt.AddDate(0, 0, p.DeadlineDays)
		ev.DaysRemaining = p.DeadlineDays - ev.DaysSinceFiling
	}

	switch {
	case app.Status == models.StatusResponseReceived || app.Status == models.StatusClosed:
		ev.Action = ActionNoAction
	case app.FiledAt == nil:
		ev.Action = ActionNoAction
	case ev.DaysSinceFiling >= p.DeadlineDays && app.AppealFiled:
		ev.Action = ActionAwaitingAppealOutcome
	case ev.DaysSinceFiling >= p.DeadlineDays:
		ev.Action = ActionFirstAppeal
	case ev.DaysSinceFiling >= p.DeadlineDays-p.ReminderLeadDays:
		ev.Action = ActionReminder
	}

	metrics.EscalationActions.WithLabelValues(ev.Action).Inc()
	return ev
}
