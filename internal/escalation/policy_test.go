package escalation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rti-saarthi/internal/models"
)

func appFiledDaysAgo(days int, now time.Time) *models.Application {
	filed := now.AddDate(0, 0, -days)
	return &models.Application{
		RefNumber: "RTI2026-00042",
		Status:    models.StatusFiled,
		FiledAt:   &filed,
	}
}

// ==================== Evaluate ====================

func TestPolicy_Evaluate(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	policy := DefaultPolicy

	tests := []struct {
		name           string
		setup          func() *models.Application
		expectedAction string
	}{
		{
			name: "response received needs no action",
			setup: func() *models.Application {
				app := appFiledDaysAgo(40, now)
				app.Status = models.StatusResponseReceived
				return app
			},
			expectedAction: ActionNoAction,
		},
		{
			name: "closed application needs no action",
			setup: func() *models.Application {
				app := appFiledDaysAgo(90, now)
				app.Status = models.StatusClosed
				return app
			},
			expectedAction: ActionNoAction,
		},
		{
			name: "not yet filed needs no action",
			setup: func() *models.Application {
				return &models.Application{Status: models.StatusDrafted}
			},
			expectedAction: ActionNoAction,
		},
		{
			name: "fresh filing is waiting",
			setup: func() *models.Application {
				return appFiledDaysAgo(10, now)
			},
			expectedAction: ActionWaiting,
		},
		{
			name: "day before reminder window is still waiting",
			setup: func() *models.Application {
				return appFiledDaysAgo(24, now)
			},
			expectedAction: ActionWaiting,
		},
		{
			name: "reminder window opens five days before deadline",
			setup: func() *models.Application {
				return appFiledDaysAgo(25, now)
			},
			expectedAction: ActionReminder,
		},
		{
			name: "last day before deadline is still a reminder",
			setup: func() *models.Application {
				return appFiledDaysAgo(29, now)
			},
			expectedAction: ActionReminder,
		},
		{
			name: "deadline passed triggers first appeal",
			setup: func() *models.Application {
				return appFiledDaysAgo(30, now)
			},
			expectedAction: ActionFirstAppeal,
		},
		{
			name: "long overdue still triggers exactly first appeal",
			setup: func() *models.Application {
				return appFiledDaysAgo(75, now)
			},
			expectedAction: ActionFirstAppeal,
		},
		{
			name: "appeal already filed parks the application",
			setup: func() *models.Application {
				app := appFiledDaysAgo(45, now)
				app.Status = models.StatusFirstAppealFiled
				app.AppealFiled = true
				return app
			},
			expectedAction: ActionAwaitingAppealOutcome,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := policy.Evaluate(tt.setup(), now)
			assert.Equal(t, tt.expectedAction, ev.Action)
		})
	}
}

func TestPolicy_Evaluate_Timeline(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	app := appFiledDaysAgo(12, now)

	ev := DefaultPolicy.Evaluate(app, now)

	assert.Equal(t, 12, ev.DaysSinceFiling)
	assert.Equal(t, 18, ev.DaysRemaining)
	assert.Equal(t, app.FiledAt.AddDate(0, 0, 30), ev.Deadline)
}

func TestPolicy_Evaluate_IsIdempotent(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	app := appFiledDaysAgo(45, now)
	app.AppealFiled = true
	app.Status = models.StatusFirstAppealFiled

	// Re-running the check on an escalated application must not recommend
	// another appeal, no matter how often it runs.
	for i := 0; i < 3; i++ {
		ev := DefaultPolicy.Evaluate(app, now.AddDate(0, 0, i*7))
		assert.Equal(t, ActionAwaitingAppealOutcome, ev.Action)
	}
}
