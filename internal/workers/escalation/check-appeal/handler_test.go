// internal/workers/escalation/check-appeal/handler_test.go
package checkappeal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rti-saarthi/internal/common/logger"
	"rti-saarthi/internal/escalation"
	"rti-saarthi/internal/genai"
	"rti-saarthi/internal/models"
	"rti-saarthi/internal/store"
)

// ==========================
// Test Helpers
// ==========================

var testNow = time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

type stubTextGenerator struct {
	response string
	err      error
}

func (s *stubTextGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	return s.response, s.err
}

func newTestHandler(t *testing.T, gen genai.TextGenerator) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	appStore := store.NewApplicationStore(db, logger.NewNoOpLogger())
	handler := NewHandler(LoadConfig(), appStore, gen, logger.NewNoOpLogger())
	handler.now = func() time.Time { return testNow }
	return handler, mock
}

func applicationRows(filedDaysAgo int, status string, appealFiled bool) *sqlmock.Rows {
	filed := testNow.AddDate(0, 0, -filedDaysAgo)
	deadline := filed.AddDate(0, 0, 30)
	return sqlmock.NewRows([]string{
		"id", "ref_number", "applicant_name", "applicant_email", "applicant_mobile",
		"applicant_address", "is_bpl", "bpl_card_no", "original_query", "language",
		"department", "pio_id", "pio_name", "pio_email", "jurisdiction", "subject",
		"questions", "draft_text", "status", "filed_at", "deadline_at",
		"response_text", "response_at", "appeal_filed", "appeal_at", "created_at", "updated_at",
	}).AddRow(
		int64(7), "RTI2026-00042", "Asha Devi", "asha@example.com", "9876543210",
		"12, Gandhi Nagar", false, "", "ration card not arrived", "hi",
		"Department of Food and Public Distribution", "C009", "CPIO, Krishi Bhawan",
		"cpio.dfpd@nic.in", "central", "Status of ration card application",
		pq.Array([]string{"Please provide the status."}), "To the PIO...", status,
		filed, deadline, "", nil, appealFiled, nil, filed, filed,
	)
}

func expectLookup(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
	mock.ExpectQuery(`SELECT .+ FROM rti_applications WHERE ref_number`).
		WithArgs("RTI2026-00042").
		WillReturnRows(rows)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Waiting(t *testing.T) {
	handler, mock := newTestHandler(t, &stubTextGenerator{})
	expectLookup(mock, applicationRows(10, models.StatusFiled, false))

	output, err := handler.Execute(context.Background(), &Input{RefNumber: "RTI2026-00042"})

	require.NoError(t, err)
	assert.Equal(t, escalation.ActionWaiting, output.Action)
	assert.Empty(t, output.Letter)
	assert.Equal(t, 10, output.DaysSinceFiling)
}

func TestHandler_Execute_ReminderWindow(t *testing.T) {
	handler, mock := newTestHandler(t, &stubTextGenerator{})
	expectLookup(mock, applicationRows(26, models.StatusFiled, false))

	output, err := handler.Execute(context.Background(), &Input{RefNumber: "RTI2026-00042"})

	require.NoError(t, err)
	assert.Equal(t, escalation.ActionReminder, output.Action)
	assert.Contains(t, output.Letter, "Reminder")
	assert.Contains(t, output.Letter, "RTI2026-00042")
}

func TestHandler_Execute_FirstAppealMarksRecord(t *testing.T) {
	gen := &stubTextGenerator{response: "To the First Appellate Authority... Section 19(1)..."}
	handler, mock := newTestHandler(t, gen)
	expectLookup(mock, applicationRows(40, models.StatusFiled, false))
	mock.ExpectExec(`UPDATE rti_applications`).
		WithArgs(testNow, models.StatusFirstAppealFiled, "RTI2026-00042").
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := handler.Execute(context.Background(), &Input{RefNumber: "RTI2026-00042"})

	require.NoError(t, err)
	assert.Equal(t, escalation.ActionFirstAppeal, output.Action)
	assert.False(t, output.UsedFallback)
	assert.Contains(t, output.Letter, "Section 19(1)")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_FirstAppealFallbackLetter(t *testing.T) {
	gen := &stubTextGenerator{err: &genai.GenerationError{
		Reason: genai.ReasonUnavailable,
		Err:    errors.New("connection refused"),
	}}
	handler, mock := newTestHandler(t, gen)
	expectLookup(mock, applicationRows(40, models.StatusFiled, false))
	mock.ExpectExec(`UPDATE rti_applications`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := handler.Execute(context.Background(), &Input{RefNumber: "RTI2026-00042"})

	require.NoError(t, err)
	assert.True(t, output.UsedFallback)
	assert.Equal(t, escalation.ActionFirstAppeal, output.Action)
	assert.Equal(t, 40, output.DaysSinceFiling)
	assert.Contains(t, output.Letter, "RTI2026-00042")
	assert.Contains(t, output.Letter, "Section 19(1)")
	assert.Contains(t, output.Letter, "Section 18(1)(b)")
}

func TestHandler_Execute_AppealAlreadyFiledParks(t *testing.T) {
	handler, mock := newTestHandler(t, &stubTextGenerator{})
	expectLookup(mock, applicationRows(45, models.StatusFirstAppealFiled, true))

	output, err := handler.Execute(context.Background(), &Input{RefNumber: "RTI2026-00042"})

	require.NoError(t, err)
	assert.Equal(t, escalation.ActionAwaitingAppealOutcome, output.Action)
	assert.Empty(t, output.Letter)
	// No UPDATE expected; a second appeal must never go out.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ResponseReceivedNoAction(t *testing.T) {
	handler, mock := newTestHandler(t, &stubTextGenerator{})
	expectLookup(mock, applicationRows(40, models.StatusResponseReceived, false))

	output, err := handler.Execute(context.Background(), &Input{RefNumber: "RTI2026-00042"})

	require.NoError(t, err)
	assert.Equal(t, escalation.ActionNoAction, output.Action)
}

func TestHandler_Execute_RecordNotFound(t *testing.T) {
	handler, mock := newTestHandler(t, &stubTextGenerator{})
	mock.ExpectQuery(`SELECT .+ FROM rti_applications WHERE ref_number`).
		WithArgs("RTI2026-00042").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := handler.Execute(context.Background(), &Input{RefNumber: "RTI2026-00042"})

	assert.ErrorIs(t, err, ErrRecordNotFound)
}
