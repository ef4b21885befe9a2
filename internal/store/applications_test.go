package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rti-saarthi/internal/common/logger"
	"rti-saarthi/internal/models"
)

func newMockStore(t *testing.T) (*ApplicationStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewApplicationStore(db, logger.NewNoOpLogger()), mock
}

func applicationRows() *sqlmock.Rows {
	filed := time.Date(2026, 7, 20, 10, 0, 0, 0, time.UTC)
	deadline := filed.AddDate(0, 0, 30)
	return sqlmock.NewRows([]string{
		"id", "ref_number", "applicant_name", "applicant_email", "applicant_mobile",
		"applicant_address", "is_bpl", "bpl_card_no", "original_query", "language",
		"department", "pio_id", "pio_name", "pio_email", "jurisdiction", "subject",
		"questions", "draft_text", "status", "filed_at", "deadline_at",
		"response_text", "response_at", "appeal_filed", "appeal_at", "created_at", "updated_at",
	}).AddRow(
		int64(7), "RTI2026-00042", "Asha Devi", "asha@example.com", "9876543210",
		"12, Gandhi Nagar, New Delhi", false, "", "ration card not arrived", "hi",
		"Department of Food and Public Distribution", "C009", "CPIO, Krishi Bhawan",
		"cpio.dfpd@nic.in", "central", "Status of ration card application",
		pq.Array([]string{"Please provide the status."}), "To the PIO...", models.StatusFiled,
		filed, deadline, "", nil, false, nil, filed, filed,
	)
}

// ==================== Create ====================

func TestApplicationStore_Create(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO rti_applications`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(7), now, now))

	app := &models.Application{
		RefNumber:     "RTI2026-00042",
		ApplicantName: "Asha Devi",
		Status:        models.StatusFiled,
		Questions:     []string{"Please provide the status."},
	}
	err := store.Create(context.Background(), app)

	require.NoError(t, err)
	assert.Equal(t, int64(7), app.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_Create_DuplicateReference(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO rti_applications`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "rti_applications_ref_number_key"})

	err := store.Create(context.Background(), &models.Application{RefNumber: "RTI2026-00042"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateRef)
}

// ==================== GetByRefNumber ====================

func TestApplicationStore_GetByRefNumber(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM rti_applications WHERE ref_number`).
		WithArgs("RTI2026-00042").
		WillReturnRows(applicationRows())

	app, err := store.GetByRefNumber(context.Background(), "RTI2026-00042")

	require.NoError(t, err)
	assert.Equal(t, "Asha Devi", app.ApplicantName)
	assert.Equal(t, models.StatusFiled, app.Status)
	assert.Equal(t, []string{"Please provide the status."}, app.Questions)
	require.NotNil(t, app.FiledAt)
}

func TestApplicationStore_GetByRefNumber_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	empty := sqlmock.NewRows([]string{"id"})
	mock.ExpectQuery(`SELECT .+ FROM rti_applications WHERE ref_number`).
		WithArgs("RTI2026-99999").
		WillReturnRows(empty)

	_, err := store.GetByRefNumber(context.Background(), "RTI2026-99999")

	assert.ErrorIs(t, err, ErrNotFound)
}

// ==================== Status updates ====================

func TestApplicationStore_UpdateStatus(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE rti_applications SET status`).
		WithArgs(models.StatusAcknowledged, "RTI2026-00042").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.UpdateStatus(context.Background(), "RTI2026-00042", models.StatusAcknowledged)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_UpdateStatus_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE rti_applications SET status`).
		WithArgs(models.StatusAcknowledged, "RTI2026-99999").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.UpdateStatus(context.Background(), "RTI2026-99999", models.StatusAcknowledged)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplicationStore_MarkAppealFiled(t *testing.T) {
	store, mock := newMockStore(t)

	at := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE rti_applications`).
		WithArgs(at, models.StatusFirstAppealFiled, "RTI2026-00042").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.MarkAppealFiled(context.Background(), "RTI2026-00042", at)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==================== Listing ====================

func TestApplicationStore_ListPendingEscalation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM rti_applications`).
		WithArgs(models.StatusFiled, models.StatusAcknowledged, models.StatusFirstAppealFiled, 100).
		WillReturnRows(applicationRows())

	apps, err := store.ListPendingEscalation(context.Background(), 100)

	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "RTI2026-00042", apps[0].RefNumber)
}

func TestApplicationStore_Count(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(12)))

	count, err := store.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(12), count)
}
