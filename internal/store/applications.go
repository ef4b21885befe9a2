// Package store persists filed applications in Postgres and hands out
// reference numbers from a Redis sequence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"rti-saarthi/internal/common/logger"
	"rti-saarthi/internal/models"
)

// ErrNotFound is returned when no application matches the lookup.
var ErrNotFound = errors.New("application not found")

// ErrDuplicateRef is returned when an insert collides on the reference
// number. The UNIQUE constraint is the backstop behind the Redis sequence.
var ErrDuplicateRef = errors.New("duplicate reference number")

const uniqueViolation = "23505"

// ApplicationStore wraps CRUD over the rti_applications table.
type ApplicationStore struct {
	db  *sql.DB
	log logger.Logger
}

// NewApplicationStore builds a store over an open database handle.
func NewApplicationStore(db *sql.DB, log logger.Logger) *ApplicationStore {
	return &ApplicationStore{db: db, log: log}
}

const applicationColumns = `id, ref_number, applicant_name, applicant_email, applicant_mobile,
	applicant_address, is_bpl, bpl_card_no, original_query, language, department,
	pio_id, pio_name, pio_email, jurisdiction, subject, questions, draft_text,
	status, filed_at, deadline_at, response_text, response_at, appeal_filed,
	appeal_at, created_at, updated_at`

// Create inserts a new application record and fills in its generated id and
// timestamps.
func (s *ApplicationStore) Create(ctx context.Context, app *models.Application) error {
	query := `
		INSERT INTO rti_applications (
			ref_number, applicant_name, applicant_email, applicant_mobile,
			applicant_address, is_bpl, bpl_card_no, original_query, language,
			department, pio_id, pio_name, pio_email, jurisdiction, subject,
			questions, draft_text, status, filed_at, deadline_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRowContext(ctx, query,
		app.RefNumber, app.ApplicantName, app.ApplicantEmail, app.ApplicantMobile,
		app.ApplicantAddress, app.IsBPL, app.BPLCardNo, app.OriginalQuery, app.Language,
		app.Department, app.PIOID, app.PIOName, app.PIOEmail, app.Jurisdiction, app.Subject,
		pq.Array(app.Questions), app.DraftText, app.Status, app.FiledAt, app.DeadlineAt,
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateRef, app.RefNumber)
		}
		return fmt.Errorf("insert application: %w", err)
	}

	s.log.Info("application record created", map[string]interface{}{
		"ref_number": app.RefNumber,
		"pio_id":     app.PIOID,
		"status":     app.Status,
	})
	return nil
}

// GetByRefNumber loads one application by its reference number.
func (s *ApplicationStore) GetByRefNumber(ctx context.Context, refNumber string) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM rti_applications WHERE ref_number = $1`

	var app models.Application
	err := s.db.QueryRowContext(ctx, query, refNumber).Scan(
		&app.ID, &app.RefNumber, &app.ApplicantName, &app.ApplicantEmail, &app.ApplicantMobile,
		&app.ApplicantAddress, &app.IsBPL, &app.BPLCardNo, &app.OriginalQuery, &app.Language,
		&app.Department, &app.PIOID, &app.PIOName, &app.PIOEmail, &app.Jurisdiction,
		&app.Subject, pq.Array(&app.Questions), &app.DraftText, &app.Status,
		&app.FiledAt, &app.DeadlineAt, &app.ResponseText, &app.ResponseAt,
		&app.AppealFiled, &app.AppealAt, &app.CreatedAt, &app.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, refNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("get application %s: %w", refNumber, err)
	}
	return &app, nil
}

// UpdateStatus advances an application's status.
func (s *ApplicationStore) UpdateStatus(ctx context.Context, refNumber, status string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE rti_applications SET status = $1, updated_at = NOW() WHERE ref_number = $2`,
		status, refNumber,
	)
	if err != nil {
		return fmt.Errorf("update status for %s: %w", refNumber, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, refNumber)
	}
	return nil
}

// MarkAppealFiled records that a first appeal went out and advances the
// status in one statement.
func (s *ApplicationStore) MarkAppealFiled(ctx context.Context, refNumber string, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE rti_applications
		 SET appeal_filed = TRUE, appeal_at = $1, status = $2, updated_at = NOW()
		 WHERE ref_number = $3`,
		at, models.StatusFirstAppealFiled, refNumber,
	)
	if err != nil {
		return fmt.Errorf("mark appeal filed for %s: %w", refNumber, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, refNumber)
	}
	return nil
}

// ListPendingEscalation returns filed applications that have not received a
// response, oldest filing first.
func (s *ApplicationStore) ListPendingEscalation(ctx context.Context, limit int) ([]*models.Application, error) {
	query := `SELECT ` + applicationColumns + `
		FROM rti_applications
		WHERE status IN ($1, $2, $3)
		ORDER BY filed_at ASC
		LIMIT $4`

	rows, err := s.db.QueryContext(ctx, query,
		models.StatusFiled, models.StatusAcknowledged, models.StatusFirstAppealFiled, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		var app models.Application
		err := rows.Scan(
			&app.ID, &app.RefNumber, &app.ApplicantName, &app.ApplicantEmail, &app.ApplicantMobile,
			&app.ApplicantAddress, &app.IsBPL, &app.BPLCardNo, &app.OriginalQuery, &app.Language,
			&app.Department, &app.PIOID, &app.PIOName, &app.PIOEmail, &app.Jurisdiction,
			&app.Subject, pq.Array(&app.Questions), &app.DraftText, &app.Status,
			&app.FiledAt, &app.DeadlineAt, &app.ResponseText, &app.ResponseAt,
			&app.AppealFiled, &app.AppealAt, &app.CreatedAt, &app.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan application row: %w", err)
		}
		apps = append(apps, &app)
	}
	return apps, rows.Err()
}

// Count returns the total number of stored applications.
func (s *ApplicationStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rti_applications`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return count, nil
}
