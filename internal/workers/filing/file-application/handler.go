package fileapplication

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	stderrors "rti-saarthi/internal/common/errors"
	"rti-saarthi/internal/common/logger"
	"rti-saarthi/internal/common/metrics"
	"rti-saarthi/internal/models"
	"rti-saarthi/internal/store"
)

const (
	TaskType = "file-application"
)

var (
	ErrRefSequenceFailed = errors.New("REF_SEQUENCE_FAILED")
	ErrInsertFailed      = errors.New("DATABASE_INSERT_FAILED")
	ErrDuplicateRef      = errors.New("DUPLICATE_REFERENCE")
)

type Handler struct {
	config    *Config
	store     *store.ApplicationStore
	refSeq    *store.RefSequence
	logger    logger.Logger
	now       func() time.Time
	ackDigits func() string
}

func NewHandler(config *Config, appStore *store.ApplicationStore, refSeq *store.RefSequence, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		store:  appStore,
		refSeq: refSeq,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:    time.Now,
		ackDigits: func() string {
			return fmt.Sprintf("%08d", rand.Intn(100000000))
		},
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Errorf("parse input: %w", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

// execute simulates the filing: reserves a reference number, stamps the
// deadline, persists the record, and returns the acknowledgement the
// government portal would produce.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	now := h.now()

	refNumber, err := h.refSeq.Next(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefSequenceFailed, err)
	}

	filedAt := now
	deadlineAt := filedAt.AddDate(0, 0, h.config.DeadlineDays)

	app := &models.Application{
		RefNumber:        refNumber,
		ApplicantName:    input.Applicant.Name,
		ApplicantEmail:   input.Applicant.Email,
		ApplicantMobile:  input.Applicant.Mobile,
		ApplicantAddress: input.Applicant.Address,
		IsBPL:            input.Applicant.IsBPL,
		BPLCardNo:        input.Applicant.BPLCardNo,
		OriginalQuery:    input.Analysis.OriginalQuestion,
		Language:         input.Analysis.DetectedLanguage,
		Department:       input.Routing.Office.Department,
		PIOID:            input.Routing.Office.ID,
		PIOName:          input.Routing.Office.PIOName,
		PIOEmail:         input.Routing.Office.Email,
		Jurisdiction:     input.Routing.Jurisdiction,
		Subject:          input.Draft.Subject,
		Questions:        input.Draft.FormalQuestions,
		DraftText:        input.Draft.FullApplicationText,
		Status:           models.StatusFiled,
		FiledAt:          &filedAt,
		DeadlineAt:       &deadlineAt,
	}

	if err := h.store.Create(ctx, app); err != nil {
		if errors.Is(err, store.ErrDuplicateRef) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRef, refNumber)
		}
		return nil, fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}

	output := &Output{
		RefNumber:  refNumber,
		AckNumber:  fmt.Sprintf("DOPT%d%s", now.Year(), h.ackDigits()),
		Status:     models.StatusFiled,
		FiledAt:    filedAt,
		DeadlineAt: deadlineAt,
		Fee:        input.Routing.Fee,
		Portal:     input.Routing.Office.Portal,
	}

	h.logger.Info("application filed", map[string]interface{}{
		"refNumber":  output.RefNumber,
		"ackNumber":  output.AckNumber,
		"pioId":      app.PIOID,
		"deadlineAt": output.DeadlineAt,
	})
	return output, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	bpmnErr := stderrors.FromStandardError(h.classify(err), 0)
	if bpmnErr.Retryable {
		bpmnErr.Retries = 2
	}

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"errorCode": bpmnErr.Code,
		"error":     err.Error(),
		"retryable": bpmnErr.Retryable,
	})

	metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(bpmnErr.Retries)).
		ErrorMessage(bpmnErr.Code + ": " + err.Error()).
		Send(context.Background())
}

// classify maps execute's sentinels onto the shared error vocabulary so the
// fail command carries a stable code and the right retry budget.
func (h *Handler) classify(err error) *stderrors.StandardError {
	switch {
	case errors.Is(err, ErrRefSequenceFailed):
		return stderrors.NewRefSequenceFailedError(err)
	case errors.Is(err, ErrDuplicateRef):
		return stderrors.NewDuplicateReferenceError(err.Error())
	case errors.Is(err, ErrInsertFailed):
		return stderrors.NewDatabaseInsertFailedError(err)
	default:
		return &stderrors.StandardError{
			Code:      "UNKNOWN_ERROR",
			Message:   err.Error(),
			Retryable: false,
			Timestamp: time.Now().UTC(),
		}
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
