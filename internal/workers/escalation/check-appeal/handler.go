package checkappeal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"rti-saarthi/internal/common/logger"
	"rti-saarthi/internal/common/metrics"
	"rti-saarthi/internal/content"
	"rti-saarthi/internal/escalation"
	"rti-saarthi/internal/genai"
	"rti-saarthi/internal/models"
	"rti-saarthi/internal/store"
)

const (
	TaskType = "check-appeal"
)

var (
	ErrRecordNotFound = errors.New("RECORD_NOT_FOUND")
	ErrUpdateFailed   = errors.New("DATABASE_UPDATE_FAILED")
)

type Handler struct {
	config    *Config
	store     *store.ApplicationStore
	generator genai.TextGenerator
	logger    logger.Logger
	now       func() time.Time
}

func NewHandler(config *Config, appStore *store.ApplicationStore, generator genai.TextGenerator, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		store:     appStore,
		generator: generator,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:       time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Errorf("parse input: %w", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			h.throwBusinessError(client, job, "RECORD_NOT_FOUND", err.Error())
			return
		}
		retries := int32(0)
		if errors.Is(err, ErrUpdateFailed) {
			retries = 2
		}
		h.failJob(client, job, err, retries)
		return
	}

	h.completeJob(client, job, output)
}

// execute checks one filed application against the statutory timeline.
// When an appeal is due it drafts the letter and marks the record so the
// next check parks instead of appealing again.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	app, err := h.store.GetByRefNumber(ctx, input.RefNumber)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, input.RefNumber)
		}
		return nil, err
	}

	now := h.now()
	policy := escalation.Policy{
		DeadlineDays:     h.config.DeadlineDays,
		ReminderLeadDays: h.config.ReminderLeadDays,
	}
	ev := policy.Evaluate(app, now)

	output := &Output{
		RefNumber:       app.RefNumber,
		Action:          ev.Action,
		DaysSinceFiling: ev.DaysSinceFiling,
		DaysRemaining:   ev.DaysRemaining,
		Deadline:        ev.Deadline,
	}

	switch ev.Action {
	case escalation.ActionFirstAppeal:
		letter, usedFallback := h.appealLetter(ctx, app, ev, now)
		output.Letter = letter
		output.UsedFallback = usedFallback
		if err := h.store.MarkAppealFiled(ctx, app.RefNumber, now); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpdateFailed, err)
		}
	case escalation.ActionReminder:
		letter, usedFallback := h.reminderLetter(app, ev, now)
		output.Letter = letter
		output.UsedFallback = usedFallback
	}

	h.logger.Info("escalation evaluated", map[string]interface{}{
		"refNumber":       app.RefNumber,
		"action":          ev.Action,
		"daysSinceFiling": ev.DaysSinceFiling,
	})
	return output, nil
}

func (h *Handler) appealLetter(ctx context.Context, app *models.Application, ev escalation.Evaluation, now time.Time) (string, bool) {
	if h.generator != nil {
		letter, err := h.generator.GenerateText(ctx, buildAppealPrompt(app, ev))
		if err == nil {
			return letter, false
		}
		reason := genai.ReasonOf(err)
		metrics.GeneratorFallbacks.WithLabelValues("appeal_letter", string(reason)).Inc()
		h.logger.Warn("appeal letter generation failed, using template", map[string]interface{}{
			"reason": string(reason),
			"error":  err.Error(),
		})
	}

	letter, err := content.RenderFirstAppeal(content.AppealInput{
		ApplicantName:   app.ApplicantName,
		Department:      app.Department,
		RefNumber:       app.RefNumber,
		FiledDate:       app.FiledAt.Format("02 January 2006"),
		DaysSinceFiling: ev.DaysSinceFiling,
		Date:            now.Format("02 January 2006"),
	})
	if err != nil {
		// Template rendering over known fields does not fail in practice.
		h.logger.Error("appeal template failed", map[string]interface{}{"error": err.Error()})
		return "", true
	}
	return letter, true
}

func (h *Handler) reminderLetter(app *models.Application, ev escalation.Evaluation, now time.Time) (string, bool) {
	letter, err := content.RenderReminder(content.ReminderInput{
		ApplicantName: app.ApplicantName,
		Department:    app.Department,
		RefNumber:     app.RefNumber,
		FiledDate:     app.FiledAt.Format("02 January 2006"),
		DaysRemaining: ev.DaysRemaining,
		Date:          now.Format("02 January 2006"),
	})
	if err != nil {
		h.logger.Error("reminder template failed", map[string]interface{}{"error": err.Error()})
		return "", true
	}
	return letter, true
}

func buildAppealPrompt(app *models.Application, ev escalation.Evaluation) string {
	var sb strings.Builder
	sb.WriteString("Write a formal first appeal under Section 19(1) of the Right to Information Act, 2005. ")
	sb.WriteString("Cite Section 7(1) for the lapsed 30-day deadline and Section 18(1)(b) for deemed refusal. ")
	sb.WriteString("Plain text, no markdown.\n\n")
	sb.WriteString("Applicant: " + app.ApplicantName + "\n")
	sb.WriteString("Department: " + app.Department + "\n")
	sb.WriteString("Reference number: " + app.RefNumber + "\n")
	sb.WriteString(fmt.Sprintf("Days since filing: %d\n", ev.DaysSinceFiling))
	sb.WriteString("Original subject: " + app.Subject + "\n")
	return sb.String()
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

// throwBusinessError raises a catchable BPMN error for lookups on unknown
// reference numbers.
func (h *Handler) throwBusinessError(client worker.JobClient, job entities.Job, code, message string) {
	h.logger.Warn("business error", map[string]interface{}{
		"jobKey":    job.Key,
		"errorCode": code,
		"message":   message,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(code).
		ErrorMessage(message).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, retries int32) {
	errorCode := "UNKNOWN_ERROR"
	switch {
	case errors.Is(err, ErrRecordNotFound):
		errorCode = "RECORD_NOT_FOUND"
	case errors.Is(err, ErrUpdateFailed):
		errorCode = "DATABASE_UPDATE_FAILED"
	}

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"error":     err.Error(),
		"errorCode": errorCode,
	})

	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(err.Error()).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
