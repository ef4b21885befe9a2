package sendreminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	stderrors "rti-saarthi/internal/common/errors"
	"rti-saarthi/internal/common/logger"
	"rti-saarthi/internal/common/metrics"
)

const (
	TaskType = "send-reminder"
)

var (
	ErrSendFailed       = errors.New("NOTIFICATION_SEND_FAILED")
	ErrNoRecipient      = errors.New("NO_RECIPIENT")
	ErrNothingToDeliver = errors.New("NOTHING_TO_DELIVER")
)

// EmailSender abstracts the SES wrapper.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender abstracts the SNS wrapper.
type SMSSender interface {
	SendSMS(ctx context.Context, phoneNumber, message string) error
}

type Handler struct {
	config *Config
	email  EmailSender
	sms    SMSSender
	logger logger.Logger
}

func NewHandler(config *Config, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		email:  email,
		sms:    sms,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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

// execute delivers the escalation letter over every enabled channel the
// applicant gave a recipient for. One successful channel is enough; the
// job only fails when every attempted channel fails.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Letter == "" {
		return nil, ErrNothingToDeliver
	}
	if input.Email == "" && input.Mobile == "" {
		return nil, ErrNoRecipient
	}

	output := &Output{
		NotificationID: uuid.New().String(),
		RefNumber:      input.RefNumber,
	}
	var lastErr error
	attempted := 0

	if h.config.EmailEnabled && h.email != nil && input.Email != "" {
		attempted++
		subject := fmt.Sprintf("RTI %s: action needed (%s)", input.RefNumber, input.Action)
		if err := h.email.SendEmail(ctx, input.Email, subject, input.Letter); err != nil {
			lastErr = err
			h.logger.Warn("email delivery failed", map[string]interface{}{
				"refNumber": input.RefNumber,
				"error":     err.Error(),
			})
		} else {
			output.EmailSent = true
		}
	}

	if h.config.SMSEnabled && h.sms != nil && input.Mobile != "" {
		attempted++
		message := fmt.Sprintf("RTI %s: %s. Check your email for the full letter.", input.RefNumber, input.Action)
		if err := h.sms.SendSMS(ctx, input.Mobile, message); err != nil {
			lastErr = err
			h.logger.Warn("sms delivery failed", map[string]interface{}{
				"refNumber": input.RefNumber,
				"error":     err.Error(),
			})
		} else {
			output.SMSSent = true
		}
	}

	if attempted > 0 && !output.EmailSent && !output.SMSSent {
		return nil, fmt.Errorf("%w: %v", ErrSendFailed, lastErr)
	}

	h.logger.Info("reminder delivered", map[string]interface{}{
		"notificationId": output.NotificationID,
		"refNumber":      input.RefNumber,
		"emailSent":      output.EmailSent,
		"smsSent":        output.SMSSent,
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

// classify maps the delivery sentinels onto the shared error vocabulary.
// Missing recipients and empty letters are modelling faults upstream, so
// they never retry.
func (h *Handler) classify(err error) *stderrors.StandardError {
	switch {
	case errors.Is(err, ErrSendFailed):
		return stderrors.NewNotificationSendFailedError(err)
	case errors.Is(err, ErrNoRecipient):
		return &stderrors.StandardError{
			Code:      "NO_RECIPIENT",
			Message:   "No email or mobile on the application",
			Retryable: false,
			Timestamp: time.Now().UTC(),
		}
	case errors.Is(err, ErrNothingToDeliver):
		return &stderrors.StandardError{
			Code:      "NOTHING_TO_DELIVER",
			Message:   "No letter content to deliver",
			Retryable: false,
			Timestamp: time.Now().UTC(),
		}
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
