package draftapplication

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
	"rti-saarthi/internal/genai"
	"rti-saarthi/internal/models"
)

const (
	TaskType = "draft-application"
)

var (
	ErrInvalidRTIQuery = errors.New("INVALID_RTI_QUERY")
)

type Handler struct {
	config    *Config
	generator genai.StructuredGenerator
	logger    logger.Logger
	now       func() time.Time
}

func NewHandler(config *Config, generator genai.StructuredGenerator, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
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
		if errors.Is(err, ErrInvalidRTIQuery) {
			h.throwBusinessError(client, job, "INVALID_RTI_QUERY", input.Analysis.InvalidReason)
			return
		}
		h.failJob(client, job, err, 0)
		return
	}

	h.completeJob(client, job, output)
}

// execute drafts the formal application. The model writes it when it can;
// the deterministic letter template takes over for any generation failure,
// so a draft always comes out.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if !input.Analysis.IsValidRTI {
		return nil, ErrInvalidRTIQuery
	}

	now := h.now()
	output := &Output{}
	err := h.generator.GenerateJSON(ctx, h.buildDraftPrompt(input), genai.DraftSchema, &output.Draft)
	if err != nil {
		reason := genai.ReasonOf(err)
		metrics.GeneratorFallbacks.WithLabelValues("draft", string(reason)).Inc()
		h.logger.Warn("draft generation failed, using template", map[string]interface{}{
			"reason": string(reason),
			"error":  err.Error(),
		})
		draft, fallbackErr := h.fallbackDraft(input, now)
		if fallbackErr != nil {
			return nil, fallbackErr
		}
		output.Draft = *draft
		output.UsedFallback = true
	}

	output.Draft.FiledDate = now.Format("2006-01-02")
	output.Draft.DeadlineDate = now.AddDate(0, 0, h.config.DeadlineDays).Format("2006-01-02")

	h.logger.Info("application drafted", map[string]interface{}{
		"subject":       output.Draft.Subject,
		"questionCount": len(output.Draft.FormalQuestions),
		"usedFallback":  output.UsedFallback,
	})
	return output, nil
}

func (h *Handler) buildDraftPrompt(input *Input) string {
	var sb strings.Builder
	sb.WriteString("Draft a formal application under the Right to Information Act, 2005. Respond with JSON only.\n\n")
	sb.WriteString("Fields: subject, formalQuestions (numbered formal questions pointing at identifiable records), ")
	sb.WriteString("fullApplicationText (the complete letter, citing Section 6(1) for the request and Section 7(1) ")
	sb.WriteString("for the 30-day deadline), relevantSections, tips.\n\n")
	sb.WriteString("Applicant: " + input.Applicant.Name + ", " + input.Applicant.Address + "\n")
	if input.Applicant.IsBPL {
		sb.WriteString("The applicant holds a BPL card (no fee, cite Section 7(5)). Card no: " + input.Applicant.BPLCardNo + "\n")
	} else {
		sb.WriteString(fmt.Sprintf("Application fee: Rs. %d\n", input.Routing.Fee))
	}
	sb.WriteString("Addressed to: " + input.Routing.Office.PIOName + ", " + input.Routing.Office.Department + "\n")
	sb.WriteString("Address: " + input.Routing.Office.Address + "\n")
	sb.WriteString("Subject area: " + input.Analysis.Subject + "\n")
	sb.WriteString("The citizen's own words: " + input.Analysis.OriginalQuestion + "\n")
	if len(input.Analysis.SuggestedQuestions) > 0 {
		sb.WriteString("Candidate questions:\n")
		for _, q := range input.Analysis.SuggestedQuestions {
			sb.WriteString("- " + q + "\n")
		}
	}
	return sb.String()
}

func (h *Handler) fallbackDraft(input *Input, now time.Time) (*models.Draft, error) {
	questions := input.Analysis.SuggestedQuestions
	if len(questions) == 0 {
		questions = []string{"Please provide the current status and all records pertaining to: " + input.Analysis.OriginalQuestion}
	}

	text, err := content.RenderDraft(content.DraftInput{
		ApplicantName:    input.Applicant.Name,
		ApplicantAddress: input.Applicant.Address,
		Department:       input.Routing.Office.Department,
		Address:          input.Routing.Office.Address,
		Subject:          input.Analysis.Subject,
		Questions:        questions,
		IsBPL:            input.Applicant.IsBPL,
		BPLCardNo:        input.Applicant.BPLCardNo,
		Fee:              input.Routing.Fee,
		Date:             now.Format("02 January 2006"),
	})
	if err != nil {
		return nil, err
	}

	return &models.Draft{
		Subject:             input.Analysis.Subject,
		FormalQuestions:     questions,
		FullApplicationText: text,
		RelevantSections:    []string{"Section 6(1)", "Section 7(1)", "Section 6(3)"},
	}, nil
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

// throwBusinessError raises a BPMN error the process model can catch with
// an error boundary event, e.g. to route the citizen to a grievance portal.
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
	if errors.Is(err, ErrInvalidRTIQuery) {
		errorCode = "INVALID_RTI_QUERY"
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
