package analyzequery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"rti-saarthi/internal/common/logger"
	"rti-saarthi/internal/common/metrics"
	"rti-saarthi/internal/content"
	"rti-saarthi/internal/genai"
)

const (
	TaskType = "analyze-query"
)

var (
	ErrEmptyQuestion = errors.New("EMPTY_QUESTION")
)

type Handler struct {
	config    *Config
	generator genai.StructuredGenerator
	logger    logger.Logger
}

func NewHandler(config *Config, generator genai.StructuredGenerator, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		generator: generator,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		h.failJob(client, job, err, 0)
		return
	}

	h.completeJob(client, job, output)
}

// execute asks the model to analyze the question; on any generation
// failure it falls back to a deterministic analysis so the pipeline can
// always proceed.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	output := &Output{}
	err := h.generator.GenerateJSON(ctx, buildAnalysisPrompt(question, input.Region), genai.AnalysisSchema, &output.Analysis)
	if err != nil {
		reason := genai.ReasonOf(err)
		metrics.GeneratorFallbacks.WithLabelValues("analysis", string(reason)).Inc()
		h.logger.Warn("analysis generation failed, using fallback", map[string]interface{}{
			"reason": string(reason),
			"error":  err.Error(),
		})
		output.Analysis = content.FallbackAnalysis(question, input.Language)
		output.UsedFallback = true
	}

	output.Analysis.OriginalQuestion = question
	if output.Analysis.DetectedLanguage == "" {
		output.Analysis.DetectedLanguage = input.Language
	}

	h.logger.Info("query analyzed", map[string]interface{}{
		"category":     output.Analysis.Category,
		"urgency":      output.Analysis.Urgency,
		"isValidRti":   output.Analysis.IsValidRTI,
		"usedFallback": output.UsedFallback,
	})
	return output, nil
}

func buildAnalysisPrompt(question, region string) string {
	var sb strings.Builder
	sb.WriteString("You assist Indian citizens with Right to Information applications.\n")
	sb.WriteString("Analyze the citizen's question below and respond with JSON only.\n\n")
	sb.WriteString("Fields: originalQuestion, detectedLanguage (ISO 639-1), translatedQuestion ")
	sb.WriteString("(English, only if the question is not in English), subject (short formal subject line), ")
	sb.WriteString("category (one of: food_ration, electricity, water, housing, road_infrastructure, ")
	sb.WriteString("railways, health, education, postal, income_tax, employment, lpg_petroleum, general), ")
	sb.WriteString("extractedInfo {whatIsNeeded, timePeriod, location, specificIssue}, ")
	sb.WriteString("suggestedQuestions (2-4 formal RTI questions pointing at identifiable records), ")
	sb.WriteString("urgency (low|medium|high), isValidRti, invalidReason.\n\n")
	sb.WriteString("A question is not a valid RTI request when it asks for an opinion, a grievance ")
	sb.WriteString("redressal, or hypothetical information rather than existing records.\n\n")
	if region != "" {
		sb.WriteString("The applicant is located in: " + region + "\n")
	}
	sb.WriteString("Question: " + question + "\n")
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, retries int32) {
	errorCode := "UNKNOWN_ERROR"
	if errors.Is(err, ErrEmptyQuestion) {
		errorCode = "EMPTY_QUESTION"
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
		ErrorMessage(errorCode + ": " + err.Error()).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
