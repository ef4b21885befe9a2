package predictsuccess

import (
	"context"
	"encoding/json"
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
	TaskType = "predict-success"
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
		h.failJob(client, job, fmt.Errorf("parse input: %w", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output := h.execute(ctx, &input)
	h.completeJob(client, job, output)
}

// execute scores the draft's chances. The estimate is advisory, so this
// worker never fails a job over generation problems: the fixed fallback
// estimate stands in.
func (h *Handler) execute(ctx context.Context, input *Input) *Output {
	output := &Output{}
	err := h.generator.GenerateJSON(ctx, buildPredictionPrompt(input), genai.PredictionSchema, &output.Prediction)
	if err != nil {
		reason := genai.ReasonOf(err)
		metrics.GeneratorFallbacks.WithLabelValues("prediction", string(reason)).Inc()
		h.logger.Warn("prediction generation failed, using fixed estimate", map[string]interface{}{
			"reason": string(reason),
			"error":  err.Error(),
		})
		output.Prediction = content.FallbackPrediction()
		output.UsedFallback = true
	}

	h.logger.Info("success predicted", map[string]interface{}{
		"probability":  output.Prediction.SuccessProbability,
		"riskLevel":    output.Prediction.RiskLevel,
		"usedFallback": output.UsedFallback,
	})
	return output
}

func buildPredictionPrompt(input *Input) string {
	var sb strings.Builder
	sb.WriteString("Estimate the chance this RTI application receives a substantive response ")
	sb.WriteString("within the statutory 30 days. Respond with JSON only.\n\n")
	sb.WriteString("Fields: successProbability (0-1), factors {questionClarity, departmentResponsiveness, ")
	sb.WriteString("informationAvailability} (each 0-1), riskLevel (low|medium|high), ")
	sb.WriteString("tips (practical suggestions), estimatedResponseDays.\n\n")
	sb.WriteString("Department: " + input.Routing.Office.Department + "\n")
	sb.WriteString("Jurisdiction: " + input.Routing.Jurisdiction + "\n")
	sb.WriteString("Subject: " + input.Draft.Subject + "\n")
	sb.WriteString("Questions:\n")
	for _, q := range input.Draft.FormalQuestions {
		sb.WriteString("- " + q + "\n")
	}
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey": job.Key,
		"error":  err.Error(),
	})

	metrics.WorkerJobsFailed.WithLabelValues(TaskType, "PARSE_FAILED").Inc()

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(0).
		ErrorMessage(err.Error()).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	return h.execute(ctx, input)
}
