package routedepartment

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
	"rti-saarthi/internal/models"
	"rti-saarthi/internal/routing"
)

const (
	TaskType = "route-department"
)

var (
	ErrMissingAnalysis = errors.New("MISSING_ANALYSIS")
)

type Handler struct {
	config   *Config
	resolver *routing.Resolver
	logger   logger.Logger
}

func NewHandler(config *Config, resolver *routing.Resolver, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		resolver: resolver,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
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

	output, err := h.execute(&input)
	if err != nil {
		h.failJob(client, job, err, 0)
		return
	}

	h.completeJob(client, job, output)
}

// execute is pure directory lookup; it cannot fail once the input carries
// an analysis, because the resolver always lands on some office.
func (h *Handler) execute(input *Input) (*Output, error) {
	if input.Analysis.Category == "" && input.Analysis.OriginalQuestion == "" {
		return nil, ErrMissingAnalysis
	}

	region := input.Region
	if region == "" {
		region = input.Analysis.ExtractedInfo.Location
	}

	decision := h.resolver.Route(routing.Query{
		Category:     input.Analysis.Category,
		Keywords:     extraKeywords(&input.Analysis),
		Region:       region,
		IsBPL:        input.IsBPL,
		OriginalText: input.Analysis.OriginalQuestion,
	})

	return &Output{Routing: decision}, nil
}

// extraKeywords pulls the salient words of the analysis. The resolver
// already matches on the category's configured keyword set; these only add
// what the analysis extracted beyond it.
func extraKeywords(analysis *models.QueryAnalysis) []string {
	var keywords []string
	if needed := strings.TrimSpace(analysis.ExtractedInfo.WhatIsNeeded); needed != "" {
		keywords = append(keywords, strings.ToLower(needed))
	}
	if issue := strings.TrimSpace(analysis.ExtractedInfo.SpecificIssue); issue != "" {
		keywords = append(keywords, strings.ToLower(issue))
	}
	return keywords
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
	if errors.Is(err, ErrMissingAnalysis) {
		errorCode = "MISSING_ANALYSIS"
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

func (h *Handler) Execute(input *Input) (*Output, error) {
	return h.execute(input)
}
