package indexapplication

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"

	stderrors "rti-saarthi/internal/common/errors"
	"rti-saarthi/internal/common/logger"
	"rti-saarthi/internal/common/metrics"
)

const (
	TaskType = "index-application"
)

var (
	ErrIndexingFailed = errors.New("INDEXING_FAILED")
	ErrIndexTimeout   = errors.New("INDEX_TIMEOUT")
	ErrMissingRef     = errors.New("MISSING_REF_NUMBER")
)

type Handler struct {
	config *Config
	client *elasticsearch.Client
	logger logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: client,
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

// execute writes one application document, keyed by reference number so
// re-filing the same job overwrites instead of duplicating.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.RefNumber == "" {
		return nil, ErrMissingRef
	}

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal document: %v", ErrIndexingFailed, err)
	}

	res, err := h.client.Index(
		h.config.IndexName,
		bytes.NewReader(body),
		h.client.Index.WithDocumentID(input.RefNumber),
		h.client.Index.WithContext(ctx),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrIndexTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrIndexingFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("%w: status %s: %s", ErrIndexingFailed, res.Status(), string(msg))
	}

	var indexed struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(res.Body).Decode(&indexed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrIndexingFailed, err)
	}

	h.logger.Info("application indexed", map[string]interface{}{
		"refNumber": input.RefNumber,
		"index":     h.config.IndexName,
		"result":    indexed.Result,
	})

	return &Output{
		RefNumber: input.RefNumber,
		Index:     h.config.IndexName,
		Result:    indexed.Result,
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

func (h *Handler) classify(err error) *stderrors.StandardError {
	switch {
	case errors.Is(err, ErrIndexTimeout):
		return stderrors.NewSearchTimeoutError(err)
	case errors.Is(err, ErrIndexingFailed):
		return stderrors.NewIndexingFailedError(err)
	case errors.Is(err, ErrMissingRef):
		return &stderrors.StandardError{
			Code:      "MISSING_REF_NUMBER",
			Message:   "Document has no reference number to key on",
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
