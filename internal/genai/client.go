// Package genai wraps the Gemini SDK behind small text and structured
// generation interfaces. Every call is a single bounded attempt: callers
// fall back to deterministic content on any failure rather than retrying
// the model.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gemini "github.com/google/generative-ai-go/genai"
	"github.com/xeipuuv/gojsonschema"
	"google.golang.org/api/option"

	"rti-saarthi/internal/common/config"
	"rti-saarthi/internal/common/logger"
)

// FailureReason classifies why a generation attempt produced no usable
// output.
type FailureReason string

const (
	ReasonUnavailable   FailureReason = "unavailable"
	ReasonTimeout       FailureReason = "timeout"
	ReasonInvalidOutput FailureReason = "invalid_output"
)

// GenerationError carries the failure classification alongside the cause.
type GenerationError struct {
	Reason FailureReason
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Reason, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ReasonOf extracts the failure classification from an error chain,
// defaulting to unavailable.
func ReasonOf(err error) FailureReason {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Reason
	}
	return ReasonUnavailable
}

// TextGenerator produces free-form text from a prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// StructuredGenerator produces JSON conforming to a schema and decodes it
// into out.
type StructuredGenerator interface {
	GenerateJSON(ctx context.Context, prompt, schema string, out interface{}) error
}

// Client is the Gemini-backed implementation of both generator interfaces.
type Client struct {
	model    string
	timeout  time.Duration
	log      logger.Logger
	client   *gemini.Client
	generate func(ctx context.Context, prompt string, jsonMode bool) (string, error)
}

// New dials the Gemini API. The returned client owns the connection; call
// Close when done.
func New(ctx context.Context, cfg config.GeminiConfig, log logger.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key not configured")
	}
	sdkClient, err := gemini.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	c := &Client{
		model:   cfg.Model,
		timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		log:     log,
		client:  sdkClient,
	}
	maxTokens := int32(cfg.MaxOutputTokens)
	c.generate = func(ctx context.Context, prompt string, jsonMode bool) (string, error) {
		model := sdkClient.GenerativeModel(c.model)
		if maxTokens > 0 {
			model.SetMaxOutputTokens(maxTokens)
		}
		if jsonMode {
			model.ResponseMIMEType = "application/json"
		}
		resp, err := model.GenerateContent(ctx, gemini.Text(prompt))
		if err != nil {
			return "", err
		}
		return collectText(resp)
	}
	return c, nil
}

// Close releases the underlying API connection.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// callContext bounds one generation attempt by the configured timeout. The
// caller's deadline still applies when it is tighter.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

// GenerateText runs one bounded generation attempt and returns the model's
// text output.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	text, err := c.generate(ctx, prompt, false)
	if err != nil {
		return "", c.classify(err)
	}
	if strings.TrimSpace(text) == "" {
		return "", &GenerationError{Reason: ReasonInvalidOutput, Err: errors.New("empty model output")}
	}
	return text, nil
}

// GenerateJSON runs one bounded generation attempt, strips any code fences,
// validates the output against the given JSON schema, and decodes it into
// out. Any validation or decoding failure is classified invalid_output; the
// model is never re-asked.
func (c *Client) GenerateJSON(ctx context.Context, prompt, schema string, out interface{}) error {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	raw, err := c.generate(ctx, prompt, true)
	if err != nil {
		return c.classify(err)
	}

	cleaned := CleanFences(raw)
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(cleaned),
	)
	if err != nil {
		return &GenerationError{Reason: ReasonInvalidOutput, Err: fmt.Errorf("output is not valid JSON: %w", err)}
	}
	if !result.Valid() {
		var issues []string
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		c.log.Warn("model output failed schema validation", map[string]interface{}{
			"model":  c.model,
			"issues": strings.Join(issues, "; "),
		})
		return &GenerationError{Reason: ReasonInvalidOutput, Err: fmt.Errorf("schema validation: %s", strings.Join(issues, "; "))}
	}

	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return &GenerationError{Reason: ReasonInvalidOutput, Err: fmt.Errorf("decode model output: %w", err)}
	}
	return nil
}

func (c *Client) classify(err error) error {
	reason := ReasonUnavailable
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		reason = ReasonTimeout
	}
	return &GenerationError{Reason: reason, Err: err}
}

// CleanFences strips markdown code fences the model sometimes wraps JSON in.
func CleanFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```json")
			s = strings.TrimPrefix(s, "```")
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func collectText(resp *gemini.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no candidates in response")
	}
	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(gemini.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("no text parts in response")
	}
	return sb.String(), nil
}
