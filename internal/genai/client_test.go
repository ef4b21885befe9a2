package genai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rti-saarthi/internal/common/logger"
	"rti-saarthi/internal/models"
)

func newStubClient(generate func(ctx context.Context, prompt string, jsonMode bool) (string, error)) *Client {
	return &Client{
		model:    "test-model",
		log:      logger.NewNoOpLogger(),
		generate: generate,
	}
}

// ==================== CleanFences ====================

func TestCleanFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain json untouched",
			input:    `{"a": 1}`,
			expected: `{"a": 1}`,
		},
		{
			name:     "json fence stripped",
			input:    "```json\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "bare fence stripped",
			input:    "```\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  \n```json\n{\"a\": 1}\n```  \n",
			expected: `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanFences(tt.input))
		})
	}
}

// ==================== GenerateText ====================

func TestClient_GenerateText(t *testing.T) {
	client := newStubClient(func(ctx context.Context, prompt string, jsonMode bool) (string, error) {
		assert.False(t, jsonMode)
		return "To the Public Information Officer...", nil
	})

	text, err := client.GenerateText(context.Background(), "draft a letter")

	require.NoError(t, err)
	assert.Contains(t, text, "Public Information Officer")
}

func TestClient_GenerateText_Failures(t *testing.T) {
	tests := []struct {
		name           string
		generate       func(ctx context.Context, prompt string, jsonMode bool) (string, error)
		expectedReason FailureReason
	}{
		{
			name: "api error is unavailable",
			generate: func(ctx context.Context, prompt string, jsonMode bool) (string, error) {
				return "", errors.New("rpc error: connection refused")
			},
			expectedReason: ReasonUnavailable,
		},
		{
			name: "deadline exceeded is timeout",
			generate: func(ctx context.Context, prompt string, jsonMode bool) (string, error) {
				return "", context.DeadlineExceeded
			},
			expectedReason: ReasonTimeout,
		},
		{
			name: "empty output is invalid",
			generate: func(ctx context.Context, prompt string, jsonMode bool) (string, error) {
				return "   ", nil
			},
			expectedReason: ReasonInvalidOutput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newStubClient(tt.generate)
			_, err := client.GenerateText(context.Background(), "prompt")
			require.Error(t, err)
			assert.Equal(t, tt.expectedReason, ReasonOf(err))
		})
	}
}

func TestClient_GenerateText_ConfiguredTimeoutBoundsTheCall(t *testing.T) {
	client := newStubClient(func(ctx context.Context, prompt string, jsonMode bool) (string, error) {
		// Simulate a model call that never returns on its own.
		<-ctx.Done()
		return "", ctx.Err()
	})
	client.timeout = 20 * time.Millisecond

	_, err := client.GenerateText(context.Background(), "prompt")

	require.Error(t, err)
	assert.Equal(t, ReasonTimeout, ReasonOf(err))
}

// ==================== GenerateJSON ====================

func TestClient_GenerateJSON(t *testing.T) {
	client := newStubClient(func(ctx context.Context, prompt string, jsonMode bool) (string, error) {
		assert.True(t, jsonMode)
		return "```json\n{\"subject\": \"Ration card status\", \"category\": \"food_ration\", \"suggestedQuestions\": [\"Please provide the status.\"], \"isValidRti\": true}\n```", nil
	})

	var analysis models.QueryAnalysis
	err := client.GenerateJSON(context.Background(), "analyze", AnalysisSchema, &analysis)

	require.NoError(t, err)
	assert.Equal(t, "food_ration", analysis.Category)
	assert.True(t, analysis.IsValidRTI)
	assert.Len(t, analysis.SuggestedQuestions, 1)
}

func TestClient_GenerateJSON_SchemaViolation(t *testing.T) {
	// Missing required fields must be rejected, not passed downstream.
	client := newStubClient(func(ctx context.Context, prompt string, jsonMode bool) (string, error) {
		return `{"subject": "incomplete"}`, nil
	})

	var analysis models.QueryAnalysis
	err := client.GenerateJSON(context.Background(), "analyze", AnalysisSchema, &analysis)

	require.Error(t, err)
	assert.Equal(t, ReasonInvalidOutput, ReasonOf(err))
}

func TestClient_GenerateJSON_NotJSON(t *testing.T) {
	client := newStubClient(func(ctx context.Context, prompt string, jsonMode bool) (string, error) {
		return "I cannot help with that.", nil
	})

	var analysis models.QueryAnalysis
	err := client.GenerateJSON(context.Background(), "analyze", AnalysisSchema, &analysis)

	require.Error(t, err)
	assert.Equal(t, ReasonInvalidOutput, ReasonOf(err))
}

func TestReasonOf_UnclassifiedError(t *testing.T) {
	assert.Equal(t, ReasonUnavailable, ReasonOf(errors.New("plain error")))
}
