package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatConfig selects the endpoint and model. A nil Temperature leaves the
// server default in place.
type ChatConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature *float64
}

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm response status %d: %s", e.StatusCode, e.Message)
}

var ErrEmptyCompletion = errors.New("empty llm choices")

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// OpenAICompatibleClient posts to {BaseURL}/chat/completions. Ollama serves
// the same API under /v1.
type OpenAICompatibleClient struct {
	httpClient *http.Client
}

// NewOpenAICompatibleClient builds a client. A zero timeout means requests
// are bounded only by the caller's context.
func NewOpenAICompatibleClient(timeout time.Duration) *OpenAICompatibleClient {
	return &OpenAICompatibleClient{httpClient: &http.Client{Timeout: timeout}}
}

func (c *OpenAICompatibleClient) Complete(ctx context.Context, cfg ChatConfig, messages []ChatMessage) (string, error) {
	if messages == nil {
		messages = []ChatMessage{}
	}
	payload, err := json.Marshal(completionRequest{
		Model:       cfg.Model,
		Messages:    messages,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal llm request failed: %w", err)
	}

	endpoint := strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build llm request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read llm response failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	var out completionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("parse llm json failed: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return out.Choices[0].Message.Content, nil
}

// errorMessage prefers the {"error":{"message":...}} envelope and falls back
// to the raw body.
func errorMessage(raw []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return strings.TrimSpace(string(raw))
}
