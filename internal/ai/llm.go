package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// Completer sends one chat-completions request.
type Completer interface {
	Complete(ctx context.Context, cfg ChatConfig, messages []ChatMessage) (string, error)
}

// LLM exposes a Completer as a langchaingo model so chains and prompt
// templates run against the configured endpoint.
type LLM struct {
	client Completer
	cfg    ChatConfig
}

var _ llms.Model = (*LLM)(nil)

func NewLLM(client Completer, cfg ChatConfig) *LLM {
	return &LLM{client: client, cfg: cfg}
}

func (m *LLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	cfg := m.cfg
	if opts.Model != "" {
		cfg.Model = opts.Model
	}
	if opts.Temperature != 0 {
		temperature := opts.Temperature
		cfg.Temperature = &temperature
	}

	chat := make([]ChatMessage, 0, len(messages))
	for _, msg := range messages {
		role, err := chatRole(msg.Role)
		if err != nil {
			return nil, err
		}
		chat = append(chat, ChatMessage{Role: role, Content: textOf(msg.Parts)})
	}

	out, err := m.client.Complete(ctx, cfg, chat)
	if err != nil {
		return nil, err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: out}}}, nil
}

func (m *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func chatRole(role llms.ChatMessageType) (string, error) {
	switch role {
	case llms.ChatMessageTypeSystem:
		return "system", nil
	case llms.ChatMessageTypeHuman, llms.ChatMessageTypeGeneric:
		return "user", nil
	case llms.ChatMessageTypeAI:
		return "assistant", nil
	default:
		return "", fmt.Errorf("unsupported message role %q", role)
	}
}

func textOf(parts []llms.ContentPart) string {
	var b strings.Builder
	for _, part := range parts {
		if text, ok := part.(llms.TextContent); ok {
			b.WriteString(text.Text)
		}
	}
	return b.String()
}
