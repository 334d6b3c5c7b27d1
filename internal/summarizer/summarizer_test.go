package summarizer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/ai"
	"pdfchat/internal/model"
)

type recordingCompleter struct {
	mu      sync.Mutex
	prompts []string
	reply   func(prompt string) (string, error)
}

func (c *recordingCompleter) Complete(_ context.Context, _ ai.ChatConfig, messages []ai.ChatMessage) (string, error) {
	prompt := messages[len(messages)-1].Content
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()
	if c.reply != nil {
		return c.reply(prompt)
	}
	return "  summary  ", nil
}

func newSummarizer(c *recordingCompleter, opts Options) *PDFSummarizer {
	return New(ai.NewLLM(c, ai.ChatConfig{Model: "m"}), opts)
}

func TestSummarize_SingleChunk(t *testing.T) {
	llm := &recordingCompleter{}
	s := newSummarizer(llm, Options{})

	out, err := s.Summarize(context.Background(), "A short document about gophers.")
	require.NoError(t, err)
	assert.Equal(t, "summary", out)

	// One map call for the chunk, one combine call.
	require.Len(t, llm.prompts, 2)
	assert.Contains(t, llm.prompts[0], "A short document about gophers.")
	for _, p := range llm.prompts {
		assert.Contains(t, p, "CONCISE SUMMARY:")
	}
}

func TestSummarize_MapReduce(t *testing.T) {
	llm := &recordingCompleter{reply: func(prompt string) (string, error) {
		if strings.Contains(prompt, "part-summary") {
			return "final", nil
		}
		return "part-summary", nil
	}}
	s := newSummarizer(llm, Options{ChunkSize: 100, ChunkOverlap: 10, MaxConcurrency: 2})

	text := strings.Repeat("gophers dig tunnels under the garden. ", 12)
	chunks, err := s.split(text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	out, err := s.Summarize(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, "final", out)

	require.Len(t, llm.prompts, len(chunks)+1)
	combine := llm.prompts[len(llm.prompts)-1]
	assert.Equal(t, len(chunks), strings.Count(combine, "part-summary"))

	mapped := llm.prompts[:len(chunks)]
	for _, chunk := range chunks {
		found := false
		for _, p := range mapped {
			if strings.Contains(p, chunk) {
				found = true
				break
			}
		}
		assert.True(t, found, "chunk %q was not summarized", chunk)
	}
	for _, p := range mapped {
		assert.Contains(t, p, "CONCISE SUMMARY:")
	}
}

func TestSummarize_Empty(t *testing.T) {
	llm := &recordingCompleter{}
	_, err := newSummarizer(llm, Options{}).Summarize(context.Background(), " \n\n ")
	assert.ErrorIs(t, err, ErrEmptyDocument)
	assert.Empty(t, llm.prompts)
}

func TestSummarize_PropagatesLLMError(t *testing.T) {
	llm := &recordingCompleter{reply: func(string) (string, error) { return "", errors.New("model not found") }}
	_, err := newSummarizer(llm, Options{}).Summarize(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestChat_PromptCarriesContextAndHistory(t *testing.T) {
	llm := &recordingCompleter{reply: func(string) (string, error) { return " It is about gophers.\n", nil }}
	s := newSummarizer(llm, Options{})

	history := []model.Message{
		{Role: model.RoleAssistant, Content: "PDF Summary: gophers"},
		{Role: model.RoleUser, Content: "what is this about?"},
	}
	out, err := s.Chat(context.Background(), "what is this about?", "FULL DOCUMENT {{.text}}", history)
	require.NoError(t, err)
	assert.Equal(t, "It is about gophers.", out)

	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "CONTEXT:\nFULL DOCUMENT {{.text}}")
	assert.Contains(t, prompt, "assistant: PDF Summary: gophers\nuser: what is this about?\n")
	assert.Contains(t, prompt, "USER QUERY:\nwhat is this about?")
}

func TestNew_InvalidOverlap(t *testing.T) {
	s := newSummarizer(&recordingCompleter{}, Options{ChunkSize: 100, ChunkOverlap: 500})
	assert.Equal(t, 100, s.chunkSize)
}

func TestNew_MaxConcurrency(t *testing.T) {
	s := newSummarizer(&recordingCompleter{}, Options{MaxConcurrency: 1})
	assert.Equal(t, 1, s.mapReduce.MaxNumberOfConcurrent)
}
