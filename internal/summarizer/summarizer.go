// Package summarizer turns uploaded PDFs into summaries and answers questions
// about them with a chat-completions model.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"

	"pdfchat/internal/model"
	"pdfchat/internal/pkg/pdfextract"
)

const defaultChunkSize = 4000

var ErrEmptyDocument = errors.New("document has no extractable text")

type Options struct {
	ChunkSize    int
	ChunkOverlap int
	// MaxConcurrency bounds parallel chunk summaries; 0 keeps the chain default.
	MaxConcurrency int
}

type PDFSummarizer struct {
	llm        llms.Model
	chunkSize  int
	splitter   textsplitter.RecursiveCharacter
	mapReduce  chains.MapReduceDocuments
	chatPrompt prompts.PromptTemplate
}

func New(llm llms.Model, opts Options) *PDFSummarizer {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.ChunkOverlap < 0 || opts.ChunkOverlap >= opts.ChunkSize {
		opts.ChunkOverlap = opts.ChunkSize / 20
	}

	mapReduce := chains.LoadMapReduceSummarization(llm)
	if opts.MaxConcurrency > 0 {
		mapReduce.MaxNumberOfConcurrent = opts.MaxConcurrency
	}

	return &PDFSummarizer{
		llm:       llm,
		chunkSize: opts.ChunkSize,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(opts.ChunkSize),
			textsplitter.WithChunkOverlap(opts.ChunkOverlap),
			textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
		),
		mapReduce:  mapReduce,
		chatPrompt: prompts.NewPromptTemplate(chatTemplate, []string{"context", "history", "query"}),
	}
}

func (s *PDFSummarizer) ExtractText(content []byte) (string, error) {
	return pdfextract.ExtractText(content)
}

// Summarize splits text into chunks, summarizes each one and then combines
// the partial summaries into one.
func (s *PDFSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyDocument
	}

	chunks, err := s.split(text)
	if err != nil {
		return "", err
	}
	docs := make([]schema.Document, 0, len(chunks))
	for _, chunk := range chunks {
		docs = append(docs, schema.Document{PageContent: chunk})
	}

	out, err := chains.Call(ctx, s.mapReduce, map[string]any{"input_documents": docs})
	if err != nil {
		return "", fmt.Errorf("summarize %d chunks: %w", len(docs), err)
	}
	summary, ok := out[s.mapReduce.GetOutputKeys()[0]].(string)
	if !ok {
		return "", errors.New("summarize: chain returned no text")
	}
	return strings.TrimSpace(summary), nil
}

// Chat answers query using document as context and history as the prior turns.
func (s *PDFSummarizer) Chat(ctx context.Context, query, document string, history []model.Message) (string, error) {
	prompt, err := s.chatPrompt.Format(map[string]any{
		"context": document,
		"history": formatHistory(history),
		"query":   query,
	})
	if err != nil {
		return "", fmt.Errorf("format chat prompt failed: %w", err)
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (s *PDFSummarizer) split(text string) ([]string, error) {
	chunks, err := s.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("split text failed: %w", err)
	}
	out := chunks[:0]
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, ErrEmptyDocument
	}
	return out, nil
}
