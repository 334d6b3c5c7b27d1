package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"pdfchat/internal/cache"
	"pdfchat/internal/model"
)

const (
	// SummaryMarker prefixes the synthesized first assistant message so the
	// summary can be recovered from history after the document cache is lost.
	SummaryMarker = "PDF Summary: "
	// ReloadedTextPlaceholder stands in for extracted text that was not kept.
	ReloadedTextPlaceholder = "PDF text not available for reloaded sessions"
)

type SessionStore interface {
	Create(ctx context.Context, sessionID string, pdfName *string) (bool, error)
	GetBySessionID(ctx context.Context, sessionID string) (*model.Session, error)
}

type MessageStore interface {
	Create(ctx context.Context, sessionID, role, content string) error
	ListBySessionID(ctx context.Context, sessionID string) ([]model.Message, error)
}

type SessionsSnapshot interface {
	Sessions(ctx context.Context) ([]model.Session, error)
}

type DocumentCache interface {
	Put(sessionID string, doc cache.Document)
	Get(sessionID string) (cache.Document, bool)
}

// Summarizer extracts and summarizes documents and answers questions on them.
type Summarizer interface {
	ExtractText(content []byte) (string, error)
	Summarize(ctx context.Context, text string) (string, error)
	Chat(ctx context.Context, query, document string, history []model.Message) (string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event model.SessionEvent) error
}

type ChatService struct {
	sessions   SessionStore
	messages   MessageStore
	snapshot   SessionsSnapshot
	documents  DocumentCache
	summarizer Summarizer
	events     EventPublisher
	now        func() time.Time
	newID      func() string
}

type UploadInput struct {
	SessionID string
	FileName  string
	Content   []byte
}

type UploadResult struct {
	SessionID string `json:"session_id"`
	Summary   string `json:"summary"`
}

// NewChatService wires the service. events may be nil.
func NewChatService(
	sessions SessionStore,
	messages MessageStore,
	snapshot SessionsSnapshot,
	documents DocumentCache,
	summarizer Summarizer,
	events EventPublisher,
) *ChatService {
	return &ChatService{
		sessions:   sessions,
		messages:   messages,
		snapshot:   snapshot,
		documents:  documents,
		summarizer: summarizer,
		events:     events,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Upload creates (or reuses) a session for the document, summarizes it and
// makes the session chat-ready.
func (s *ChatService) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	name := filepath.Base(strings.TrimSpace(input.FileName))
	if !isPDF(name) {
		return nil, ErrUnsupportedFile
	}
	if len(input.Content) == 0 {
		return nil, ErrInvalidInput
	}

	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID == "" {
		sessionID = s.newID()
	}
	if len(sessionID) > model.MaxSessionIDLength {
		return nil, fmt.Errorf("%w: session_id must be at most %d characters", ErrInvalidInput, model.MaxSessionIDLength)
	}

	// An existing id keeps its row; the upload still refreshes the cache and
	// appends a new summary message.
	created, err := s.sessions.Create(ctx, sessionID, &name)
	if err != nil {
		return nil, err
	}
	if !created {
		slog.InfoContext(ctx, "session already exists, reusing", "session_id", sessionID)
	}

	text, err := s.summarizer.ExtractText(input.Content)
	if err != nil {
		return nil, &ProcessingError{Err: err}
	}
	summary, err := s.summarizer.Summarize(ctx, text)
	if err != nil {
		return nil, &ProcessingError{Err: err}
	}

	s.documents.Put(sessionID, cache.Document{Text: text, Summary: summary})
	if err := s.appendMessage(ctx, sessionID, model.RoleAssistant, SummaryMarker+summary); err != nil {
		return nil, err
	}

	s.publish(ctx, model.SessionEvent{Type: model.EventSessionUploaded, SessionID: sessionID, PDFName: name})
	return &UploadResult{SessionID: sessionID, Summary: summary}, nil
}

// Chat answers message for a session whose document is cached. Sessions that
// only exist in the store must be reloaded first.
func (s *ChatService) Chat(ctx context.Context, sessionID, message string) (string, error) {
	if strings.TrimSpace(sessionID) == "" || strings.TrimSpace(message) == "" {
		return "", ErrInvalidInput
	}

	doc, ok := s.documents.Get(sessionID)
	if !ok {
		return "", ErrSessionNotFound
	}

	if err := s.appendMessage(ctx, sessionID, model.RoleUser, message); err != nil {
		return "", err
	}
	history, err := s.messages.ListBySessionID(ctx, sessionID)
	if err != nil {
		return "", err
	}

	reply, err := s.summarizer.Chat(ctx, message, doc.Text, history)
	if err != nil {
		return "", &ProcessingError{Err: err}
	}

	if err := s.appendMessage(ctx, sessionID, model.RoleAssistant, reply); err != nil {
		return "", err
	}
	return reply, nil
}

func (s *ChatService) ListSessions(ctx context.Context) ([]model.Session, error) {
	return s.snapshot.Sessions(ctx)
}

func (s *ChatService) History(ctx context.Context, sessionID string) ([]model.Message, error) {
	return s.messages.ListBySessionID(ctx, sessionID)
}

// ReloadSession puts a stored session back into the document cache using the
// summary recovered from its history. The original text is not recoverable.
func (s *ChatService) ReloadSession(ctx context.Context, sessionID string) error {
	session, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotInDatabase
	}

	history, err := s.messages.ListBySessionID(ctx, sessionID)
	if err != nil {
		return err
	}
	summary, ok := recoverSummary(history)
	if !ok {
		return ErrSummaryNotFound
	}

	s.documents.Put(sessionID, cache.Document{Text: ReloadedTextPlaceholder, Summary: summary})
	s.publish(ctx, model.SessionEvent{Type: model.EventSessionReloaded, SessionID: sessionID})
	return nil
}

func (s *ChatService) appendMessage(ctx context.Context, sessionID, role, content string) error {
	if err := s.messages.Create(ctx, sessionID, role, content); err != nil {
		return err
	}
	s.publish(ctx, model.SessionEvent{Type: model.EventMessageAppended, SessionID: sessionID, Role: role})
	return nil
}

func (s *ChatService) publish(ctx context.Context, event model.SessionEvent) {
	if s.events == nil {
		return
	}
	event.At = s.now().UTC()
	if err := s.events.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "publish session event failed", "type", event.Type, "session_id", event.SessionID, "error", err)
	}
}

func recoverSummary(history []model.Message) (string, bool) {
	for _, msg := range history {
		if msg.Role != model.RoleAssistant || !strings.HasPrefix(msg.Content, SummaryMarker) {
			continue
		}
		summary := strings.TrimPrefix(msg.Content, SummaryMarker)
		if strings.TrimSpace(summary) == "" {
			return "", false
		}
		return summary, true
	}
	return "", false
}

func isPDF(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}
