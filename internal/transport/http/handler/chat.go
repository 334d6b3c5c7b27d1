package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pdfchat/internal/app"
	"pdfchat/internal/model"
	"pdfchat/internal/transport/http/response"
)

type ChatHandler struct {
	chatService   *app.ChatService
	maxUploadSize int64
}

type ChatRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type SessionsResponse struct {
	Sessions []model.Session `json:"sessions"`
}

type HistoryResponse struct {
	SessionID string          `json:"session_id"`
	Messages  []model.Message `json:"messages"`
}

type ReloadResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id"`
}

func NewChatHandler(chatService *app.ChatService, maxUploadSize int64) *ChatHandler {
	return &ChatHandler{chatService: chatService, maxUploadSize: maxUploadSize}
}

// multipartSlack covers the multipart framing and form fields around the file.
const multipartSlack = 1 << 20

func (h *ChatHandler) Summarize(c *gin.Context) {
	if h.maxUploadSize > 0 {
		limit := h.maxUploadSize + multipartSlack
		if c.Request.ContentLength > limit {
			h.fileTooLarge(c)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fileTooLarge(c)
			return
		}
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if h.maxUploadSize > 0 && header.Size > h.maxUploadSize {
		h.fileTooLarge(c)
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "read file failed")
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "read file failed")
		return
	}

	result, err := h.chatService.Upload(c.Request.Context(), app.UploadInput{
		SessionID: c.PostForm("session_id"),
		FileName:  header.Filename,
		Content:   content,
	})
	if err != nil {
		h.writeError(c, err, "summarize failed")
		return
	}

	response.OK(c, result)
}

func (h *ChatHandler) fileTooLarge(c *gin.Context) {
	response.Error(c, http.StatusRequestEntityTooLarge, response.CodeFileTooLarge,
		fmt.Sprintf("file exceeds %d MB", h.maxUploadSize>>20))
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	reply, err := h.chatService.Chat(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		h.writeError(c, err, "chat failed")
		return
	}

	response.OK(c, ChatResponse{Response: reply})
}

func (h *ChatHandler) ListSessions(c *gin.Context) {
	sessions, err := h.chatService.ListSessions(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "list sessions failed")
		return
	}
	response.OK(c, SessionsResponse{Sessions: sessions})
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	sessionID := c.Param("session_id")
	messages, err := h.chatService.History(c.Request.Context(), sessionID)
	if err != nil {
		h.writeError(c, err, "get history failed")
		return
	}
	response.OK(c, HistoryResponse{SessionID: sessionID, Messages: messages})
}

func (h *ChatHandler) ReloadSession(c *gin.Context) {
	sessionID := c.Param("session_id")
	if err := h.chatService.ReloadSession(c.Request.Context(), sessionID); err != nil {
		h.writeError(c, err, "reload session failed")
		return
	}
	response.OK(c, ReloadResponse{Success: true, SessionID: sessionID})
}

func (h *ChatHandler) writeError(c *gin.Context, err error, fallback string) {
	var procErr *app.ProcessingError
	switch {
	case errors.Is(err, app.ErrUnsupportedFile):
		response.Error(c, http.StatusBadRequest, response.CodeUnsupportedFile, "Only PDF files are supported")
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "Session not found. Please upload a PDF first.")
	case errors.Is(err, app.ErrSessionNotInDatabase):
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "Session not found in database")
	case errors.Is(err, app.ErrSummaryNotFound):
		response.Error(c, http.StatusNotFound, response.CodeSummaryNotFound, "Could not find PDF summary in chat history")
	case errors.As(err, &procErr):
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeProcessingError, "Error processing PDF: "+procErr.Err.Error())
	default:
		_ = c.Error(err)
		slog.ErrorContext(c.Request.Context(), fallback, "error", err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
