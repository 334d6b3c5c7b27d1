// Package client talks to the pdfchat HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

const DefaultTimeout = 10 * time.Minute

type Client struct {
	baseURL    string
	apiKey     string
	headerName string
	httpClient *http.Client
}

// APIError is a non-2xx reply from the server.
type APIError struct {
	Status  int    `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

type UploadResponse struct {
	SessionID string `json:"session_id"`
	Summary   string `json:"summary"`
}

type Session struct {
	SessionID string    `json:"session_id"`
	PDFName   *string   `json:"pdf_name"`
	CreatedAt time.Time `json:"created_at"`
}

type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type HistoryResponse struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
}

// NewClient builds a client for baseURL, e.g. http://localhost:8080.
// Summaries of long documents take minutes, hence the generous timeout.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		headerName: "X-API-Key",
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// Upload sends a PDF for summarization. An empty sessionID lets the server
// generate one.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader, sessionID string) (*UploadResponse, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read file failed: %w", err)
	}
	if sessionID != "" {
		if err := w.WriteField("session_id", sessionID); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/summarize", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var result UploadResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Chat(ctx context.Context, sessionID, message string) (string, error) {
	payload, err := json.Marshal(map[string]string{"session_id": sessionID, "message": message})
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/chat", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var result struct {
		Response string `json:"response"`
	}
	if err := c.do(req, &result); err != nil {
		return "", err
	}
	return result.Response, nil
}

func (c *Client) Sessions(ctx context.Context) ([]Session, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/sessions", nil)
	if err != nil {
		return nil, err
	}
	var result struct {
		Sessions []Session `json:"sessions"`
	}
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return result.Sessions, nil
}

func (c *Client) History(ctx context.Context, sessionID string) (*HistoryResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/history/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, err
	}
	var result HistoryResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reload asks the server to restore a stored session into its document cache.
func (c *Client) Reload(ctx context.Context, sessionID string) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/reload_session/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return err
	}
	var result struct {
		Success bool `json:"success"`
	}
	if err := c.do(req, &result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("reload session %s was not acknowledged", sessionID)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set(c.headerName, c.apiKey)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(respBody, apiErr)
		return apiErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response failed: %w", err)
	}
	return nil
}
