package model

import "time"

const (
	EventSessionUploaded = "session.uploaded"
	EventSessionReloaded = "session.reloaded"
	EventMessageAppended = "message.appended"
)

type SessionEvent struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role,omitempty"`
	PDFName   string    `json:"pdf_name,omitempty"`
	At        time.Time `json:"at"`
}
