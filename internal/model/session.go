package model

import "time"

// MaxSessionIDLength matches the size of the session_id columns.
const MaxSessionIDLength = 64

// Session is one conversation about one uploaded document. Rows are never updated.
type Session struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	SessionID string    `gorm:"size:64;not null;uniqueIndex" json:"session_id"`
	PDFName   *string   `gorm:"size:255" json:"pdf_name"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
