package model

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is an append-only chat log entry. SessionID is not enforced as a foreign key.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	SessionID string    `gorm:"size:64;not null;index" json:"-"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}
