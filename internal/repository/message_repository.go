package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pdfchat/internal/model"
)

type MessageRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db, now: time.Now}
}

func (r *MessageRepository) Create(ctx context.Context, sessionID, role, content string) error {
	message := &model.Message{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Timestamp: r.now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

// ListBySessionID returns the session's log in write order. Unknown sessions
// yield an empty slice.
func (r *MessageRepository) ListBySessionID(ctx context.Context, sessionID string) ([]model.Message, error) {
	messages := make([]model.Message, 0)
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp ASC").
		Order("id ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}
