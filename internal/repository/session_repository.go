package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pdfchat/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a session row. An already existing session id is not an
// error: it reports created=false and leaves the existing row untouched.
func (r *SessionRepository) Create(ctx context.Context, sessionID string, pdfName *string) (bool, error) {
	session := &model.Session{
		SessionID: sessionID,
		PDFName:   pdfName,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "session_id"}}, DoNothing: true}).
		Create(session)
	if result.Error != nil {
		return false, fmt.Errorf("create session failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// List returns every session, newest first.
func (r *SessionRepository) List(ctx context.Context) ([]model.Session, error) {
	sessions := make([]model.Session, 0)
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions failed: %w", err)
	}
	return sessions, nil
}

func (r *SessionRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.Session, error) {
	var session model.Session
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session failed: %w", err)
	}
	return &session, nil
}
