package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"pdfchat/internal/model"
	"pdfchat/internal/platform/sqlite"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func strPtr(s string) *string { return &s }

func TestSessionRepository_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(newTestDB(t))

	created, err := repo.Create(ctx, "abc", strPtr("A.pdf"))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(ctx, "abc", strPtr("B.pdf"))
	require.NoError(t, err)
	assert.False(t, created, "duplicate id must be reported as not created")

	sessions, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.NotNil(t, sessions[0].PDFName)
	assert.Equal(t, "A.pdf", *sessions[0].PDFName)
}

func TestSessionRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewSessionRepository(db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		row := model.Session{SessionID: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, db.Create(&row).Error)
	}

	sessions, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "third", sessions[0].SessionID)
	assert.Equal(t, "second", sessions[1].SessionID)
	assert.Equal(t, "first", sessions[2].SessionID)
}

func TestSessionRepository_ListEmpty(t *testing.T) {
	sessions, err := NewSessionRepository(newTestDB(t)).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
}

func TestSessionRepository_GetBySessionID(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(newTestDB(t))

	_, err := repo.Create(ctx, "known", nil)
	require.NoError(t, err)

	got, err := repo.GetBySessionID(ctx, "known")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.PDFName)

	missing, err := repo.GetBySessionID(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMessageRepository_OrderedByTimestamp(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(newTestDB(t))

	// Same-instant writes must keep insert order.
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	require.NoError(t, repo.Create(ctx, "s1", model.RoleAssistant, "PDF Summary: S"))
	require.NoError(t, repo.Create(ctx, "s1", model.RoleUser, "question"))

	repo.now = func() time.Time { return fixed.Add(time.Second) }
	require.NoError(t, repo.Create(ctx, "s1", model.RoleAssistant, "answer"))
	require.NoError(t, repo.Create(ctx, "other", model.RoleUser, "noise"))

	messages, err := repo.ListBySessionID(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "PDF Summary: S", messages[0].Content)
	assert.Equal(t, "question", messages[1].Content)
	assert.Equal(t, "answer", messages[2].Content)
	for i := 1; i < len(messages); i++ {
		assert.False(t, messages[i].Timestamp.Before(messages[i-1].Timestamp))
	}
}

func TestMessageRepository_UnknownSessionIsEmpty(t *testing.T) {
	messages, err := NewMessageRepository(newTestDB(t)).ListBySessionID(context.Background(), "nope")
	require.NoError(t, err)
	assert.NotNil(t, messages)
	assert.Empty(t, messages)
}

func TestMessageRepository_CreateFailsOnClosedDB(t *testing.T) {
	db := newTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = NewMessageRepository(db).Create(context.Background(), "s1", model.RoleUser, "hi")
	assert.Error(t, err)
}
