package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUpsertSessionMetadataCreates(t *testing.T) {
	engine := openTestEngine(t)
	ctx := context.Background()
	repo := NewMetadataRepository(engine)

	id := uuid.New()
	require.NoError(t, repo.UpsertSessionMetadata(ctx, SessionMetadata{
		SessionID: id,
		Title:     strPtr("Standup notes"),
		Favorite:  true,
	}))

	session, err := repo.GetSessionMetadata(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, session.Title)
	assert.Equal(t, "Standup notes", *session.Title)
	assert.True(t, session.Favorite)
	assert.Nil(t, session.Notes)
	assert.Nil(t, session.Category)
}

func TestUpsertSessionMetadataUpdatesExisting(t *testing.T) {
	engine := openTestEngine(t)
	ctx := context.Background()
	repo := NewMetadataRepository(engine)

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	id := seedSession(t, engine, at)

	require.NoError(t, repo.UpsertSessionMetadata(ctx, SessionMetadata{
		SessionID: id,
		Title:     strPtr("first"),
		Category:  strPtr("work"),
	}))
	require.NoError(t, repo.UpsertSessionMetadata(ctx, SessionMetadata{
		SessionID: id,
		Title:     strPtr("second"),
		Notes:     strPtr("edited"),
		Favorite:  true,
	}))

	session, err := repo.GetSessionMetadata(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, session.Title)
	assert.Equal(t, "second", *session.Title)
	require.NotNil(t, session.Notes)
	assert.Equal(t, "edited", *session.Notes)
	assert.True(t, session.Favorite)
	assert.Nil(t, session.Category, "the upsert writes every metadata column, last writer wins")
	assert.True(t, session.CreatedAt.Equal(at), "updating metadata must not move created_at")
}

func TestGetSessionMetadataNotFound(t *testing.T) {
	engine := openTestEngine(t)
	_, err := NewMetadataRepository(engine).GetSessionMetadata(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
