package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"voice-capture/entities"
)

// SessionMetadata is the user-mutable slice of a session row.
type SessionMetadata struct {
	SessionID uuid.UUID
	Title     *string
	Notes     *string
	Favorite  bool
	Category  *string
}

type MetadataRepository interface {
	// UpsertSessionMetadata inserts or updates metadata keyed by session id.
	// Last writer wins at the statement level; the engine serializes
	// concurrent upserts so rows never interleave.
	UpsertSessionMetadata(ctx context.Context, meta SessionMetadata) error
	GetSessionMetadata(ctx context.Context, sessionID uuid.UUID) (*entities.RecordingSession, error)
}

type metadataRepo struct {
	engine *Engine
}

func NewMetadataRepository(engine *Engine) MetadataRepository {
	return &metadataRepo{engine: engine}
}

func (r *metadataRepo) UpsertSessionMetadata(ctx context.Context, meta SessionMetadata) error {
	now := time.Now()
	session := &entities.RecordingSession{
		ID:        meta.SessionID,
		Title:     meta.Title,
		Notes:     meta.Notes,
		Favorite:  meta.Favorite,
		Category:  meta.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := r.engine.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "notes", "favorite", "category", "updated_at"}),
		}).
		Create(session).Error
	return translate(err)
}

func (r *metadataRepo) GetSessionMetadata(ctx context.Context, sessionID uuid.UUID) (*entities.RecordingSession, error) {
	session := &entities.RecordingSession{}
	err := r.engine.DB().WithContext(ctx).First(session, "id = ?", sessionID).Error
	if err != nil {
		return nil, translate(err)
	}
	return session, nil
}
