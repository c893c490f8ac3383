package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"voice-capture/entities"
)

type ChunkRepository interface {
	InsertChunk(ctx context.Context, chunk *entities.AudioChunk) error
	FindChunkByID(ctx context.Context, id uuid.UUID) (*entities.AudioChunk, error)
	GetChunksBySession(ctx context.Context, sessionID uuid.UUID) ([]*entities.AudioChunk, error)
	DeleteChunk(ctx context.Context, id uuid.UUID) error
	CountChunks(ctx context.Context) (int64, error)
	ListChunkFiles(ctx context.Context) ([]*entities.AudioChunk, error)
}

type chunkRepo struct {
	engine *Engine
}

func NewChunkRepository(engine *Engine) ChunkRepository {
	return &chunkRepo{engine: engine}
}

func (r *chunkRepo) InsertChunk(ctx context.Context, chunk *entities.AudioChunk) error {
	if chunk.EndTime.Before(chunk.StartTime) {
		return fmt.Errorf("%w: chunk %s ends before it starts", ErrInvalidData, chunk.ID)
	}
	return translate(r.engine.DB().WithContext(ctx).Create(chunk).Error)
}

func (r *chunkRepo) FindChunkByID(ctx context.Context, id uuid.UUID) (*entities.AudioChunk, error) {
	chunk := &entities.AudioChunk{}
	err := r.engine.DB().WithContext(ctx).First(chunk, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	if chunk.EndTime.Before(chunk.StartTime) {
		return nil, fmt.Errorf("%w: chunk %s ends before it starts", ErrInvalidData, chunk.ID)
	}
	return chunk, nil
}

// GetChunksBySession returns the session's chunks ordered by chunk_index
// ascending; an empty slice when the session has none.
func (r *chunkRepo) GetChunksBySession(ctx context.Context, sessionID uuid.UUID) ([]*entities.AudioChunk, error) {
	var chunks []*entities.AudioChunk
	err := r.engine.DB().WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("chunk_index ASC").
		Find(&chunks).Error
	if err != nil {
		return nil, translate(err)
	}
	return chunks, nil
}

func (r *chunkRepo) DeleteChunk(ctx context.Context, id uuid.UUID) error {
	return translate(r.engine.DB().WithContext(ctx).Delete(&entities.AudioChunk{}, "id = ?", id).Error)
}

func (r *chunkRepo) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := r.engine.DB().WithContext(ctx).Model(&entities.AudioChunk{}).Count(&count).Error
	if err != nil {
		return 0, translate(err)
	}
	return count, nil
}

// ListChunkFiles returns id and file path of every chunk row, for the orphan
// sweep.
func (r *chunkRepo) ListChunkFiles(ctx context.Context) ([]*entities.AudioChunk, error) {
	var chunks []*entities.AudioChunk
	err := r.engine.DB().WithContext(ctx).
		Select("id", "file_path").
		Find(&chunks).Error
	if err != nil {
		return nil, translate(err)
	}
	return chunks, nil
}
