package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"voice-capture/entities"
)

type TranscriptRepository interface {
	InsertSegments(ctx context.Context, segments []*entities.TranscriptSegment) error
	GetSegmentsByChunk(ctx context.Context, chunkID uuid.UUID) ([]*entities.TranscriptSegment, error)
	GetSegmentsBySession(ctx context.Context, sessionID uuid.UUID) ([]*entities.TranscriptSegment, error)
	// UpdateSegmentText applies a user text edit and recomputes the word
	// count from the new text.
	UpdateSegmentText(ctx context.Context, id uuid.UUID, text string) error
}

type transcriptRepo struct {
	engine *Engine
}

func NewTranscriptRepository(engine *Engine) TranscriptRepository {
	return &transcriptRepo{engine: engine}
}

func (r *transcriptRepo) InsertSegments(ctx context.Context, segments []*entities.TranscriptSegment) error {
	if len(segments) == 0 {
		return nil
	}
	return translate(r.engine.DB().WithContext(ctx).Create(segments).Error)
}

func (r *transcriptRepo) GetSegmentsByChunk(ctx context.Context, chunkID uuid.UUID) ([]*entities.TranscriptSegment, error) {
	var segments []*entities.TranscriptSegment
	err := r.engine.DB().WithContext(ctx).
		Where("chunk_id = ?", chunkID).
		Order("start_offset ASC").
		Find(&segments).Error
	if err != nil {
		return nil, translate(err)
	}
	return segments, nil
}

func (r *transcriptRepo) GetSegmentsBySession(ctx context.Context, sessionID uuid.UUID) ([]*entities.TranscriptSegment, error) {
	var segments []*entities.TranscriptSegment
	err := r.engine.DB().WithContext(ctx).Raw(`
		SELECT t.*
		FROM transcript_segments t
		JOIN audio_chunks c ON c.id = t.chunk_id
		WHERE c.session_id = ?
		ORDER BY c.chunk_index ASC, t.start_offset ASC
	`, sessionID).Scan(&segments).Error
	if err != nil {
		return nil, translate(err)
	}
	return segments, nil
}

func (r *transcriptRepo) UpdateSegmentText(ctx context.Context, id uuid.UUID, text string) error {
	updates := map[string]interface{}{
		"text":       text,
		"word_count": len(strings.Fields(text)),
	}
	err := r.engine.DB().WithContext(ctx).
		Model(&entities.TranscriptSegment{}).
		Where("id = ?", id).
		Updates(updates).Error
	return translate(err)
}
