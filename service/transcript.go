package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"voice-capture/dto"
	"voice-capture/entities"
	"voice-capture/repository"
)

// TranscriptService stores transcription results delivered by the external
// transcription collaborator.
type TranscriptService interface {
	Ingest(ctx context.Context, message dto.TranscriptResultMessage) error
}

type transcriptService struct {
	chunks      repository.ChunkRepository
	transcripts repository.TranscriptRepository
}

func NewTranscriptService(chunks repository.ChunkRepository, transcripts repository.TranscriptRepository) TranscriptService {
	return &transcriptService{chunks: chunks, transcripts: transcripts}
}

func (s *transcriptService) Ingest(ctx context.Context, message dto.TranscriptResultMessage) error {
	if message.ChunkId == uuid.Nil {
		return errors.Join(ErrNonRetryable, fmt.Errorf("transcript message missing chunk id"))
	}
	if len(message.Segments) == 0 {
		zerolog.Ctx(ctx).Info().Str("chunk_id", message.ChunkId.String()).Msg("transcript message with no segments, nothing to store")
		return nil
	}

	if _, err := s.chunks.FindChunkByID(ctx, message.ChunkId); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The chunk was deleted before its transcript arrived.
			return errors.Join(ErrNonRetryable, fmt.Errorf("chunk %s not found: %w", message.ChunkId, err))
		}
		return err
	}

	now := time.Now()
	segments := make([]*entities.TranscriptSegment, 0, len(message.Segments))
	for _, p := range message.Segments {
		if p.EndOffset < p.StartOffset {
			return errors.Join(ErrNonRetryable, fmt.Errorf("segment ends before it starts: [%f, %f]", p.StartOffset, p.EndOffset))
		}
		segments = append(segments, &entities.TranscriptSegment{
			ID:            uuid.New(),
			ChunkID:       message.ChunkId,
			StartOffset:   p.StartOffset,
			EndOffset:     p.EndOffset,
			Text:          p.Text,
			Confidence:    p.Confidence,
			Language:      p.Language,
			WordCount:     len(strings.Fields(p.Text)),
			Sentiment:     p.Sentiment,
			NamedEntities: p.NamedEntities,
			CreatedAt:     now,
		})
	}

	if err := s.transcripts.InsertSegments(ctx, segments); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("chunk_id", message.ChunkId.String()).Msg("failed to insert transcript segments")
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("chunk_id", message.ChunkId.String()).
		Int("segments", len(segments)).
		Msg("transcript segments stored")
	return nil
}
