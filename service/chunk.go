package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"

	"voice-capture/config"
	"voice-capture/dto"
	"voice-capture/entities"
	"voice-capture/pkg/rabbitmq"
	"voice-capture/repository"
)

var ErrNonRetryable = errors.New("non-retryable error")

// ChunkService receives finalized chunks from the capture side: it persists
// the row (creating the session row on the first chunk), hands the chunk to
// the transcription collaborator, and optionally archives the file.
type ChunkService interface {
	HandleChunkCompleted(ctx context.Context, chunk entities.AudioChunk) error
}

type chunkService struct {
	sessions  repository.SessionRepository
	chunks    repository.ChunkRepository
	publisher rabbitmq.Publisher
	cfg       *config.Config
}

func NewChunkService(sessions repository.SessionRepository, chunks repository.ChunkRepository, publisher rabbitmq.Publisher, cfg *config.Config) ChunkService {
	return &chunkService{
		sessions:  sessions,
		chunks:    chunks,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *chunkService) HandleChunkCompleted(ctx context.Context, chunk entities.AudioChunk) error {
	zerolog.Ctx(ctx).Info().
		Str("chunk_id", chunk.ID.String()).
		Str("session_id", chunk.SessionID.String()).
		Int("chunk_index", chunk.ChunkIndex).
		Str("file_path", chunk.FilePath).
		Msg("persisting finalized chunk")

	if err := s.sessions.EnsureSession(ctx, chunk.SessionID, chunk.StartTime); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to ensure session row")
		return err
	}

	if err := s.chunks.InsertChunk(ctx, &chunk); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to insert chunk")
		return err
	}

	if s.publisher != nil {
		msg := dto.ChunkCompletedMessage{
			ChunkId:    chunk.ID,
			SessionId:  chunk.SessionID,
			ChunkIndex: chunk.ChunkIndex,
			FilePath:   chunk.FilePath,
			StartTime:  chunk.StartTime,
			EndTime:    chunk.EndTime,
			Format:     chunk.Format,
			SampleRate: chunk.SampleRate,
		}
		if err := s.publisher.PublishChunkCompleted(ctx, msg); err != nil {
			// The row is persisted; a lost event only delays transcription.
			zerolog.Ctx(ctx).Warn().Err(err).Str("chunk_id", chunk.ID.String()).Msg("failed to publish chunk completed event")
		}
	}

	if s.cfg.Archive.Enabled && s.cfg.Storage != nil {
		s.archive(ctx, chunk)
	}

	return nil
}

// archive uploads the finalized file to object storage. Failures are logged,
// never fatal to the session.
func (s *chunkService) archive(ctx context.Context, chunk entities.AudioChunk) {
	objectName := filepath.Join("voice-chunks", chunk.SessionID.String(), filepath.Base(chunk.FilePath))
	objectName = strings.ReplaceAll(objectName, "\\", "/")

	_, err := s.cfg.Storage.FPutObject(ctx, s.cfg.Archive.Bucket, objectName, chunk.FilePath, minio.PutObjectOptions{
		ContentType: "audio/" + chunk.Format,
	})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("object_name", objectName).Msg("failed to archive chunk file")
		return
	}
	zerolog.Ctx(ctx).Info().Str("object_name", objectName).Msg("chunk file archived")
}
