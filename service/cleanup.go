package service

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"voice-capture/audiofile"
	"voice-capture/repository"
)

// CleanupService enforces the file/row pairing as an eventual invariant:
// chunk rows whose file vanished are deleted, and chunk files with no row
// are removed. Files younger than the grace window are left alone — they may
// belong to the chunk currently being written, which has no row yet.
type CleanupService interface {
	SweepOrphans(ctx context.Context) error
	Run(ctx context.Context, every time.Duration)
}

type cleanupService struct {
	store  *audiofile.Store
	chunks repository.ChunkRepository
	grace  time.Duration
}

func NewCleanupService(store *audiofile.Store, chunks repository.ChunkRepository, grace time.Duration) CleanupService {
	if grace <= 0 {
		grace = 10 * time.Minute
	}
	return &cleanupService{store: store, chunks: chunks, grace: grace}
}

func (s *cleanupService) SweepOrphans(ctx context.Context) error {
	rows, err := s.chunks.ListChunkFiles(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("orphan sweep: failed to list chunk rows")
		return err
	}

	rowPaths := make(map[string]bool, len(rows))
	for _, row := range rows {
		rowPaths[row.FilePath] = true

		if _, statErr := os.Stat(row.FilePath); os.IsNotExist(statErr) {
			if delErr := s.chunks.DeleteChunk(ctx, row.ID); delErr != nil {
				zerolog.Ctx(ctx).Warn().Err(delErr).Str("chunk_id", row.ID.String()).Msg("orphan sweep: failed to delete rowless-file chunk")
				continue
			}
			zerolog.Ctx(ctx).Info().
				Str("chunk_id", row.ID.String()).
				Str("file_path", row.FilePath).
				Msg("orphan sweep: removed chunk row with missing file")
		}
	}

	files, err := s.store.ListAll()
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("orphan sweep: failed to list chunk files")
		return err
	}

	cutoff := time.Now().Add(-s.grace)
	for _, path := range files {
		if rowPaths[path] {
			continue
		}
		info, statErr := os.Stat(path)
		if statErr != nil || info.ModTime().After(cutoff) {
			continue
		}
		if rmErr := s.store.Remove(path); rmErr != nil {
			zerolog.Ctx(ctx).Warn().Err(rmErr).Str("file_path", path).Msg("orphan sweep: failed to remove orphan file")
			continue
		}
		zerolog.Ctx(ctx).Info().Str("file_path", path).Msg("orphan sweep: removed file with no chunk row")
	}

	return nil
}

func (s *cleanupService) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SweepOrphans(ctx); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Msg("orphan sweep failed")
			}
		}
	}
}
