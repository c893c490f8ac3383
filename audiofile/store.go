package audiofile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrFileCreationFailed    = errors.New("chunk file creation failed")
	ErrStorageDirUnavailable = errors.New("storage directory unavailable")
)

// Store owns the on-disk directory for raw audio chunk files. If the
// configured directory cannot be created the store degrades to a
// process-local temp directory instead of failing; only a temp-dir failure
// is fatal.
type Store struct {
	dir      string
	degraded bool
}

func New(ctx context.Context, primaryDir string) (*Store, error) {
	if primaryDir != "" {
		if err := os.MkdirAll(primaryDir, os.ModePerm); err == nil {
			return &Store{dir: primaryDir}, nil
		} else {
			zerolog.Ctx(ctx).Warn().Err(err).Str("dir", primaryDir).Msg("primary audio directory unavailable, falling back to temp dir")
		}
	}

	fallback := filepath.Join(os.TempDir(), "voice-capture", "chunks")
	if err := os.MkdirAll(fallback, os.ModePerm); err != nil {
		return nil, errors.Join(ErrStorageDirUnavailable, err)
	}
	zerolog.Ctx(ctx).Info().Str("dir", fallback).Msg("using fallback audio directory")
	return &Store{dir: fallback, degraded: true}, nil
}

// Dir returns the directory chunk files live in. Callers must not assume a
// fixed path; it differs when the store is degraded.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Degraded() bool {
	return s.degraded
}

// CreateChunkFile allocates the file for one chunk of a session.
func (s *Store) CreateChunkFile(sessionID uuid.UUID, chunkIndex int, format string) (*os.File, error) {
	name := fmt.Sprintf("%s_chunk_%04d.%s", sessionID.String(), chunkIndex, format)
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Join(ErrFileCreationFailed, err)
	}
	return f, nil
}

func (s *Store) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// List returns the chunk file paths belonging to a session, in name order
// (names embed the zero-padded chunk index, so name order is chunk order).
func (s *Store) List(sessionID uuid.UUID) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, sessionID.String()+"_chunk_*"))
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// ListAll returns every chunk file in the store, for reconciliation sweeps.
func (s *Store) ListAll() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*_chunk_*"))
	if err != nil {
		return nil, err
	}
	return matches, nil
}
