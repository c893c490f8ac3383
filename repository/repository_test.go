package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"voice-capture/entities"
)

func openTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := OpenEngine(context.Background(), filepath.Join(t.TempDir(), "voice.db"))
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })
	return engine
}

func seedSession(t *testing.T, engine *Engine, at time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, NewSessionRepository(engine).EnsureSession(context.Background(), id, at))
	return id
}

func makeChunk(sessionID uuid.UUID, index int, start time.Time, length time.Duration) *entities.AudioChunk {
	size := int64(1024)
	return &entities.AudioChunk{
		ID:         uuid.New(),
		SessionID:  sessionID,
		ChunkIndex: index,
		FilePath:   fmt.Sprintf("/tmp/%s_chunk_%04d.wav", sessionID, index),
		StartTime:  start,
		EndTime:    start.Add(length),
		Format:     "wav",
		SampleRate: 16000,
		FileSize:   &size,
		CreatedAt:  start,
	}
}

func seedChunk(t *testing.T, engine *Engine, sessionID uuid.UUID, index int, start time.Time, length time.Duration) *entities.AudioChunk {
	t.Helper()
	chunk := makeChunk(sessionID, index, start, length)
	require.NoError(t, NewChunkRepository(engine).InsertChunk(context.Background(), chunk))
	return chunk
}

func makeSegment(chunkID uuid.UUID, start, end float64, text, language string, sentiment *float64) *entities.TranscriptSegment {
	return &entities.TranscriptSegment{
		ID:          uuid.New(),
		ChunkID:     chunkID,
		StartOffset: start,
		EndOffset:   end,
		Text:        text,
		Confidence:  0.92,
		Language:    language,
		WordCount:   2,
		Sentiment:   sentiment,
		CreatedAt:   time.Now().UTC(),
	}
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }
