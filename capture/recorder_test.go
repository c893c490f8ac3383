package capture

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-capture/audiofile"
)

func newTestStore(t *testing.T) *audiofile.Store {
	t.Helper()
	store, err := audiofile.New(context.Background(), t.TempDir())
	require.NoError(t, err)
	return store
}

func newTestRecorder(t *testing.T, store *audiofile.Store, onError func(error)) *Recorder {
	t.Helper()
	r := NewRecorder(store, RecorderConfig{
		Format:      "wav",
		SampleRate:  16000,
		Channels:    1,
		FrameBuffer: 64,
	}, onError)
	t.Cleanup(r.Close)
	return r
}

func TestRecorderWritesFramesInOrder(t *testing.T) {
	store := newTestStore(t)
	r := newTestRecorder(t, store, nil)

	sessionID := uuid.New()
	require.NoError(t, r.BeginChunk(sessionID, 0))

	r.WriteFrame([]byte("abc"))
	r.WriteFrame([]byte("def"))

	file, err := r.EndChunk()
	require.NoError(t, err)
	assert.Equal(t, int64(6), file.Size)
	assert.False(t, file.EndTime.Before(file.StartTime))

	data, err := os.ReadFile(file.Path)
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(data))
}

func TestRecorderCopiesFrameBuffer(t *testing.T) {
	store := newTestStore(t)
	r := newTestRecorder(t, store, nil)

	require.NoError(t, r.BeginChunk(uuid.New(), 0))

	buf := []byte("good")
	r.WriteFrame(buf)
	copy(buf, "BAD!")

	file, err := r.EndChunk()
	require.NoError(t, err)

	data, err := os.ReadFile(file.Path)
	require.NoError(t, err)
	assert.Equal(t, "good", string(data))
}

func TestRecorderDropsFramesWithoutOpenChunk(t *testing.T) {
	store := newTestStore(t)
	r := newTestRecorder(t, store, nil)

	r.WriteFrame([]byte("lost"))
	assert.Equal(t, int64(0), r.TakeDropped(), "frames without an open chunk are ignored, not counted")

	_, err := r.EndChunk()
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRecorderPauseGatesFrames(t *testing.T) {
	store := newTestStore(t)
	r := newTestRecorder(t, store, nil)

	require.NoError(t, r.BeginChunk(uuid.New(), 0))
	r.WriteFrame([]byte("keep"))

	r.SetWriting(false)
	r.WriteFrame([]byte("skip"))
	r.SetWriting(true)
	r.WriteFrame([]byte("more"))

	file, err := r.EndChunk()
	require.NoError(t, err)

	data, err := os.ReadFile(file.Path)
	require.NoError(t, err)
	assert.Equal(t, "keepmore", string(data))
}

func TestRecorderBeginChunkPreservesWriteGate(t *testing.T) {
	store := newTestStore(t)
	r := newTestRecorder(t, store, nil)

	r.SetWriting(false)
	require.NoError(t, r.BeginChunk(uuid.New(), 0))

	r.WriteFrame([]byte("silent"))
	r.SetWriting(true)
	r.WriteFrame([]byte("audible"))

	file, err := r.EndChunk()
	require.NoError(t, err)

	data, err := os.ReadFile(file.Path)
	require.NoError(t, err)
	assert.Equal(t, "audible", string(data), "opening a chunk must not reopen a closed write gate")
}

func TestRecorderRotationKeepsMidRotationFrames(t *testing.T) {
	store := newTestStore(t)
	r := newTestRecorder(t, store, nil)

	sessionID := uuid.New()
	require.NoError(t, r.BeginChunk(sessionID, 0))
	r.WriteFrame([]byte("first"))

	file, err := r.EndChunkKeepOpen()
	require.NoError(t, err)
	data, err := os.ReadFile(file.Path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	// Handed off after the end request, before the next begin: the frame is
	// buffered and written at the head of the next chunk.
	r.WriteFrame([]byte("gap"))

	require.NoError(t, r.BeginChunk(sessionID, 1))
	r.WriteFrame([]byte("next"))

	file, err = r.EndChunk()
	require.NoError(t, err)
	data, err = os.ReadFile(file.Path)
	require.NoError(t, err)
	assert.Equal(t, "gapnext", string(data))
	assert.Equal(t, int64(0), r.TakeDropped())
}

func TestRecorderNewSessionDropsBufferedFrames(t *testing.T) {
	store := newTestStore(t)
	r := newTestRecorder(t, store, nil)

	require.NoError(t, r.BeginChunk(uuid.New(), 0))
	_, err := r.EndChunkKeepOpen()
	require.NoError(t, err)
	r.WriteFrame([]byte("stale"))

	// Chunk 0 of a different session must not inherit the buffered frame.
	require.NoError(t, r.BeginChunk(uuid.New(), 0))
	r.WriteFrame([]byte("fresh"))

	file, err := r.EndChunk()
	require.NoError(t, err)
	data, err := os.ReadFile(file.Path)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(data))
}

func TestRecorderChunkTimesUseClock(t *testing.T) {
	store := newTestStore(t)
	r := newTestRecorder(t, store, nil)

	base := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	calls := 0
	r.clock = func() time.Time {
		calls++
		return base.Add(time.Duration(calls-1) * time.Minute)
	}

	require.NoError(t, r.BeginChunk(uuid.New(), 0))
	file, err := r.EndChunk()
	require.NoError(t, err)

	assert.Equal(t, base, file.StartTime)
	assert.Equal(t, base.Add(time.Minute), file.EndTime)
}

func TestRecorderClosedRejectsRequests(t *testing.T) {
	store := newTestStore(t)
	r := NewRecorder(store, RecorderConfig{Format: "wav"}, nil)
	r.Close()

	err := r.BeginChunk(uuid.New(), 0)
	assert.ErrorIs(t, err, ErrRecordingFailed)

	_, err = r.EndChunk()
	assert.ErrorIs(t, err, ErrRecordingFailed)
}

func TestRecorderBeginFailureSurfacesError(t *testing.T) {
	store := newTestStore(t)
	r := newTestRecorder(t, store, nil)

	require.NoError(t, os.RemoveAll(store.Dir()))

	err := r.BeginChunk(uuid.New(), 0)
	assert.ErrorIs(t, err, audiofile.ErrFileCreationFailed)
}
