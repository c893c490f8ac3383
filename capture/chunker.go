package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"voice-capture/audiofile"
	"voice-capture/constant"
	"voice-capture/entities"
)

type ChunkerConfig struct {
	Interval    time.Duration
	Format      string
	SampleRate  int
	Channels    int
	FrameBuffer int
	// MaxWriteFailures aborts the session once this many write failures
	// accumulate within a single chunk.
	MaxWriteFailures int
}

type ChunkCallback func(entities.AudioChunk)
type ErrorCallback func(error)

type SessionStatus struct {
	State      constant.CaptureState `json:"state"`
	Mode       constant.CaptureMode  `json:"mode,omitempty"`
	Reason     constant.PauseReason  `json:"reason,omitempty"`
	SessionID  uuid.UUID             `json:"session_id,omitempty"`
	ChunkIndex int                   `json:"chunk_index"`
	Active     bool                  `json:"active"`
}

// Chunker owns session identity and chunk indexing, and decides when to
// rotate to a new chunk. Exactly one session can be active per process; the
// callbacks it invokes must not call back into the Chunker.
type Chunker struct {
	mu       sync.Mutex
	cfg      ChunkerConfig
	machine  *StateMachine
	recorder *Recorder
	store    *audiofile.Store
	logger   zerolog.Logger
	onChunk  ChunkCallback
	onError  ErrorCallback

	active    bool
	sessionID uuid.UUID
	index     int
	timer     *time.Timer

	// writeFailures is atomic: it is bumped on the recorder's writer
	// goroutine, which must never take mu.
	writeFailures atomic.Int64
}

func NewChunker(ctx context.Context, store *audiofile.Store, cfg ChunkerConfig, onChunk ChunkCallback, onError ErrorCallback) *Chunker {
	if cfg.Interval <= 0 {
		cfg.Interval = 180 * time.Second
	}
	if cfg.MaxWriteFailures < 1 {
		cfg.MaxWriteFailures = 25
	}
	c := &Chunker{
		cfg:     cfg,
		machine: NewStateMachine(),
		store:   store,
		logger:  *zerolog.Ctx(ctx),
		onChunk: onChunk,
		onError: onError,
	}
	c.recorder = NewRecorder(store, RecorderConfig{
		Format:      cfg.Format,
		SampleRate:  cfg.SampleRate,
		Channels:    cfg.Channels,
		FrameBuffer: cfg.FrameBuffer,
	}, c.handleWriteError)
	return c
}

// Recorder exposes the frame sink the capture source feeds.
func (c *Chunker) Recorder() *Recorder {
	return c.recorder
}

// StartSession generates a new session id, opens chunk 0 and arms the
// rotation timer. Cancellation of ctx during start rolls the state machine
// back to idle.
func (c *Chunker) StartSession(ctx context.Context, mode constant.CaptureMode) (uuid.UUID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.machine.StartRecording(mode); err != nil {
		c.logger.Warn().Err(err).Msg("start session rejected")
		return uuid.Nil, err
	}

	sessionID := uuid.New()
	if err := c.recorder.BeginChunk(sessionID, 0); err != nil {
		c.machine.StopRecording()
		c.logger.Error().Err(err).Msg("failed to open first chunk")
		return uuid.Nil, err
	}

	if err := ctx.Err(); err != nil {
		if file, endErr := c.recorder.EndChunk(); endErr == nil {
			c.store.Remove(file.Path)
		}
		c.machine.StopRecording()
		c.logger.Warn().Err(err).Msg("start session canceled, rolled back to idle")
		return uuid.Nil, err
	}

	c.sessionID = sessionID
	c.index = 0
	c.active = true
	c.writeFailures.Store(0)
	c.recorder.SetWriting(true)
	c.timer = time.AfterFunc(c.cfg.Interval, c.rotateOnTimer)

	c.logger.Info().
		Str("session_id", sessionID.String()).
		Str("mode", mode.String()).
		Dur("chunk_interval", c.cfg.Interval).
		Msg("session started")
	return sessionID, nil
}

// Rotate finalizes the current chunk and immediately begins the next one
// without stopping capture. Normally driven by the timer; exported for
// manual rotation.
func (c *Chunker) Rotate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return fmt.Errorf("%w: rotate without active session", ErrInvalidState)
	}
	return c.rotateLocked()
}

func (c *Chunker) rotateOnTimer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	if err := c.rotateLocked(); err != nil {
		c.logger.Error().Err(err).Msg("timer rotation failed")
	}
}

func (c *Chunker) rotateLocked() error {
	file, err := c.recorder.EndChunkKeepOpen()
	if err != nil {
		fatal := errors.Join(ErrRotationFailed, err)
		c.abortLocked(fatal)
		return fatal
	}

	c.emitLocked(file)

	c.index++
	if err := c.recorder.BeginChunk(c.sessionID, c.index); err != nil {
		fatal := errors.Join(ErrRotationFailed, err)
		c.abortLocked(fatal)
		return fatal
	}
	// Re-apply the gate from the state machine: rotating a paused session
	// must not restart frame writes.
	state, _, _ := c.machine.Snapshot()
	c.recorder.SetWriting(state == constant.CaptureStateListening)
	c.writeFailures.Store(0)
	c.timer.Reset(c.cfg.Interval)

	c.logger.Info().
		Str("session_id", c.sessionID.String()).
		Int("chunk_index", c.index).
		Msg("rotated to next chunk")
	return nil
}

// StopSession disarms the timer, finalizes and emits the last chunk, and
// returns the state machine to idle.
func (c *Chunker) StopSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		err := fmt.Errorf("%w: stopSession without active session", ErrInvalidState)
		c.logger.Warn().Err(err).Msg("stop session rejected")
		return err
	}

	c.timer.Stop()
	c.active = false
	file, err := c.recorder.EndChunk()
	c.machine.StopRecording()
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to finalize last chunk")
		return err
	}
	c.emitLocked(file)

	c.logger.Info().
		Str("session_id", c.sessionID.String()).
		Int("chunks", c.index+1).
		Msg("session stopped")
	return nil
}

// Pause stops writing incoming frames to the open chunk while keeping the
// capture source and the file open.
func (c *Chunker) Pause(reason constant.PauseReason) error {
	if err := c.machine.PauseRecording(reason); err != nil {
		c.logger.Warn().Err(err).Msg("pause rejected")
		return err
	}
	c.recorder.SetWriting(false)
	c.logger.Info().Str("reason", reason.String()).Msg("session paused")
	return nil
}

// Resume restarts frame writes into the same chunk; no new chunk is created.
func (c *Chunker) Resume(mode constant.CaptureMode) error {
	if err := c.machine.ResumeRecording(mode); err != nil {
		c.logger.Warn().Err(err).Msg("resume rejected")
		return err
	}
	c.recorder.SetWriting(true)
	c.logger.Info().Msg("session resumed")
	return nil
}

func (c *Chunker) Status() SessionStatus {
	state, mode, reason := c.machine.Snapshot()
	c.mu.Lock()
	defer c.mu.Unlock()
	status := SessionStatus{
		State:      state,
		Mode:       mode,
		Reason:     reason,
		ChunkIndex: c.index,
		Active:     c.active,
	}
	if c.active {
		status.SessionID = c.sessionID
	}
	return status
}

// Close releases the recorder. Any active session is aborted.
func (c *Chunker) Close() {
	c.mu.Lock()
	if c.active {
		c.timer.Stop()
		c.active = false
		c.machine.StopRecording()
	}
	c.mu.Unlock()
	c.recorder.Close()
}

func (c *Chunker) emitLocked(file ChunkFile) {
	if dropped := c.recorder.TakeDropped(); dropped > 0 {
		c.logger.Warn().
			Int64("dropped_frames", dropped).
			Int("chunk_index", c.index).
			Msg("frames dropped during chunk")
		if c.onError != nil {
			c.onError(fmt.Errorf("%w: %d frames dropped during chunk %d", ErrRecordingFailed, dropped, c.index))
		}
	}

	size := file.Size
	chunk := entities.AudioChunk{
		ID:         uuid.New(),
		SessionID:  c.sessionID,
		ChunkIndex: c.index,
		FilePath:   file.Path,
		StartTime:  file.StartTime,
		EndTime:    file.EndTime,
		Format:     c.cfg.Format,
		SampleRate: c.cfg.SampleRate,
		FileSize:   &size,
		CreatedAt:  time.Now(),
	}
	if c.onChunk != nil {
		c.onChunk(chunk)
	}
}

// abortLocked tears the session down after an unrecoverable recorder
// failure: timer disarmed, machine forced idle, fatal error reported. A
// partial session beats silent data loss.
func (c *Chunker) abortLocked(fatal error) {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.recorder.SetWriting(false)
	c.active = false
	c.machine.StopRecording()
	c.logger.Error().Err(fatal).Str("session_id", c.sessionID.String()).Msg("session aborted")
	if c.onError != nil {
		c.onError(fatal)
	}
}

// handleWriteError runs on the recorder's writer goroutine and must never
// take mu: rotation and stop hold that lock while waiting for this same
// goroutine to answer EndChunk. Individual write failures are non-fatal;
// repeated ones abort the session on a separate goroutine.
func (c *Chunker) handleWriteError(err error) {
	failures := c.writeFailures.Add(1)

	c.logger.Warn().Err(err).Int64("failures", failures).Msg("chunk write failure")
	if c.onError != nil {
		c.onError(err)
	}

	if failures == int64(c.cfg.MaxWriteFailures) {
		c.recorder.SetWriting(false)
		go c.abortAfterWriteFailures(failures)
	}
}

func (c *Chunker) abortAfterWriteFailures(failures int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.abortLocked(fmt.Errorf("%w: aborting session after %d write failures", ErrRecordingFailed, failures))
	if _, err := c.recorder.EndChunk(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to finalize chunk after abort")
	}
}
