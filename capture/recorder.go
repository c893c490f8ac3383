package capture

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"voice-capture/audiofile"
)

// ChunkFile describes one finalized chunk file.
type ChunkFile struct {
	Path      string
	StartTime time.Time
	EndTime   time.Time
	Size      int64
}

type RecorderConfig struct {
	Format      string
	SampleRate  int
	Channels    int
	FrameBuffer int
}

type command struct {
	frame []byte
	begin *beginRequest
	end   *endRequest
}

type beginRequest struct {
	sessionID uuid.UUID
	index     int
	reply     chan error
}

type endRequest struct {
	keepOpen bool
	reply    chan endResult
}

type endResult struct {
	file ChunkFile
	err  error
}

// Recorder drives one chunk at a time. Audio frames arrive on the platform
// capture thread via WriteFrame; a single writer goroutine owns the file, so
// producers never touch recorder state and never block. Frames, begin and
// end requests share one channel, which keeps file writes ordered relative
// to chunk boundaries.
type Recorder struct {
	store *audiofile.Store
	cfg   RecorderConfig

	cmds    chan command
	quit    chan struct{}
	open    atomic.Bool
	writing atomic.Bool
	dropped atomic.Int64

	// onError is invoked from the writer goroutine, never from the producer
	// thread.
	onError func(error)
	// clock is injectable for testing; defaults to time.Now.
	clock func() time.Time
}

func NewRecorder(store *audiofile.Store, cfg RecorderConfig, onError func(error)) *Recorder {
	if cfg.FrameBuffer < 1 {
		cfg.FrameBuffer = 256
	}
	r := &Recorder{
		store:   store,
		cfg:     cfg,
		cmds:    make(chan command, cfg.FrameBuffer),
		quit:    make(chan struct{}),
		onError: onError,
		clock:   time.Now,
	}
	r.writing.Store(true)
	go r.loop()
	return r
}

// BeginChunk allocates the chunk's file and starts accepting frames. The
// write gate is left as the caller set it, so a paused session stays paused
// across a rotation.
func (r *Recorder) BeginChunk(sessionID uuid.UUID, index int) error {
	req := &beginRequest{sessionID: sessionID, index: index, reply: make(chan error, 1)}
	select {
	case r.cmds <- command{begin: req}:
	case <-r.quit:
		return fmt.Errorf("%w: recorder closed", ErrRecordingFailed)
	}
	select {
	case err := <-req.reply:
		if err != nil {
			return err
		}
	case <-r.quit:
		return fmt.Errorf("%w: recorder closed", ErrRecordingFailed)
	}
	r.open.Store(true)
	return nil
}

// WriteFrame appends raw audio data to the open chunk. It runs on the
// real-time producer thread: no locks, no I/O, only a non-blocking handoff.
// Frames are dropped when no chunk is open, while paused, or when the buffer
// is full (counted, surfaced at finalize time). Frames arriving mid-rotation
// are buffered into the next chunk.
func (r *Recorder) WriteFrame(buf []byte) {
	if len(buf) == 0 || !r.open.Load() || !r.writing.Load() {
		return
	}
	// Copy to avoid caller mutations.
	frame := make([]byte, len(buf))
	copy(frame, buf)
	select {
	case r.cmds <- command{frame: frame}:
	default:
		r.dropped.Add(1)
	}
}

// SetWriting gates frame intake without closing the file or the source;
// pausing must stay cheaper than a full stop/restart.
func (r *Recorder) SetWriting(on bool) {
	r.writing.Store(on)
}

// EndChunk closes the open file, stops frame intake and returns the
// finalized time bounds. Frames already handed off are flushed before the
// file closes.
func (r *Recorder) EndChunk() (ChunkFile, error) {
	r.open.Store(false)
	return r.endChunk(false)
}

// EndChunkKeepOpen finalizes the file but keeps frame intake open: frames
// arriving before the next BeginChunk are buffered and written at the head
// of the next chunk, so rotation loses no audio.
func (r *Recorder) EndChunkKeepOpen() (ChunkFile, error) {
	return r.endChunk(true)
}

func (r *Recorder) endChunk(keepOpen bool) (ChunkFile, error) {
	req := &endRequest{keepOpen: keepOpen, reply: make(chan endResult, 1)}
	select {
	case r.cmds <- command{end: req}:
	case <-r.quit:
		return ChunkFile{}, fmt.Errorf("%w: recorder closed", ErrRecordingFailed)
	}
	select {
	case res := <-req.reply:
		return res.file, res.err
	case <-r.quit:
		return ChunkFile{}, fmt.Errorf("%w: recorder closed", ErrRecordingFailed)
	}
}

// TakeDropped returns and resets the dropped-frame counter.
func (r *Recorder) TakeDropped() int64 {
	return r.dropped.Swap(0)
}

// Close stops the writer goroutine. Any open file is closed as-is.
func (r *Recorder) Close() {
	select {
	case <-r.quit:
	default:
		close(r.quit)
	}
}

func (r *Recorder) loop() {
	var (
		file     *os.File
		path     string
		start    time.Time
		rotating bool
		pending  [][]byte
	)
	for {
		select {
		case <-r.quit:
			if file != nil {
				file.Close()
			}
			return
		case cmd := <-r.cmds:
			switch {
			case cmd.begin != nil:
				if file != nil {
					// Stray handle from an aborted session.
					file.Close()
					file = nil
				}
				if cmd.begin.index == 0 {
					// A new session never inherits buffered frames.
					pending = nil
				}
				f, err := r.store.CreateChunkFile(cmd.begin.sessionID, cmd.begin.index, r.cfg.Format)
				if err != nil {
					cmd.begin.reply <- err
					continue
				}
				file = f
				path = f.Name()
				start = r.clock()
				rotating = false
				for _, frame := range pending {
					if _, err := file.Write(frame); err != nil && r.onError != nil {
						r.onError(errors.Join(ErrRecordingFailed, err))
					}
				}
				pending = nil
				cmd.begin.reply <- nil

			case cmd.end != nil:
				if file == nil {
					cmd.end.reply <- endResult{err: fmt.Errorf("%w: no open chunk", ErrInvalidState)}
					continue
				}
				rotating = cmd.end.keepOpen
				end := r.clock()
				err := file.Close()
				file = nil
				var size int64
				if info, statErr := os.Stat(path); statErr == nil {
					size = info.Size()
				}
				res := endResult{file: ChunkFile{Path: path, StartTime: start, EndTime: end, Size: size}}
				if err != nil {
					res.err = errors.Join(ErrRecordingFailed, err)
				}
				cmd.end.reply <- res

			default:
				if file == nil {
					if rotating {
						// Mid-rotation frame: hold it for the next chunk.
						if len(pending) < r.cfg.FrameBuffer {
							pending = append(pending, cmd.frame)
						} else {
							r.dropped.Add(1)
						}
					}
					continue
				}
				if _, err := file.Write(cmd.frame); err != nil {
					if r.onError != nil {
						r.onError(errors.Join(ErrRecordingFailed, err))
					}
				}
			}
		}
	}
}
