package capture

import (
	"context"
	"time"
)

const (
	audioBytesPerSample = 2 // LINEAR16
	frameInterval       = 20 * time.Millisecond
)

// FrameSource is the platform capture boundary. Start delivers frames to
// sink until ctx is done; implementations own their own thread/goroutine
// discipline and report ErrNotAuthorized when capture permission is missing.
type FrameSource interface {
	Start(ctx context.Context, sink func([]byte)) error
}

// SyntheticSource emits silence PCM frames at the configured rate. Used for
// development runs and tests where no microphone is wired up; it never
// raises ErrNotAuthorized.
type SyntheticSource struct {
	sampleRate int
	channels   int
}

func NewSyntheticSource(sampleRate, channels int) *SyntheticSource {
	if channels < 1 {
		channels = 1
	}
	return &SyntheticSource{sampleRate: sampleRate, channels: channels}
}

// FrameBytes is the frame-aligned byte count of one frame interval.
func (s *SyntheticSource) FrameBytes() int {
	perSecond := s.sampleRate * s.channels * audioBytesPerSample
	raw := int(frameInterval.Seconds() * float64(perSecond))
	frameSize := audioBytesPerSample * s.channels
	return (raw / frameSize) * frameSize
}

func (s *SyntheticSource) Start(ctx context.Context, sink func([]byte)) error {
	frame := make([]byte, s.FrameBytes())
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			sink(frame)
		}
	}
}
