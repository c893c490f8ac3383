package capture

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"voice-capture/constant"
)

type InterruptionKind int

const (
	InterruptionBegan InterruptionKind = iota
	InterruptionEnded
)

type InterruptionEvent struct {
	Kind         InterruptionKind
	ShouldResume bool
}

// InterruptionSource delivers external interruption signals. Injected so the
// handler is testable without a real OS interruption.
type InterruptionSource interface {
	Events() <-chan InterruptionEvent
}

// InterruptionHandler bridges interruption signals to the session: begin
// pauses a listening session, end with a resume hint resumes a session that
// was paused by an interruption. Anything else is a no-op, and pause/resume
// failures are logged, not escalated.
type InterruptionHandler struct {
	chunker *Chunker
	source  InterruptionSource
}

func NewInterruptionHandler(chunker *Chunker, source InterruptionSource) *InterruptionHandler {
	return &InterruptionHandler{chunker: chunker, source: source}
}

func (h *InterruptionHandler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-h.source.Events():
			if !ok {
				return
			}
			h.handle(ctx, ev)
		}
	}
}

func (h *InterruptionHandler) handle(ctx context.Context, ev InterruptionEvent) {
	state, _, reason := h.chunker.machine.Snapshot()

	switch ev.Kind {
	case InterruptionBegan:
		if state != constant.CaptureStateListening {
			return
		}
		if err := h.chunker.Pause(constant.PauseReasonInterruption); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to pause on interruption")
		}
	case InterruptionEnded:
		if !ev.ShouldResume {
			return
		}
		if state != constant.CaptureStatePaused || reason != constant.PauseReasonInterruption {
			return
		}
		if err := h.chunker.Resume(""); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to resume after interruption")
		}
	}
}

// SignalInterruptionSource maps process signals to interruption events:
// SIGUSR1 begins an interruption, SIGUSR2 ends it with a resume hint.
type SignalInterruptionSource struct {
	events chan InterruptionEvent
}

func NewSignalInterruptionSource(ctx context.Context) *SignalInterruptionSource {
	s := &SignalInterruptionSource{events: make(chan InterruptionEvent, 4)}

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, syscall.SIGUSR1, syscall.SIGUSR2)
	go func() {
		defer signal.Stop(sigs)
		for {
			select {
			case <-ctx.Done():
				close(s.events)
				return
			case sig := <-sigs:
				switch sig {
				case syscall.SIGUSR1:
					s.events <- InterruptionEvent{Kind: InterruptionBegan}
				case syscall.SIGUSR2:
					s.events <- InterruptionEvent{Kind: InterruptionEnded, ShouldResume: true}
				}
			}
		}
	}()
	return s
}

func (s *SignalInterruptionSource) Events() <-chan InterruptionEvent {
	return s.events
}
