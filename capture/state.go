package capture

import (
	"fmt"
	"sync"

	"voice-capture/constant"
)

// StateMachine models the recording lifecycle: idle, listening(mode),
// paused(reason). All transitions are validated; an illegal transition
// returns ErrInvalidState and leaves the state untouched.
type StateMachine struct {
	mu     sync.Mutex
	state  constant.CaptureState
	mode   constant.CaptureMode
	reason constant.PauseReason
}

func NewStateMachine() *StateMachine {
	return &StateMachine{state: constant.CaptureStateIdle}
}

// Snapshot returns the current state, listening mode and pause reason. Mode
// and reason are only meaningful for the states that carry them.
func (m *StateMachine) Snapshot() (constant.CaptureState, constant.CaptureMode, constant.PauseReason) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.mode, m.reason
}

func (m *StateMachine) StartRecording(mode constant.CaptureMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != constant.CaptureStateIdle {
		return fmt.Errorf("%w: startRecording while %s", ErrInvalidState, m.state)
	}
	m.state = constant.CaptureStateListening
	m.mode = mode
	m.reason = ""
	return nil
}

func (m *StateMachine) PauseRecording(reason constant.PauseReason) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != constant.CaptureStateListening {
		return fmt.Errorf("%w: pauseRecording while %s", ErrInvalidState, m.state)
	}
	m.state = constant.CaptureStatePaused
	m.reason = reason
	return nil
}

// ResumeRecording returns to listening. An empty mode restores the mode that
// was active when the pause happened.
func (m *StateMachine) ResumeRecording(mode constant.CaptureMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != constant.CaptureStatePaused {
		return fmt.Errorf("%w: resumeRecording while %s", ErrInvalidState, m.state)
	}
	m.state = constant.CaptureStateListening
	if mode != "" {
		m.mode = mode
	}
	m.reason = ""
	return nil
}

func (m *StateMachine) StopRecording() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == constant.CaptureStateIdle {
		return fmt.Errorf("%w: stopRecording while %s", ErrInvalidState, m.state)
	}
	m.state = constant.CaptureStateIdle
	m.mode = ""
	m.reason = ""
	return nil
}
