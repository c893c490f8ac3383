package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-capture/constant"
)

type fakeInterruptionSource struct {
	events chan InterruptionEvent
}

func (s *fakeInterruptionSource) Events() <-chan InterruptionEvent {
	return s.events
}

func runInterruptionHandler(t *testing.T, c *Chunker) *fakeInterruptionSource {
	t.Helper()
	source := &fakeInterruptionSource{events: make(chan InterruptionEvent)}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go NewInterruptionHandler(c, source).Run(ctx)
	return source
}

func waitForState(t *testing.T, c *Chunker, want constant.CaptureState) {
	t.Helper()
	require.Eventually(t, func() bool {
		return c.Status().State == want
	}, time.Second, 5*time.Millisecond)
}

func TestInterruptionPausesAndResumes(t *testing.T) {
	col := &chunkCollector{}
	c := newTestChunker(t, col)
	source := runInterruptionHandler(t, c)

	_, err := c.StartSession(context.Background(), constant.CaptureModeActive)
	require.NoError(t, err)

	source.events <- InterruptionEvent{Kind: InterruptionBegan}
	waitForState(t, c, constant.CaptureStatePaused)

	status := c.Status()
	assert.Equal(t, constant.PauseReasonInterruption, status.Reason)

	source.events <- InterruptionEvent{Kind: InterruptionEnded, ShouldResume: true}
	waitForState(t, c, constant.CaptureStateListening)

	status = c.Status()
	assert.Equal(t, constant.CaptureModeActive, status.Mode, "resume restores the pre-interruption mode")

	require.NoError(t, c.StopSession())
	assert.Len(t, col.collected(), 1, "an interruption must not split the chunk")
}

func TestInterruptionEndWithoutResumeHint(t *testing.T) {
	col := &chunkCollector{}
	c := newTestChunker(t, col)
	source := runInterruptionHandler(t, c)

	_, err := c.StartSession(context.Background(), constant.CaptureModeActive)
	require.NoError(t, err)

	source.events <- InterruptionEvent{Kind: InterruptionBegan}
	waitForState(t, c, constant.CaptureStatePaused)

	source.events <- InterruptionEvent{Kind: InterruptionEnded}

	// No resume hint: the session stays paused until the user resumes it.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, constant.CaptureStatePaused, c.Status().State)

	require.NoError(t, c.Resume(""))
	require.NoError(t, c.StopSession())
}

func TestInterruptionEndDoesNotResumeUserPause(t *testing.T) {
	col := &chunkCollector{}
	c := newTestChunker(t, col)
	source := runInterruptionHandler(t, c)

	_, err := c.StartSession(context.Background(), constant.CaptureModeActive)
	require.NoError(t, err)
	require.NoError(t, c.Pause(constant.PauseReasonUser))

	source.events <- InterruptionEvent{Kind: InterruptionEnded, ShouldResume: true}

	time.Sleep(50 * time.Millisecond)
	status := c.Status()
	assert.Equal(t, constant.CaptureStatePaused, status.State, "a user pause is never resumed by the system")
	assert.Equal(t, constant.PauseReasonUser, status.Reason)

	require.NoError(t, c.Resume(""))
	require.NoError(t, c.StopSession())
}

func TestInterruptionWhileIdleIsIgnored(t *testing.T) {
	col := &chunkCollector{}
	c := newTestChunker(t, col)
	source := runInterruptionHandler(t, c)

	source.events <- InterruptionEvent{Kind: InterruptionBegan}

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, constant.CaptureStateIdle, c.Status().State)
}
