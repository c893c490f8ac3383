package capture

import "errors"

var (
	// ErrNotAuthorized means the frame source has no capture permission.
	// Retrying does not help; the user has to grant access outside this
	// process.
	ErrNotAuthorized = errors.New("capture not authorized")

	// ErrInvalidState marks an illegal state machine transition. Caller
	// error, never silently ignored.
	ErrInvalidState = errors.New("invalid capture state transition")

	// ErrRecordingFailed marks a non-fatal write failure on the real-time
	// path. It is only ever reported through the async error callback.
	ErrRecordingFailed = errors.New("recording write failed")

	// ErrRotationFailed is fatal to the session: the next chunk could not be
	// opened and the session was aborted.
	ErrRotationFailed = errors.New("chunk rotation failed")
)
