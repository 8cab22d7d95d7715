package assistant

import "errors"

// Sentinel errors for run outcomes. Service-level failures (transport,
// malformed payloads) are wrapped and propagated as-is instead.
var (
	// ErrRunFailed indicates the remote run reached the failed state. The
	// upstream error message, when present, is attached to the wrap.
	ErrRunFailed = errors.New("assistant run failed")

	// ErrTimeout indicates polling exhausted its bound before the run
	// reached a terminal state. Distinct from ErrRunFailed so callers can
	// decide to retry the whole operation.
	ErrTimeout = errors.New("assistant run timed out")
)
