package gateway

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotConnected means the streaming channel is unavailable. It is fatal to
// a whole batch: no partial results are attempted when it is returned before
// the first request.
var ErrNotConnected = errors.New("generation channel is not connected")

// TimeoutError is returned when a request exceeds the per-call deadline.
// It is terminal for that request only.
type TimeoutError struct {
	RequestID string
	Timeout   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("generation request %s timed out after %s", e.RequestID, e.Timeout)
}

// RemoteError carries the failure message from an inbound error event
// verbatim, so callers can surface exactly what the remote side reported.
type RemoteError struct {
	RequestID string
	Message   string
}

func (e *RemoteError) Error() string { return e.Message }
