// Package process terminates the browser process trees started by the
// rendering sandbox.
package process

import "errors"

// ErrInvalidPID rejects PIDs that would signal the caller's own group.
var ErrInvalidPID = errors.New("invalid process id")
