// Package bridge runs request/response exchanges with a bounded wait.
//
// A call that does not answer in time is abandoned: its result lands in a
// buffered channel nobody reads, so the worker goroutine can finish and be
// collected without blocking.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for exchange failures.
var (
	ErrTimeout   = errors.New("request timed out")
	ErrTransport = errors.New("request transport failed")
)

type reply[Resp any] struct {
	resp Resp
	err  error
}

// Call runs fn with req and waits at most timeout for the answer.
// op names the exchange in returned errors. A zero timeout waits for ctx
// alone. Errors from fn are wrapped with op; a panic inside fn surfaces as
// ErrTransport.
func Call[Req, Resp any](ctx context.Context, op string, timeout time.Duration, req Req, fn func(context.Context, Req) (Resp, error)) (Resp, error) {
	var zero Resp

	callCtx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	done := make(chan reply[Resp], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- reply[Resp]{err: fmt.Errorf("%w: %s: %v", ErrTransport, op, r)}
			}
		}()
		resp, err := fn(callCtx, req)
		done <- reply[Resp]{resp: resp, err: err}
	}()

	expired := func() (Resp, error) {
		if err := ctx.Err(); err != nil {
			return zero, fmt.Errorf("%s: %w", op, err)
		}
		return zero, fmt.Errorf("%w: %s after %s", ErrTimeout, op, timeout)
	}

	select {
	case r := <-done:
		switch {
		case r.err == nil:
			return r.resp, nil
		case errors.Is(r.err, ErrTransport):
			return zero, r.err
		case callCtx.Err() != nil && errors.Is(r.err, callCtx.Err()):
			return expired()
		}
		return zero, fmt.Errorf("%s: %w", op, r.err)
	case <-callCtx.Done():
		return expired()
	}
}
