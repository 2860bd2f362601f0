package markclip

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Sandbox renders a serialized document the way a browser would before
// it is parsed.
type Sandbox interface {
	Start(ctx context.Context) error
	Normalize(ctx context.Context, document string) (string, error)
	Close() error
}

// nopSandbox hands documents through untouched.
type nopSandbox struct{}

func (nopSandbox) Start(context.Context) error { return nil }
func (nopSandbox) Normalize(_ context.Context, document string) (string, error) {
	return document, nil
}
func (nopSandbox) Close() error { return nil }

type sandboxState int

const (
	sandboxUninitialized sandboxState = iota
	sandboxInitializing
	sandboxReady
)

func (s sandboxState) String() string {
	switch s {
	case sandboxInitializing:
		return "initializing"
	case sandboxReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// startAttempt is one in-flight Start call that later callers wait on.
type startAttempt struct {
	done chan struct{}
	err  error
}

// sandboxGuard starts its sandbox at most once at a time. Callers that
// arrive while a start is in flight wait for that attempt. A failed start
// returns the guard to uninitialized so the next caller retries.
type sandboxGuard struct {
	sandbox Sandbox
	log     logrus.FieldLogger

	mu      sync.Mutex
	state   sandboxState
	attempt *startAttempt
}

func newSandboxGuard(sb Sandbox, log logrus.FieldLogger) *sandboxGuard {
	return &sandboxGuard{sandbox: sb, log: log}
}

// ensure returns once the sandbox is ready or its start failed.
func (g *sandboxGuard) ensure(ctx context.Context) error {
	g.mu.Lock()
	switch g.state {
	case sandboxReady:
		g.mu.Unlock()
		return nil
	case sandboxInitializing:
		attempt := g.attempt
		g.mu.Unlock()
		select {
		case <-attempt.done:
			return attempt.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	attempt := &startAttempt{done: make(chan struct{})}
	g.attempt = attempt
	g.transition(sandboxInitializing)
	g.mu.Unlock()

	err := g.sandbox.Start(ctx)

	g.mu.Lock()
	attempt.err = err
	if err != nil {
		g.log.WithError(err).Warn("sandbox start failed")
		g.transition(sandboxUninitialized)
	} else {
		g.transition(sandboxReady)
	}
	close(attempt.done)
	g.mu.Unlock()
	return err
}

// transition must be called with mu held.
func (g *sandboxGuard) transition(to sandboxState) {
	g.log.WithFields(logrus.Fields{"from": g.state, "to": to}).Debug("sandbox state")
	g.state = to
}

func (g *sandboxGuard) normalize(ctx context.Context, document string) (string, error) {
	if err := g.ensure(ctx); err != nil {
		return "", err
	}
	return g.sandbox.Normalize(ctx, document)
}

// close shuts the sandbox down; a later call starts it again.
func (g *sandboxGuard) close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == sandboxUninitialized {
		return nil
	}
	if g.state == sandboxInitializing {
		// Let the in-flight start finish before tearing down.
		attempt := g.attempt
		g.mu.Unlock()
		<-attempt.done
		g.mu.Lock()
		if g.state != sandboxReady {
			return nil
		}
	}
	g.transition(sandboxUninitialized)
	return g.sandbox.Close()
}
