package markclip

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/alnah/go-markclip/internal/fileutil"
	"github.com/alnah/go-markclip/internal/process"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Compile-time interface checks.
var (
	_ Sandbox = (*RodSandbox)(nil)
	_ Sandbox = nopSandbox{}
)

// RodSandbox normalizes documents in headless Chrome via go-rod.
// Rod downloads Chromium on first run if no browser is found.
type RodSandbox struct {
	timeout time.Duration

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewRodSandbox creates a sandbox whose page loads are bounded by timeout.
func NewRodSandbox(timeout time.Duration) *RodSandbox {
	return &RodSandbox{timeout: timeout}
}

// Start launches and connects to the browser.
func (s *RodSandbox) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	s.launcher = l
	s.browser = browser
	return nil
}

// Normalize loads document in a fresh page and returns the DOM the
// browser built from it.
func (s *RodSandbox) Normalize(ctx context.Context, document string) (string, error) {
	s.mu.Lock()
	browser := s.browser
	s.mu.Unlock()
	if browser == nil {
		return "", fmt.Errorf("%w: sandbox not started", ErrBrowserConnect)
	}

	path, cleanup, err := fileutil.WriteTempFile(document, "html")
	if err != nil {
		return "", err
	}
	defer cleanup()

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "file://" + path})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	// Wait for page to load with timeout from context or default
	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return "", context.DeadlineExceeded
		}
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	normalized, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	return normalized, nil
}

// Close releases browser resources, killing the browser process group.
func (s *RodSandbox) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser == nil {
		return nil
	}

	err := s.browser.Close()
	// The launcher's own kill below covers a failed group kill.
	_ = process.KillTree(s.launcher.PID())
	s.launcher.Kill()
	s.browser = nil
	s.launcher = nil
	return err
}
