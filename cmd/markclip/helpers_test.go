package main

// Notes:
// - Shared fixtures for the CLI tests. Documents are parsed by the real
//   readability parser, so the page carries enough text to be kept.
// - Images are served from disk through file:// URLs, which the default
//   fetcher reads without network access.

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// pngBytes is a PNG signature followed by padding, enough for MIME sniffing.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

var fixedNow = time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)

// pageHTML returns an article page whose body mentions marker.
func pageHTML(marker string) string {
	return `<!DOCTYPE html>
<html lang="en">
<head><title>Notes on the Engine</title></head>
<body>
  <nav><a href="/">Home</a></nav>
  <article>
    <h1>Notes on the Engine</h1>
    <p>` + marker + ` The Analytical Engine weaves algebraic patterns just as the Jacquard loom weaves flowers
    and leaves. It might act upon other things besides number, were objects found whose mutual fundamental
    relations could be expressed by those of the abstract science of operations.</p>
    <p>Supposing, for instance, that the fundamental relations of pitched sounds in the science of harmony
    and of musical composition were susceptible of such expression and adaptations, the engine might
    compose elaborate and scientific pieces of music of any degree of complexity or extent.</p>
    <p>The engine is shown here <img src="img/a.png" alt="Engine"> together with a description of the
    notation it would need to handle, along with many other symbols and operations it could perform.</p>
  </article>
  <footer>Copyright</footer>
</body>
</html>`
}

// writeFile creates path below dir with content, making parent directories.
func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("setup mkdir: %v", err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("setup write: %v", err)
	}
	return path
}

// writePage writes an article page and the image it references.
func writePage(t *testing.T, dir, name, marker string) string {
	t.Helper()
	path := writeFile(t, dir, name, []byte(pageHTML(marker)))
	writeFile(t, filepath.Dir(path), "img/a.png", pngBytes)
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", path, err)
	}
	return string(data)
}

// newTestEnv returns an environment writing to buffers with a fixed clock.
func newTestEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Environment{
		Now:    func() time.Time { return fixedNow },
		Stdout: &stdout,
		Stderr: &stderr,
	}, &stdout, &stderr
}

func nullLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}
