package imagefetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// pngHeader is enough of a PNG file for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestHTTPFetcher_Fetch(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/typed.gif", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/gif")
		_, _ = w.Write([]byte("GIF89a"))
	})
	mux.HandleFunc("/untyped", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(pngHeader)
	})
	mux.HandleFunc("/missing.png", func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})
	mux.HandleFunc("/big.png", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 64))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	tests := []struct {
		name     string
		src      string
		wantMIME string
		wantData string
		wantErr  error
	}{
		{name: "declared content type", src: srv.URL + "/typed.gif", wantMIME: "image/gif", wantData: "GIF89a"},
		{name: "sniffed content type", src: srv.URL + "/untyped", wantMIME: "image/png", wantData: string(pngHeader)},
		{name: "not found", src: srv.URL + "/missing.png", wantErr: ErrStatus},
		{name: "too large", src: srv.URL + "/big.png", wantErr: ErrTooLarge},
		{name: "base64 data uri", src: "data:image/png;base64,aGVsbG8=", wantMIME: "image/png", wantData: "hello"},
		{name: "plain data uri", src: "data:,a%20b", wantMIME: "text/plain", wantData: "a b"},
		{name: "unsupported scheme", src: "ftp://example.com/a.png", wantErr: ErrUnsupportedSource},
	}

	f := NewHTTPFetcher(WithMaxBytes(32), WithRetries(0, 0))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			img, err := f.Fetch(context.Background(), tt.src)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Fetch() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() unexpected error: %v", err)
			}
			if img.MIME != tt.wantMIME {
				t.Errorf("MIME = %q, want %q", img.MIME, tt.wantMIME)
			}
			if string(img.Data) != tt.wantData {
				t.Errorf("Data = %q, want %q", img.Data, tt.wantData)
			}
		})
	}
}

func TestHTTPFetcher_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngHeader)
	}))
	t.Cleanup(srv.Close)

	f := NewHTTPFetcher(WithRetries(2, time.Millisecond))
	img, err := f.Fetch(context.Background(), srv.URL+"/a.png")
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if img.MIME != "image/png" {
		t.Errorf("MIME = %q, want image/png", img.MIME)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server calls = %d, want 3", got)
	}
}

func TestHTTPFetcher_ClientErrorsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	f := NewHTTPFetcher(WithRetries(3, time.Millisecond))
	if _, err := f.Fetch(context.Background(), srv.URL); !errors.Is(err, ErrStatus) {
		t.Fatalf("Fetch() error = %v, want ErrStatus", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server calls = %d, want 1", got)
	}
}

func TestHTTPFetcher_RateLimitHonoursContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(pngHeader)
	}))
	t.Cleanup(srv.Close)

	f := NewHTTPFetcher(WithRateLimit(0.001, 1))
	if _, err := f.Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("first Fetch() unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := f.Fetch(ctx, srv.URL); err == nil {
		t.Fatal("second Fetch() expected rate limit error")
	}
}

func TestHTTPFetcher_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "local.png")
	if err := os.WriteFile(path, pngHeader, 0o600); err != nil {
		t.Fatal(err)
	}

	img, err := NewHTTPFetcher().Fetch(context.Background(), "file://"+filepath.ToSlash(path))
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if img.MIME != "image/png" {
		t.Errorf("MIME = %q, want image/png", img.MIME)
	}
}

func TestExtension(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"image/jpeg":               "jpg",
		"image/png":                "png",
		"image/gif":                "gif",
		"image/webp":               "webp",
		"image/svg+xml":            "svg",
		"image/svg+xml; charset=x": "svg",
		"IMAGE/PNG":                "png",
		"image/avif":               "jpg",
		"":                         "jpg",
	}
	for in, want := range tests {
		if got := Extension(in); got != want {
			t.Errorf("Extension(%q) = %q, want %q", in, got, want)
		}
	}
}
