package main

// Notes:
// - printDoctorResult is tested on hand-built results so the output does
//   not depend on whether Chrome is installed.
// - runDoctorCmd runs the real self-test; browser findings vary by host,
//   so only the pipeline, assets and exit code consistency are checked.
// - Config and container detection use t.Setenv and cannot run in parallel.

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// ---------------------------------------------------------------------------
// TestPrintDoctorResult - Human-readable report
// ---------------------------------------------------------------------------

func TestPrintDoctorResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		result  *doctorResult
		want    []string
		wantNot []string
	}{
		{
			name: "ready with browser",
			result: &doctorResult{
				Status:   statusReady,
				Pipeline: pipelineInfo{OK: true, Duration: 42 * time.Millisecond, Bytes: 512},
				Config:   configInfo{UserDir: "/home/u/.config/go-markclip"},
				Browser:  browserInfo{Found: true, Path: "/usr/bin/chromium", Version: "Chromium 120", Sandbox: true},
				Env:      envInfo{OS: "linux", Arch: "amd64"},
				System:   systemInfo{TempWritable: true},
				Assets:   assetInfo{TemplateSets: []string{"default", "obsidian"}, Styles: []string{"default"}},
			},
			want: []string{
				"markclip doctor",
				"[OK] Self-test: 512 bytes of Markdown in 42ms",
				"[OK] Config: built-in defaults",
				"[OK] User config directory: /home/u/.config/go-markclip",
				"[OK] Found at /usr/bin/chromium",
				"[OK] Version: Chromium 120",
				"[OK] Chrome sandbox: enabled",
				"[OK] Platform: linux/amd64",
				"[OK] Template sets: default, obsidian",
				"Status: Ready to convert",
			},
			wantNot: []string{"Warnings:", "Errors:"},
		},
		{
			name: "missing browser is a warning",
			result: &doctorResult{
				Status:   statusWarnings,
				Pipeline: pipelineInfo{OK: true},
				Config:   configInfo{Name: "notes", Loaded: true},
				Env:      envInfo{OS: "linux", Arch: "arm64", Container: true, ContainerHint: "/.dockerenv"},
				System:   systemInfo{TempWritable: true},
				Warnings: []string{"Chrome/Chromium not found"},
			},
			want: []string{
				"[OK] Config: notes",
				"[WARN] Not found",
				"[OK] Container: detected (/.dockerenv)",
				"Warnings:\n  [WARN] Chrome/Chromium not found",
				"Status: Ready with warnings",
			},
		},
		{
			name: "errors",
			result: &doctorResult{
				Status: statusErrors,
				Config: configInfo{Name: "missing"},
				Env:    envInfo{OS: "darwin", Arch: "arm64", CI: true},
				Errors: []string{"Temp directory not writable: /tmp"},
			},
			want: []string{
				"[ERROR] Self-test failed",
				"[ERROR] Config: missing",
				"[OK] CI: detected",
				"[ERROR] Temp directory: not writable",
				"Errors:\n  [ERROR] Temp directory not writable: /tmp",
				"Status: Not ready",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			printDoctorResult(&buf, tt.result)
			out := buf.String()

			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, s := range tt.wantNot {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q:\n%s", s, out)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd_JSON - Machine-readable report with the real self-test
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_JSON(t *testing.T) {
	t.Setenv("MARKCLIP_CONFIG", "")

	env, stdout, _ := newTestEnv()
	code := runDoctorCmd(context.Background(), []string{"--json"}, env)

	var result doctorResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout.String())
	}

	if !result.Pipeline.OK || result.Pipeline.Bytes == 0 {
		t.Errorf("pipeline = %+v, errors = %v, want a successful self-test", result.Pipeline, result.Errors)
	}
	if result.Env.OS != runtime.GOOS || result.Env.Arch != runtime.GOARCH {
		t.Errorf("platform = %s/%s, want %s/%s", result.Env.OS, result.Env.Arch, runtime.GOOS, runtime.GOARCH)
	}
	if diff := cmp.Diff([]string{"default", "minimal", "obsidian"}, result.Assets.TemplateSets); diff != "" {
		t.Errorf("template sets mismatch (-want +got):\n%s", diff)
	}
	if result.Config.Name != "" || result.Config.Loaded {
		t.Errorf("config = %+v, want built-in defaults", result.Config)
	}

	wantCode := ExitSuccess
	if result.Status == statusErrors {
		wantCode = ExitGeneral
	}
	if code != wantCode {
		t.Errorf("exit code = %d for status %q, want %d", code, result.Status, wantCode)
	}
}

// ---------------------------------------------------------------------------
// TestCheckConfig - MARKCLIP_CONFIG resolution
// ---------------------------------------------------------------------------

func TestCheckConfig(t *testing.T) {
	t.Run("loads named file", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "notes.yaml", []byte("templates:\n  enabled: true\n"))
		t.Setenv("MARKCLIP_CONFIG", path)

		var result doctorResult
		checkConfig(&result)

		if !result.Config.Loaded || result.Config.Name != path {
			t.Errorf("config = %+v, want %s loaded", result.Config, path)
		}
		if len(result.Errors) != 0 {
			t.Errorf("unexpected errors: %v", result.Errors)
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "absent.yaml")
		t.Setenv("MARKCLIP_CONFIG", path)

		var result doctorResult
		checkConfig(&result)

		if result.Config.Loaded {
			t.Error("config should not be loaded")
		}
		if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "absent.yaml") {
			t.Errorf("errors = %v, want one naming absent.yaml", result.Errors)
		}
	})

	t.Run("unset uses defaults", func(t *testing.T) {
		t.Setenv("MARKCLIP_CONFIG", "")

		var result doctorResult
		checkConfig(&result)

		if result.Config.Name != "" || len(result.Errors) != 0 {
			t.Errorf("config = %+v, errors = %v, want defaults", result.Config, result.Errors)
		}
	})
}

// ---------------------------------------------------------------------------
// TestIsContainer - Container signals
// ---------------------------------------------------------------------------

func TestIsContainer(t *testing.T) {
	t.Run("explicit override wins", func(t *testing.T) {
		t.Setenv("MARKCLIP_CONTAINER", "1")
		t.Setenv("KUBERNETES_SERVICE_HOST", "10.0.0.1")

		got, hint := isContainer()
		if !got || hint != "MARKCLIP_CONTAINER=1" {
			t.Errorf("isContainer() = %v, %q, want true, MARKCLIP_CONTAINER=1", got, hint)
		}
	})

	t.Run("podman", func(t *testing.T) {
		if _, err := os.Stat("/.dockerenv"); err == nil {
			t.Skip("running inside docker")
		}
		t.Setenv("MARKCLIP_CONTAINER", "")
		t.Setenv("container", "podman")

		got, hint := isContainer()
		if !got || hint != "container=podman" {
			t.Errorf("isContainer() = %v, %q, want true, container=podman", got, hint)
		}
	})
}
