package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	markclip "github.com/alnah/go-markclip"
	"github.com/alnah/go-markclip/internal/assets"
	"github.com/alnah/go-markclip/internal/config"
	"github.com/go-rod/rod/lib/launcher"
)

// Doctor statuses, from best to worst.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// selfTestTimeout bounds the built-in conversion run by doctor.
const selfTestTimeout = 15 * time.Second

// selfTestMarker must survive extraction and transduction of selfTestPage.
const selfTestMarker = "markclip self-test paragraph"

const selfTestPage = `<!DOCTYPE html>
<html lang="en">
<head><title>Doctor</title></head>
<body>
  <nav><a href="/">Home</a></nav>
  <article>
    <h1>Doctor</h1>
    <p>` + selfTestMarker + `. Readability keeps the main article of a page and drops the navigation,
    the sidebars and the footer around it, so this paragraph carries enough prose to be scored as content.</p>
    <p>The converter then walks the extracted tree and writes Markdown for every element it knows:
    headings, paragraphs, emphasis such as <em>this</em> and <strong>this</strong>, links, lists and code.</p>
    <ul><li>first item</li><li>second item</li></ul>
  </article>
  <footer>Copyright</footer>
</body>
</html>`

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string       `json:"status"`
	Pipeline pipelineInfo `json:"pipeline"`
	Config   configInfo   `json:"config"`
	Browser  browserInfo  `json:"browser"`
	Env      envInfo      `json:"environment"`
	System   systemInfo   `json:"system"`
	Assets   assetInfo    `json:"assets"`
	Warnings []string     `json:"warnings,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
}

// pipelineInfo reports the built-in parse and convert run.
type pipelineInfo struct {
	OK       bool          `json:"ok"`
	Duration time.Duration `json:"duration"`
	Bytes    int           `json:"markdown_bytes"`
}

// configInfo reports the configuration markclip would load.
type configInfo struct {
	Name    string `json:"name,omitempty"` // MARKCLIP_CONFIG, empty for built-in defaults
	Loaded  bool   `json:"loaded"`
	UserDir string `json:"user_dir,omitempty"`
}

// browserInfo holds Chrome/Chromium detection results. A browser is only
// needed for --sandbox, so a missing one is a warning.
type browserInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds platform, container and CI detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

type assetInfo struct {
	TemplateSets []string `json:"template_sets"`
	Styles       []string `json:"styles"`
}

func (r *doctorResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *doctorResult) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// runDoctorCmd executes the doctor command and returns an exit code:
// ExitSuccess when markclip can convert (warnings included), ExitGeneral otherwise.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
		}
	}

	result := runDoctor(ctx, env)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs every diagnostic check.
func runDoctor(ctx context.Context, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
		Assets: assetInfo{
			TemplateSets: assets.TemplateSetNames(),
			Styles:       assets.StyleNames(),
		},
	}

	checkPipeline(ctx, result, env)
	checkConfig(result)
	checkBrowser(result)
	checkEnvironment(result)
	checkTempDir(result)

	switch {
	case len(result.Errors) > 0:
		result.Status = statusErrors
	case len(result.Warnings) > 0:
		result.Status = statusWarnings
	}
	return result
}

// checkPipeline parses and converts selfTestPage with a fresh converter.
func checkPipeline(ctx context.Context, result *doctorResult, env *Environment) {
	ctx, cancel := context.WithTimeout(ctx, selfTestTimeout)
	defer cancel()

	opts := append([]markclip.Option{markclip.WithClock(env.Now)}, env.ConverterOptions...)
	conv, err := markclip.NewConverter(opts...)
	if err != nil {
		result.fail("Converter: %v", err)
		return
	}
	defer func() { _ = conv.Close() }()

	start := time.Now()
	article, err := conv.Parse(ctx, markclip.ParseRequest{
		Document: selfTestPage,
		URL:      "https://example.com/markclip/doctor",
	})
	if err != nil {
		result.fail("Self-test parse: %v", err)
		return
	}
	res, err := conv.Convert(ctx, article, markclip.DefaultOptions())
	if err != nil {
		result.fail("Self-test conversion: %v", err)
		return
	}
	if !strings.Contains(res.Markdown, selfTestMarker) {
		result.fail("Self-test conversion lost the article text")
		return
	}

	result.Pipeline = pipelineInfo{OK: true, Duration: time.Since(start), Bytes: len(res.Markdown)}
}

// checkConfig loads the config named by MARKCLIP_CONFIG, if any.
func checkConfig(result *doctorResult) {
	if dir, err := os.UserConfigDir(); err == nil {
		result.Config.UserDir = filepath.Join(dir, "go-markclip")
	}

	result.Config.Name = os.Getenv("MARKCLIP_CONFIG")
	if result.Config.Name == "" {
		return
	}
	if _, err := config.LoadConfig(result.Config.Name); err != nil {
		result.fail("Config %s: %v", result.Config.Name, err)
		return
	}
	result.Config.Loaded = true
}

// checkBrowser locates Chrome/Chromium for the rendering sandbox.
func checkBrowser(result *doctorResult) {
	path := result.Env.BrowserBin
	if path == "" {
		var found bool
		if path, found = launcher.LookPath(); !found {
			result.warn("Chrome/Chromium not found. --sandbox will download Chromium, or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(path); err != nil {
		result.fail("Browser not found at %s", path)
		return
	}
	result.Browser = browserInfo{Found: true, Path: path, Sandbox: result.Env.NoSandbox != "1"}

	out, err := exec.Command(path, "--version").Output() // #nosec G204 -- browser path from launcher or env
	if err != nil {
		result.warn("Could not get browser version: %v", err)
		return
	}
	result.Browser.Version = strings.TrimSpace(string(out))
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if result.Browser.Found && (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.warn("Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1 for --sandbox")
	}
}

// isContainer reports whether markclip runs in a container and which
// signal gave it away.
func isContainer() (bool, string) {
	if os.Getenv("MARKCLIP_CONTAINER") == "1" {
		return true, "MARKCLIP_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkTempDir verifies that atomic writes can stage files.
func checkTempDir(result *doctorResult) {
	tmpDir := os.TempDir()
	f, err := os.CreateTemp(tmpDir, "markclip-doctor-*")
	if err != nil {
		result.fail("Temp directory not writable: %s", tmpDir)
		return
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	result.System.TempWritable = true
}

// reportLine is one "[LEVEL] text" entry of the human-readable report.
type reportLine struct {
	level string
	text  string
}

type reportSection struct {
	title string
	lines []reportLine
}

func okLine(format string, args ...any) reportLine {
	return reportLine{"OK", fmt.Sprintf(format, args...)}
}

// sections lays out the report in display order.
func (r *doctorResult) sections() []reportSection {
	pipeline := reportSection{title: "Conversion pipeline"}
	if r.Pipeline.OK {
		pipeline.lines = append(pipeline.lines,
			okLine("Self-test: %d bytes of Markdown in %s", r.Pipeline.Bytes, r.Pipeline.Duration.Round(time.Millisecond)))
	} else {
		pipeline.lines = append(pipeline.lines, reportLine{"ERROR", "Self-test failed"})
	}

	cfg := reportSection{title: "Configuration"}
	switch {
	case r.Config.Name == "":
		cfg.lines = append(cfg.lines, okLine("Config: built-in defaults"))
	case r.Config.Loaded:
		cfg.lines = append(cfg.lines, okLine("Config: %s", r.Config.Name))
	default:
		cfg.lines = append(cfg.lines, reportLine{"ERROR", "Config: " + r.Config.Name})
	}
	if r.Config.UserDir != "" {
		cfg.lines = append(cfg.lines, okLine("User config directory: %s", r.Config.UserDir))
	}

	browser := reportSection{title: "Chrome/Chromium (--sandbox)"}
	if r.Browser.Found {
		browser.lines = append(browser.lines, okLine("Found at %s", r.Browser.Path))
		if r.Browser.Version != "" {
			browser.lines = append(browser.lines, okLine("Version: %s", r.Browser.Version))
		}
		if r.Browser.Sandbox {
			browser.lines = append(browser.lines, okLine("Chrome sandbox: enabled"))
		} else {
			browser.lines = append(browser.lines, okLine("Chrome sandbox: disabled (ROD_NO_SANDBOX=1)"))
		}
	} else {
		browser.lines = append(browser.lines, reportLine{"WARN", "Not found"})
	}

	system := reportSection{title: "System", lines: []reportLine{okLine("Platform: %s/%s", r.Env.OS, r.Env.Arch)}}
	if r.Env.Container {
		system.lines = append(system.lines, okLine("Container: detected (%s)", r.Env.ContainerHint))
	}
	if r.Env.CI {
		system.lines = append(system.lines, okLine("CI: detected"))
	}
	if r.System.TempWritable {
		system.lines = append(system.lines, okLine("Temp directory: writable"))
	} else {
		system.lines = append(system.lines, reportLine{"ERROR", "Temp directory: not writable"})
	}

	sections := []reportSection{pipeline, cfg, browser, system, {
		title: "Assets",
		lines: []reportLine{
			okLine("Template sets: %s", strings.Join(r.Assets.TemplateSets, ", ")),
			okLine("Preview styles: %s", strings.Join(r.Assets.Styles, ", ")),
		},
	}}

	if len(r.Warnings) > 0 {
		s := reportSection{title: "Warnings:"}
		for _, w := range r.Warnings {
			s.lines = append(s.lines, reportLine{"WARN", w})
		}
		sections = append(sections, s)
	}
	if len(r.Errors) > 0 {
		s := reportSection{title: "Errors:"}
		for _, e := range r.Errors {
			s.lines = append(s.lines, reportLine{"ERROR", e})
		}
		sections = append(sections, s)
	}
	return sections
}

// printDoctorResult writes the human-readable report.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintf(w, "markclip doctor\n\n")

	for _, s := range r.sections() {
		fmt.Fprintln(w, s.title)
		for _, l := range s.lines {
			fmt.Fprintf(w, "  [%s] %s\n", l.level, l.text)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to convert")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
