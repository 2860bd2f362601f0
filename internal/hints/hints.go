// Package hints suggests a next step for the errors the markclip CLI
// reports. A hint is appended to the error line as "\n  hint: <text>".
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-markclip/internal/fileutil"
)

const prefix = "\n  hint: "

// InContainer reports whether markclip runs inside a container.
// Docker creates /.dockerenv in every container it starts.
var InContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ciVars are set by the CI services markclip usually runs under.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"}

func inCI() bool {
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// ForBrowserConnect tells how to get the --sandbox browser to start.
func ForBrowserConnect() string {
	var steps []string
	if (inCI() || InContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		steps = append(steps, "Chrome cannot sandbox itself here, export ROD_NO_SANDBOX=1")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		steps = append(steps, "point ROD_BROWSER_BIN at an installed Chrome or Chromium")
	}
	return join(steps)
}

// ForTimeout covers a stage that ran past its deadline.
func ForTimeout() string {
	return line("slow pages and images need more time: raise --timeout (e.g. --timeout 2m)")
}

// ForConfigNotFound points at --config and, when one of the searched
// paths is in the user config directory, at that file.
func ForConfigNotFound(searched []string) string {
	hint := "pass an existing file with --config"
	for _, p := range searched {
		if strings.Contains(p, ".config/go-markclip") {
			return line(hint + ", or save one as " + p)
		}
	}
	return line(hint)
}

// ForOutputDirectory covers documents and images that could not be written.
func ForOutputDirectory() string {
	return line("the --output directory must be writable and its parent must exist")
}

// ForStyleNotFound lists the preview styles markclip knows.
func ForStyleNotFound(styles []string) string {
	if len(styles) == 0 {
		return ""
	}
	return line("preview styles: " + strings.Join(styles, ", "))
}

// ForTemplateSetNotFound lists the template sets markclip knows and how
// to add one.
func ForTemplateSetNotFound(sets []string) string {
	custom := "custom sets live in <--asset-path>/templates/<name>/frontmatter.md"
	if len(sets) == 0 {
		return line(custom)
	}
	return join([]string{"template sets: " + strings.Join(sets, ", "), custom})
}

// ForImageFetch covers images that could not be downloaded.
func ForImageFetch() string {
	return line("an image host refused or timed out; --image-mode contentLink keeps the remote links")
}

func line(hint string) string {
	if hint == "" {
		return ""
	}
	return prefix + hint
}

func join(parts []string) string {
	return line(strings.Join(parts, "; "))
}
