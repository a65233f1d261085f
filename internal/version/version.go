// Package version reports what build of camscan is running. Release
// builds inject the values through ldflags; anything else falls back to
// the VCS stamp Go embeds in the binary, or a dated dev string.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Release builds set these via:
//
//	go build -ldflags="-X github.com/muldr/camscan/internal/version.Version=v1.2.3 \
//	                   -X github.com/muldr/camscan/internal/version.Commit=abc123"
var (
	// Version is the semantic version, or a dev placeholder.
	Version = ""
	// Commit is the short git hash the binary was built from.
	Commit = ""
)

func init() {
	if Version == "" || Commit == "" {
		fromBuildInfo()
	}

	if Version == "" {
		Version = fmt.Sprintf("dev-%s", time.Now().Format("20060102-150405"))
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromBuildInfo fills in whatever the embedded VCS stamp provides. Go
// records the revision and commit time when building inside a git
// checkout, but never tags, so Version stays a dev string here.
func fromBuildInfo() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	var revision, modified, commitTime string
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value
		case "vcs.time":
			commitTime = setting.Value
		}
	}

	if Commit == "" && revision != "" {
		Commit = revision
		if len(Commit) > 7 {
			Commit = Commit[:7]
		}
		if modified == "true" {
			Commit += "-dirty"
		}
	}

	if Version == "" && commitTime != "" {
		if t, err := time.Parse(time.RFC3339, commitTime); err == nil {
			Version = fmt.Sprintf("dev-%s", t.Format("20060102"))
		}
	}
}

// Full returns the version and commit in one string.
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}
