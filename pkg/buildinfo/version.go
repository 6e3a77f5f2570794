// Package buildinfo exposes the version stamped into release binaries.
//
// Releases set the variables through ldflags:
//
//	go build -ldflags "-X github.com/seisview/seisview/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/seisview/seisview/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/seisview/seisview/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Unstamped builds fall back to what the module system recorded, so a
// plain go install still reports a usable commit.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version is the semantic version, "dev" when not stamped.
	Version = "dev"

	// Commit is the git revision the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

func init() {
	if Commit != "none" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			Commit = s.Value
		case "vcs.time":
			Date = s.Value
		}
	}
}

// Template returns the template the CLI renders for --version.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
