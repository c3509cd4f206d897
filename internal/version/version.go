// Package version reports the codesnip release and the build it came from.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Version is the codesnip release
const Version = "0.1.0"

// Release builds set these with
// -ldflags "-X github.com/standardbeagle/codesnip/internal/version.Commit=...".
// When empty, the VCS stamp embedded by the Go toolchain is used.
var (
	Commit    string
	BuildDate string
)

const unknown = "unknown"

// Build describes the running binary
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Modified  bool   `json:"modified,omitempty"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	ID        string `json:"build_id"`
}

var (
	current     Build
	currentOnce sync.Once
)

// Current returns the build metadata, read once
func Current() Build {
	currentOnce.Do(func() {
		current = readBuild(Commit, BuildDate, debug.ReadBuildInfo)
	})
	return current
}

// Info returns the release version
func Info() string {
	return Version
}

// FullInfo returns the version with its commit and build date
func FullInfo() string {
	b := Current()
	commit := b.Commit
	if b.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("codesnip %s (commit: %s, built: %s)", b.Version, commit, b.BuildDate)
}

// BuildID fingerprints the binary so two servers built from different trees
// report different IDs
func BuildID() string {
	return Current().ID
}

func readBuild(commit, date string, read func() (*debug.BuildInfo, bool)) Build {
	b := Build{
		Version:   Version,
		Commit:    commit,
		BuildDate: date,
		GoVersion: runtime.Version(),
	}

	h := xxhash.New()
	h.WriteString(Version)

	if info, ok := read(); ok {
		b.GoVersion = info.GoVersion
		h.WriteString(info.GoVersion)
		h.WriteString(info.Main.Path)
		h.WriteString(info.Main.Version)

		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if b.Commit == "" {
					b.Commit = shortRevision(s.Value)
				}
			case "vcs.time":
				if b.BuildDate == "" {
					b.BuildDate = s.Value
				}
			case "vcs.modified":
				b.Modified = s.Value == "true"
			default:
				continue
			}
			h.WriteString(s.Key)
			h.WriteString(s.Value)
		}
	}

	if b.Commit == "" {
		b.Commit = unknown
	}
	if b.BuildDate == "" {
		b.BuildDate = unknown
	}
	h.WriteString(b.Commit)

	b.ID = fmt.Sprintf("%016x", h.Sum64())
	return b
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
