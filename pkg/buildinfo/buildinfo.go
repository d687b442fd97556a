package buildinfo

import (
	"runtime"
	"runtime/debug"
)

// These are intended to be set via -ldflags at build time.
// Example:
// go build -ldflags "-X github.com/wvflights/flightlog-api/pkg/buildinfo.Version=v1.2.3 -X github.com/wvflights/flightlog-api/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) -X github.com/wvflights/flightlog-api/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Build describes the running binary.
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

// Get returns the build description. When ldflags were not supplied the
// commit and date fall back to the VCS stamp embedded by the toolchain.
func Get() Build {
	b := Build{Version: Version, Commit: Commit, Date: Date, GoVersion: runtime.Version()}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && b.Commit == "unknown":
				b.Commit = s.Value
				if len(b.Commit) > 12 {
					b.Commit = b.Commit[:12]
				}
			case s.Key == "vcs.time" && b.Date == "unknown":
				b.Date = s.Value
			}
		}
	}
	return b
}
