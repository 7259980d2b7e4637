package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/MrSnakeDoc/launchpad/internal/version.Version=..."
var (
	Version   = "dev"             // ex: v0.1.0
	Commit    = "none"            // ex: abcd123
	BuildDate = "unknown"         // ex: 2025-08-11T18:42:00Z
	GoVersion = runtime.Version() // go version
)

// Without ldflags, fall back to the VCS stamp the go tool embeds.
func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == "none" {
				Commit = s.Value[:min(7, len(s.Value))]
			}
		case "vcs.time":
			if BuildDate == "unknown" {
				BuildDate = s.Value
			}
		}
	}
}

// String is the one-line build description.
func String() string {
	return fmt.Sprintf("launchpad %s (commit=%s, built=%s, go=%s)", Version, Commit, BuildDate, GoVersion)
}
