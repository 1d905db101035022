package audiotag

import "runtime"

// Version is the semantic version of the audiotag library.
const Version = "0.2.0"

// VersionInfo contains detailed version information.
type VersionInfo struct {
	// Version is the semantic version (e.g., "0.2.0")
	Version string
	// GitCommit is the git commit hash (set via ldflags at build time)
	GitCommit string
	// BuildDate is the build timestamp (set via ldflags at build time)
	BuildDate string
	// GoVersion is the Go version used to build
	GoVersion string
}

// GetVersionInfo returns detailed version information.
//
// GitCommit and BuildDate are populated at build time via -ldflags.
// If not set, they will show as "unknown".
//
// Example build command:
//
//	go build -ldflags="-X github.com/simonhull/audiotag.GitCommit=$(git rev-parse HEAD) \
//	  -X github.com/simonhull/audiotag.BuildDate=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/tagctl
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}

// Variables populated at build time via -ldflags.
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)
