// Package version carries build-time identification for the analyzer
// binaries.
package version

import "fmt"

// Set at build time via -ldflags.
var (
	// Version is the semantic version.
	Version = "0.1.0"

	// BuildTime is the UTC time when the binary was built.
	BuildTime = "unknown"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"
)

// String returns the one-line version banner.
func String() string {
	return fmt.Sprintf("beanlog %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
