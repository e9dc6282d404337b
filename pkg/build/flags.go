// SPDX-License-Identifier: MIT
// Package build exposes version metadata embedded at compile time via
// -ldflags. Development builds fall back to "dev".
package build

import "fmt"

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildTime    = "unknown"
)

// Version returns the semantic version of this build.
func Version() string {
	return buildVersion
}

// Commit returns the Git commit hash of this build.
func Commit() string {
	return buildCommit
}

// Time returns the build timestamp.
func Time() string {
	return buildTime
}

// String returns a one-line description of the build.
func String() string {
	return fmt.Sprintf("lightwave %s (%s, built %s)", buildVersion, buildCommit, buildTime)
}
