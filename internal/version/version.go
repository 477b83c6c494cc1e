// Package version holds the build version, set with
// -ldflags "-X github.com/cours-de-latin/scansion/internal/version.Version=...".
package version

import "runtime/debug"

// Version is the release tag; "dev" for local builds.
var Version = "dev"

// String returns Version, falling back to the module version recorded in the
// build info.
func String() string {
	if Version != "dev" {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return Version
}
