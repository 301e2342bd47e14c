// Package version exposes the engine's version string, overridable at
// build time via -ldflags "-X .../version.gitVersion=...".
package version

var gitVersion = "dev"

// Version returns the build's version string.
func Version() string {
	return gitVersion
}
