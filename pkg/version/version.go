// Package version holds the application version string.
package version

// Version is the current release. Overridden at build time via
// -ldflags "-X deckcast/pkg/version.Version=...".
var Version = "0.3.0-dev"
