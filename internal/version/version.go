// Package version holds the tool version embedded in every certificate.
package version

// Version is overridable at build time via -ldflags "-X ...version.Version=".
var Version = "0.3.0"
