// Package version holds the build version, set with
// -ldflags "-X github.com/ndewijer/Equity-Portfolio-Tracker/internal/version.Version=v1.2.3".
package version

// Version is the application version.
var Version = "dev"
