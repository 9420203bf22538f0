// Package version holds the build version, set at link time:
//
//	go build -ldflags "-X github.com/NielsdaWheelz/cibootstrap/internal/version.Version=v0.3.0"
package version

// Version is the cibootstrap release version.
var Version = "dev"
