package version

import (
	"fmt"
	"runtime"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "na"
)

// Info returns version information for the varde binary
func Info() string {
	return fmt.Sprintf("varde %s\nGit commit: %s\nGo version: %s\nOS/Arch: %s/%s\nBuild date: %s",
		version, commit, runtime.Version(), runtime.GOOS, runtime.GOARCH, buildDate)
}

// SetVersion sets the version information (ldflags at build time)
func SetVersion(v, c, b string) {
	version = v
	commit = c
	buildDate = b
}

// Version returns the version
func Version() string {
	return version
}
