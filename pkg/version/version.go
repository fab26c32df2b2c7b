// Package version is used by the release process to add an informative
// version string to the binary.
package version

import (
	"fmt"
	"os"
	"path/filepath"
)

// These strings are overwritten via -ldflags during the release process
var (
	BuildTime = ""
	GitSHA    = ""
	SemVer    = ""
)

const devel = "devel"

// Version returns a newline-terminated string describing the current
// version of the build
func Version() string {
	progName := filepath.Base(os.Args[0])

	if GitSHA == "" {
		return progName + " " + devel + "\n"
	}

	semver := SemVer
	if semver == "" {
		semver = devel
	}

	return fmt.Sprintf("%s %s (commit %s, built %s)\n", progName, semver, GitSHA, BuildTime)
}

// Short returns a short version string
func Short() string {
	if SemVer != "" {
		return SemVer
	}
	return devel
}
