// Package version provides application version information.
// The values can be set at build time using ldflags:
//
//	go build -ldflags "-X github.com/ramonehamilton/flashdeck/internal/version.Version=v1.2.3 -X github.com/ramonehamilton/flashdeck/internal/version.Commit=abc1234"
package version

import "fmt"

// Version is the application version. It defaults to "dev" and can be
// overridden at build time using ldflags.
var Version = "dev"

// Commit is the source revision the binary was built from.
var Commit = ""

// GetVersion returns the current application version.
func GetVersion() string {
	return Version
}

// String returns the version with the commit when one was set, e.g.
// "flashdeck v1.2.3 (abc1234)".
func String() string {
	if Commit == "" {
		return fmt.Sprintf("flashdeck %s", Version)
	}
	return fmt.Sprintf("flashdeck %s (%s)", Version, Commit)
}
