// Package version reports the build version of the binary
package version

import (
	"runtime/debug"
)

// Version is the module version the binary was built from
var Version = "unable to get version"

func init() {
	inf, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	Version = inf.Main.Version
}
