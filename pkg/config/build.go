package config

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X hds/pkg/config.BuildVersion=... -X hds/pkg/config.BuildTimestamp=...".
var (
	BuildVersion   = ""
	BuildTimestamp = ""
)

// GetBuildInfo describes the running binary. Values missing from ldflags
// fall back to what the Go toolchain embedded: the module version and the
// VCS revision and time.
func GetBuildInfo() string {
	version, stamp := BuildVersion, BuildTimestamp
	if bi, ok := debug.ReadBuildInfo(); ok {
		if version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if version == "" && len(s.Value) >= 12 {
					version = s.Value[:12]
				}
			case "vcs.time":
				if stamp == "" {
					stamp = s.Value
				}
			}
		}
	}
	if version == "" {
		version = "devel"
	}
	if stamp == "" {
		stamp = "unknown"
	}
	return fmt.Sprintf("hds %s (%s) %s/%s", version, stamp, runtime.GOOS, runtime.GOARCH)
}
