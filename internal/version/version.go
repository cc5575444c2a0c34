// Package version reports the build version of csvview.
package version

import (
	"fmt"
	"runtime/debug"
)

// Version is set at build time:
// -ldflags="-X github.com/wethinkt/go-csvview/internal/version.Version=v1.0.0"
var Version = ""

// Info is the version summary printed by `csvview version --json`.
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Revision  string `json:"revision,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
}

// GetInfo returns the version of the running binary.
func GetInfo(name string) Info {
	info := Info{
		Name:    name,
		Version: Get(),
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.Revision = setting.Value
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		}
	}
	return info
}

// Get returns the version string: the ldflags value, the module version,
// or dev-<short revision> for local builds.
func Get() string {
	if Version != "" {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			return bi.Main.Version
		}
		for _, setting := range bi.Settings {
			if setting.Key == "vcs.revision" {
				return "dev-" + shortRevision(setting.Value)
			}
		}
	}
	return "dev"
}

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// String returns the one-line version summary.
func String(name string) string {
	return fmt.Sprintf("%s version %s", name, Get())
}
