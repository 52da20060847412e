// Package version holds build information for osmaudit.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// BuildVersion is set at link time with -ldflags "-X github.com/NERVsystems/osmaudit/pkg/version.BuildVersion=..."
var BuildVersion = "dev"

// Info describes the running binary
type Info struct {
	Version     string            `json:"version"`
	GoVersion   string            `json:"go_version,omitempty"`
	BuildTime   string            `json:"build_time,omitempty"`
	VCSRevision string            `json:"vcs_revision,omitempty"`
	Settings    map[string]string `json:"settings,omitempty"`
}

// Get collects version information from the build
func Get() Info {
	info := Info{
		Version:   BuildVersion,
		GoVersion: runtime.Version(),
		Settings:  make(map[string]string),
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.VCSRevision = setting.Value
		case "vcs.time":
			info.BuildTime = setting.Value
		default:
			info.Settings[setting.Key] = setting.Value
		}
	}
	return info
}

// String returns a one-line version banner
func String() string {
	info := Get()
	s := fmt.Sprintf("osmaudit %s (%s)", info.Version, info.GoVersion)
	if info.VCSRevision != "" {
		s += " " + info.VCSRevision
	}
	return s
}
