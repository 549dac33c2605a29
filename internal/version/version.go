// Package version reports the build identity of the running binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

const defaultModule = "pkt.systems/retroterm"

// buildVersion is set via -ldflags "-X pkt.systems/retroterm/internal/version.buildVersion=...".
var buildVersion = ""

// Info describes the build.
type Info struct {
	Version   string
	Module    string
	Revision  string
	Time      time.Time
	Dirty     bool
	GoVersion string
}

// Read collects build identity from ldflags and the embedded build info.
func Read() Info {
	info, _ := debug.ReadBuildInfo()
	return fromBuildInfo(info, buildVersion)
}

// Current returns the best available version string.
func Current() string { return Read().Version }

// Banner is the one-line identity printed by the version command.
func Banner() string {
	info := Read()
	out := fmt.Sprintf("retroterm %s", info.Version)
	if info.Revision != "" {
		rev := info.Revision
		if len(rev) > 12 {
			rev = rev[:12]
		}
		out += " (" + rev
		if info.Dirty {
			out += ", modified"
		}
		out += ")"
	}
	return out + " " + info.GoVersion
}

func fromBuildInfo(info *debug.BuildInfo, override string) Info {
	out := Info{Module: defaultModule, GoVersion: runtime.Version()}
	if info != nil {
		if path := strings.TrimSpace(info.Main.Path); path != "" {
			out.Module = path
		}
		if info.GoVersion != "" {
			out.GoVersion = info.GoVersion
		}
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				out.Revision = setting.Value
			case "vcs.time":
				if parsed, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					out.Time = parsed.UTC()
				}
			case "vcs.modified":
				out.Dirty = setting.Value == "true"
			}
		}
	}
	switch {
	case strings.TrimSpace(override) != "":
		out.Version = strings.TrimSpace(override)
	case info != nil && info.Main.Version != "" && info.Main.Version != "(devel)":
		out.Version = info.Main.Version
	case out.Revision != "" && !out.Time.IsZero():
		rev := out.Revision
		if len(rev) > 12 {
			rev = rev[:12]
		}
		out.Version = "v0.0.0-" + out.Time.Format("20060102150405") + "-" + rev
	default:
		out.Version = "v0.0.0-unknown"
	}
	out.Version = strings.TrimSuffix(out.Version, "+dirty")
	return out
}
