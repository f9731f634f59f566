// Package version reports the build identity of the refmine binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/Sumatoshi-tech/refmine/pkg/version.Version=...".
var (
	// Version is the release version.
	Version = "dev"
	// Commit is the git commit the binary was built from.
	Commit = "<unknown>"
	// Date is the build timestamp.
	Date = "<unknown>"
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"    yaml:"version"`
	GitHash   string `json:"git_hash"   yaml:"git_hash"`
	Date      string `json:"date"       yaml:"date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform"   yaml:"platform"`
}

// Get returns the build info. Values not injected at link time fall back to
// the module build info when available.
func Get() Info {
	info := Info{
		Version:   Version,
		GitHash:   Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}

	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.GitHash == "<unknown>":
			info.GitHash = s.Value
		case s.Key == "vcs.time" && info.Date == "<unknown>":
			info.Date = s.Value
		}
	}

	return info
}

func (i Info) String() string {
	return fmt.Sprintf("refmine %s (%s, built %s, %s %s)", i.Version, i.GitHash, i.Date, i.GoVersion, i.Platform)
}
