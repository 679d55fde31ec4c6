package version

import (
	"fmt"
	"runtime"
)

// Version is the release of the binary.
// Set via -ldflags "-X main.version=v1.0.0", which main hands to cmd.SetVersionInfo.
var Version = "dev"

// GitCommit is the commit the binary was built from.
var GitCommit string

// BuildTime is the UTC build timestamp.
var BuildTime string

// Info is the build metadata printed by `hs300 version`.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	GitCommit string `json:"git_commit,omitempty" yaml:"git_commit,omitempty"`
	BuildTime string `json:"build_time,omitempty" yaml:"build_time,omitempty"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

// Set records build metadata; empty values leave the current ones.
func Set(version, commit, date string) {
	if version != "" {
		Version = version
	}
	if commit != "" {
		GitCommit = commit
	}
	if date != "" {
		BuildTime = date
	}
}

// Current returns the recorded build metadata.
func Current() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

func (i Info) String() string {
	return fmt.Sprintf("Version: %s, Git Commit: %s, Build Time: %s, Go Version: %s",
		i.Version, i.GitCommit, i.BuildTime, i.GoVersion)
}
