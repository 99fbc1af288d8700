package version

import (
	"fmt"
	"runtime"
)

const Author = "K1ngDamien"

// Set at build time with -ldflags "-X github.com/aquasecurity/epss-sorter/version.version=...".
var (
	version   = "1.0.0"
	gitCommit = "[not provided]"
	buildDate = "[not provided]"
)

type Version struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

func FromBuild() Version {
	return Version{
		Version:   version,
		GitCommit: gitCommit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

func (v Version) String() string {
	return fmt.Sprintf("%s (commit %s, built %s, %s %s)", v.Version, v.GitCommit, v.BuildDate, v.GoVersion, v.Platform)
}
