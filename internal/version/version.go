package version

import "runtime"

// 构建时通过 -ldflags 注入，例如：
// go build -ldflags "-X github.com/John-Robertt/cldfolders/internal/version.Version=1.0.0 -X github.com/John-Robertt/cldfolders/internal/version.Commit=$(git rev-parse --short HEAD)"
var (
	Version = "0.1.0"
	Commit  = "dev"
)

type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (i Info) String() string {
	return "cldfolders " + i.Version + " (" + i.Commit + ", " + i.GoVersion + ", " + i.Platform + ")"
}
