// Package buildinfo holds the version stamped into barscene binaries.
//
// The variables are set with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/barscene/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/barscene/pkg/buildinfo.Commit=$(git rev-parse HEAD)" \
//	    ./cmd/barscene
package buildinfo

import "fmt"

var (
	// Version is the release tag, or "dev" for local builds.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp in RFC 3339.
	Date = "unknown"
)

// Info is the build information as served by the API.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the current build information.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// String formats the build information on three lines.
func (i Info) String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", i.Version, i.Commit, i.Date)
}

// Template returns the cobra version template.
func Template() string {
	i := Get()
	return fmt.Sprintf("{{.Name}} %s (%s, built %s)\n", i.Version, i.Commit, i.Date)
}
