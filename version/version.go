// Package version reports the build and the fact-store schema the binary was built with.
package version

import (
	"fmt"
	"runtime"

	"github.com/teranos/eavto/db"
)

// Set at build time via -ldflags "-X github.com/teranos/eavto/version.Version=...".
var (
	Version    = "dev"
	CommitHash = "dev"
	BuildTime  = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	Schema     int    `json:"schema_version"` // newest embedded migration
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get returns the current version information.
func Get() Info {
	schema, _ := db.LatestVersion()
	return Info{
		Version:    Version,
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		Schema:     schema,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (i Info) String() string {
	return fmt.Sprintf("eavto %s (commit %s, built %s, schema v%d)", i.Version, i.Short(), i.BuildTime, i.Schema)
}

// Short returns the abbreviated commit hash.
func (i Info) Short() string {
	if len(i.CommitHash) > 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}
