// Package buildinfo provides build-time version information.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/syslex/artitracker/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/syslex/artitracker/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/syslex/artitracker/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries installed with "go install" carry no ldflags; [Lookup] then falls
// back to the module version recorded by the Go toolchain.
package buildinfo

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/syslex/artitracker/pkg/report"
)

// Name is the tool name stamped into generated reports.
const Name = "artitracker"

// devVersion is the placeholder used when no version was injected.
const devVersion = "dev"

var (
	// Version is the semantic version (e.g., "v1.2.3").
	// Set via ldflags: -X github.com/syslex/artitracker/pkg/buildinfo.Version=...
	Version = devVersion

	// Commit is the git commit SHA.
	// Set via ldflags: -X github.com/syslex/artitracker/pkg/buildinfo.Commit=...
	Commit = "none"

	// Date is the build timestamp.
	// Set via ldflags: -X github.com/syslex/artitracker/pkg/buildinfo.Date=...
	Date = "unknown"
)

// ErrNoVersion is returned by [Lookup] when the binary carries no version.
var ErrNoVersion = errors.New("no version information in binary")

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// Lookup returns the generator metadata of this binary: the tool name and
// its version. When no version can be determined it returns a generator
// with both fields absent together with ErrNoVersion, so callers may warn
// and still stamp the report.
func Lookup() (*report.Generator, error) {
	v, ok := version()
	if !ok {
		return &report.Generator{}, ErrNoVersion
	}
	name := Name
	return &report.Generator{Name: &name, Version: &v}, nil
}

func version() (string, bool) {
	if Version != "" && Version != devVersion {
		return Version, true
	}
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return "", false
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v, true
	}
	return "", false
}
