// Package version holds build metadata.
package version

import (
	"cmp"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the application version, set via ldflags.
	Version string
	// Branch is the git branch, set via ldflags.
	Branch string
	// BuildUser is the user who built the binary, set via ldflags.
	BuildUser string
	// BuildDate is when the binary was built, set via ldflags.
	BuildDate string

	// Revision is the git commit revision.
	Revision = getRevision()
	// GoVersion is the Go version used to build.
	GoVersion = runtime.Version()
	// GoOS is the operating system target.
	GoOS = runtime.GOOS
	// GoArch is the architecture target.
	GoArch = runtime.GOARCH
)

func getRevision() string {
	rev := "unknown"

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return rev
	}

	modified := false

	for _, v := range buildInfo.Settings {
		switch v.Key {
		case "vcs.revision":
			rev = v.Value
		case "vcs.modified":
			if v.Value == "true" {
				modified = true
			}
		}
	}

	if modified {
		return rev + "-dirty"
	}

	return rev
}

// String returns a one-line description of the build, such as
// "beatvid v1.2.0 (abc123, go1.25.0 linux/amd64)".
func String() string {
	return fmt.Sprintf("beatvid %s (%s, %s %s/%s)", cmp.Or(Version, "dev"), Revision, GoVersion, GoOS, GoArch)
}

// Attrs returns the build metadata as log attributes.
func Attrs() []slog.Attr {
	return []slog.Attr{
		slog.String("version", cmp.Or(Version, "dev")),
		slog.String("revision", Revision),
		slog.String("branch", Branch),
		slog.String("build_user", BuildUser),
		slog.String("build_date", BuildDate),
		slog.String("go", GoVersion),
	}
}
