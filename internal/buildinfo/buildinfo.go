// Package buildinfo holds build-time metadata injected via -ldflags.
package buildinfo

// Version is the semantic version or tag for this build.
// Inject via: -X github.com/garyellow/course-eligibility-go/internal/buildinfo.Version=...
var Version = ""

// Commit is the git commit SHA for this build.
// Inject via: -X github.com/garyellow/course-eligibility-go/internal/buildinfo.Commit=...
var Commit = ""

// BuildDate is the RFC3339 build timestamp.
// Inject via: -X github.com/garyellow/course-eligibility-go/internal/buildinfo.BuildDate=...
var BuildDate = ""

// Release is the Sentry release name: course-eligibility@<version>, with
// "dev" standing in for an unset version.
func Release() string {
	v := Version
	if v == "" {
		v = "dev"
	}
	return "course-eligibility@" + v
}

// Fields returns the non-empty build metadata for logs and health output.
func Fields() map[string]string {
	fields := make(map[string]string, 3)
	for k, v := range map[string]string{"version": Version, "commit": Commit, "build_date": BuildDate} {
		if v != "" {
			fields[k] = v
		}
	}
	return fields
}
