package buildinfo

import "testing"

func TestReleaseAndFields(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = ""
	if got := Release(); got != "course-eligibility@dev" {
		t.Errorf("Release() = %q, want course-eligibility@dev", got)
	}
	if _, ok := Fields()["version"]; ok {
		t.Error("Fields() should omit an empty version")
	}

	Version = "v1.2.0"
	if got := Release(); got != "course-eligibility@v1.2.0" {
		t.Errorf("Release() = %q", got)
	}
	if got := Fields()["version"]; got != "v1.2.0" {
		t.Errorf("Fields()[version] = %q", got)
	}
}
