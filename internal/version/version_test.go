package version

import "testing"

func TestString(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = oldVersion, oldCommit })

	Version, Commit = "v1.0.0", ""
	if got := String(); got != "flashdeck v1.0.0" {
		t.Errorf("String() = %q", got)
	}

	Commit = "abc1234"
	if got := String(); got != "flashdeck v1.0.0 (abc1234)" {
		t.Errorf("String() = %q", got)
	}
	if GetVersion() != "v1.0.0" {
		t.Errorf("GetVersion() = %q", GetVersion())
	}
}
