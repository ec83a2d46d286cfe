package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	old := Version
	Version = "1.2.3"
	defer func() { Version = old }()

	got := String()
	if !strings.HasPrefix(got, "hitmap 1.2.3 (commit ") {
		t.Errorf("unexpected version string %q", got)
	}
}
