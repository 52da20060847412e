package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()
	if info.Version != BuildVersion {
		t.Errorf("expected version %s, got %s", BuildVersion, info.Version)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("expected go version %s, got %s", runtime.Version(), info.GoVersion)
	}
}

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, "osmaudit "+BuildVersion) {
		t.Errorf("unexpected banner %q", s)
	}
}
