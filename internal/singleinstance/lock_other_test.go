//go:build !windows

package singleinstance

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testLockName(t *testing.T, suffix string) string {
	return filepath.Join(t.TempDir(), "ride-test-"+suffix+".lock")
}

func TestDefaultLockName(t *testing.T) {
	t.Setenv("USERNAME", "unit tester")
	name := DefaultLockName()
	if filepath.Dir(name) != filepath.Clean(os.TempDir()) {
		t.Fatalf("DefaultLockName = %q, want file in %q", name, os.TempDir())
	}
	if !strings.HasSuffix(name, "ride-unit_tester.lock") {
		t.Fatalf("DefaultLockName = %q", name)
	}
}
