//go:build !windows

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func testPipeName(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "ride-app")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}
