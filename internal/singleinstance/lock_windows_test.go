//go:build windows

package singleinstance

import (
	"strings"
	"testing"
)

func testLockName(_ *testing.T, suffix string) string {
	return `Global\ride-test-` + suffix
}

func TestDefaultLockName(t *testing.T) {
	name := DefaultLockName()
	if !strings.HasPrefix(name, `Global\ride-`) {
		t.Fatalf("DefaultLockName = %q, want prefix %q", name, `Global\ride-`)
	}
}
