//go:build windows

package main

import (
	"strings"
	"testing"
)

func testPipeName(t *testing.T) string {
	return `\\.\pipe\ride-test-` + strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
}
