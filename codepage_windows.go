//go:build windows

package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

const utf8CodePage = 65001

// setConsoleUTF8 lets the console sink print non-ASCII log text.
func setConsoleUTF8() {
	if err := windows.SetConsoleOutputCP(utf8CodePage); err != nil {
		fmt.Fprintf(os.Stderr, "[app] SetConsoleOutputCP: %v\n", err)
	}
	if err := windows.SetConsoleCP(utf8CodePage); err != nil {
		fmt.Fprintf(os.Stderr, "[app] SetConsoleCP: %v\n", err)
	}
}
