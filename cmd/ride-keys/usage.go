package main

import (
	"flag"
	"fmt"
	"io"
)

func printUsage(w io.Writer, fs *flag.FlagSet) {
	// Usage output is best-effort.
	_, _ = fmt.Fprintln(w, "ride-keys: inspect RIDE keyboard shortcuts")
	_, _ = fmt.Fprintln(w, "Usage: ride-keys [-mac|-other] [-json] <shortcut>...")
	_, _ = fmt.Fprintln(w, "       ride-keys -keys")
	_, _ = fmt.Fprintln(w, "Examples: Ctrl-Shift-S  CtrlCmd+F4  Alt-Enter")
	fs.PrintDefaults()
}
