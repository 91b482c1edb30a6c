// Command ride-keys shows how RIDE reads keyboard shortcuts: the canonical
// value, the text shown in menus and the accelerator the frontend matches.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"

	"ride/internal/shortcut"
)

type result struct {
	Input       string   `json:"input"`
	Value       string   `json:"value,omitempty"`
	Printable   string   `json:"printable,omitempty"`
	Flags       uint32   `json:"flags"`
	Key         uint32   `json:"key"`
	Error       string   `json:"error,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ride-keys", flag.ContinueOnError)
	fs.SetOutput(stderr)
	mac := fs.Bool("mac", false, "resolve for the Mac platform family")
	other := fs.Bool("other", false, "resolve for non-Mac platforms")
	asJSON := fs.Bool("json", false, "print results as JSON")
	listKeys := fs.Bool("keys", false, "list every key name")
	fs.Usage = func() { printUsage(stderr, fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *mac && *other {
		_, _ = fmt.Fprintln(stderr, "ride-keys: -mac and -other are mutually exclusive")
		return 2
	}

	if *listKeys {
		names := shortcut.KeyNames()
		slices.Sort(names)
		for _, name := range names {
			_, _ = fmt.Fprintln(stdout, name)
		}
		return 0
	}
	if fs.NArg() == 0 {
		printUsage(stderr, fs)
		return 2
	}

	platform := shortcut.CurrentPlatform()
	switch {
	case *mac:
		platform = shortcut.PlatformMac
	case *other:
		platform = shortcut.PlatformOther
	}
	n := shortcut.NewNormalizer(platform)

	results := make([]result, 0, fs.NArg())
	failed := false
	for _, raw := range fs.Args() {
		r := resolve(n, raw)
		if r.Error != "" {
			failed = true
		}
		results = append(results, r)
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			_, _ = fmt.Fprintf(stderr, "ride-keys: %v\n", err)
			return 1
		}
	} else {
		for _, r := range results {
			printResult(stdout, stderr, r)
		}
	}
	if failed {
		return 1
	}
	return 0
}

func resolve(n *shortcut.Normalizer, raw string) result {
	sc := n.New(raw)
	r := result{Input: raw, Value: sc.Value(), Printable: sc.Printable()}
	acc, err := sc.Parse()
	if err != nil {
		r.Error = err.Error()
		var invalid *shortcut.InvalidShortcutError
		if errors.As(err, &invalid) {
			r.Suggestions = invalid.Suggestions
		}
		return r
	}
	r.Flags = uint32(acc.Flags)
	r.Key = uint32(acc.Key)
	return r
}

func printResult(stdout, stderr io.Writer, r result) {
	if r.Error != "" {
		_, _ = fmt.Fprintf(stderr, "ride-keys: %q: %s\n", r.Input, r.Error)
		return
	}
	_, _ = fmt.Fprintf(stdout, "%s\n", r.Input)
	_, _ = fmt.Fprintf(stdout, "  value:       %s\n", r.Value)
	_, _ = fmt.Fprintf(stdout, "  printable:   %s\n", r.Printable)
	_, _ = fmt.Fprintf(stdout, "  accelerator: flags=%d key=%d\n", r.Flags, r.Key)
}
