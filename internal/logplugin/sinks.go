package logplugin

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/muesli/termenv"

	"ride/internal/messages"
)

// tempFileSuffix names every log file this plugin creates in the temp dir.
const tempFileSuffix = "-ride.log"

// fileSink appends formatted records to the session's temp file. The file is
// created on the first write and never reopened after Close. Diagnostics go
// to errOut instead of slog because slog output feeds back into this sink.
type fileSink struct {
	path   string
	errOut io.Writer

	file   *os.File
	failed bool
	closed bool
}

func (s *fileSink) write(text string) {
	if s.closed || s.failed {
		return
	}
	if s.file == nil {
		f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			s.failed = true
			fmt.Fprintf(s.errOut, "[log-plugin] open log file %s: %v\n", s.path, err)
			return
		}
		s.file = f
	}
	if _, err := io.WriteString(s.file, text); err != nil {
		fmt.Fprintf(s.errOut, "[log-plugin] write log file %s: %v\n", s.path, err)
	}
}

func (s *fileSink) close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.file == nil {
		return nil
	}
	err := errors.Join(s.file.Sync(), s.file.Close())
	s.file = nil
	if err != nil {
		return fmt.Errorf("close log file %s: %w", s.path, err)
	}
	return nil
}

// consoleSink prints records to the console, colouring the level tag when
// the output is a terminal.
type consoleSink struct {
	out *termenv.Output
}

func newConsoleSink(w io.Writer) *consoleSink {
	return &consoleSink{out: termenv.NewOutput(w)}
}

func (c *consoleSink) write(ev messages.Log) {
	if c.out.Profile == termenv.Ascii {
		_, _ = io.WriteString(c.out, FormatMessage(ev))
		return
	}
	tag := c.out.String("[" + ev.Level + "]")
	if color := levelColor(ev.Level); color != "" {
		tag = tag.Foreground(c.out.Color(color))
	}
	_, _ = fmt.Fprintf(c.out, "%s %s: %s\n\n", ev.Timestamp, tag, ev.Message)
}

func levelColor(level string) string {
	switch level {
	case messages.LevelError:
		return "1"
	case messages.LevelWarn:
		return "3"
	case messages.LevelDebug:
		return "8"
	}
	return ""
}

// RemoveStaleLogFiles deletes every "*-ride.log" entry in dir. The directory
// is listed rather than globbed so names with pattern characters still
// match. Failures are reported to errOut and otherwise ignored.
func RemoveStaleLogFiles(dir string, errOut io.Writer) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(errOut, "[log-plugin] list stale log files in %s: %v\n", dir, err)
		}
		return
	}
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), tempFileSuffix) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(errOut, "[log-plugin] remove stale log file: %v\n", err)
		}
	}
}
