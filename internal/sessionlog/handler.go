// Package sessionlog bridges slog records onto the application bus as
// messages.Log events, so plugins see the same log stream the process writes.
package sessionlog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"

	"ride/internal/messages"
)

// NotifyUserKey is the attribute that marks a record for user notification:
//
//	slog.Warn("settings file is unreadable", sessionlog.NotifyUser())
const NotifyUserKey = "notify_user"

// NotifyUser returns the attribute that sets Log.NotifyUser.
func NotifyUser() slog.Attr { return slog.Bool(NotifyUserKey, true) }

// Publisher receives converted log events.
type Publisher interface {
	Publish(topic string, msg any)
}

// TeeHandler wraps a base [slog.Handler] and publishes records at or above
// minLevel as [messages.Log] on [messages.TopicLog]. All records are forwarded
// to the base handler regardless of level.
type TeeHandler struct {
	base      slog.Handler
	publisher Publisher
	minLevel  slog.Level
	group     string // dot-separated group prefix
	attrs     []slog.Attr
}

// NewTeeHandler creates a TeeHandler. A nil publisher only delegates to base.
func NewTeeHandler(base slog.Handler, minLevel slog.Level, publisher Publisher) *TeeHandler {
	return &TeeHandler{
		base:      base,
		publisher: publisher,
		minLevel:  minLevel,
	}
}

// Enabled lets records through when either the base handler or the bus
// wants them.
func (h *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.publisher != nil && level >= h.minLevel {
		return true
	}
	return h.base.Enabled(ctx, level)
}

// Handle forwards the record to the base handler, then publishes it when its
// level meets minLevel. The base handler error is returned unchanged.
func (h *TeeHandler) Handle(ctx context.Context, record slog.Record) error {
	var err error
	if h.base.Enabled(ctx, record.Level) {
		err = h.base.Handle(ctx, record)
	}

	if h.publisher != nil && record.Level >= h.minLevel {
		func() {
			defer func() {
				if r := recover(); r != nil {
					// stderr, not slog: logging here would re-enter this handler.
					fmt.Fprintf(os.Stderr, "[session-log] publish panicked: %v\n%s\n", r, debug.Stack())
				}
			}()
			h.publisher.Publish(messages.TopicLog, h.toMessage(record))
		}()
	}
	return err
}

func (h *TeeHandler) toMessage(record slog.Record) messages.Log {
	notify := false
	var b strings.Builder
	if h.group != "" {
		b.WriteString(h.group)
		b.WriteString(": ")
	}
	b.WriteString(record.Message)

	appendAttr := func(a slog.Attr) bool {
		if a.Key == NotifyUserKey {
			notify = notify || isTrue(a.Value)
			return true
		}
		if a.Equal(slog.Attr{}) {
			return true
		}
		fmt.Fprintf(&b, " %s=%s", a.Key, a.Value.Resolve().String())
		return true
	}
	for _, a := range h.attrs {
		appendAttr(a)
	}
	record.Attrs(appendAttr)

	return messages.NewLog(record.Time, levelName(record.Level), b.String(), notify)
}

func isTrue(v slog.Value) bool {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindBool:
		return v.Bool()
	case slog.KindString:
		return strings.EqualFold(v.String(), "true")
	}
	return false
}

// levelName maps slog levels onto the bus level names.
func levelName(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return messages.LevelDebug
	case l < slog.LevelWarn:
		return messages.LevelInfo
	case l < slog.LevelError:
		return messages.LevelWarn
	default:
		return messages.LevelError
	}
}

// WithAttrs returns a new TeeHandler whose base handler has attrs applied.
// The attrs are also carried into published messages.
func (h *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &TeeHandler{
		base:      h.base.WithAttrs(attrs),
		publisher: h.publisher,
		minLevel:  h.minLevel,
		group:     h.group,
		attrs:     merged,
	}
}

// WithGroup returns a new TeeHandler whose base handler is wrapped with the
// given group name.
func (h *TeeHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h // slog.Handler contract: empty group returns the receiver.
	}
	newGroup := name
	if h.group != "" {
		newGroup = h.group + "." + name
	}
	return &TeeHandler{
		base:      h.base.WithGroup(name),
		publisher: h.publisher,
		minLevel:  h.minLevel,
		group:     newGroup,
		attrs:     h.attrs,
	}
}
