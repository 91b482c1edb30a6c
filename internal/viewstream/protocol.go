// Package viewstream streams notebook tab text to the webview over a local
// WebSocket.
//
// # Binary frame protocol
//
// Frame layout: [1 byte: tab ID length][tab ID bytes][UTF-8 text]
//
//   - Byte 0: uint8 length of the tab ID (1..255).
//   - Bytes 1..1+idLen: tab ID.
//   - Remaining bytes: the full current text of the tab (may be empty).
//
// Each frame replaces what the client shows for that tab.
//
// # Control messages
//
// The client sends JSON text messages:
//
//	{"action":"subscribe","tabIds":["ride-log"]}
//	{"action":"unsubscribe","tabIds":["ride-log"]}
//
// Errors come back as {"type":"error","message":"..."}.
package viewstream

import (
	"errors"
	"fmt"
)

// maxTabIDLen is what the 1-byte length prefix can express.
const maxTabIDLen = 255

var (
	errEmptyTabID   = errors.New("tab ID must not be empty")
	errLongTabID    = fmt.Errorf("tab ID longer than %d bytes", maxTabIDLen)
	errEmptyFrame   = errors.New("empty frame")
	errShortIDFrame = errors.New("frame shorter than its tab ID")
)

// EncodeTabText builds a frame carrying text for tabID. Tab IDs longer than
// 255 bytes are rejected rather than truncated so two tabs can never share a
// routing key.
func EncodeTabText(tabID string, text string) ([]byte, error) {
	switch {
	case tabID == "":
		return nil, fmt.Errorf("viewstream: encode: %w", errEmptyTabID)
	case len(tabID) > maxTabIDLen:
		return nil, fmt.Errorf("viewstream: encode %q...: %w", tabID[:16], errLongTabID)
	}
	buf := make([]byte, 1+len(tabID)+len(text))
	buf[0] = byte(len(tabID))
	n := 1 + copy(buf[1:], tabID)
	copy(buf[n:], text)
	return buf, nil
}

// DecodeTabText parses a frame produced by EncodeTabText.
func DecodeTabText(frame []byte) (tabID string, text string, err error) {
	if len(frame) == 0 {
		return "", "", fmt.Errorf("viewstream: decode: %w", errEmptyFrame)
	}
	idLen := int(frame[0])
	if idLen == 0 {
		return "", "", fmt.Errorf("viewstream: decode: %w", errEmptyTabID)
	}
	if len(frame) < 1+idLen {
		return "", "", fmt.Errorf("viewstream: decode: %w (id length %d, frame length %d)",
			errShortIDFrame, idLen, len(frame))
	}
	return string(frame[1 : 1+idLen]), string(frame[1+idLen:]), nil
}
