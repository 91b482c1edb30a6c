// Package messages defines the payloads published on the application bus.
package messages

import "time"

// TopicLog is the bus topic carrying Log messages.
const TopicLog = "ride.log"

// Log levels used in Log.Level.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// TimestampLayout formats Log.Timestamp, e.g. "20240131 14:05:09.123".
const TimestampLayout = "20060102 15:04:05.000"

// Log is an application log event. It is produced by the host and only
// read by subscribers.
type Log struct {
	Timestamp  string `json:"timestamp"`
	Level      string `json:"level"`
	Message    string `json:"message"`
	NotifyUser bool   `json:"notifyUser"`
}

// NewLog builds a Log stamped with ts.
func NewLog(ts time.Time, level, message string, notifyUser bool) Log {
	return Log{
		Timestamp:  ts.Format(TimestampLayout),
		Level:      level,
		Message:    message,
		NotifyUser: notifyUser,
	}
}
