//go:build windows

package ipc

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/user"
	"regexp"
	"strings"
	"time"

	"github.com/Microsoft/go-winio"

	"ride/internal/userutil"
)

const (
	defaultPipePrefix = `\\.\pipe\ride-`
	pipeNameEnv       = "RIDE_PIPE"
)

var (
	pipeNamePattern = regexp.MustCompile(`(?i)^\\\\\.\\pipe\\ride-[a-z0-9._-]{1,128}$`)
	validSIDPattern = regexp.MustCompile(`^S-1(-\d+)+$`)
)

// DefaultPipeName returns the per-user pipe path. RIDE_PIPE overrides it
// when it names a ride pipe.
func DefaultPipeName() string {
	if v := strings.TrimSpace(os.Getenv(pipeNameEnv)); v != "" {
		if pipeNamePattern.MatchString(v) {
			return v
		}
		slog.Warn("[ipc] RIDE_PIPE rejected: value does not match allowed pattern", "value", v)
	}
	return defaultPipePrefix + userutil.CurrentUsername()
}

// listenEndpoint creates a named pipe listener restricted to the current
// user. The DACL grants access only to SYSTEM and the user's SID.
func listenEndpoint(name string) (net.Listener, error) {
	securityDescriptor, err := pipeSecurityDescriptor()
	if err != nil {
		return nil, err
	}
	return winio.ListenPipe(name, &winio.PipeConfig{
		SecurityDescriptor: securityDescriptor,
		MessageMode:        false,
		InputBufferSize:    int32(maxRequestBytes),
		OutputBufferSize:   int32(maxResponseBytes),
	})
}

func dialEndpoint(name string, timeout time.Duration) (net.Conn, error) {
	return winio.DialPipe(name, &timeout)
}

func pipeSecurityDescriptor() (string, error) {
	current, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("resolve current user: %w", err)
	}
	sid := strings.TrimSpace(current.Uid)
	if sid == "" {
		return "", errors.New("current user SID is unavailable")
	}
	if !validSIDPattern.MatchString(sid) {
		return "", fmt.Errorf("current user SID has unexpected format: %s", sid)
	}
	// D:P protected DACL, full access for SYSTEM and the current user.
	return fmt.Sprintf("D:P(A;;GA;;;SY)(A;;GA;;;%s)", sid), nil
}
