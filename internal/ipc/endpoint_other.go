//go:build !windows

package ipc

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"ride/internal/userutil"
)

const (
	socketPrefix = "ride-"
	socketSuffix = ".sock"
	staleDial    = 500 * time.Millisecond
)

// DefaultPipeName returns the per-user socket path in the temp directory.
func DefaultPipeName() string {
	return filepath.Join(os.TempDir(), socketPrefix+userutil.CurrentUsername()+socketSuffix)
}

// listenEndpoint listens on a unix socket. A socket file left by a crashed
// instance is removed; one that still accepts connections is in use.
func listenEndpoint(name string) (net.Listener, error) {
	if conn, err := net.DialTimeout("unix", name, staleDial); err == nil {
		_ = conn.Close()
		return nil, fmt.Errorf("socket %s is in use", name)
	}
	if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}
	ln, err := net.Listen("unix", name)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(name, 0o600); err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("restrict socket: %w", err)
	}
	return ln, nil
}

func dialEndpoint(name string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("unix", name, timeout)
}
