//go:build windows

package singleinstance

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"

	"ride/internal/userutil"
)

// Lock holds a named mutex. The kernel releases it when the process exits.
type Lock struct {
	handle windows.Handle
}

// TryLock creates the named mutex name. An existing mutex of that name means
// another instance owns it.
func TryLock(name string) (*Lock, error) {
	if name == "" {
		return nil, errEmptyLockName
	}
	ptr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, fmt.Errorf("mutex name %q: %w", name, err)
	}
	h, err := windows.CreateMutex(nil, true, ptr)
	switch {
	case err == nil:
		return &Lock{handle: h}, nil
	case errors.Is(err, windows.ERROR_ALREADY_EXISTS):
		err = ErrAlreadyRunning
	default:
		err = fmt.Errorf("create mutex %q: %w", name, err)
	}
	if h != 0 {
		_ = windows.CloseHandle(h)
	}
	return nil, err
}

// Release closes the mutex handle. Safe on a nil receiver and idempotent.
func (l *Lock) Release() error {
	if l == nil || l.handle == 0 {
		return nil
	}
	err := windows.CloseHandle(l.handle)
	l.handle = 0
	return err
}

// DefaultLockName is the per-user mutex name.
func DefaultLockName() string {
	return `Global\ride-` + userutil.CurrentUsername()
}
