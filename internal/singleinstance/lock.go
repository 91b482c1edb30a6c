// Package singleinstance keeps one RIDE process per user. A later launch
// gets ErrAlreadyRunning and forwards its request over ipc instead.
package singleinstance

import "errors"

// ErrAlreadyRunning is returned by TryLock when another instance holds the lock.
var ErrAlreadyRunning = errors.New("another instance is already running")

var errEmptyLockName = errors.New("lock name is required")
