package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Windows may hold the target open briefly (indexers, antivirus), so the
// final rename is retried with a linear backoff there.
const (
	renameAttempts   = 10
	renameRetryDelay = 10 * time.Millisecond
)

// readLimitedFile reads path, failing when it holds more than maxBytes.
func readLimitedFile(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	limited := &io.LimitedReader{R: f, N: maxBytes + 1}
	raw, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if limited.N == 0 {
		return nil, fmt.Errorf("%s is larger than %d bytes", filepath.Base(path), maxBytes)
	}
	return raw, nil
}

// atomicWrite replaces path with data so a reader never sees a partial file.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("save config: mkdir: %w", err)
	}
	tmpPath, err := writeTempFile(dir, data)
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	if err := renameWithRetry(tmpPath, path); err != nil {
		discardTempFile(tmpPath)
		return fmt.Errorf("save config: rename: %w", err)
	}
	return nil
}

// writeTempFile stores data in a synced, owner-only file next to the target.
func writeTempFile(dir string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, "."+configFileName+".tmp.*")
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	tmpPath := f.Name()

	writeErr := func() error {
		if err := f.Chmod(0o600); err != nil {
			return fmt.Errorf("chmod temp: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("write temp: %w", err)
		}
		if err := f.Sync(); err != nil {
			return fmt.Errorf("sync temp: %w", err)
		}
		return nil
	}()
	if closeErr := f.Close(); closeErr != nil && writeErr == nil {
		writeErr = fmt.Errorf("close temp: %w", closeErr)
	}
	if writeErr != nil {
		discardTempFile(tmpPath)
		return "", writeErr
	}
	return tmpPath, nil
}

func discardTempFile(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("[WARN-CONFIG] failed to remove temp file", "path", path, "error", err)
	}
}

func renameWithRetry(from, to string) error {
	err := os.Rename(from, to)
	if err == nil || runtime.GOOS != "windows" {
		return err
	}
	for attempt := 1; attempt < renameAttempts; attempt++ {
		time.Sleep(time.Duration(attempt) * renameRetryDelay)
		if err = os.Rename(from, to); err == nil {
			return nil
		}
	}
	return err
}
