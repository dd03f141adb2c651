package fsutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileMode is the permission mode for newly created files.
const DefaultFileMode os.FileMode = 0644

// WriteAtomic writes content to path through a temp file and rename,
// so the target is never observed half-written. If mode is 0,
// DefaultFileMode is used. On error the temp file is removed and the
// original file is left untouched.
func WriteAtomic(ctx context.Context, path string, content []byte, mode os.FileMode) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("write atomic: %w", ctx.Err())
	default:
	}

	if mode == 0 {
		mode = DefaultFileMode
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	// The temp file must live in the same directory for the rename to
	// be atomic.
	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}

// WriteAtomicIfChanged writes content to path atomically only when it
// differs from the file's current content. Returns true if the file
// was written.
func WriteAtomicIfChanged(ctx context.Context, path string, content []byte, mode os.FileMode) (bool, error) {
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("write atomic: %w", ctx.Err())
	default:
	}

	existing, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := WriteAtomic(ctx, path, content, mode); err != nil {
				return false, err
			}
			return true, nil
		}
		return false, fmt.Errorf("read existing: %w", err)
	}

	if bytes.Equal(existing, content) {
		return false, nil
	}

	if err := WriteAtomic(ctx, path, content, mode); err != nil {
		return false, err
	}
	return true, nil
}
