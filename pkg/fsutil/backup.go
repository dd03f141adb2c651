package fsutil

import (
	"context"
	"fmt"
	"os"
)

// BackupMode specifies how backups are stored.
type BackupMode string

const (
	// BackupModeSidecar stores backups alongside the original file
	// with a .gopatch.bak suffix.
	BackupModeSidecar BackupMode = "sidecar"

	// BackupModeNone disables backups.
	BackupModeNone BackupMode = "none"
)

// BackupSuffix is the suffix used for sidecar backup files.
const BackupSuffix = ".gopatch.bak"

// BackupConfig controls backup behavior.
type BackupConfig struct {
	// Enabled indicates whether backups should be created.
	Enabled bool

	// Mode specifies how backups are stored.
	Mode BackupMode
}

// DefaultBackupConfig returns the default backup settings: sidecar
// mode, enabled. Patching is destructive, so unlike a linter's fixes
// the original is kept unless the caller opts out.
func DefaultBackupConfig() BackupConfig {
	return BackupConfig{
		Enabled: true,
		Mode:    BackupModeSidecar,
	}
}

// BackupPath returns the backup path for the given file based on mode.
func BackupPath(path string, mode BackupMode) string {
	switch mode {
	case BackupModeNone:
		return ""
	default:
		return path + BackupSuffix
	}
}

// CreateBackup copies the file at path to its backup location if no
// backup exists yet. Returns true if a backup was created.
//
// Creation is idempotent: an existing backup is never overwritten, so
// repeated runs keep the pristine original.
func CreateBackup(ctx context.Context, path string, cfg BackupConfig) (bool, error) {
	if !cfg.Enabled || cfg.Mode == BackupModeNone {
		return false, nil
	}

	select {
	case <-ctx.Done():
		return false, fmt.Errorf("create backup: %w", ctx.Err())
	default:
	}

	backupPath := BackupPath(path, cfg.Mode)
	if backupPath == "" {
		return false, nil
	}

	if _, err := os.Stat(backupPath); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat backup path: %w", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Nothing to back up; the patch is creating this file.
			return false, nil
		}
		return false, fmt.Errorf("read original for backup: %w", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat original for backup: %w", err)
	}

	if err := WriteAtomic(ctx, backupPath, content, stat.Mode()); err != nil {
		return false, fmt.Errorf("write backup: %w", err)
	}
	return true, nil
}

// BackupExists checks if a backup file exists for the given path.
func BackupExists(path string, mode BackupMode) bool {
	backupPath := BackupPath(path, mode)
	if backupPath == "" {
		return false
	}
	_, err := os.Stat(backupPath)
	return err == nil
}
