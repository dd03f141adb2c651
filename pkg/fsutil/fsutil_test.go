package fsutil_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yaklabco/gopatch/pkg/fsutil"
)

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	if err := fsutil.WriteAtomic(context.Background(), path, []byte("hello\n"), 0); err != nil {
		t.Fatalf("WriteAtomic() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "hello\n" {
		t.Errorf("content = %q, want %q", got, "hello\n")
	}

	// No temp files should remain.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("leftover entries in dir: %d, want 1", len(entries))
	}
}

func TestWriteAtomic_OverwritesExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(path, []byte("old"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := fsutil.WriteAtomic(context.Background(), path, []byte("new"), 0600); err != nil {
		t.Fatalf("WriteAtomic() error = %v", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "new" {
		t.Errorf("content = %q, want %q", got, "new")
	}
}

func TestWriteAtomicIfChanged(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	ctx := context.Background()

	written, err := fsutil.WriteAtomicIfChanged(ctx, path, []byte("v1"), 0)
	if err != nil {
		t.Fatalf("WriteAtomicIfChanged() error = %v", err)
	}
	if !written {
		t.Error("written = false for new file, want true")
	}

	written, err = fsutil.WriteAtomicIfChanged(ctx, path, []byte("v1"), 0)
	if err != nil {
		t.Fatalf("WriteAtomicIfChanged() error = %v", err)
	}
	if written {
		t.Error("written = true for identical content, want false")
	}

	written, err = fsutil.WriteAtomicIfChanged(ctx, path, []byte("v2"), 0)
	if err != nil {
		t.Fatalf("WriteAtomicIfChanged() error = %v", err)
	}
	if !written {
		t.Error("written = false for changed content, want true")
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatal(err)
	}

	content, info, err := fsutil.ReadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(content) != "content" {
		t.Errorf("content = %q", content)
	}
	if info.Path != path || info.Size != int64(len("content")) {
		t.Errorf("info = %+v", info)
	}
}

func TestReadFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, _, err := fsutil.ReadFile(context.Background(), filepath.Join(dir, "missing"))
	if !errors.Is(err, fsutil.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}

	_, _, err = fsutil.ReadFile(context.Background(), dir)
	if !errors.Is(err, fsutil.ErrIsDirectory) {
		t.Errorf("error = %v, want ErrIsDirectory", err)
	}
}

func TestCheckModified(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	_, info, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		t.Fatal(err)
	}

	modified, err := fsutil.CheckModified(ctx, info)
	if err != nil {
		t.Fatalf("CheckModified() error = %v", err)
	}
	if modified {
		t.Error("modified = true for untouched file")
	}

	// Same size, different content, and a forced mtime match to prove
	// the hash tier catches it.
	if err := os.WriteFile(path, []byte("b"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, time.Now(), info.ModTime); err != nil {
		t.Fatal(err)
	}

	modified, err = fsutil.CheckModified(ctx, info)
	if err != nil {
		t.Fatalf("CheckModified() error = %v", err)
	}
	if !modified {
		t.Error("modified = false after content change")
	}
}

func TestCheckModified_DeletedFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	_, info, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	modified, err := fsutil.CheckModified(ctx, info)
	if err != nil {
		t.Fatalf("CheckModified() error = %v", err)
	}
	if !modified {
		t.Error("modified = false for deleted file, want true")
	}
}

func TestCheckModified_NilInfo(t *testing.T) {
	t.Parallel()

	_, err := fsutil.CheckModified(context.Background(), nil)
	if !errors.Is(err, fsutil.ErrNilFileInfo) {
		t.Errorf("error = %v, want ErrNilFileInfo", err)
	}
}

func TestCreateBackup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte("original"), 0644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	cfg := fsutil.BackupConfig{Enabled: true, Mode: fsutil.BackupModeSidecar}

	created, err := fsutil.CreateBackup(ctx, path, cfg)
	if err != nil {
		t.Fatalf("CreateBackup() error = %v", err)
	}
	if !created {
		t.Error("created = false, want true")
	}

	backup := fsutil.BackupPath(path, cfg.Mode)
	got, err := os.ReadFile(backup)
	if err != nil {
		t.Fatalf("backup not readable: %v", err)
	}
	if string(got) != "original" {
		t.Errorf("backup content = %q", got)
	}

	// The original changes, but a second backup call must not clobber
	// the existing backup.
	if err := os.WriteFile(path, []byte("changed"), 0644); err != nil {
		t.Fatal(err)
	}
	created, err = fsutil.CreateBackup(ctx, path, cfg)
	if err != nil {
		t.Fatalf("CreateBackup() error = %v", err)
	}
	if created {
		t.Error("created = true on second call, want false")
	}
	got, _ = os.ReadFile(backup)
	if string(got) != "original" {
		t.Errorf("backup overwritten: %q", got)
	}
}

func TestCreateBackup_Disabled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	created, err := fsutil.CreateBackup(context.Background(), path,
		fsutil.BackupConfig{Enabled: false})
	if err != nil {
		t.Fatalf("CreateBackup() error = %v", err)
	}
	if created {
		t.Error("created = true with backups disabled")
	}
	if fsutil.BackupExists(path, fsutil.BackupModeSidecar) {
		t.Error("backup file exists with backups disabled")
	}
}

func TestBackupPath(t *testing.T) {
	t.Parallel()

	if got := fsutil.BackupPath("a/b.txt", fsutil.BackupModeSidecar); got != "a/b.txt"+fsutil.BackupSuffix {
		t.Errorf("BackupPath() = %q", got)
	}
	if got := fsutil.BackupPath("a/b.txt", fsutil.BackupModeNone); got != "" {
		t.Errorf("BackupPath() = %q, want empty for none mode", got)
	}
}
