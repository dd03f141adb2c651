package runner_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yaklabco/gopatch/pkg/fsutil"
	"github.com/yaklabco/gopatch/pkg/patch"
	"github.com/yaklabco/gopatch/pkg/runner"
)

func mustParse(t *testing.T, text string) *patch.Patch {
	t.Helper()
	p, err := patch.Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return p
}

func writeTarget(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const simplePatch = `--- a/f.txt
+++ b/f.txt
@@ -1,3 +1,3 @@
 line 1
-line 2
+new line 2
 line 3
`

func TestPipeline_ProcessPatch_Strict(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeTarget(t, dir, "f.txt", "line 1\nline 2\nline 3\n")
	pt := mustParse(t, simplePatch)

	opts := runner.DefaultPipelineOptions()
	pipeline := runner.NewPipeline()

	result, err := pipeline.ProcessPatch(context.Background(), path, pt, opts)
	if err != nil {
		t.Fatalf("ProcessPatch() error = %v", err)
	}

	if !result.Written {
		t.Error("Written = false, want true")
	}
	if !result.Modified {
		t.Error("Modified = false, want true")
	}
	if result.FuzzyFallback {
		t.Error("FuzzyFallback = true for exact match")
	}
	if result.HunksApplied != 1 {
		t.Errorf("HunksApplied = %d, want 1", result.HunksApplied)
	}

	got, _ := os.ReadFile(path)
	want := "line 1\nnew line 2\nline 3\n"
	if string(got) != want {
		t.Errorf("patched content = %q, want %q", got, want)
	}

	// Backups are on by default; the original must survive.
	if !result.BackupCreated {
		t.Error("BackupCreated = false, want true")
	}
	backup, err := os.ReadFile(fsutil.BackupPath(path, fsutil.BackupModeSidecar))
	if err != nil {
		t.Fatalf("backup not readable: %v", err)
	}
	if string(backup) != "line 1\nline 2\nline 3\n" {
		t.Errorf("backup content = %q", backup)
	}
}

func TestPipeline_ProcessPatch_DryRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	original := "line 1\nline 2\nline 3\n"
	path := writeTarget(t, dir, "f.txt", original)
	pt := mustParse(t, simplePatch)

	opts := runner.DefaultPipelineOptions()
	opts.DryRun = true
	pipeline := runner.NewPipeline()

	result, err := pipeline.ProcessPatch(context.Background(), path, pt, opts)
	if err != nil {
		t.Fatalf("ProcessPatch() error = %v", err)
	}

	if result.Written {
		t.Error("Written = true in dry-run")
	}
	if !result.Modified {
		t.Error("Modified = false, want true")
	}
	if result.Diff == nil || !result.Diff.HasChanges() {
		t.Error("Diff missing in dry-run result")
	}

	got, _ := os.ReadFile(path)
	if string(got) != original {
		t.Errorf("file changed in dry-run: %q", got)
	}
}

func TestPipeline_ProcessPatch_FuzzyFallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// Two extra lines at the top shift the declared positions.
	path := writeTarget(t, dir, "f.txt", "extra\nextra\nline 1\nline 2\nline 3\n")
	pt := mustParse(t, simplePatch)

	opts := runner.DefaultPipelineOptions()
	pipeline := runner.NewPipeline()

	result, err := pipeline.ProcessPatch(context.Background(), path, pt, opts)
	if err != nil {
		t.Fatalf("ProcessPatch() error = %v", err)
	}

	if !result.FuzzyFallback {
		t.Error("FuzzyFallback = false, want true")
	}

	got, _ := os.ReadFile(path)
	want := "extra\nextra\nline 1\nnew line 2\nline 3\n"
	if string(got) != want {
		t.Errorf("patched content = %q, want %q", got, want)
	}
}

func TestPipeline_ProcessPatch_StrictStrategyFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeTarget(t, dir, "f.txt", "extra\nline 1\nline 2\nline 3\n")
	pt := mustParse(t, simplePatch)

	opts := runner.DefaultPipelineOptions()
	opts.Strategy = "strict"
	pipeline := runner.NewPipeline()

	_, err := pipeline.ProcessPatch(context.Background(), path, pt, opts)
	if !errors.Is(err, runner.ErrApplyFailure) {
		t.Errorf("error = %v, want ErrApplyFailure", err)
	}
}

func TestPipeline_ProcessPatch_NotFound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pt := mustParse(t, simplePatch)
	pipeline := runner.NewPipeline()

	_, err := pipeline.ProcessPatch(context.Background(),
		filepath.Join(dir, "missing.txt"), pt, runner.DefaultPipelineOptions())
	if !errors.Is(err, runner.ErrFileNotFound) {
		t.Errorf("error = %v, want ErrFileNotFound", err)
	}
}

func TestPipeline_ProcessPatch_BinaryRefused(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeTarget(t, dir, "f.bin", "line 1\x00line 2")
	pt := mustParse(t, simplePatch)
	pipeline := runner.NewPipeline()

	_, err := pipeline.ProcessPatch(context.Background(), path, pt,
		runner.DefaultPipelineOptions())
	if !errors.Is(err, runner.ErrBinaryFile) {
		t.Errorf("error = %v, want ErrBinaryFile", err)
	}
}

func TestPipeline_ProcessPatch_Create(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "new.txt")
	pt := mustParse(t, `--- /dev/null
+++ b/new.txt
@@ -0,0 +1,2 @@
+hello
+world
`)
	pipeline := runner.NewPipeline()

	result, err := pipeline.ProcessPatch(context.Background(), path, pt,
		runner.DefaultPipelineOptions())
	if err != nil {
		t.Fatalf("ProcessPatch() error = %v", err)
	}

	if !result.Created || !result.Written {
		t.Errorf("Created = %v, Written = %v, want both true", result.Created, result.Written)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("created file not readable: %v", err)
	}
	if string(got) != "hello\nworld\n" {
		t.Errorf("content = %q", got)
	}
}

func TestPipeline_ProcessPatch_CreateExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeTarget(t, dir, "new.txt", "already here\n")
	pt := mustParse(t, `--- /dev/null
+++ b/new.txt
@@ -0,0 +1,1 @@
+hello
`)
	pipeline := runner.NewPipeline()

	_, err := pipeline.ProcessPatch(context.Background(), path, pt,
		runner.DefaultPipelineOptions())
	if !errors.Is(err, runner.ErrTargetExists) {
		t.Errorf("error = %v, want ErrTargetExists", err)
	}
}

func TestPipeline_ProcessPatch_Delete(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeTarget(t, dir, "gone.txt", "a\nb\n")
	pt := mustParse(t, `--- a/gone.txt
+++ /dev/null
@@ -1,2 +0,0 @@
-a
-b
`)
	pipeline := runner.NewPipeline()

	result, err := pipeline.ProcessPatch(context.Background(), path, pt,
		runner.DefaultPipelineOptions())
	if err != nil {
		t.Fatalf("ProcessPatch() error = %v", err)
	}

	if !result.Deleted {
		t.Error("Deleted = false, want true")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("target still exists after deletion patch")
	}
	// The backup keeps the removed content recoverable.
	if !result.BackupCreated {
		t.Error("BackupCreated = false, want true")
	}
}

func TestPipeline_ProcessPatch_Ignored(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeTarget(t, dir, "f.txt", "line 1\nline 2\nline 3\n")
	pt := mustParse(t, simplePatch)

	opts := runner.DefaultPipelineOptions()
	opts.IgnoreGlobs = []string{"*.txt"}
	pipeline := runner.NewPipeline()

	result, err := pipeline.ProcessPatch(context.Background(), path, pt, opts)
	if err != nil {
		t.Fatalf("ProcessPatch() error = %v", err)
	}

	if !result.Skipped {
		t.Error("Skipped = false for ignored target")
	}
	got, _ := os.ReadFile(path)
	if string(got) != "line 1\nline 2\nline 3\n" {
		t.Error("ignored target was modified")
	}
}

func TestPipeline_ProcessPatch_NoBackup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeTarget(t, dir, "f.txt", "line 1\nline 2\nline 3\n")
	pt := mustParse(t, simplePatch)

	opts := runner.DefaultPipelineOptions()
	opts.Backup.Enabled = false
	pipeline := runner.NewPipeline()

	result, err := pipeline.ProcessPatch(context.Background(), path, pt, opts)
	if err != nil {
		t.Fatalf("ProcessPatch() error = %v", err)
	}

	if result.BackupCreated {
		t.Error("BackupCreated = true with backups disabled")
	}
	if fsutil.BackupExists(path, fsutil.BackupModeSidecar) {
		t.Error("backup file exists with backups disabled")
	}
}

func TestPipeline_ProcessPatch_EmptyPatchUnchanged(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeTarget(t, dir, "f.txt", "line 1\n")
	pt := mustParse(t, "--- a/f.txt\n+++ b/f.txt\n")

	pipeline := runner.NewPipeline()

	result, err := pipeline.ProcessPatch(context.Background(), path, pt,
		runner.DefaultPipelineOptions())
	if err != nil {
		t.Fatalf("ProcessPatch() error = %v", err)
	}

	if result.Modified || result.Written {
		t.Errorf("Modified = %v, Written = %v for empty patch", result.Modified, result.Written)
	}
}
