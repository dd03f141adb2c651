package cli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yaklabco/gopatch/internal/cli"
)

func testBuildInfo() cli.BuildInfo {
	return cli.BuildInfo{
		Version: "test-version",
		Commit:  "test-commit",
		Date:    "test-date",
	}
}

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testBuildInfo())

	if cmd == nil {
		t.Fatal("NewRootCommand returned nil")
	}

	if cmd.Use != "gopatch" {
		t.Errorf("expected Use to be 'gopatch', got %q", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	if cmd.Long == "" {
		t.Error("expected Long description to be set")
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testBuildInfo())

	expectedSubcommands := []string{"apply", "init", "version"}

	for _, name := range expectedSubcommands {
		subCmd, _, err := cmd.Find([]string{name})
		if err != nil {
			t.Errorf("expected subcommand %q to exist, got error: %v", name, err)
			continue
		}

		if subCmd.Name() != name {
			t.Errorf("expected subcommand name %q, got %q", name, subCmd.Name())
		}
	}
}

func TestApplyCommandFlags(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testBuildInfo())
	applyCmd, _, err := cmd.Find([]string{"apply"})
	if err != nil {
		t.Fatalf("apply command not found: %v", err)
	}

	expectedFlags := []string{
		"strategy",
		"dry-run",
		"format",
		"jobs",
		"dir",
		"ignore",
		"reverse",
		"no-backups",
		"strict-race",
		"compact",
		"show-unchanged",
	}

	for _, flagName := range expectedFlags {
		flag := applyCmd.Flags().Lookup(flagName)
		if flag == nil {
			t.Errorf("expected flag %q to exist on apply command", flagName)
		}
	}
}

func TestGlobalFlags(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testBuildInfo())

	expectedFlags := []string{"debug", "config", "color"}

	for _, flagName := range expectedFlags {
		flag := cmd.PersistentFlags().Lookup(flagName)
		if flag == nil {
			t.Errorf("expected global flag %q to exist", flagName)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{
		Version: "1.2.3",
		Commit:  "abc123",
		Date:    "2024-01-01",
	})
	cmd.SetArgs([]string{"version"})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	err := cmd.Execute()
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	// Version command uses charmbracelet/log which writes to stdout directly,
	// so we just verify it doesn't error.
}

func TestApplyCommandAcceptsArbitraryArgs(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testBuildInfo())
	applyCmd, _, err := cmd.Find([]string{"apply"})
	if err != nil {
		t.Fatalf("apply command not found: %v", err)
	}

	// The apply command accepts arbitrary args (patch file paths).
	err = applyCmd.Args(applyCmd, []string{"fix.patch", "other.patch"})
	if err != nil {
		t.Errorf("apply command should accept arbitrary args, got error: %v", err)
	}
}

// isolateConfig points user-level config sources at an empty temp
// directory so host configuration cannot leak into the test.
func isolateConfig(t *testing.T) {
	t.Helper()
	empty := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(empty, "xdg"))
	t.Setenv("HOME", empty)
}

func TestApplyCommandFromStdin(t *testing.T) {
	isolateConfig(t)

	dir := t.TempDir()
	target := filepath.Join(dir, "main.go")
	if err := os.WriteFile(target, []byte("line 1\nline 2\nline 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	patchText := `--- a/main.go
+++ b/main.go
@@ -1,3 +1,3 @@
 line 1
-line 2
+line two
 line 3
`

	cmd := cli.NewRootCommand(testBuildInfo())
	cmd.SetArgs([]string{"apply", "--dir", dir, "--format", "json", "--no-backups"})
	cmd.SetIn(strings.NewReader(patchText))

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("apply command failed: %v\noutput: %s", err, out.String())
	}

	content, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "line 1\nline two\nline 3\n" {
		t.Errorf("unexpected target content: %q", string(content))
	}

	var output struct {
		Files []struct {
			Status string `json:"status"`
		} `json:"files"`
	}
	if err := json.Unmarshal(out.Bytes(), &output); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, out.String())
	}
	if len(output.Files) != 1 || output.Files[0].Status != "patched" {
		t.Errorf("unexpected JSON file results: %+v", output.Files)
	}
}

func TestApplyCommandDryRun(t *testing.T) {
	isolateConfig(t)

	dir := t.TempDir()
	target := filepath.Join(dir, "notes.txt")
	original := "alpha\nbeta\n"
	if err := os.WriteFile(target, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	patchText := `--- a/notes.txt
+++ b/notes.txt
@@ -1,2 +1,2 @@
 alpha
-beta
+gamma
`

	cmd := cli.NewRootCommand(testBuildInfo())
	cmd.SetArgs([]string{"apply", "--dir", dir, "--dry-run"})
	cmd.SetIn(strings.NewReader(patchText))

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("apply --dry-run failed: %v\noutput: %s", err, out.String())
	}

	content, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != original {
		t.Error("dry run must not modify the target file")
	}

	if !strings.Contains(out.String(), "would be patched") {
		t.Errorf("expected dry-run phrasing in output, got: %s", out.String())
	}
}

func TestApplyCommandReportsFailures(t *testing.T) {
	isolateConfig(t)

	dir := t.TempDir()

	// Target does not exist, so the patch cannot apply.
	patchText := `--- a/missing.txt
+++ b/missing.txt
@@ -1,1 +1,1 @@
-old
+new
`

	cmd := cli.NewRootCommand(testBuildInfo())
	cmd.SetArgs([]string{"apply", "--dir", dir})
	cmd.SetIn(strings.NewReader(patchText))

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	err := cmd.Execute()
	if !errors.Is(err, cli.ErrPatchFailures) {
		t.Fatalf("expected ErrPatchFailures, got %v", err)
	}
}

func TestInitCommand(t *testing.T) {
	isolateConfig(t)

	dir := t.TempDir()
	output := filepath.Join(dir, ".gopatch.yml")

	cmd := cli.NewRootCommand(testBuildInfo())
	cmd.SetArgs([]string{"init", "--output", output})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	content, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("expected config file to be written: %v", err)
	}
	if !strings.Contains(string(content), "strategy") {
		t.Errorf("template missing strategy key: %s", content)
	}

	// Second run without --force must refuse to overwrite.
	cmd = cli.NewRootCommand(testBuildInfo())
	cmd.SetArgs([]string{"init", "--output", output})
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	if err := cmd.Execute(); err == nil {
		t.Error("expected error when config file already exists")
	}

	// With --force it succeeds.
	cmd = cli.NewRootCommand(testBuildInfo())
	cmd.SetArgs([]string{"init", "--output", output, "--force"})
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	if err := cmd.Execute(); err != nil {
		t.Errorf("init --force failed: %v", err)
	}
}
