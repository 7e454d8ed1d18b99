package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("OSU_SWITCHER_CONFIG", filepath.Join(dir, "missing.yaml"))
	t.Setenv("OSU_SWITCHER_DIR", "")
	t.Setenv("OSU_SWITCHER_LOG_LEVEL", "")
}

func TestRunHelp(t *testing.T) {
	isolate(t)
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}

	if code := run([]string{"--help"}, stdout, stderr); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, stderr.String())
	}
	for _, name := range []string{"switch", "configure", "list", "prune-backups"} {
		if !strings.Contains(stdout.String(), name) {
			t.Errorf("help should list %s:\n%s", name, stdout.String())
		}
	}
}

func TestRunReportsErrors(t *testing.T) {
	isolate(t)
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}

	if code := run([]string{"switch", "--server", "ripple.moe"}, stdout, stderr); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.HasPrefix(stderr.String(), "Error: ") || !strings.Contains(stderr.String(), "--osu") {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
}

func TestMainExecutesWithoutExit(t *testing.T) {
	isolate(t)

	oldArgs := os.Args
	os.Args = []string{"osu-switcher", "--help"}
	defer func() { os.Args = oldArgs }()

	called := false
	oldExit := exitFunc
	exitFunc = func(code int) { called = true }
	defer func() { exitFunc = oldExit }()

	main()

	if called {
		t.Fatalf("exit should not be invoked on successful execution")
	}
}
