package installation

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func newInstall(t *testing.T, fs afero.Fs, dir string, files ...string) {
	t.Helper()
	for _, name := range files {
		if err := afero.WriteFile(fs, filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("setup %s: %v", name, err)
		}
	}
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{filepath.Join("/games", "osu!", "osu!.exe"), filepath.Join("/games", "osu!")},
		{filepath.Join("/games", "osu!") + string(filepath.Separator), filepath.Join("/games", "osu!")},
		{filepath.Join("/games", "osu!", "OSU!.EXE"), filepath.Join("/games", "osu!")},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := Flatten(tt.in); got != tt.want {
			t.Errorf("Flatten(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCheck(t *testing.T) {
	fs := afero.NewMemMapFs()
	newInstall(t, fs, "/stable", "osu!.exe", "OpenTK.dll")
	newInstall(t, fs, "/lazer", "osu!.exe")

	if dir, ok := Check(fs, "/stable"); !ok || dir != filepath.Clean("/stable") {
		t.Errorf("expected /stable to be valid, got %q %v", dir, ok)
	}
	if dir, ok := Check(fs, filepath.Join("/stable", "osu!.exe")); !ok || dir != filepath.Clean("/stable") {
		t.Errorf("expected executable path to flatten to /stable, got %q %v", dir, ok)
	}
	if _, ok := Check(fs, "/lazer"); ok {
		t.Error("install without OpenTK.dll must be rejected")
	}
	if _, ok := Check(fs, "/missing"); ok {
		t.Error("missing directory must be rejected")
	}
	if _, ok := Check(fs, ""); ok {
		t.Error("empty path must be rejected")
	}
}

func TestDetectPrefersRegistry(t *testing.T) {
	fs := afero.NewMemMapFs()
	newInstall(t, fs, "/registered", "osu!.exe", "OpenTK.dll")
	newInstall(t, fs, "/candidate", "osu!.exe", "OpenTK.dll")

	d := NewDetector(fs, "/candidate")
	d.registry = func() (string, error) { return filepath.Join("/registered", "osu!.exe"), nil }

	dir, ok := d.Detect()
	if !ok || dir != filepath.Clean("/registered") {
		t.Fatalf("expected registered install, got %q %v", dir, ok)
	}
}

func TestDetectFallsBackToCandidates(t *testing.T) {
	fs := afero.NewMemMapFs()
	newInstall(t, fs, "/candidate", "osu!.exe", "OpenTK.dll")

	d := NewDetector(fs, "", "/nothing", "/candidate")
	d.registry = func() (string, error) { return "", errors.New("no registry") }

	dir, ok := d.Detect()
	if !ok || dir != filepath.Clean("/candidate") {
		t.Fatalf("expected candidate install, got %q %v", dir, ok)
	}

	d.candidates = nil
	if _, ok := d.Detect(); ok {
		t.Fatal("expected detection to fail without candidates")
	}
}

func TestExecutableFromOpenCommand(t *testing.T) {
	got := executableFromOpenCommand(`"C:\Games\osu!\osu!.exe" "%1"`)
	if got != `C:\Games\osu!\osu!.exe` {
		t.Errorf("unexpected executable %q", got)
	}
	if got := executableFromOpenCommand("unquoted.exe %1"); got != "" {
		t.Errorf("expected empty result for unquoted command, got %q", got)
	}
}
