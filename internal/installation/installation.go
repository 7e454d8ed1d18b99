// Package installation locates and validates osu! stable installations.
package installation

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/OpenGG/osu-switcher/internal/switcher/paths"
)

// Flatten returns the parent directory when path names osu!.exe itself.
func Flatten(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return path
	}
	cleaned := filepath.Clean(path)
	if strings.EqualFold(filepath.Base(cleaned), paths.ExecutableName) {
		return filepath.Dir(cleaned)
	}
	return cleaned
}

// Check flattens dir and reports whether it holds both osu!.exe and
// OpenTK.dll. The companion library is absent from lazer installs.
func Check(fs afero.Fs, dir string) (string, bool) {
	dir = Flatten(dir)
	if dir == "" {
		return dir, false
	}
	pb := paths.New(dir)
	for _, required := range []string{pb.Executable(), pb.Library()} {
		ok, err := afero.Exists(fs, required)
		if err != nil || !ok {
			return dir, false
		}
	}
	return dir, true
}

// Detector finds an installation without user input.
type Detector struct {
	fs afero.Fs
	// registry returns the osu!.exe path registered as the .osz handler.
	registry   func() (string, error)
	candidates []string
}

// NewDetector creates a Detector that consults the OS file association first
// and then each candidate directory in order.
func NewDetector(fs afero.Fs, candidates ...string) *Detector {
	return &Detector{fs: fs, registry: registeredExecutable, candidates: candidates}
}

// Detect returns the first valid installation directory.
func (d *Detector) Detect() (string, bool) {
	if d.registry != nil {
		if exe, err := d.registry(); err == nil && exe != "" {
			if dir, ok := Check(d.fs, exe); ok {
				return dir, true
			}
		}
	}
	for _, candidate := range d.candidates {
		if candidate == "" {
			continue
		}
		if dir, ok := Check(d.fs, candidate); ok {
			return dir, true
		}
	}
	return "", false
}

// executableFromOpenCommand extracts the first quoted token of a shell open
// command such as `"C:\osu!\osu!.exe" "%1"`.
func executableFromOpenCommand(command string) string {
	parts := strings.Split(command, `"`)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
