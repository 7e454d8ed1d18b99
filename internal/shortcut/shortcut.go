// Package shortcut creates desktop shortcuts that switch osu! to a server
// and launch it.
package shortcut

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/ini.v1"

	"github.com/OpenGG/osu-switcher/internal/proc"
	"github.com/OpenGG/osu-switcher/internal/switcher/domain"
	"github.com/OpenGG/osu-switcher/internal/switcher/paths"
	"github.com/OpenGG/osu-switcher/internal/switcher/storage"
)

const readme = "This is the permanent installation location of osu!switcher.\n" +
	"The executable in this directory is referenced by the osu! shortcuts on the desktop.\n" +
	"Deleting it breaks those shortcuts.\n"

// Options configures a Creator.
type Options struct {
	Fs     afero.Fs
	Runner proc.Runner
	// DesktopDir receives the shortcut files.
	DesktopDir string
	// InstallRoot is where the switcher copies itself so shortcuts outlive
	// the downloaded binary.
	InstallRoot string
	// Executable is the running switcher binary.
	Executable string
	Logger     *slog.Logger
}

// Creator writes shortcuts.
type Creator struct {
	storage     *storage.Storage
	runner      proc.Runner
	goos        string
	desktopDir  string
	installRoot string
	executable  string
	logger      *slog.Logger
}

// New creates a Creator for the current OS.
func New(opts Options) *Creator {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Creator{
		storage:     storage.New(fs),
		runner:      opts.Runner,
		goos:        runtime.GOOS,
		desktopDir:  opts.DesktopDir,
		installRoot: opts.InstallRoot,
		executable:  opts.Executable,
		logger:      logger,
	}
}

// Name is the display name of the shortcut for server.
func Name(server string) string {
	return fmt.Sprintf("osu! (%s)", domain.NormalizeServer(server))
}

// Arguments is the switcher command line a shortcut runs.
func Arguments(installDir, server string) string {
	return fmt.Sprintf(`switch --osu "%s" --server "%s"`, installDir, domain.NormalizeServer(server))
}

// Icon resolves the icon for server: icons/<server>.ico inside the
// installation when present, otherwise the client executable.
func (c *Creator) Icon(installDir, server string) string {
	pb := paths.New(installDir)
	server = domain.NormalizeServer(server)
	if server == domain.HomeServer {
		return pb.Executable()
	}
	icon := pb.Icon(server)
	if ok, err := c.storage.Exists(icon); err == nil && ok {
		return icon
	}
	return pb.Executable()
}

// Install copies the running binary into the install root, unless it already
// runs from there, and returns the path shortcuts should reference.
func (c *Creator) Install() (string, error) {
	if c.executable == "" {
		return "", fmt.Errorf("switcher executable path is unknown")
	}
	if c.installRoot == "" || within(c.installRoot, c.executable) {
		return c.executable, nil
	}

	target := filepath.Join(c.installRoot, c.binaryName())
	if err := c.storage.MkdirAll(c.installRoot); err != nil {
		return "", fmt.Errorf("failed to create install directory %s: %w", c.installRoot, err)
	}
	if err := c.storage.CopyFile(c.executable, target); err != nil {
		return "", fmt.Errorf("failed to install switcher to %s: %w", target, err)
	}
	if c.goos != "windows" {
		if err := c.storage.FileSystem().Chmod(target, 0o755); err != nil {
			return "", fmt.Errorf("failed to mark %s executable: %w", target, err)
		}
	}
	if err := c.storage.WriteFileAtomic(filepath.Join(c.installRoot, "README.txt"), []byte(readme)); err != nil {
		return "", fmt.Errorf("failed to write install readme: %w", err)
	}
	c.logger.Info("installed switcher", "path", target)
	return target, nil
}

// CreateAll installs the switcher and creates one shortcut per server. It
// returns the created shortcut paths.
func (c *Creator) CreateAll(ctx context.Context, installDir string, servers []string) ([]string, error) {
	exe, err := c.Install()
	if err != nil {
		return nil, err
	}
	created := make([]string, 0, len(servers))
	for _, server := range servers {
		path, err := c.Create(ctx, installDir, exe, server)
		if err != nil {
			return created, err
		}
		created = append(created, path)
	}
	return created, nil
}

// Create writes the shortcut for server, replacing an existing one.
func (c *Creator) Create(ctx context.Context, installDir, switcher, server string) (string, error) {
	if c.desktopDir == "" {
		return "", fmt.Errorf("desktop directory is unknown")
	}
	if ok, err := c.storage.Exists(c.desktopDir); err != nil || !ok {
		return "", fmt.Errorf("desktop directory %s does not exist", c.desktopDir)
	}

	server = domain.NormalizeServer(server)
	link := filepath.Join(c.desktopDir, Name(server)+c.extension())
	if _, err := c.storage.RemoveIfExists(link); err != nil {
		return "", fmt.Errorf("failed to delete old shortcut %s: %w", link, err)
	}

	icon := c.Icon(installDir, server)
	var err error
	if c.goos == "windows" {
		err = c.createLink(ctx, link, switcher, installDir, server, icon)
	} else {
		err = c.createDesktopEntry(link, switcher, installDir, server, icon)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create shortcut %s: %w", link, err)
	}
	c.logger.Info("created shortcut", "path", link, "server", server)
	return link, nil
}

func (c *Creator) createLink(ctx context.Context, link, switcher, installDir, server, icon string) error {
	if c.runner == nil {
		return fmt.Errorf("no process runner configured")
	}
	script := fmt.Sprintf(
		"$s = (New-Object -ComObject WScript.Shell).CreateShortcut(%s); "+
			"$s.TargetPath = %s; $s.Arguments = %s; $s.IconLocation = %s; "+
			"$s.WorkingDirectory = %s; $s.Save()",
		psQuote(link), psQuote(switcher), psQuote(Arguments(installDir, server)),
		psQuote(icon), psQuote(filepath.Dir(switcher)))
	out, err := c.runner.Run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (c *Creator) createDesktopEntry(link, switcher, installDir, server, icon string) error {
	file := ini.Empty(ini.LoadOptions{IgnoreInlineComment: true})
	sec, err := file.NewSection("Desktop Entry")
	if err != nil {
		return err
	}
	entries := [][2]string{
		{"Type", "Application"},
		{"Version", "1.0"},
		{"Name", Name(server)},
		{"Comment", "Switch osu! to " + server + " and launch it"},
		{"Exec", execQuote(switcher) + " " + Arguments(installDir, server)},
		{"Icon", icon},
		{"Terminal", "false"},
		{"Categories", "Game;"},
	}
	for _, kv := range entries {
		if _, err := sec.NewKey(kv[0], kv[1]); err != nil {
			return err
		}
	}

	err = c.storage.WriteAtomic(link, func(w io.Writer) error {
		_, err := file.WriteTo(w)
		return err
	})
	if err != nil {
		return err
	}
	// Desktop environments only run trusted, executable launchers.
	return c.storage.FileSystem().Chmod(link, 0o755)
}

func (c *Creator) extension() string {
	if c.goos == "windows" {
		return ".lnk"
	}
	return ".desktop"
}

func (c *Creator) binaryName() string {
	if c.goos == "windows" {
		return "osu!switcher.exe"
	}
	return "osu-switcher"
}

// DefaultDirs returns the desktop and install root for the current user.
func DefaultDirs() (desktop, installRoot string) {
	return defaultDirs(runtime.GOOS, os.Getenv)
}

func defaultDirs(goos string, getenv func(string) string) (string, string) {
	home := getenv("HOME")
	if goos == "windows" {
		home = getenv("USERPROFILE")
		var desktop, root string
		if home != "" {
			desktop = filepath.Join(home, "Desktop")
		}
		if local := getenv("LOCALAPPDATA"); local != "" {
			root = filepath.Join(local, "osu!switcher")
		}
		return desktop, root
	}

	desktop := getenv("XDG_DESKTOP_DIR")
	if desktop == "" && home != "" {
		desktop = filepath.Join(home, "Desktop")
	}
	data := getenv("XDG_DATA_HOME")
	if data == "" && home != "" {
		data = filepath.Join(home, ".local", "share")
	}
	root := ""
	if data != "" {
		root = filepath.Join(data, "osu-switcher")
	}
	return desktop, root
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// psQuote renders s as a single-quoted PowerShell literal.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

var execEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", "$", `\$`)

// execQuote quotes one argument of a desktop entry Exec line.
func execQuote(s string) string {
	return `"` + execEscaper.Replace(s) + `"`
}
