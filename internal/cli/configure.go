package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/OpenGG/osu-switcher/internal/installation"
	"github.com/OpenGG/osu-switcher/internal/shortcut"
	"github.com/OpenGG/osu-switcher/internal/wizard"
)

func newConfigureCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Pick an installation and servers, then create desktop shortcuts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.configure(cmd.Context())
		},
	}
}

func (a *app) configure(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !a.deps.Interactive() {
		return errNotInteractive
	}

	fs := a.deps.Fs
	var candidates []string
	if a.cfg.InstallDir != "" {
		candidates = append(candidates, a.cfg.InstallDir)
	}
	detector := installation.NewDetector(fs, candidates...)
	w := wizard.New(shortcut.KnownServers(a.cfg.Servers...), wizard.Deps{
		Detect: detector.Detect,
		CheckInstall: func(path string) (string, bool) {
			return installation.Check(fs, path)
		},
	})

	creator, err := a.shortcutCreator()
	if err != nil {
		return err
	}
	model, err := a.deps.Wizard(ctx, w, creator.CreateAll)
	if err != nil {
		return err
	}
	if err := model.Err(); err != nil {
		return err
	}

	stdout := a.deps.Stdout
	final := model.Wizard()
	if _, done := final.State.(wizard.Finished); !done {
		fmt.Fprintln(stdout, "Setup cancelled.")
		return nil
	}
	for _, path := range model.Created() {
		fmt.Fprintf(stdout, "Created shortcut: %s\n", path)
	}
	a.remember(final)
	return nil
}

func (a *app) shortcutCreator() (*shortcut.Creator, error) {
	exe, err := a.deps.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate the switcher executable: %w", err)
	}
	dirs := a.deps.ShortcutDirs
	if dirs == nil {
		dirs = shortcut.DefaultDirs
	}
	desktop, root := dirs()
	return shortcut.New(shortcut.Options{
		Fs:          a.deps.Fs,
		Runner:      a.deps.Runner,
		DesktopDir:  desktop,
		InstallRoot: root,
		Executable:  exe,
		Logger:      a.logger,
	}), nil
}

// remember stores the chosen installation and any custom servers so the next
// run can skip typing them.
func (a *app) remember(w wizard.Wizard) {
	builtin := shortcut.KnownServers()
	changed := false
	if w.InstallDir != "" && w.InstallDir != a.cfg.InstallDir {
		a.cfg.InstallDir = w.InstallDir
		changed = true
	}
	for _, s := range w.Servers {
		if slices.Contains(builtin, s.Name) || slices.Contains(a.cfg.Servers, s.Name) {
			continue
		}
		a.cfg.Servers = append(a.cfg.Servers, s.Name)
		changed = true
	}
	if !changed {
		return
	}
	path, err := a.deps.Config.Save(a.cfg, a.cfgPath)
	if err != nil {
		a.logger.Warn("could not save config", "error", err)
		return
	}
	a.cfgPath = path
	a.logger.Debug("saved config", "path", path)
}
