package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/OpenGG/osu-switcher/internal/config"
	"github.com/OpenGG/osu-switcher/internal/launcher"
	"github.com/OpenGG/osu-switcher/internal/proc"
	"github.com/OpenGG/osu-switcher/internal/switcher"
	"github.com/OpenGG/osu-switcher/internal/switcher/domain"
	"github.com/OpenGG/osu-switcher/internal/tui"
	"github.com/OpenGG/osu-switcher/internal/wizard"
)

// WizardRunner drives the setup wizard until it exits.
type WizardRunner func(ctx context.Context, w wizard.Wizard, create tui.CreateFunc) (tui.Model, error)

// Deps are the collaborators the commands use. Zero values pick the
// production implementations.
type Deps struct {
	Fs       afero.Fs
	Prompter Prompter
	Stdout   io.Writer
	Stderr   io.Writer
	Config   *config.Loader
	Runner   proc.Runner
	// Interactive reports whether a user can answer prompts.
	Interactive func() bool
	Wizard      WizardRunner
	// Username returns the OS user whose osu! config is managed.
	Username func() (string, error)
	// Executable returns the path of the running switcher binary.
	Executable func() (string, error)
	// ShortcutDirs returns the desktop and the permanent install location.
	ShortcutDirs func() (desktop, installRoot string)
}

type app struct {
	deps    Deps
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	verbose bool
}

// NewRootCommand constructs the root Cobra command for osu-switcher.
func NewRootCommand(deps Deps) *cobra.Command {
	a := &app{deps: withDefaults(deps)}

	cmd := &cobra.Command{
		Use:           "osu-switcher",
		Short:         "osu!stable server and account switcher",
		Long:          "osu-switcher keeps one login per osu! server and swaps them when switching servers.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.configure(cmd.Context())
		},
	}

	cmd.SetOut(a.deps.Stdout)
	cmd.SetErr(a.deps.Stderr)
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newSwitchCommand(a))
	cmd.AddCommand(newConfigureCommand(a))
	cmd.AddCommand(newListCommand(a))
	cmd.AddCommand(newPruneCommand(a))

	return cmd
}

func withDefaults(d Deps) Deps {
	if d.Fs == nil {
		d.Fs = afero.NewOsFs()
	}
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
	if d.Prompter == nil {
		d.Prompter = NewPromptUIWithIO(nil, d.Stdout)
	}
	if d.Config == nil {
		d.Config = config.NewLoader(d.Fs)
	}
	if d.Runner == nil {
		d.Runner = proc.Exec{}
	}
	if d.Interactive == nil {
		d.Interactive = stdioIsTerminal
	}
	if d.Wizard == nil {
		d.Wizard = func(ctx context.Context, w wizard.Wizard, create tui.CreateFunc) (tui.Model, error) {
			return tui.Run(ctx, w, create)
		}
	}
	if d.Executable == nil {
		d.Executable = os.Executable
	}
	return d
}

func (a *app) setup() error {
	cfg, path, err := a.deps.Config.Load()
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if a.verbose {
		level = slog.LevelDebug
	}
	a.cfg = cfg
	a.cfgPath = path
	a.logger = slog.New(slog.NewTextHandler(a.deps.Stderr, &slog.HandlerOptions{Level: level}))
	if path != "" {
		a.logger.Debug("loaded config", "path", path)
	}
	return nil
}

func (a *app) installDir(flag string) (string, error) {
	if dir := strings.TrimSpace(flag); dir != "" {
		return dir, nil
	}
	if a.cfg.InstallDir != "" {
		return a.cfg.InstallDir, nil
	}
	return "", fmt.Errorf("%w: pass --osu or set install_dir in the config file", domain.ErrInstallationNotFound)
}

func (a *app) engine(installDir string) (*switcher.Engine, error) {
	return switcher.New(installDir, switcher.Options{
		Fs:             a.deps.Fs,
		Username:       a.deps.Username,
		Launcher:       launcher.New(a.deps.Runner, a.cfg.LaunchCommand, a.logger),
		Confirmer:      repairConfirmer{prompter: a.deps.Prompter, interactive: a.deps.Interactive},
		Logger:         a.logger,
		DisableBackups: !a.cfg.Backups.Enabled,
	})
}

func newSwitchCommand(a *app) *cobra.Command {
	var osuDir, server string

	cmd := &cobra.Command{
		Use:   "switch",
		Short: "Switch osu! to a server and relaunch it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.installDir(osuDir)
			if err != nil {
				return err
			}
			eng, err := a.engine(dir)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			target := domain.NormalizeServer(server)
			fmt.Fprintf(stdout, "Switching to '%s'\n", target)

			out, err := eng.Switch(cmd.Context(), target)
			for _, w := range out.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", w)
			}
			if err != nil {
				return err
			}

			switch {
			case !out.ManagedConfig:
				fmt.Fprintln(stdout, "No osu! user config found; accounts were not switched.")
			case out.Swapped:
				fmt.Fprintf(stdout, "Switched account from '%s' to '%s'\n", out.Previous, out.Server)
			default:
				fmt.Fprintf(stdout, "Already on '%s'\n", out.Server)
			}
			if out.Kind == switcher.DeferredToRepair {
				fmt.Fprintln(stdout, "osu! will repair itself; not relaunching.")
				return nil
			}
			fmt.Fprintln(stdout, "Launched osu!")
			return nil
		},
	}

	cmd.Flags().StringVar(&osuDir, "osu", "", "osu! installation directory")
	cmd.Flags().StringVar(&server, "server", "", "Server to switch to (default osu.ppy.sh)")
	return cmd
}

func newListCommand(a *app) *cobra.Command {
	var osuDir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List servers with stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.installDir(osuDir)
			if err != nil {
				return err
			}
			eng, err := a.engine(dir)
			if err != nil {
				return err
			}
			entries, err := eng.List()
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			for _, entry := range entries {
				qualifier := ""
				if len(entry.Qualifiers) > 0 {
					qualifier = " (" + strings.Join(entry.Qualifiers, ", ") + ")"
				}
				user := ""
				if entry.Username != "" {
					user = " " + entry.Username
				}
				fmt.Fprintf(stdout, "%s [%s]%s%s\n", entry.Prefix, entry.Server, user, qualifier)
			}
			if len(entries) == 0 {
				fmt.Fprintln(stdout, "No stored credentials found.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&osuDir, "osu", "", "osu! installation directory")
	return cmd
}

const (
	customRetention = "Custom..."
	cancelChoice    = "Cancel"
)

func newPruneCommand(a *app) *cobra.Command {
	var osuDir, olderThanStr string
	var force bool

	cmd := &cobra.Command{
		Use:   "prune-backups",
		Short: "Remove outdated swap snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			prompter := a.deps.Prompter

			dir, err := a.installDir(osuDir)
			if err != nil {
				return err
			}
			eng, err := a.engine(dir)
			if err != nil {
				return err
			}

			var duration time.Duration
			if olderThanStr != "" {
				duration, err = config.ParseRetentionInterval(olderThanStr)
				if err != nil {
					return err
				}
			} else {
				def := a.cfg.Backups.Retention
				options := reorderWithDefault(uniq([]string{"30d", "90d", "180d", def}), def)
				options = append(options, customRetention, cancelChoice)
				_, choice, err := prompter.Select("Prune backups older than", options, def)
				if err != nil {
					return err
				}
				switch choice {
				case cancelChoice:
					fmt.Fprintln(stdout, "Prune cancelled.")
					return nil
				case customRetention:
					if choice, err = prompter.Prompt("Retention (e.g. 45d or 12h)"); err != nil {
						return err
					}
				}
				duration, err = config.ParseRetentionInterval(choice)
				if err != nil {
					return err
				}
			}

			if !force {
				confirm, err := prompter.Confirm(fmt.Sprintf("Delete backups older than %s? (y/N)", duration), false)
				if err != nil {
					return err
				}
				if !confirm {
					fmt.Fprintln(stdout, "Prune cancelled.")
					return nil
				}
			}

			count, err := eng.PruneBackups(duration)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Deleted %d backup(s) from %s.\n", count, eng.BackupDir())
			return nil
		},
	}

	cmd.Flags().StringVar(&osuDir, "osu", "", "osu! installation directory")
	cmd.Flags().StringVar(&olderThanStr, "older-than", "", "Delete backups older than the specified duration (e.g. 30d)")
	cmd.Flags().BoolVar(&force, "force", false, "Do not prompt for confirmation")
	return cmd
}

func uniq(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0:0]
	for _, item := range items {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

// reorderWithDefault moves the default value to the front of the list.
// If defaultValue is empty or not found, or already first, returns items unchanged.
func reorderWithDefault(items []string, defaultValue string) []string {
	if defaultValue == "" {
		return items
	}

	idx := -1
	for i, item := range items {
		if item == defaultValue {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return items
	}

	reordered := make([]string, 0, len(items))
	reordered = append(reordered, defaultValue)
	reordered = append(reordered, items[:idx]...)
	reordered = append(reordered, items[idx+1:]...)
	return reordered
}
