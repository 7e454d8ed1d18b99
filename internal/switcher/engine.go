// Package switcher swaps the active osu! login between per-server identities.
//
// Two text stores take part in a swap: the client's per-user config holds the
// active identity, and the stash file archives identities for every other
// server. Stores are rewritten through temp files and renames so a crash never
// leaves a half-written file.
package switcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"
	"sort"
	"time"

	"github.com/spf13/afero"

	"github.com/OpenGG/osu-switcher/internal/installation"
	"github.com/OpenGG/osu-switcher/internal/switcher/backup"
	"github.com/OpenGG/osu-switcher/internal/switcher/database"
	"github.com/OpenGG/osu-switcher/internal/switcher/domain"
	"github.com/OpenGG/osu-switcher/internal/switcher/paths"
	"github.com/OpenGG/osu-switcher/internal/switcher/profile"
	"github.com/OpenGG/osu-switcher/internal/switcher/storage"
)

// Launcher restarts the client pointed at a server.
type Launcher interface {
	Relaunch(ctx context.Context, executable, server string) error
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(label string, defaultYes bool) (bool, error)
}

// OutcomeKind tells whether the client was relaunched.
type OutcomeKind int

const (
	Relaunched OutcomeKind = iota
	// DeferredToRepair means a pending client repair was left to run and the
	// relaunch was skipped.
	DeferredToRepair
)

func (k OutcomeKind) String() string {
	switch k {
	case Relaunched:
		return "relaunched"
	case DeferredToRepair:
		return "deferred to repair"
	default:
		return "unknown"
	}
}

// Outcome describes a completed switch.
type Outcome struct {
	Kind     OutcomeKind
	Server   string
	Previous string
	// Swapped is false when the target was already active or no per-user
	// config exists.
	Swapped       bool
	ManagedConfig bool
	// Warnings collects non-fatal failures such as a failed osu!.db edit.
	Warnings []error
}

// Options configures an Engine. Zero values pick production defaults.
type Options struct {
	Fs        afero.Fs
	Username  func() (string, error)
	Launcher  Launcher
	Confirmer Confirmer
	Logger    *slog.Logger
	// DisableBackups skips the snapshot taken before each swap.
	DisableBackups bool
	Now            func() time.Time
}

// Engine performs credential swaps for one installation.
type Engine struct {
	storage  *storage.Storage
	paths    *paths.PathBuilder
	backups  *backup.Service
	db       *database.Editor
	username func() (string, error)
	launcher Launcher
	confirm  Confirmer
	snapshot bool
	logger   *slog.Logger
}

// New validates installDir and creates an Engine for it. A path to osu!.exe
// is accepted and flattened to its directory.
func New(installDir string, opts Options) (*Engine, error) {
	if opts.Launcher == nil {
		return nil, errors.New("launcher cannot be nil")
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	dir, ok := installation.Check(fs, installDir)
	if !ok {
		return nil, fmt.Errorf("%w: %q does not contain %s and %s",
			domain.ErrInstallationNotFound, installDir, paths.ExecutableName, paths.CompanionLibrary)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	username := opts.Username
	if username == nil {
		username = currentUsername
	}

	stor := storage.New(fs)
	pb := paths.New(dir)
	backups := backup.New(stor, pb.BackupDir(), logger)
	if opts.Now != nil {
		backups.SetNow(opts.Now)
	}

	return &Engine{
		storage:  stor,
		paths:    pb,
		backups:  backups,
		db:       database.New(stor),
		username: username,
		launcher: opts.Launcher,
		confirm:  opts.Confirmer,
		snapshot: !opts.DisableBackups,
		logger:   logger,
	}, nil
}

// InstallDir returns the validated installation directory.
func (e *Engine) InstallDir() string {
	return e.paths.InstallDir()
}

// Switch makes server the active identity and relaunches the client.
//
// The outgoing identity is archived in the stash before the per-user config
// is rewritten, so a failed config write never loses credentials. The
// osu!.db player name is updated last and only produces a warning on failure.
func (e *Engine) Switch(ctx context.Context, server string) (Outcome, error) {
	target := domain.NormalizeServer(server)
	out := Outcome{Kind: Relaunched, Server: target}

	cfgPath, err := e.userConfigPath()
	if err != nil {
		return out, err
	}

	exists, err := e.storage.Exists(cfgPath)
	if err != nil {
		return out, fmt.Errorf("failed to inspect %s: %w", cfgPath, err)
	}
	if exists {
		out.ManagedConfig = true
		if err := e.swap(cfgPath, target, &out); err != nil {
			return out, err
		}
	} else {
		e.logger.Info("no per-user config, launching without switching accounts",
			"path", cfgPath, "server", target)
	}

	if err := e.clearAuthLog(); err != nil {
		out.Warnings = append(out.Warnings, err)
	}

	proceed, err := e.resolvePendingRepair(target)
	if err != nil {
		return out, err
	}
	if !proceed {
		out.Kind = DeferredToRepair
		return out, nil
	}

	exe := e.paths.Executable()
	if err := e.launcher.Relaunch(ctx, exe, target); err != nil {
		return out, fmt.Errorf("%w: %s: %w", domain.ErrRelaunchFailed, exe, err)
	}
	return out, nil
}

func (e *Engine) swap(cfgPath, target string, out *Outcome) error {
	stash, err := e.openStash()
	if err != nil {
		return err
	}
	active, err := profile.LoadActive(e.storage, cfgPath)
	if err != nil {
		return err
	}

	current := active.Server()
	out.Previous = current
	if current == target {
		e.logger.Info("server already active", "server", target)
		return nil
	}

	incoming, found := stash.Get(target)
	if !found {
		e.logger.Info("no stashed credentials for server", "server", target)
	}
	outgoing := active.Identity()

	if e.snapshot {
		if err := e.backups.Snapshot(cfgPath, stash.Path()); err != nil {
			return fmt.Errorf("failed to back up credential stores: %w", err)
		}
	}

	stash.Put(current, outgoing)
	if err := stash.Save(e.storage); err != nil {
		return err
	}
	active.Set(target, incoming)
	if err := active.Save(e.storage); err != nil {
		return err
	}
	out.Swapped = true
	e.logger.Info("switched credentials",
		"from", current,
		"to", target,
		"stash", stash.Path())

	if err := e.db.SetPlayerName(e.paths.Database(), incoming.Username); err != nil {
		e.logger.Warn("could not update player name", "path", e.paths.Database(), "error", err)
		out.Warnings = append(out.Warnings, err)
	}
	return nil
}

// openStash migrates the legacy stash file, creates an empty stash when none
// exists and loads it.
func (e *Engine) openStash() (*profile.Stash, error) {
	stashPath := e.paths.Stash()
	legacyPath := e.paths.LegacyStash()

	legacy, err := e.storage.Exists(legacyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", legacyPath, err)
	}
	if legacy {
		err := e.storage.RenameNoClobber(legacyPath, stashPath)
		switch {
		case err == nil:
			e.logger.Info("migrated legacy stash", "from", legacyPath, "to", stashPath)
		case errors.Is(err, storage.ErrDestinationExists):
			e.logger.Debug("legacy stash ignored, current stash exists", "path", legacyPath)
		default:
			return nil, fmt.Errorf("%w: migrate %s: %w", domain.ErrConfigWriteFailed, legacyPath, err)
		}
	}

	if err := e.storage.Touch(stashPath, profile.StashFileMode); err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", domain.ErrConfigWriteFailed, stashPath, err)
	}
	return profile.LoadStash(e.storage, stashPath)
}

func (e *Engine) clearAuthLog() error {
	path := e.paths.AuthLog()
	removed, err := e.storage.RemoveIfExists(path)
	if err != nil {
		e.logger.Warn("could not remove auth log", "path", path, "error", err)
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	if removed {
		e.logger.Debug("removed auth log", "path", path)
	}
	return nil
}

// resolvePendingRepair reports whether the relaunch should go ahead. A repair
// started by the client drops the -devserver argument, so the user chooses
// between cancelling it and letting it run.
func (e *Engine) resolvePendingRepair(server string) (bool, error) {
	marker := e.paths.RepairMarker()
	pending, err := e.storage.Exists(marker)
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", marker, err)
	}
	if !pending {
		return true, nil
	}
	if e.confirm == nil {
		e.logger.Info("pending repair left to run", "path", marker)
		return false, nil
	}

	label := fmt.Sprintf("osu! has a pending repair. Cancel it and launch on %s", server)
	launch, err := e.confirm.Confirm(label, true)
	if err != nil {
		return false, fmt.Errorf("repair prompt: %w", err)
	}
	if !launch {
		e.logger.Info("pending repair left to run", "path", marker)
		return false, nil
	}
	if _, err := e.storage.RemoveIfExists(marker); err != nil {
		return false, fmt.Errorf("failed to remove repair marker %s: %w", marker, err)
	}
	e.logger.Info("cancelled pending repair", "path", marker)
	return true, nil
}

func (e *Engine) userConfigPath() (string, error) {
	name, err := e.username()
	if err != nil {
		return "", fmt.Errorf("failed to resolve OS username: %w", err)
	}
	if paths.SanitizeUsername(name) == "" {
		return "", errors.New("OS username is empty")
	}
	return e.paths.UserConfig(name), nil
}

// ListEntry describes one server for the list command.
type ListEntry struct {
	Server     string
	Username   string
	Prefix     string
	Qualifiers []string
}

// List reports the active server and every stashed server in lexical order.
// Passwords are never exposed.
func (e *Engine) List() ([]ListEntry, error) {
	identities := make(map[string]domain.Identity)
	activeServer := ""

	cfgPath, err := e.userConfigPath()
	if err != nil {
		return nil, err
	}
	if ok, err := e.storage.Exists(cfgPath); err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", cfgPath, err)
	} else if ok {
		active, err := profile.LoadActive(e.storage, cfgPath)
		if err != nil {
			return nil, err
		}
		activeServer = active.Server()
		identities[activeServer] = active.Identity()
	}

	stashPath, err := e.readableStashPath()
	if err != nil {
		return nil, err
	}
	if stashPath != "" {
		stash, err := profile.LoadStash(e.storage, stashPath)
		if err != nil {
			return nil, err
		}
		for _, server := range stash.Servers() {
			if server == activeServer {
				continue
			}
			id, _ := stash.Get(server)
			identities[server] = id
		}
	}

	servers := make([]string, 0, len(identities))
	for server := range identities {
		servers = append(servers, server)
	}
	sort.Strings(servers)

	entries := make([]ListEntry, 0, len(servers))
	for _, server := range servers {
		id := identities[server]
		entry := ListEntry{Server: server, Username: id.Username, Prefix: " "}
		if server == activeServer {
			entry.Prefix = "*"
			entry.Qualifiers = append(entry.Qualifiers, "active")
		}
		if id.IsEmpty() {
			entry.Qualifiers = append(entry.Qualifiers, "no credentials")
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// readableStashPath returns the stash to read without migrating, or "" when
// neither the current nor the legacy file exists.
func (e *Engine) readableStashPath() (string, error) {
	for _, path := range []string{e.paths.Stash(), e.paths.LegacyStash()} {
		ok, err := e.storage.Exists(path)
		if err != nil {
			return "", fmt.Errorf("failed to inspect %s: %w", path, err)
		}
		if ok {
			return path, nil
		}
	}
	return "", nil
}

// PruneBackups removes swap snapshots older than olderThan.
func (e *Engine) PruneBackups(olderThan time.Duration) (int, error) {
	return e.backups.PruneBackups(olderThan)
}

// BackupDir returns where swap snapshots are kept.
func (e *Engine) BackupDir() string {
	return e.backups.BackupDir()
}

func currentUsername() (string, error) {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username, nil
	}
	for _, key := range []string{"USERNAME", "USER"} {
		if v := os.Getenv(key); v != "" {
			return v, nil
		}
	}
	return "", errors.New("no user information available")
}
