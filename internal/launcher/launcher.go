// Package launcher stops a running osu! client and starts it again against a
// chosen server.
package launcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/OpenGG/osu-switcher/internal/proc"
	"github.com/OpenGG/osu-switcher/internal/switcher/domain"
)

// Stops every osu! process and waits for it to exit. Exits cleanly when none runs.
const killScript = "$p = Get-Process -Name osu! -ErrorAction SilentlyContinue; " +
	"if (!$p) { Exit 0; }; " +
	"Stop-Process -Force -InputObject $p -ErrorAction Stop; " +
	"Wait-Process -InputObject $p"

// processName is matched exactly against process names, never against
// command lines, so the switcher's own "--osu .../osu!.exe" is not hit.
const processName = "osu!.exe"

const (
	defaultPollInterval = 100 * time.Millisecond
	defaultWaitTimeout  = 10 * time.Second
)

// serverAliases maps retired server domains to their replacements.
var serverAliases = map[string]string{
	"akatsuki.pw": "akatsuki.gg",
}

// LaunchArgument returns the -devserver value for server. The home server is
// passed as an empty argument.
func LaunchArgument(server string) string {
	server = domain.NormalizeServer(server)
	if alias, ok := serverAliases[server]; ok {
		server = alias
	}
	return domain.EndpointValue(server)
}

// Launcher restarts the client.
type Launcher struct {
	runner proc.Runner
	goos   string
	// prefix is prepended to the client command line outside Windows, e.g. wine.
	prefix []string
	logger *slog.Logger

	pollInterval time.Duration
	waitTimeout  time.Duration
}

// New creates a Launcher. prefix is ignored on Windows.
func New(runner proc.Runner, prefix []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Launcher{
		runner: runner,
		goos:   runtime.GOOS,
		prefix: prefix,
		logger: logger,

		pollInterval: defaultPollInterval,
		waitTimeout:  defaultWaitTimeout,
	}
}

// Relaunch force-stops the client and starts executable with -devserver.
func (l *Launcher) Relaunch(ctx context.Context, executable, server string) error {
	arg := LaunchArgument(server)

	if err := l.stop(ctx); err != nil {
		return err
	}

	name, args := l.command(executable, arg)
	l.logger.Info("starting osu!", "command", name, "args", strings.Join(args, " "))
	if err := l.runner.Start(name, args...); err != nil {
		return fmt.Errorf("failed to start osu!: %w", err)
	}
	return nil
}

func (l *Launcher) stop(ctx context.Context) error {
	if l.goos == "windows" {
		out, err := l.runner.Run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", killScript)
		if err != nil {
			return fmt.Errorf("failed to stop running osu!: %w: %s", err, strings.TrimSpace(string(out)))
		}
		return nil
	}
	// pkill exits non-zero when nothing matched.
	if _, err := l.runner.Run(ctx, "pkill", "-KILL", "-x", processName); err != nil {
		l.logger.Debug("no running osu! stopped", "error", err)
	}
	return l.waitExit(ctx)
}

// waitExit polls pgrep until no client process is left. pgrep exits non-zero
// once nothing matches.
func (l *Launcher) waitExit(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, l.waitTimeout)
	defer cancel()

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("failed to stop running osu!: still running: %w", err)
		}
		if _, err := l.runner.Run(ctx, "pgrep", "-x", processName); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("failed to stop running osu!: still running: %w", ctxErr)
			}
			return nil
		}
		select {
		case <-ctx.Done():
		case <-time.After(l.pollInterval):
		}
	}
}

func (l *Launcher) command(executable, arg string) (string, []string) {
	if l.goos == "windows" {
		// The empty string is start's window title.
		return "cmd", []string{"/C", "start", "", executable, "-devserver", arg}
	}
	argv := append(append([]string{}, l.prefix...), executable, "-devserver", arg)
	return argv[0], argv[1:]
}
