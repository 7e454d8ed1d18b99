package launcher

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type call struct {
	name string
	args []string
}

type recordingRunner struct {
	runs     []call
	starts   []call
	runErr   error
	runOut   []byte
	startErr error
	// running is how many pgrep polls still find the client.
	running int
}

var errNoMatch = errors.New("exit status 1")

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.runs = append(r.runs, call{name: name, args: args})
	if name == "pgrep" {
		if r.running > 0 {
			r.running--
			return []byte("4242\n"), nil
		}
		return nil, errNoMatch
	}
	return r.runOut, r.runErr
}

func (r *recordingRunner) commands() []string {
	var out []string
	for _, c := range r.runs {
		out = append(out, strings.Join(append([]string{c.name}, c.args...), " "))
	}
	return out
}

func newTestLauncher(runner *recordingRunner, goos string, prefix []string) *Launcher {
	l := New(runner, prefix, nil)
	l.goos = goos
	l.pollInterval = time.Millisecond
	return l
}

func (r *recordingRunner) Start(name string, args ...string) error {
	r.starts = append(r.starts, call{name: name, args: args})
	return r.startErr
}

func TestLaunchArgument(t *testing.T) {
	tests := map[string]string{
		"osu.ppy.sh":  "",
		"":            "",
		"akatsuki.pw": "akatsuki.gg",
		"akatsuki.gg": "akatsuki.gg",
		"ripple.moe":  "ripple.moe",
		"localhost":   "localhost",
	}
	for in, want := range tests {
		if got := LaunchArgument(in); got != want {
			t.Errorf("LaunchArgument(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRelaunchWindows(t *testing.T) {
	runner := &recordingRunner{}
	l := newTestLauncher(runner, "windows", []string{"wine"})

	if err := l.Relaunch(context.Background(), `C:\osu!\osu!.exe`, "akatsuki.pw"); err != nil {
		t.Fatalf("Relaunch: %v", err)
	}
	if len(runner.runs) != 1 || runner.runs[0].name != "powershell" {
		t.Fatalf("expected a powershell kill, got %+v", runner.runs)
	}
	if script := runner.runs[0].args[len(runner.runs[0].args)-1]; !strings.Contains(script, "Stop-Process") {
		t.Errorf("unexpected kill script %q", script)
	}
	want := []string{"/C", "start", "", `C:\osu!\osu!.exe`, "-devserver", "akatsuki.gg"}
	if len(runner.starts) != 1 || runner.starts[0].name != "cmd" || strings.Join(runner.starts[0].args, "|") != strings.Join(want, "|") {
		t.Errorf("unexpected start: %+v", runner.starts)
	}
}

func TestRelaunchWindowsKillFailure(t *testing.T) {
	runner := &recordingRunner{runErr: errors.New("exit status 1"), runOut: []byte("access denied\n")}
	l := newTestLauncher(runner, "windows", nil)

	err := l.Relaunch(context.Background(), `C:\osu!\osu!.exe`, "ripple.moe")
	if err == nil || !strings.Contains(err.Error(), "access denied") {
		t.Fatalf("expected kill failure with output, got %v", err)
	}
	if len(runner.starts) != 0 {
		t.Error("client must not start when the old one could not be stopped")
	}
}

func TestRelaunchWithPrefix(t *testing.T) {
	runner := &recordingRunner{runErr: errors.New("exit status 1")}
	l := newTestLauncher(runner, "linux", []string{"wine"})

	if err := l.Relaunch(context.Background(), "/games/osu/osu!.exe", "osu.ppy.sh"); err != nil {
		t.Fatalf("Relaunch: %v", err)
	}
	if len(runner.starts) != 1 {
		t.Fatalf("expected one start, got %+v", runner.starts)
	}
	got := runner.starts[0]
	if got.name != "wine" || strings.Join(got.args, "|") != "/games/osu/osu!.exe|-devserver|" {
		t.Errorf("unexpected command: %+v", got)
	}
}

func TestRelaunchWithoutPrefix(t *testing.T) {
	runner := &recordingRunner{}
	l := newTestLauncher(runner, "darwin", nil)

	if err := l.Relaunch(context.Background(), "/games/osu/osu!.exe", "ripple.moe"); err != nil {
		t.Fatalf("Relaunch: %v", err)
	}
	if runner.starts[0].name != "/games/osu/osu!.exe" {
		t.Errorf("expected the executable to run directly, got %+v", runner.starts[0])
	}
}

func TestRelaunchStartFailure(t *testing.T) {
	runner := &recordingRunner{startErr: errors.New("not found")}
	l := newTestLauncher(runner, "linux", []string{"wine"})

	if err := l.Relaunch(context.Background(), "/games/osu/osu!.exe", "ripple.moe"); err == nil {
		t.Fatal("expected start failure")
	}
}

func TestRelaunchKillsByNameAndWaitsForExit(t *testing.T) {
	runner := &recordingRunner{running: 2}
	l := newTestLauncher(runner, "linux", []string{"wine"})

	if err := l.Relaunch(context.Background(), "/games/osu!/osu!.exe", "ripple.moe"); err != nil {
		t.Fatalf("Relaunch: %v", err)
	}
	want := []string{
		"pkill -KILL -x osu!.exe",
		"pgrep -x osu!.exe",
		"pgrep -x osu!.exe",
		"pgrep -x osu!.exe",
	}
	if got := runner.commands(); strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("unexpected stop sequence:\n got %q\nwant %q", got, want)
	}
	for _, c := range runner.runs {
		for _, arg := range c.args {
			if arg == "-f" {
				t.Errorf("%s must not match full command lines: %v", c.name, c.args)
			}
		}
	}
	if len(runner.starts) != 1 {
		t.Errorf("expected the client to start after the old one exited, got %+v", runner.starts)
	}
}

func TestRelaunchGivesUpWhenClientKeepsRunning(t *testing.T) {
	runner := &recordingRunner{running: 1 << 30}
	l := newTestLauncher(runner, "linux", []string{"wine"})
	l.waitTimeout = 20 * time.Millisecond

	err := l.Relaunch(context.Background(), "/games/osu!/osu!.exe", "ripple.moe")
	if err == nil || !strings.Contains(err.Error(), "still running") {
		t.Fatalf("expected a still running error, got %v", err)
	}
	if len(runner.starts) != 0 {
		t.Error("client must not start while the old one is running")
	}
}

func TestRelaunchStopsWaitingWhenCancelled(t *testing.T) {
	runner := &recordingRunner{running: 1 << 30}
	l := newTestLauncher(runner, "linux", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Relaunch(ctx, "/games/osu!/osu!.exe", "ripple.moe")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(runner.starts) != 0 {
		t.Error("client must not start after cancellation")
	}
}
