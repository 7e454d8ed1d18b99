// Package wizard is the interactive flow that collects an osu! install
// directory and the servers to create shortcuts for.
//
// Transitions are pure: Update returns a new Wizard and an optional Effect and
// never touches the terminal or the filesystem. Renderers and scripted
// callers drive the same machine.
package wizard

import (
	"slices"

	"github.com/OpenGG/osu-switcher/internal/switcher/validator"
)

// ServerEntry is one row of the server list.
type ServerEntry struct {
	Name    string
	Enabled bool
}

// Deps are the external queries the wizard needs.
type Deps struct {
	// Detect returns an automatically found installation.
	Detect func() (string, bool)
	// CheckInstall validates a typed path and returns the normalized
	// installation directory.
	CheckInstall func(path string) (string, bool)
}

// Wizard holds the current state and the data collected so far.
type Wizard struct {
	State      State
	InstallDir string
	Servers    []ServerEntry

	deps      Deps
	validator *validator.Validator
}

// New creates a wizard in the Started state. Every server starts disabled.
func New(servers []string, deps Deps) Wizard {
	entries := make([]ServerEntry, 0, len(servers))
	for _, s := range servers {
		entries = append(entries, ServerEntry{Name: s})
	}
	return Wizard{
		State:     Started{},
		Servers:   entries,
		deps:      deps,
		validator: validator.New(),
	}
}

// Init resolves Started through installation detection.
func (w Wizard) Init() Wizard {
	if _, ok := w.State.(Started); !ok {
		return w
	}
	if w.deps.Detect != nil {
		if dir, ok := w.deps.Detect(); ok {
			w.State = SelectingInstallDirectory{Cursor: ChoiceDetected, DetectedPath: dir}
			return w
		}
	}
	w.State = EnteringInstallDirectory{}
	return w
}

// Enabled returns the names of enabled servers in list order.
func (w Wizard) Enabled() []string {
	var names []string
	for _, s := range w.Servers {
		if s.Enabled {
			names = append(names, s.Name)
		}
	}
	return names
}

// Update applies ev and returns the next wizard and the effect to run, if any.
func (w Wizard) Update(ev Event) (Wizard, Effect) {
	if ev.Kind == KeyInterrupt {
		return w, Quit{}
	}

	switch st := w.State.(type) {
	case Started:
		return w.Init(), nil
	case Finished:
		return w, Quit{}
	case SelectingInstallDirectory:
		return w.updateInstallChoice(st, ev), nil
	case EnteringInstallDirectory:
		return w.updateInstallInput(st, ev), nil
	case SelectingServers:
		return w.updateServerList(st, ev)
	case EnteringServer:
		return w.updateServerInput(st, ev), nil
	}
	return w, nil
}

func (w Wizard) updateInstallChoice(st SelectingInstallDirectory, ev Event) Wizard {
	if ev.Kind == KeyEnter {
		if st.Cursor == ChoiceDetected {
			w.InstallDir = st.DetectedPath
			w.State = SelectingServers{}
		} else {
			w.State = EnteringInstallDirectory{}
		}
		return w
	}
	st.Cursor = moveCursor(st.Cursor, 2, ev.Kind)
	w.State = st
	return w
}

func (w Wizard) updateInstallInput(st EnteringInstallDirectory, ev Event) Wizard {
	if ev.Kind == KeyEnter {
		dir, ok := "", false
		if w.deps.CheckInstall != nil {
			dir, ok = w.deps.CheckInstall(st.Input.Text())
		}
		if !ok {
			st.Invalid = true
			w.State = st
			return w
		}
		w.InstallDir = dir
		w.State = SelectingServers{}
		return w
	}
	st.Input = edit(st.Input, ev)
	w.State = st
	return w
}

func (w Wizard) updateServerList(st SelectingServers, ev Event) (Wizard, Effect) {
	custom := len(w.Servers)

	switch ev.Kind {
	case KeyEnter:
		if st.Cursor == custom {
			w.State = EnteringServer{}
			return w, nil
		}
		w.State = Finished{}
		return w, CreateShortcuts{InstallDir: w.InstallDir, Servers: w.Enabled()}
	case KeySpace:
		if st.Cursor < custom {
			w.Servers = slices.Clone(w.Servers)
			w.Servers[st.Cursor].Enabled = !w.Servers[st.Cursor].Enabled
		}
		return w, nil
	}

	st.Cursor = moveCursor(st.Cursor, custom+1, ev.Kind)
	w.State = st
	return w, nil
}

func (w Wizard) updateServerInput(st EnteringServer, ev Event) Wizard {
	if ev.Kind != KeyEnter {
		st.Input = edit(st.Input, ev)
		w.State = st
		return w
	}

	name, err := w.validator.NormalizeServer(st.Input.Text())
	if err != nil {
		st.Invalid = true
		w.State = st
		return w
	}

	w.Servers = slices.Clone(w.Servers)
	idx := slices.IndexFunc(w.Servers, func(s ServerEntry) bool { return s.Name == name })
	if idx < 0 {
		w.Servers = append(w.Servers, ServerEntry{Name: name, Enabled: true})
		idx = len(w.Servers) - 1
	} else {
		w.Servers[idx].Enabled = true
	}
	w.State = SelectingServers{Cursor: idx}
	return w
}

// moveCursor applies list navigation to a cursor over n items. Bounds
// saturate; there is no wraparound.
func moveCursor(cursor, n int, kind EventKind) int {
	switch kind {
	case KeyUp:
		cursor--
	case KeyDown:
		cursor++
	case KeyHome, KeyPageUp:
		cursor = 0
	case KeyEnd, KeyPageDown:
		cursor = n - 1
	}
	return max(0, min(cursor, n-1))
}

func edit(input TextInput, ev Event) TextInput {
	switch ev.Kind {
	case KeyRune:
		return input.Insert(ev.Rune)
	case KeySpace:
		return input.Insert(' ')
	case KeyBackspace:
		return input.Backspace()
	case KeyLeft:
		return input.Left()
	case KeyRight:
		return input.Right()
	case KeyHome:
		return input.Home()
	case KeyEnd:
		return input.End()
	}
	return input
}
