package wizard

// State is one step of the wizard. The set of implementations is closed.
type State interface {
	state()
}

// Started is resolved by installation detection on the first transition.
type Started struct{}

// SelectingInstallDirectory offers the detected install or manual entry.
type SelectingInstallDirectory struct {
	Cursor       int
	DetectedPath string
}

// EnteringInstallDirectory collects an install path typed by the user.
type EnteringInstallDirectory struct {
	Input   TextInput
	Invalid bool
}

// SelectingServers is a multi-select over Wizard.Servers followed by one
// trailing "enter custom server" item.
type SelectingServers struct {
	Cursor int
}

// EnteringServer collects a custom server id.
type EnteringServer struct {
	Input   TextInput
	Invalid bool
}

// Finished is terminal. Any further input quits.
type Finished struct{}

func (Started) state()                   {}
func (SelectingInstallDirectory) state() {}
func (EnteringInstallDirectory) state()  {}
func (SelectingServers) state()          {}
func (EnteringServer) state()            {}
func (Finished) state()                  {}

// Install directory choices.
const (
	ChoiceDetected = 0
	ChoiceManual   = 1
)

// Effect is work the caller performs after a transition.
type Effect interface {
	effect()
}

// Quit asks the caller to stop the wizard.
type Quit struct{}

// CreateShortcuts asks the caller to create one shortcut per server.
type CreateShortcuts struct {
	InstallDir string
	Servers    []string
}

func (Quit) effect()            {}
func (CreateShortcuts) effect() {}

// EventKind enumerates wizard inputs.
type EventKind int

const (
	KeyRune EventKind = iota
	KeyBackspace
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyEnter
	KeySpace
	KeyInterrupt
)

// Event is one input. Rune is set for KeyRune.
type Event struct {
	Kind EventKind
	Rune rune
}

// Rune returns a KeyRune event for r.
func Rune(r rune) Event {
	return Event{Kind: KeyRune, Rune: r}
}

// Key returns an event without a rune.
func Key(kind EventKind) Event {
	return Event{Kind: kind}
}
