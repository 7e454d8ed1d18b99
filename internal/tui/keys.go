package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/OpenGG/osu-switcher/internal/wizard"
)

type binding struct {
	key.Binding
	kind wizard.EventKind
}

// bindings are checked in order. Printable runes that match none of them are
// sent to the wizard as text.
var bindings = []binding{
	{key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "exit")), wizard.KeyInterrupt},
	{key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")), wizard.KeyEnter},
	{key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle")), wizard.KeySpace},
	{key.NewBinding(key.WithKeys("backspace")), wizard.KeyBackspace},
	{key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")), wizard.KeyUp},
	{key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")), wizard.KeyDown},
	{key.NewBinding(key.WithKeys("left")), wizard.KeyLeft},
	{key.NewBinding(key.WithKeys("right")), wizard.KeyRight},
	{key.NewBinding(key.WithKeys("home")), wizard.KeyHome},
	{key.NewBinding(key.WithKeys("end")), wizard.KeyEnd},
	{key.NewBinding(key.WithKeys("pgup")), wizard.KeyPageUp},
	{key.NewBinding(key.WithKeys("pgdown")), wizard.KeyPageDown},
}

// translate maps a key press to wizard events. Pasted text arrives as one
// message carrying several runes.
func translate(msg tea.KeyMsg) []wizard.Event {
	for _, b := range bindings {
		if key.Matches(msg, b.Binding) {
			return []wizard.Event{wizard.Key(b.kind)}
		}
	}
	if msg.Type != tea.KeyRunes {
		return nil
	}
	events := make([]wizard.Event, 0, len(msg.Runes))
	for _, r := range msg.Runes {
		if r == ' ' {
			events = append(events, wizard.Key(wizard.KeySpace))
			continue
		}
		events = append(events, wizard.Rune(r))
	}
	return events
}
