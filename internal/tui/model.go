// Package tui renders the setup wizard in a terminal with Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/OpenGG/osu-switcher/internal/wizard"
)

const banner = `osu!switcher
Switch osu!stable between servers and accounts without signing in again.

Press 'Ctrl+C' to exit at any time.`

// CreateFunc creates shortcuts for servers and returns their paths.
type CreateFunc func(ctx context.Context, installDir string, servers []string) ([]string, error)

type createdMsg struct {
	paths []string
	err   error
}

// Model adapts a wizard.Wizard to tea.Model.
type Model struct {
	ctx    context.Context
	wizard wizard.Wizard
	create CreateFunc

	busy    bool
	created []string
	err     error
	width   int
}

// New wraps w, resolving its initial state.
func New(ctx context.Context, w wizard.Wizard, create CreateFunc) Model {
	return Model{ctx: ctx, wizard: w.Init(), create: create}
}

// Wizard returns the current wizard.
func (m Model) Wizard() wizard.Wizard { return m.wizard }

// Created returns the shortcuts made once the wizard finished.
func (m Model) Created() []string { return m.created }

// Err returns the shortcut creation error, if any.
func (m Model) Err() error { return m.err }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case createdMsg:
		m.busy = false
		m.created = msg.paths
		m.err = msg.err
		return m, nil
	case tea.KeyMsg:
		for _, ev := range translate(msg) {
			if m.busy && ev.Kind != wizard.KeyInterrupt {
				continue
			}
			var effect wizard.Effect
			m.wizard, effect = m.wizard.Update(ev)
			if effect == nil {
				continue
			}
			cmd := m.run(effect)
			if cmd != nil {
				return m, cmd
			}
		}
	}
	return m, nil
}

func (m *Model) run(effect wizard.Effect) tea.Cmd {
	switch e := effect.(type) {
	case wizard.Quit:
		return tea.Quit
	case wizard.CreateShortcuts:
		m.busy = true
		ctx, create := m.ctx, m.create
		return func() tea.Msg {
			if create == nil {
				return createdMsg{err: fmt.Errorf("shortcut creation is not available")}
			}
			paths, err := create(ctx, e.InstallDir, e.Servers)
			return createdMsg{paths: paths, err: err}
		}
	}
	return nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(bannerStyle.Render(banner))
	b.WriteString("\n")

	switch st := m.wizard.State.(type) {
	case wizard.SelectingInstallDirectory:
		items := []string{detectedStyle.Render(st.DetectedPath), hintStyle.Render("Enter a custom osu! installation path...")}
		b.WriteString(m.box("osu! install directory", renderList(items, st.Cursor), false))
	case wizard.EnteringInstallDirectory:
		b.WriteString(m.textBox(`Enter osu! installation directory (eg. 'D:\osu!')`, st.Input, st.Invalid,
			"Invalid osu! installation! Please try again."))
	case wizard.SelectingServers:
		items := make([]string, 0, len(m.wizard.Servers)+1)
		for _, s := range m.wizard.Servers {
			if s.Enabled {
				items = append(items, enabledStyle.Render(s.Name))
			} else {
				items = append(items, disabledStyle.Render(s.Name))
			}
		}
		items = append(items, hintStyle.Render("Enter a custom osu! private server..."))
		b.WriteString(m.box("osu! servers (space to select, enter to continue)", renderList(items, st.Cursor), false))
	case wizard.EnteringServer:
		b.WriteString(m.textBox("Enter new osu! private server domain (eg. 'akatsuki.gg')", st.Input, st.Invalid,
			"Invalid domain! Please try again."))
	case wizard.Finished:
		b.WriteString(m.finished())
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) finished() string {
	switch {
	case m.busy:
		return hintStyle.Render("Creating shortcuts...")
	case m.err != nil:
		return errorStyle.Render("Failed to create shortcuts: "+m.err.Error()) + "\n" +
			hintStyle.Render("Press any key to exit...")
	}
	lines := []string{successStyle.Render("Created all shortcuts! Press any key to exit...")}
	for _, p := range m.created {
		lines = append(lines, disabledStyle.Render("  "+p))
	}
	return strings.Join(lines, "\n")
}

func (m Model) box(title, body string, invalid bool) string {
	style := boxStyle
	if invalid {
		style = invalidBoxStyle
	}
	if m.width > 8 {
		style = style.Width(m.width * 3 / 4)
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), style.Render(body))
}

func (m Model) textBox(title string, input wizard.TextInput, invalid bool, problem string) string {
	out := m.box(title, renderInput(input), invalid)
	if invalid {
		out += "\n" + errorStyle.Render(problem)
	}
	return out
}

func renderList(items []string, cursor int) string {
	lines := make([]string, len(items))
	for i, item := range items {
		if i == cursor {
			lines[i] = "> " + selectedStyle.Render(item)
		} else {
			lines[i] = "  " + item
		}
	}
	return strings.Join(lines, "\n")
}

func renderInput(input wizard.TextInput) string {
	runes := []rune(input.Text())
	at := input.Cursor()
	under := " "
	rest := ""
	if at < len(runes) {
		under = string(runes[at])
		rest = string(runes[at+1:])
	}
	return string(runes[:at]) + cursorStyle.Render(under) + rest
}

// Run drives the wizard on the terminal until it exits.
func Run(ctx context.Context, w wizard.Wizard, create CreateFunc, opts ...tea.ProgramOption) (Model, error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	final, err := tea.NewProgram(New(ctx, w, create), opts...).Run()
	if err != nil {
		return Model{}, fmt.Errorf("wizard failed: %w", err)
	}
	return final.(Model), nil
}
