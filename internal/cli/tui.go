package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/witview/pkg/errors"
	"github.com/matzehuels/witview/pkg/view"
)

// =============================================================================
// ViewBrowserModel - Interactive view mode switching
// =============================================================================

// viewBackend is what the browser drives.
type viewBackend interface {
	Rows() []modeRow
	Switch(view.Mode) error
	// Preview returns the rendered output of the installed view.
	Preview() string
}

// engineBackend adapts an engine to the browser.
type engineBackend struct {
	ctx context.Context
	e   *engine
}

func (b engineBackend) Rows() []modeRow { return modeRows(b.ctx, b.e.coord) }

func (b engineBackend) Switch(m view.Mode) error { return b.e.coord.SwitchViewMode(b.ctx, m) }

func (b engineBackend) Preview() string { return string(b.e.recorder.Last()) }

// switchedMsg reports the end of a switch started by the browser.
type switchedMsg struct {
	mode view.Mode
	err  error
}

// ViewBrowserModel is the bubbletea model for interactive view switching.
type ViewBrowserModel struct {
	Rows      []modeRow
	Cursor    int
	Switching bool
	Err       error
	Preview   string
	Height    int

	backend viewBackend
}

// newViewBrowserModel creates a browser with the cursor on the active mode.
func newViewBrowserModel(b viewBackend) ViewBrowserModel {
	m := ViewBrowserModel{backend: b, Height: 20}
	m.reload()
	for i, r := range m.Rows {
		if r.Active {
			m.Cursor = i
		}
	}
	return m
}

func (m *ViewBrowserModel) reload() {
	m.Rows = m.backend.Rows()
	m.Preview = m.backend.Preview()
}

func (m ViewBrowserModel) Init() tea.Cmd {
	return nil
}

func (m ViewBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
			}
		case "enter":
			if m.Switching || len(m.Rows) == 0 {
				return m, nil
			}
			row := m.Rows[m.Cursor]
			if !row.Available {
				m.Err = errors.New(errors.ErrCodeIncompatibleView, "%s does not apply to this diagram", row.Mode.Label)
				return m, nil
			}
			return m.startSwitch(row.Mode.ID)
		case "r":
			if m.Switching {
				return m, nil
			}
			return m.startSwitch(view.Default)
		}
	case switchedMsg:
		m.Switching = false
		m.Err = msg.err
		m.reload()
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 14
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ViewBrowserModel) startSwitch(target view.Mode) (tea.Model, tea.Cmd) {
	m.Switching = true
	m.Err = nil
	b := m.backend
	return m, func() tea.Msg {
		return switchedMsg{mode: target, err: b.Switch(target)}
	}
}

// current returns the active row's mode.
func (m ViewBrowserModel) current() view.Mode {
	for _, r := range m.Rows {
		if r.Active {
			return r.Mode.ID
		}
	}
	return view.Default
}

func (m ViewBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("witview"))
	b.WriteString("  ")
	b.WriteString(StyleHighlight.Render(string(m.current())))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ switch  r restore  q quit"))
	b.WriteString("\n")
	b.WriteString(modeTable(m.Rows, m.Cursor))
	b.WriteString("\n")

	switch {
	case m.Switching:
		b.WriteString(StyleDim.Render("switching..."))
	case m.Err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + errors.UserMessage(m.Err))
	}
	b.WriteString("\n\n")

	lines := strings.Split(strings.TrimRight(m.Preview, "\n"), "\n")
	if len(lines) > m.Height {
		more := len(lines) - m.Height
		lines = append(lines[:m.Height], StyleDim.Render(fmt.Sprintf("… %d more lines", more)))
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}
