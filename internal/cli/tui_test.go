package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/witview/pkg/errors"
	"github.com/matzehuels/witview/pkg/view"
)

// fakeBackend switches instantly; modes listed in unavailable are rejected
// by the rows it reports.
type fakeBackend struct {
	current     view.Mode
	unavailable map[view.Mode]bool
	switches    []view.Mode
	fail        error
}

func (b *fakeBackend) Rows() []modeRow {
	var rows []modeRow
	for _, m := range view.Modes() {
		rows = append(rows, modeRow{Mode: m, Available: !b.unavailable[m.ID], Active: m.ID == b.current})
	}
	return rows
}

func (b *fakeBackend) Switch(m view.Mode) error {
	b.switches = append(b.switches, m)
	if b.fail != nil {
		return b.fail
	}
	b.current = m
	return nil
}

func (b *fakeBackend) Preview() string { return "flowchart TB\n    " + string(b.current) }

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds a key and runs the resulting command, if any, back through
// the model.
func press(t *testing.T, m ViewBrowserModel, k string) ViewBrowserModel {
	t.Helper()
	next, cmd := m.Update(key(k))
	m = next.(ViewBrowserModel)
	if cmd != nil {
		if msg, ok := cmd().(switchedMsg); ok {
			next, _ = m.Update(msg)
			m = next.(ViewBrowserModel)
		}
	}
	return m
}

func TestBrowserStartsOnActiveMode(t *testing.T) {
	b := &fakeBackend{current: view.ModeUML}
	m := newViewBrowserModel(b)
	if got := m.Rows[m.Cursor].Mode.ID; got != view.ModeUML {
		t.Errorf("cursor on %s, want uml", got)
	}
	if !strings.Contains(m.Preview, "uml") {
		t.Errorf("preview = %q", m.Preview)
	}
}

func TestBrowserSwitchAndRestore(t *testing.T) {
	b := &fakeBackend{current: view.ModeComponent}
	m := newViewBrowserModel(b)

	m = press(t, m, "down")
	m = press(t, m, "enter")
	if b.current != view.ModeUML {
		t.Fatalf("switched to %s, want uml", b.current)
	}
	if m.Switching || m.Err != nil {
		t.Errorf("after switch: switching=%v err=%v", m.Switching, m.Err)
	}
	if m.current() != view.ModeUML || !strings.Contains(m.Preview, "uml") {
		t.Errorf("model not refreshed: current=%s preview=%q", m.current(), m.Preview)
	}

	m = press(t, m, "r")
	if b.current != view.Default || m.current() != view.Default {
		t.Errorf("restore left %s", b.current)
	}
}

func TestBrowserRejectsUnavailableMode(t *testing.T) {
	b := &fakeBackend{current: view.ModeComponent, unavailable: map[view.Mode]bool{view.ModeUML: true}}
	m := newViewBrowserModel(b)

	m = press(t, m, "j")
	m = press(t, m, "enter")
	if len(b.switches) != 0 {
		t.Errorf("backend switched to %v", b.switches)
	}
	if !errors.Is(m.Err, errors.ErrCodeIncompatibleView) {
		t.Errorf("err = %v", m.Err)
	}
	if !strings.Contains(m.View(), "does not apply") {
		t.Error("view should show the rejection")
	}
}

func TestBrowserShowsSwitchFailure(t *testing.T) {
	b := &fakeBackend{current: view.ModeComponent, fail: errors.New(errors.ErrCodeTransformFailed, "boom")}
	m := newViewBrowserModel(b)

	m = press(t, m, "down")
	m = press(t, m, "enter")
	if !errors.Is(m.Err, errors.ErrCodeTransformFailed) {
		t.Fatalf("err = %v", m.Err)
	}
	if m.current() != view.ModeComponent {
		t.Errorf("failed switch moved the model to %s", m.current())
	}
	if !strings.Contains(m.View(), "boom") {
		t.Error("view should show the failure message")
	}
}

func TestBrowserCursorBounds(t *testing.T) {
	m := newViewBrowserModel(&fakeBackend{current: view.ModeComponent})
	m = press(t, m, "up")
	if m.Cursor != 0 {
		t.Errorf("cursor = %d after up at top", m.Cursor)
	}
	for range 10 {
		m = press(t, m, "down")
	}
	if m.Cursor != len(m.Rows)-1 {
		t.Errorf("cursor = %d, want last row", m.Cursor)
	}
}

func TestBrowserQuit(t *testing.T) {
	m := newViewBrowserModel(&fakeBackend{current: view.ModeComponent})
	for _, k := range []string{"q", "esc"} {
		_, cmd := m.Update(key(k))
		if cmd == nil {
			t.Fatalf("%s: no command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s did not quit", k)
		}
	}
}

func TestBrowserPreviewTruncated(t *testing.T) {
	m := newViewBrowserModel(&fakeBackend{current: view.ModeComponent})
	m.Preview = strings.Repeat("line\n", 30)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	m = next.(ViewBrowserModel)
	if m.Height != 6 {
		t.Fatalf("height = %d, want 6", m.Height)
	}
	if !strings.Contains(m.View(), "24 more lines") {
		t.Error("long previews should be truncated")
	}
}

func TestModeTable(t *testing.T) {
	rows := (&fakeBackend{current: view.ModeUML, unavailable: map[view.Mode]bool{view.ModeWitInterface: true}}).Rows()
	out := modeTable(rows, -1)
	for _, m := range view.Modes() {
		if !strings.Contains(out, string(m.ID)) || !strings.Contains(out, m.Label) {
			t.Errorf("table missing %s", m.ID)
		}
	}
	if !strings.Contains(out, iconActive) {
		t.Error("active mode should be marked")
	}
}

func contains(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
