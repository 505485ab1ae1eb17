package dialog

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+w":
		return tea.KeyMsg{Type: tea.KeyCtrlW}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

// run executes cmd and any batch it expands to, collecting the messages.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func newRenderedManager(t *testing.T) *Manager {
	t.Helper()
	m := New()
	m.SetSize(100, 40)
	return m
}

func TestClose_RunsOnCloseOnce(t *testing.T) {
	t.Parallel()

	m := newRenderedManager(t)
	calls := 0
	m.Open("Edit", Text("body"), Options{OnClose: func() tea.Cmd { calls++; return nil }})

	m.Close()
	m.Close()
	if calls != 1 {
		t.Fatalf("onClose calls = %d, want 1", calls)
	}
	if m.IsOpen() {
		t.Fatal("dialog still open after Close")
	}
}

func TestDismissalTriggers_AllRouteThroughClose(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		dismiss func(m *Manager)
	}{
		{"escape", func(m *Manager) { m.Update(keyMsg("esc")) }},
		{"close control key", func(m *Manager) { m.Update(keyMsg("ctrl+w")) }},
		{"close control click", func(m *Manager) { m.Update(click(m.closeBtn.x+1, m.closeBtn.y)) }},
		{"backdrop click", func(m *Manager) { m.Update(click(0, 0)) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			m := newRenderedManager(t)
			calls := 0
			m.Open("Details", Text("hello"), Options{OnClose: func() tea.Cmd { calls++; return nil }})
			m.View()

			tc.dismiss(m)
			if m.IsOpen() {
				t.Fatal("dialog still open")
			}
			if calls != 1 {
				t.Fatalf("onClose calls = %d, want 1", calls)
			}
		})
	}
}

func TestClickInsidePanel_DoesNotClose(t *testing.T) {
	t.Parallel()

	m := newRenderedManager(t)
	m.Open("Details", Text("hello"), Options{})
	m.View()

	m.Update(click(m.panel.x+3, m.panel.y+3))
	if !m.IsOpen() {
		t.Fatal("click inside panel closed the dialog")
	}
}

func TestOpen_ReplacedSessionHandlersNeverFire(t *testing.T) {
	t.Parallel()

	m := newRenderedManager(t)
	first, second := 0, 0
	idA, _ := m.Open("A", Text("a"), Options{OnClose: func() tea.Cmd { first++; return nil }})
	idB, _ := m.Open("B", Text("b"), Options{OnClose: func() tea.Cmd { second++; return nil }})
	if idA == idB {
		t.Fatal("session ids reused")
	}
	if m.Title() != "B" {
		t.Fatalf("title = %q, want B", m.Title())
	}

	m.Update(keyMsg("esc"))
	if first != 0 {
		t.Fatalf("replaced session onClose fired %d times", first)
	}
	if second != 1 {
		t.Fatalf("live session onClose calls = %d, want 1", second)
	}

	// A stale close addressed to the first session must not close a later one.
	idC, _ := m.Open("C", Text("c"), Options{})
	m.Update(CloseMsg{Session: idA})
	if !m.IsLive(idC) {
		t.Fatal("stale CloseMsg closed the live session")
	}
	m.Update(CloseMsg{Session: idC})
	if m.IsOpen() {
		t.Fatal("CloseMsg for live session ignored")
	}
}

func TestRepeatedOpens_DoNotAccumulateHandlers(t *testing.T) {
	t.Parallel()

	m := newRenderedManager(t)
	calls := 0
	onClose := func() tea.Cmd { calls++; return nil }
	for i := 0; i < 5; i++ {
		m.Open("Same", Text("x"), Options{OnClose: onClose})
	}
	m.Update(keyMsg("esc"))
	m.Update(keyMsg("esc"))
	if calls != 1 {
		t.Fatalf("onClose calls = %d, want 1", calls)
	}
}

func TestUpdateContent_KeepsTitleAndBindings(t *testing.T) {
	t.Parallel()

	m := newRenderedManager(t)
	calls := 0
	m.Open("Calculate", Progress("Calculating..."), Options{Size: Large, OnClose: func() tea.Cmd { calls++; return nil }})
	if !m.Busy() {
		t.Fatal("progress body not reported busy")
	}

	m.UpdateContent(Text("Book value: $900.00"))
	if m.Title() != "Calculate" || m.Size() != Large {
		t.Fatalf("title/size changed: %q %v", m.Title(), m.Size())
	}
	if !strings.Contains(m.View(), "Book value: $900.00") {
		t.Fatal("new body not rendered")
	}
	m.Update(keyMsg("esc"))
	if calls != 1 {
		t.Fatalf("onClose calls = %d, want 1", calls)
	}
}

func TestUpdateContent_NoSessionIsNoop(t *testing.T) {
	t.Parallel()

	m := New()
	if cmd := m.UpdateContent(Text("x")); cmd != nil {
		t.Fatal("UpdateContent without session returned a command")
	}
	if m.IsOpen() {
		t.Fatal("UpdateContent opened a session")
	}
}

func TestUpdate_ClosedManagerIgnoresInput(t *testing.T) {
	t.Parallel()

	m := New()
	handled, _ := m.Update(keyMsg("esc"))
	if handled {
		t.Fatal("closed dialog consumed a key")
	}
}

func TestSizeColumns(t *testing.T) {
	t.Parallel()

	cases := []struct {
		size Size
		term int
		want int
	}{
		{Small, 200, 50},
		{Medium, 200, 70},
		{Large, 200, 90},
		{ExtraLarge, 200, 110},
		{Full, 200, 196},
		{ExtraLarge, 80, 76},
	}
	for _, tc := range cases {
		if got := tc.size.columns(tc.term); got != tc.want {
			t.Errorf("%v.columns(%d) = %d, want %d", tc.size, tc.term, got, tc.want)
		}
	}
}
