// Package dialog implements the single-slot modal surface. Exactly one
// session is live at a time; opening another replaces it rather than stacking,
// and every dismissal path funnels into Close.
package dialog

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/assetdesk/assetdesk/internal/ui/layout"
	"github.com/assetdesk/assetdesk/internal/ui/textutil"
	"github.com/assetdesk/assetdesk/internal/ui/theme"
)

// Size is the panel width class. The zero value is Medium.
type Size int

const (
	Medium Size = iota
	Small
	Large
	ExtraLarge
	Full
)

func (s Size) String() string {
	switch s {
	case Small:
		return "sm"
	case Large:
		return "lg"
	case ExtraLarge:
		return "xl"
	case Full:
		return "full"
	default:
		return "md"
	}
}

// columns returns the panel width for a terminal of the given width.
func (s Size) columns(termWidth int) int {
	var w int
	switch s {
	case Small:
		w = 50
	case Large:
		w = 90
	case ExtraLarge:
		w = 110
	case Full:
		w = termWidth - 4
	default:
		w = 70
	}
	return max(min(w, termWidth-4), 20)
}

// SessionID identifies one Open call. IDs are never reused.
type SessionID uint64

// Options configures a session.
type Options struct {
	Size Size
	// OnClose runs exactly once when the session is dismissed through Close.
	OnClose func() tea.Cmd
}

// CloseMsg asks the manager to close a specific session. It is ignored when
// that session has already been replaced or closed.
type CloseMsg struct {
	Session SessionID
}

// CloseCmd returns a command that closes the given session.
func CloseCmd(id SessionID) tea.Cmd {
	return func() tea.Msg { return CloseMsg{Session: id} }
}

// KeyMap holds the dismissal bindings.
type KeyMap struct {
	Dismiss      key.Binding
	CloseControl key.Binding
}

// DefaultKeyMap returns the default dismissal bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		CloseControl: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "close"),
		),
	}
}

type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

type session struct {
	id      SessionID
	title   string
	body    Body
	size    Size
	onClose func() tea.Cmd
	// supersede settles state owned by the session when another Open replaces it.
	supersede func() tea.Cmd
}

// Manager owns the dialog surface.
type Manager struct {
	keys   KeyMap
	seq    SessionID
	live   *session
	width  int
	height int

	// geometry of the last render, used for hit testing
	panel     rect
	closeBtn  rect
	contentAt [2]int
}

// New creates a manager with no open session.
func New() *Manager {
	return &Manager{keys: DefaultKeyMap()}
}

// SetSize records the terminal size the dialog is centered in.
func (m *Manager) SetSize(width, height int) {
	m.width, m.height = width, height
}

// Open shows a new session, replacing any live one. The replaced session's
// OnClose does not run; state it owns (a pending confirmation) is settled.
func (m *Manager) Open(title string, body Body, opts Options) (SessionID, tea.Cmd) {
	var cmds []tea.Cmd
	if prev := m.live; prev != nil {
		m.live = nil
		if prev.supersede != nil {
			cmds = append(cmds, prev.supersede())
		}
	}

	m.seq++
	s := &session{
		id:      m.seq,
		title:   title,
		size:    opts.Size,
		onClose: opts.OnClose,
	}
	m.live = s
	cmds = append(cmds, m.attach(body))
	return s.id, tea.Batch(cmds...)
}

func (m *Manager) attach(body Body) tea.Cmd {
	m.live.body = body
	if b, ok := body.(sessionBinder); ok {
		b.bind(m.live.id)
	}
	if b, ok := body.(interface{ Init() tea.Cmd }); ok {
		return b.Init()
	}
	return nil
}

// Close hides the dialog and runs the session's OnClose once. Calling it with
// no live session is a no-op.
func (m *Manager) Close() tea.Cmd {
	s := m.live
	if s == nil {
		return nil
	}
	m.live = nil
	cb := s.onClose
	s.onClose = nil
	s.supersede = nil
	if cb != nil {
		return cb()
	}
	return nil
}

// UpdateContent swaps the body of the live session, keeping its title, size
// and dismissal bindings.
func (m *Manager) UpdateContent(body Body) tea.Cmd {
	if m.live == nil {
		return nil
	}
	return m.attach(body)
}

// IsOpen reports whether a session is live.
func (m *Manager) IsOpen() bool { return m.live != nil }

// Current returns the live session id.
func (m *Manager) Current() (SessionID, bool) {
	if m.live == nil {
		return 0, false
	}
	return m.live.id, true
}

// IsLive reports whether id is the live session.
func (m *Manager) IsLive(id SessionID) bool {
	return m.live != nil && m.live.id == id
}

// Title returns the live session title.
func (m *Manager) Title() string {
	if m.live == nil {
		return ""
	}
	return m.live.title
}

// Body returns the live session body.
func (m *Manager) Body() Body {
	if m.live == nil {
		return nil
	}
	return m.live.body
}

// Size returns the live session size class.
func (m *Manager) Size() Size {
	if m.live == nil {
		return Medium
	}
	return m.live.size
}

// Update routes a message to the dialog. handled is true when the message was
// input consumed by the modal surface; non-input messages are passed to the
// body but left unhandled so the shell can route them onward.
func (m *Manager) Update(msg tea.Msg) (handled bool, cmd tea.Cmd) {
	if cm, ok := msg.(CloseMsg); ok {
		if m.IsLive(cm.Session) {
			return true, m.Close()
		}
		return true, nil
	}
	if m.live == nil {
		return false, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Dismiss), key.Matches(msg, m.keys.CloseControl):
			return true, m.Close()
		}
		return true, m.live.body.Update(msg)

	case tea.MouseMsg:
		if !layout.IsClick(msg) {
			return true, m.live.body.Update(msg)
		}
		if m.closeBtn.contains(msg.X, msg.Y) || !m.panel.contains(msg.X, msg.Y) {
			return true, m.Close()
		}
		if c, ok := m.live.body.(Clickable); ok {
			return true, c.Click(msg.X-m.contentAt[0], msg.Y-m.contentAt[1])
		}
		return true, nil
	}

	return false, m.live.body.Update(msg)
}

// View renders the panel centered on a blank backdrop filling the terminal.
func (m *Manager) View() string {
	if m.live == nil || m.width <= 0 || m.height <= 0 {
		return ""
	}
	s := m.live
	panelW := s.size.columns(m.width)
	innerW := panelW - 4 // border + horizontal padding

	closeLabel := "✕"
	titleW := max(innerW-textutil.Width(closeLabel)-1, 1)
	titleLine := theme.Title.Render(textutil.PadRight(s.title, titleW)) + " " +
		theme.Muted.Render(closeLabel)

	body := s.body.View(innerW)
	maxBody := m.height - 6
	if s.size == Full && maxBody > 0 {
		body = lipgloss.NewStyle().Height(maxBody).Render(body)
	}
	if lines := strings.Split(body, "\n"); len(lines) > maxBody && maxBody > 0 {
		body = strings.Join(lines[:maxBody], "\n")
	}

	inner := lipgloss.JoinVertical(lipgloss.Left, titleLine, "", body)
	frame := theme.Panel.Width(panelW - 2)
	if d, ok := s.body.(interface{ Danger() bool }); ok && d.Danger() {
		frame = theme.PanelDanger.Width(panelW - 2)
	}
	panel := frame.Render(inner)

	pw, ph := lipgloss.Width(panel), lipgloss.Height(panel)
	// lipgloss.Place puts the odd column of slack on the right and bottom.
	x0 := max((m.width-pw)/2, 0)
	y0 := max((m.height-ph)/2, 0)
	m.panel = rect{x: x0, y: y0, w: pw, h: ph}
	m.closeBtn = rect{x: x0 + pw - 4, y: y0 + 1, w: 3, h: 1}
	m.contentAt = [2]int{x0 + 2, y0 + 3}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
}

// Busy reports whether the live body is showing progress.
func (m *Manager) Busy() bool {
	if m.live == nil {
		return false
	}
	b, ok := m.live.body.(layout.Busy)
	return ok && b.Busy()
}
