// Package layout holds the shared mount region and small rendering helpers
// used by every view component.
package layout

import tea "github.com/charmbracelet/bubbletea"

// Mount is the single region the router and page tables render into. The
// shell owns its geometry; pages and tables only read it.
type Mount struct {
	x, y          int
	width, height int
}

// NewMount creates an empty mount region.
func NewMount() *Mount {
	return &Mount{}
}

// SetBounds positions the region on screen.
func (m *Mount) SetBounds(x, y, width, height int) {
	m.x, m.y = x, y
	m.width, m.height = max(width, 0), max(height, 0)
}

// Width returns the region width in columns.
func (m *Mount) Width() int { return m.width }

// Height returns the region height in lines.
func (m *Mount) Height() int { return m.height }

// Origin returns the top-left screen cell of the region.
func (m *Mount) Origin() (x, y int) { return m.x, m.y }

// Local converts a screen mouse event into region coordinates. ok is false
// when the event lies outside the region.
func (m *Mount) Local(msg tea.MouseMsg) (local tea.MouseMsg, ok bool) {
	local = Shift(msg, m.x, m.y)
	if local.X < 0 || local.Y < 0 || local.X >= m.width || local.Y >= m.height {
		return local, false
	}
	return local, true
}

// Shift moves a mouse event's origin by (dx, dy).
func Shift(msg tea.MouseMsg, dx, dy int) tea.MouseMsg {
	msg.X -= dx
	msg.Y -= dy
	return msg
}

// IsClick reports whether msg is a left-button press.
func IsClick(msg tea.MouseMsg) bool {
	return msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft
}
