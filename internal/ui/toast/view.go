package toast

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/assetdesk/assetdesk/internal/ui/textutil"
	"github.com/assetdesk/assetdesk/internal/ui/theme"
)

const closeGlyph = " ✕ "

func icon(s Severity) (string, lipgloss.Color) {
	switch s {
	case Success:
		return "✔", theme.ColorGreen
	case Warning:
		return "⚠", theme.ColorOrange
	case Error:
		return "✖", theme.ColorRed
	default:
		return "ℹ", theme.ColorBlue
	}
}

// View renders one line per entry, oldest on top, each ending in a close
// control in the rightmost columns.
func (q *Queue) View(width int) string {
	if len(q.entries) == 0 || width <= 0 {
		return ""
	}
	lines := make([]string, 0, len(q.entries))
	closeW := textutil.Width(closeGlyph)
	for _, e := range q.entries {
		glyph, color := icon(e.Severity)
		msgW := max(width-closeW-3, 1)
		body := " " + glyph + " " + textutil.PadRight(textutil.SingleLine(e.Message), msgW)
		line := lipgloss.NewStyle().Foreground(color).Render(body) +
			theme.Muted.Render(closeGlyph)
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Height returns the number of lines View occupies.
func (q *Queue) Height() int { return len(q.entries) }

// Click handles a left click at (x, y) relative to the top-left of the
// rendered strip. A click on an entry's close control removes it.
func (q *Queue) Click(x, y, width int) bool {
	if y < 0 || y >= len(q.entries) {
		return false
	}
	if x < width-textutil.Width(closeGlyph) || x >= width {
		return false
	}
	return q.Remove(q.entries[y].ID)
}
