package app

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/assetdesk/assetdesk/internal/ui/textutil"
	"github.com/assetdesk/assetdesk/internal/ui/theme"
)

const sidebarWidth = 22

// sidebarTop is the row of the first route label: the border plus the brand
// line and a blank line.
const sidebarTop = 3

func (a *App) buildSidebarLines() []string {
	lines := []string{theme.Title.Render("AssetDesk"), ""}
	active := a.router.Active()
	for i, r := range a.router.Routes() {
		label := fmt.Sprintf("  %d %s", i+1, r.Title)
		if r.Path == active {
			label = fmt.Sprintf("> %d %s", i+1, r.Title)
		}
		label = textutil.Truncate(label, sidebarWidth-4)
		if r.Path == active {
			label = lipgloss.NewStyle().Foreground(theme.ColorBlue).Bold(true).Render(label)
		}
		lines = append(lines, label)
	}
	return lines
}

// sidebarRouteAt maps a screen row to a route index.
func (a *App) sidebarRouteAt(y int) (int, bool) {
	i := y - sidebarTop
	if i < 0 || i >= len(a.router.Routes()) {
		return 0, false
	}
	return i, true
}

// renderSidebar renders the route list in the left column.
func (a *App) renderSidebar(height int) string {
	style := lipgloss.NewStyle().
		Width(sidebarWidth-2).
		Height(max(height-2, 1)).
		Border(lipgloss.NormalBorder()).
		BorderForeground(theme.ColorGray).
		Padding(0, 1)

	content := lipgloss.JoinVertical(lipgloss.Left, a.buildSidebarLines()...)
	return style.Render(content)
}
