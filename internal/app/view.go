package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/assetdesk/assetdesk/internal/ui/textutil"
	"github.com/assetdesk/assetdesk/internal/ui/theme"
)

const (
	minWidth  = 60
	minHeight = 16
)

func (a *App) contentWidth() int {
	return max(a.width-sidebarWidth, 0)
}

func (a *App) footerHeight() int {
	if a.help.ShowAll {
		return lipgloss.Height(a.help.View(a.keys))
	}
	return footerHeight
}

// relayout positions the toast strip and the mount region for the current
// number of toasts.
func (a *App) relayout() {
	a.contentX = sidebarWidth
	a.toastY = headerHeight
	mountY := a.toastY + a.toasts.Height()
	mountH := a.height - mountY - a.footerHeight()
	a.mount.SetBounds(a.contentX, mountY, a.contentWidth(), mountH)
}

// layoutDialog gives the dialog the screen below the toast strip.
func (a *App) layoutDialog() {
	a.dialogs.SetSize(a.width, max(a.height-a.toasts.Height(), 0))
}

// View renders the shell, or the dialog full screen when one is open. Toasts
// stay on top in both cases.
func (a *App) View() string {
	if a.width <= 0 || a.height <= 0 {
		return "Initializing..."
	}
	if a.dialogs.IsOpen() {
		a.layoutDialog()
		body := a.dialogs.View()
		if t := a.toasts.View(a.width); t != "" {
			return lipgloss.JoinVertical(lipgloss.Left, t, body)
		}
		return body
	}
	if a.width < minWidth || a.height < minHeight {
		return "Terminal too small. Resize to at least 60x16."
	}

	a.relayout()
	cw := a.contentWidth()

	sections := []string{a.renderHeader(cw)}
	if t := a.toasts.View(cw); t != "" {
		sections = append(sections, t)
	}
	sections = append(sections,
		lipgloss.NewStyle().Width(cw).Height(a.mount.Height()).MaxHeight(a.mount.Height()).Render(a.router.View()),
		a.help.View(a.keys),
	)
	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return lipgloss.JoinHorizontal(lipgloss.Top, a.renderSidebar(a.height), content)
}

func (a *App) renderHeader(width int) string {
	title := a.router.Title(a.router.Path())
	if title == "" {
		title = "AssetDesk"
	}
	right := theme.Muted.Render("Asset Management")
	left := theme.Title.Render(textutil.Truncate(title, max(width-textutil.Width("Asset Management")-2, 1)))
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	line := left + strings.Repeat(" ", gap) + right
	rule := lipgloss.NewStyle().Foreground(theme.ColorDim).Render(strings.Repeat("─", max(width, 0)))
	return line + "\n" + rule
}
