package router

import (
	"strings"

	"github.com/assetdesk/assetdesk/internal/ui/theme"
)

func notFoundView(path string) string {
	return strings.Join([]string{
		theme.Title.Render("404"),
		"",
		theme.Bold.Render("Page not found"),
		theme.Muted.Render("Nothing is routed at " + path + "."),
		"",
		theme.Muted.Render("Pick a page from the sidebar."),
	}, "\n")
}

// errorView renders the failure view and returns the line of the reload
// control.
func errorView(err error) (string, int) {
	detail := "Unknown error"
	if err != nil {
		detail = err.Error()
	}
	lines := []string{
		theme.Error.Bold(true).Render("Error loading page"),
		"",
		theme.Muted.Render(detail),
		"",
	}
	reloadY := len(lines)
	lines = append(lines,
		theme.ButtonFocused.Render("Reload"),
		theme.Muted.Render("press r to reload"),
	)
	return strings.Join(lines, "\n"), reloadY
}
