package dialog

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/assetdesk/assetdesk/internal/ui/layout"
	"github.com/assetdesk/assetdesk/internal/ui/theme"
)

// Body is the content of a dialog session.
type Body interface {
	Update(msg tea.Msg) tea.Cmd
	View(width int) string
}

// Clickable bodies receive left clicks inside the content area, in content
// coordinates.
type Clickable interface {
	Click(x, y int) tea.Cmd
}

// sessionBinder is implemented by bodies that address messages to the session
// that owns them.
type sessionBinder interface {
	bind(id SessionID)
}

type textBody struct {
	text string
}

// Text returns a static body.
func Text(s string) Body {
	return &textBody{text: s}
}

func (b *textBody) Update(tea.Msg) tea.Cmd { return nil }

func (b *textBody) View(width int) string {
	return lipgloss.NewStyle().Width(width).Render(b.text)
}

type progressBody struct {
	label string
}

// Progress returns a body showing a spinner with a label. It is meant to be
// swapped in with UpdateContent while work runs and swapped out again with
// the result.
func Progress(label string) Body {
	return &progressBody{label: label}
}

func (b *progressBody) Update(tea.Msg) tea.Cmd { return nil }

func (b *progressBody) View(width int) string {
	return lipgloss.NewStyle().Width(width).Padding(1, 0).Render(layout.Spinner(b.label))
}

// Busy keeps the shell's spinner ticking while the body is visible.
func (b *progressBody) Busy() bool { return true }

// Pair is one label/value row of a Details body.
type Pair struct {
	Label string
	Value string
}

type detailsBody struct {
	pairs  []Pair
	footer string
}

// Details returns a body rendering aligned label/value rows, with an optional
// footer block below them.
func Details(pairs []Pair, footer string) Body {
	return &detailsBody{pairs: pairs, footer: footer}
}

func (b *detailsBody) Update(tea.Msg) tea.Cmd { return nil }

func (b *detailsBody) View(width int) string {
	labelW := 0
	for _, p := range b.pairs {
		labelW = max(labelW, lipgloss.Width(p.Label))
	}
	valueW := max(width-labelW-2, 1)

	var sb strings.Builder
	for i, p := range b.pairs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		label := theme.Muted.Width(labelW).Render(p.Label)
		value := lipgloss.NewStyle().Width(valueW).Render(p.Value)
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, label, "  ", value))
	}
	if b.footer != "" {
		sb.WriteString("\n\n")
		sb.WriteString(b.footer)
	}
	return sb.String()
}
