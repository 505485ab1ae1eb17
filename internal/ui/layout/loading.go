package layout

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/assetdesk/assetdesk/internal/ui/theme"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 120 * time.Millisecond

// SpinnerFrame returns the frame for the current instant so spinners animate
// on every re-render without holding state.
func SpinnerFrame() string {
	return spinnerFrames[time.Now().UnixMilli()/spinnerInterval.Milliseconds()%int64(len(spinnerFrames))]
}

// Spinner renders an inline "⠋ label" indicator.
func Spinner(label string) string {
	return theme.Muted.Italic(true).Render(SpinnerFrame() + " " + label)
}

// RenderLoading centers a loading indicator in a width x height box.
func RenderLoading(width, height int, label string) string {
	if label == "" {
		label = "Loading..."
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, Spinner(label))
}

// SpinnerTickMsg triggers a re-render while something is loading.
type SpinnerTickMsg struct{}

// SpinnerTick schedules the next SpinnerTickMsg.
func SpinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(time.Time) tea.Msg {
		return SpinnerTickMsg{}
	})
}

// Busy is implemented by views that show a spinner while work is in flight.
type Busy interface {
	Busy() bool
}
