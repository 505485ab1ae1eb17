// Package app is the shell's root Bubble Tea model. It owns the screen layout
// and routes input between the dialog, the toast strip, the sidebar and the
// router's mount region.
package app

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/assetdesk/assetdesk/internal/ui/dialog"
	"github.com/assetdesk/assetdesk/internal/ui/layout"
	"github.com/assetdesk/assetdesk/internal/ui/router"
	"github.com/assetdesk/assetdesk/internal/ui/toast"
)

// Header and footer heights in lines.
const (
	headerHeight = 2
	footerHeight = 1
)

// Option configures an App.
type Option func(*App)

// WithStartPath sets the path navigated to on Init.
func WithStartPath(path string) Option {
	return func(a *App) { a.start = path }
}

// WithReverseScroll inverts the mouse wheel.
func WithReverseScroll(on bool) Option {
	return func(a *App) { a.reverseScroll = on }
}

// App is the top-level model.
type App struct {
	router  *router.Router
	dialogs *dialog.Manager
	toasts  *toast.Queue
	mount   *layout.Mount
	keys    KeyMap
	help    help.Model

	start         string
	reverseScroll bool

	width, height int
	ticking       bool

	// screen geometry from the last layout pass
	contentX int
	toastY   int
}

// New creates the shell around already constructed singletons.
func New(r *router.Router, dialogs *dialog.Manager, toasts *toast.Queue, mount *layout.Mount, opts ...Option) *App {
	a := &App{
		router:  r,
		dialogs: dialogs,
		toasts:  toasts,
		mount:   mount,
		keys:    DefaultKeyMap(),
		help:    help.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.start == "" && len(r.Routes()) > 0 {
		a.start = r.Routes()[0].Path
	}
	return a
}

// Init navigates to the start path.
func (a *App) Init() tea.Cmd {
	return a.keepTicking(a.router.Navigate(a.start))
}

// Update routes one message.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.layoutDialog()
		a.help.Width = max(msg.Width-sidebarWidth, 0)
		a.relayout()
		return a, nil

	case layout.SpinnerTickMsg:
		a.ticking = false
		return a, a.keepTicking(nil)

	case tea.KeyMsg:
		return a, a.keepTicking(a.handleKey(msg))

	case tea.MouseMsg:
		return a, a.keepTicking(a.handleMouse(msg))
	}

	if a.toasts.Update(msg) {
		return a, nil
	}
	handled, dcmd := a.dialogs.Update(msg)
	if handled {
		return a, a.keepTicking(dcmd)
	}
	_, rcmd := a.router.Update(msg)
	return a, a.keepTicking(tea.Batch(dcmd, rcmd))
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, a.keys.ForceQuit) {
		return tea.Quit
	}
	if a.dialogs.IsOpen() {
		_, cmd := a.dialogs.Update(msg)
		return cmd
	}

	routes := a.router.Routes()
	switch {
	case key.Matches(msg, a.keys.Quit):
		return tea.Quit
	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return nil
	case key.Matches(msg, a.keys.Dismiss):
		a.toasts.DismissLatest()
		return nil
	case key.Matches(msg, a.keys.NextPage):
		return a.step(1)
	case key.Matches(msg, a.keys.PrevPage):
		return a.step(-1)
	case key.Matches(msg, a.keys.Jump):
		if i := int(msg.String()[0] - '1'); i < len(routes) {
			return a.router.Navigate(routes[i].Path)
		}
		return nil
	}

	_, cmd := a.router.Update(msg)
	return cmd
}

// step navigates to the route delta places from the current one.
func (a *App) step(delta int) tea.Cmd {
	routes := a.router.Routes()
	if len(routes) == 0 {
		return nil
	}
	cur := 0
	for i, r := range routes {
		if r.Path == a.router.Path() {
			cur = i
		}
	}
	next := ((cur+delta)%len(routes) + len(routes)) % len(routes)
	return a.router.Navigate(routes[next].Path)
}

func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if a.reverseScroll {
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			msg.Button = tea.MouseButtonWheelDown
		case tea.MouseButtonWheelDown:
			msg.Button = tea.MouseButtonWheelUp
		}
	}
	if a.dialogs.IsOpen() {
		if n := a.toasts.Height(); msg.Y < n {
			if layout.IsClick(msg) {
				a.toasts.Click(msg.X, msg.Y, a.width)
			}
			return nil
		}
		msg.Y -= a.toasts.Height()
		_, cmd := a.dialogs.Update(msg)
		return cmd
	}

	a.relayout()
	if msg.X < sidebarWidth {
		if !layout.IsClick(msg) {
			return nil
		}
		if i, ok := a.sidebarRouteAt(msg.Y); ok {
			return a.router.Navigate(a.router.Routes()[i].Path)
		}
		return nil
	}

	if n := a.toasts.Height(); msg.Y >= a.toastY && msg.Y < a.toastY+n {
		if layout.IsClick(msg) {
			a.toasts.Click(msg.X-a.contentX, msg.Y-a.toastY, a.contentWidth())
		}
		return nil
	}

	if local, ok := a.mount.Local(msg); ok {
		_, cmd := a.router.Update(local)
		return cmd
	}
	return nil
}

// keepTicking starts the spinner tick when something became busy.
func (a *App) keepTicking(cmd tea.Cmd) tea.Cmd {
	if a.ticking || !(a.router.Busy() || a.dialogs.Busy()) {
		return cmd
	}
	a.ticking = true
	return tea.Batch(cmd, layout.SpinnerTick())
}
