package dialog

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/assetdesk/assetdesk/internal/ui/textutil"
	"github.com/assetdesk/assetdesk/internal/ui/theme"
)

// ConfirmOptions configures Confirm. Empty strings take the defaults
// "Confirm", "Confirm" and "Cancel".
type ConfirmOptions struct {
	Title       string
	ConfirmText string
	CancelText  string
	Danger      bool
	// OnResult runs once, when the confirmation settles.
	OnResult func(accepted bool) tea.Cmd
}

// Confirmation is the single-resolution result of Confirm. It is written
// exactly once by whichever dismissal path fires first.
type Confirmation struct {
	settled   bool
	accepting bool
	accepted  bool
	done      chan struct{}
	onResult  func(bool) tea.Cmd
}

func newConfirmation(onResult func(bool) tea.Cmd) *Confirmation {
	return &Confirmation{
		done:     make(chan struct{}),
		onResult: onResult,
	}
}

func (c *Confirmation) settle(v bool) tea.Cmd {
	if c.settled {
		return nil
	}
	c.settled = true
	c.accepted = v
	close(c.done)
	if c.onResult != nil {
		return c.onResult(v)
	}
	return nil
}

// Done is closed once the confirmation settles.
func (c *Confirmation) Done() <-chan struct{} { return c.done }

// Settled reports whether a result has been written.
func (c *Confirmation) Settled() bool { return c.settled }

// Accepted reports the settled result; false until settled.
func (c *Confirmation) Accepted() bool { return c.accepted }

// Confirm opens a small dialog with the message and two buttons. Accepting
// closes the session through Close, whose OnClose settles the result true;
// every other dismissal settles it false.
func (m *Manager) Confirm(message string, opts ConfirmOptions) (*Confirmation, tea.Cmd) {
	if opts.Title == "" {
		opts.Title = "Confirm"
	}
	if opts.ConfirmText == "" {
		opts.ConfirmText = "Confirm"
	}
	if opts.CancelText == "" {
		opts.CancelText = "Cancel"
	}

	c := newConfirmation(opts.OnResult)
	body := &confirmBody{
		mgr:     m,
		message: message,
		opts:    opts,
		c:       c,
		focus:   focusConfirm,
	}
	if opts.Danger {
		body.focus = focusCancel
	}

	_, cmd := m.Open(opts.Title, body, Options{
		Size:    Small,
		OnClose: func() tea.Cmd { return c.settle(c.accepting) },
	})
	m.live.supersede = func() tea.Cmd { return c.settle(false) }
	return c, cmd
}

const (
	focusCancel = iota
	focusConfirm
)

type confirmBody struct {
	mgr     *Manager
	message string
	opts    ConfirmOptions
	c       *Confirmation
	focus   int

	// hit areas from the last render, content coordinates
	buttonsY int
	cancelX  [2]int
	confirmX [2]int
}

func (b *confirmBody) Danger() bool { return b.opts.Danger }

func (b *confirmBody) accept() tea.Cmd {
	b.c.accepting = true
	return b.mgr.Close()
}

func (b *confirmBody) cancel() tea.Cmd {
	return b.mgr.Close()
}

func (b *confirmBody) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch km.String() {
	case "y", "Y":
		return b.accept()
	case "n", "N":
		return b.cancel()
	case "tab", "shift+tab", "left", "right", "h", "l":
		b.focus = 1 - b.focus
	case "enter", " ":
		if b.focus == focusConfirm {
			return b.accept()
		}
		return b.cancel()
	}
	return nil
}

func (b *confirmBody) Click(x, y int) tea.Cmd {
	if y != b.buttonsY {
		return nil
	}
	switch {
	case x >= b.cancelX[0] && x < b.cancelX[1]:
		return b.cancel()
	case x >= b.confirmX[0] && x < b.confirmX[1]:
		return b.accept()
	}
	return nil
}

func (b *confirmBody) View(width int) string {
	msg := lipgloss.NewStyle().Width(width).Render(b.message)

	cancelStyle, confirmStyle := theme.Button, theme.Button
	if b.focus == focusCancel {
		cancelStyle = theme.ButtonFocused
	} else {
		confirmStyle = theme.ButtonFocused
	}
	if b.opts.Danger {
		confirmStyle = theme.ButtonDanger.Underline(b.focus == focusConfirm)
	}
	cancel := cancelStyle.Render(b.opts.CancelText)
	confirm := confirmStyle.Render(b.opts.ConfirmText)

	gap := "  "
	buttonsW := textutil.Width(cancel) + len(gap) + textutil.Width(confirm)
	pad := max(width-buttonsW, 0)
	buttons := strings.Repeat(" ", pad) + cancel + gap + confirm

	b.buttonsY = lipgloss.Height(msg) + 1
	b.cancelX = [2]int{pad, pad + textutil.Width(cancel)}
	b.confirmX = [2]int{b.cancelX[1] + len(gap), b.cancelX[1] + len(gap) + textutil.Width(confirm)}

	help := theme.Muted.Render("y confirm · n/esc cancel")
	return msg + "\n\n" + buttons + "\n\n" + help
}
