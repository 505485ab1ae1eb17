package pages

import (
	"context"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/assetdesk/assetdesk/internal/ui/dialog"
)

// formSpec describes one form dialog and what happens on submit.
type formSpec struct {
	title   string
	size    dialog.Size
	fields  []dialog.Field
	button  string
	submit  func(ctx context.Context, payload map[string]any, values map[string]string) (any, error)
	success string
	// after runs once the submission succeeded and the dialog closed.
	after func(v any) tea.Cmd
}

type formSession struct {
	id   dialog.SessionID
	form *dialog.Form
	spec formSpec
}

type submitDoneMsg struct {
	owner   uint64
	session dialog.SessionID
	value   any
	err     error
}

// forms drives the open-submit-close cycle for a page's form dialogs. A failed
// submission leaves the dialog open with the message on the error line.
type forms struct {
	d     *Deps
	owner uint64
	live  *formSession
}

func (f *forms) open(spec formSpec) tea.Cmd {
	form := dialog.NewForm(spec.fields, spec.button)
	id, cmd := f.d.Dialogs.Open(spec.title, form, dialog.Options{Size: spec.size})
	f.live = &formSession{id: id, form: form, spec: spec}
	return cmd
}

// update handles submissions and their results. handled is false for
// messages that belong to someone else.
func (f *forms) update(msg tea.Msg) (handled bool, cmd tea.Cmd) {
	switch msg := msg.(type) {
	case dialog.SubmitMsg:
		s := f.live
		if s == nil || s.id != msg.Session || !f.d.Dialogs.IsLive(msg.Session) {
			return false, nil
		}
		if missing := missingField(s.spec.fields, msg.Values); missing != "" {
			s.form.SetError(missing + " is required")
			return true, nil
		}
		s.form.SetBusy(true)
		s.form.SetError("")
		submit, owner, id := s.spec.submit, f.owner, s.id
		payload, values := msg.Payload, msg.Values
		timeout := f.d.timeout()
		return true, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			v, err := submit(ctx, payload, values)
			return submitDoneMsg{owner: owner, session: id, value: v, err: err}
		}

	case submitDoneMsg:
		if msg.owner != f.owner {
			return false, nil
		}
		s := f.live
		if s == nil || s.id != msg.session {
			return true, nil
		}
		if msg.err != nil {
			log.Printf("pages: %s: %v", s.spec.title, msg.err)
			s.form.SetBusy(false)
			s.form.SetError(msg.err.Error())
			return true, f.d.failure(msg.err.Error())
		}
		f.live = nil
		var cmds []tea.Cmd
		if s.spec.success != "" {
			cmds = append(cmds, f.d.success(s.spec.success))
		}
		if f.d.Dialogs.IsLive(s.id) {
			cmds = append(cmds, f.d.Dialogs.Close())
		}
		if s.spec.after != nil {
			cmds = append(cmds, s.spec.after(msg.value))
		}
		return true, tea.Batch(cmds...)
	}
	return false, nil
}

func missingField(fields []dialog.Field, values map[string]string) string {
	for _, f := range fields {
		if f.Required && values[f.Key] == "" {
			return f.Label
		}
	}
	return ""
}

// confirmThen asks for a danger confirmation and runs fn when accepted.
func confirmThen(d *Deps, title, message string, fn func() tea.Cmd) tea.Cmd {
	_, cmd := d.Dialogs.Confirm(message, dialog.ConfirmOptions{
		Title:       title,
		ConfirmText: "Delete",
		Danger:      true,
		OnResult: func(ok bool) tea.Cmd {
			if !ok {
				return nil
			}
			return fn()
		},
	})
	return cmd
}
