package dialog

import (
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/assetdesk/assetdesk/internal/ui/layout"
	"github.com/assetdesk/assetdesk/internal/ui/textutil"
	"github.com/assetdesk/assetdesk/internal/ui/theme"
)

// FieldKind selects the input widget and how the value is encoded on submit.
type FieldKind int

const (
	TextField FieldKind = iota
	NumberField
	IntegerField
	DateField
	SelectField
	SelectIDField
	BoolField
)

func (k FieldKind) isChoice() bool {
	return k == SelectField || k == SelectIDField || k == BoolField
}

// Choice is one option of a select field.
type Choice struct {
	Value string
	Label string
}

// Field describes one form input.
type Field struct {
	Key         string
	Label       string
	Kind        FieldKind
	Placeholder string
	Required    bool
	Choices     []Choice
	// Value is the initial value.
	Value string
}

// SubmitMsg is emitted when the user submits a form. Session identifies the
// dialog session the form belongs to.
type SubmitMsg struct {
	Session SessionID
	Values  map[string]string
	Payload map[string]any
}

var boolChoices = []Choice{{Value: "true", Label: "Yes"}, {Value: "false", Label: "No"}}

// Form is a dialog body of labelled inputs.
type Form struct {
	session    SessionID
	fields     []Field
	inputs     []textinput.Model
	choice     []int
	focus      int
	submitText string
	busy       bool
	err        string

	fieldY   []int
	buttonsY int
	cancelX  [2]int
	submitX  [2]int
}

// NewForm builds a form. submitText labels the submit button ("Save" when empty).
func NewForm(fields []Field, submitText string) *Form {
	if submitText == "" {
		submitText = "Save"
	}
	f := &Form{
		fields:     slices.Clone(fields),
		inputs:     make([]textinput.Model, len(fields)),
		choice:     make([]int, len(fields)),
		submitText: submitText,
	}
	for i := range f.fields {
		fd := &f.fields[i]
		if fd.Kind == BoolField && len(fd.Choices) == 0 {
			fd.Choices = boolChoices
		}
		if fd.Kind.isChoice() {
			for j, c := range fd.Choices {
				if c.Value == fd.Value {
					f.choice[i] = j
				}
			}
			continue
		}
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = fd.Placeholder
		if ti.Placeholder == "" && fd.Kind == DateField {
			ti.Placeholder = "YYYY-MM-DD"
		}
		ti.CharLimit = 256
		ti.SetValue(fd.Value)
		f.inputs[i] = ti
	}
	f.setFocus(0)
	return f
}

func (f *Form) bind(id SessionID) { f.session = id }

// Session returns the dialog session the form is attached to.
func (f *Form) Session() SessionID { return f.session }

// Init starts the cursor blink.
func (f *Form) Init() tea.Cmd { return textinput.Blink }

// SetBusy toggles the in-flight state. A busy form ignores input.
func (f *Form) SetBusy(b bool) { f.busy = b }

// Busy reports whether a submission is in flight.
func (f *Form) Busy() bool { return f.busy }

// SetError shows msg under the fields; empty clears it.
func (f *Form) SetError(msg string) { f.err = msg }

// Err returns the error line.
func (f *Form) Err() string { return f.err }

func (f *Form) setFocus(i int) {
	if len(f.fields) == 0 {
		return
	}
	i = (i%len(f.fields) + len(f.fields)) % len(f.fields)
	if !f.fields[f.focus].Kind.isChoice() {
		f.inputs[f.focus].Blur()
	}
	f.focus = i
	if !f.fields[i].Kind.isChoice() {
		f.inputs[i].Focus()
	}
}

// Focused returns the key of the focused field.
func (f *Form) Focused() string {
	if len(f.fields) == 0 {
		return ""
	}
	return f.fields[f.focus].Key
}

// Value returns the raw string value of a field.
func (f *Form) Value(key string) string {
	for i, fd := range f.fields {
		if fd.Key != key {
			continue
		}
		if fd.Kind.isChoice() {
			if len(fd.Choices) == 0 {
				return ""
			}
			return fd.Choices[f.choice[i]].Value
		}
		return strings.TrimSpace(f.inputs[i].Value())
	}
	return ""
}

// SetValue replaces a field's value.
func (f *Form) SetValue(key, value string) {
	for i, fd := range f.fields {
		if fd.Key != key {
			continue
		}
		if fd.Kind.isChoice() {
			for j, c := range fd.Choices {
				if c.Value == value {
					f.choice[i] = j
				}
			}
			return
		}
		f.inputs[i].SetValue(value)
		return
	}
}

// Values returns every field's raw value keyed by field key.
func (f *Form) Values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for _, fd := range f.fields {
		out[fd.Key] = f.Value(fd.Key)
	}
	return out
}

// Payload converts the values to JSON-ready types. Empty values become nil so
// the remote service sees an explicit null. Numbers that fail to parse are
// passed through as typed and left for the service to reject.
func (f *Form) Payload() map[string]any {
	out := make(map[string]any, len(f.fields))
	for _, fd := range f.fields {
		out[fd.Key] = convert(fd.Kind, f.Value(fd.Key))
	}
	return out
}

func convert(kind FieldKind, v string) any {
	if v == "" {
		return nil
	}
	switch kind {
	case NumberField:
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	case IntegerField, SelectIDField:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	case BoolField:
		return v == "true"
	}
	return v
}

func (f *Form) submit() tea.Cmd {
	msg := SubmitMsg{Session: f.session, Values: f.Values(), Payload: f.Payload()}
	return func() tea.Msg { return msg }
}

func (f *Form) cycle(delta int) {
	fd := f.fields[f.focus]
	if n := len(fd.Choices); n > 0 {
		f.choice[f.focus] = ((f.choice[f.focus]+delta)%n + n) % n
	}
}

// Update handles navigation, select cycling and submission.
func (f *Form) Update(msg tea.Msg) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	km, isKey := msg.(tea.KeyMsg)
	if isKey {
		if f.busy {
			return nil
		}
		switch km.String() {
		case "tab", "down":
			f.setFocus(f.focus + 1)
			return nil
		case "shift+tab", "up":
			f.setFocus(f.focus - 1)
			return nil
		case "ctrl+s":
			return f.submit()
		case "enter":
			if f.focus == len(f.fields)-1 {
				return f.submit()
			}
			f.setFocus(f.focus + 1)
			return nil
		}
		if f.fields[f.focus].Kind.isChoice() {
			switch km.String() {
			case "right", "l", " ":
				f.cycle(1)
			case "left", "h":
				f.cycle(-1)
			}
			return nil
		}
	}
	if f.fields[f.focus].Kind.isChoice() {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// Click focuses a field or activates a button.
func (f *Form) Click(x, y int) tea.Cmd {
	if y == f.buttonsY && !f.busy {
		switch {
		case x >= f.cancelX[0] && x < f.cancelX[1]:
			return CloseCmd(f.session)
		case x >= f.submitX[0] && x < f.submitX[1]:
			return f.submit()
		}
		return nil
	}
	for i, fy := range f.fieldY {
		if y == fy || y == fy+1 {
			f.setFocus(i)
			if f.fields[i].Kind.isChoice() && y == fy+1 {
				f.cycle(1)
			}
			return nil
		}
	}
	return nil
}

// View renders label lines, inputs, the error line and the button row.
func (f *Form) View(width int) string {
	lines := make([]string, 0, len(f.fields)*3+4)
	f.fieldY = f.fieldY[:0]
	for i, fd := range f.fields {
		label := fd.Label
		if fd.Required {
			label += " *"
		}
		labelStyle := theme.Muted
		if i == f.focus {
			labelStyle = theme.Title
		}
		f.fieldY = append(f.fieldY, len(lines))
		lines = append(lines, labelStyle.Render(label))

		if fd.Kind.isChoice() {
			text := "-"
			if len(fd.Choices) > 0 {
				text = fd.Choices[f.choice[i]].Label
			}
			text = "‹ " + textutil.Truncate(text, max(width-4, 1)) + " ›"
			if i == f.focus {
				text = theme.Selected.Render(text)
			}
			lines = append(lines, text)
		} else {
			in := f.inputs[i]
			in.Width = max(width-2, 1)
			lines = append(lines, in.View())
		}
		lines = append(lines, "")
	}

	if f.err != "" {
		lines = append(lines, theme.Error.Width(width).Render(f.err), "")
	}

	f.buttonsY = len(lines)
	if f.busy {
		lines = append(lines, layout.Spinner("Saving..."))
		f.cancelX, f.submitX = [2]int{}, [2]int{}
	} else {
		cancel := theme.Button.Render("Cancel")
		submit := theme.ButtonFocused.Render(f.submitText)
		gap := "  "
		pad := max(width-textutil.Width(cancel)-len(gap)-textutil.Width(submit), 0)
		lines = append(lines, strings.Repeat(" ", pad)+cancel+gap+submit)
		f.cancelX = [2]int{pad, pad + textutil.Width(cancel)}
		f.submitX = [2]int{f.cancelX[1] + len(gap), f.cancelX[1] + len(gap) + textutil.Width(submit)}
	}
	lines = append(lines, "", theme.Muted.Render("tab next · ←/→ choose · ctrl+s save · esc cancel"))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
