package table

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/assetdesk/assetdesk/internal/model"
	"github.com/assetdesk/assetdesk/internal/ui/layout"
	"github.com/assetdesk/assetdesk/internal/ui/textutil"
	"github.com/assetdesk/assetdesk/internal/ui/theme"
)

const (
	colGap      = 2
	minColWidth = 3
)

type hitKind int

const (
	hitRow hitKind = iota
	hitAction
	hitPage
	hitRetry
)

type hit struct {
	kind   hitKind
	y      int
	x0, x1 int
	index  int
	action string
}

// hitMap records clickable regions of the last render, in table coordinates.
// Later entries take precedence so actions win over their row.
type hitMap []hit

func (h hitMap) at(x, y int) (hit, bool) {
	for i := len(h) - 1; i >= 0; i-- {
		e := h[i]
		if e.y == y && x >= e.x0 && x < e.x1 {
			return e, true
		}
	}
	return hit{}, false
}

// View renders the current phase. While loading the whole body is replaced
// with a spinner; on failure an inline error with a retry control is shown;
// an empty page shows only the empty message with no headers or pagination.
func (t *Model[T]) View() string {
	t.hits = t.hits[:0]
	width := t.renderWidth()

	switch t.phase {
	case Loading:
		return theme.Muted.Render(layout.Spinner("Loading..."))
	case Failed:
		return t.viewError(width)
	}
	if len(t.rows) == 0 {
		return theme.Muted.Render(t.cfg.EmptyMessage)
	}

	lines := t.viewRows(width)
	if t.totalPages > 1 {
		lines = append(lines, "")
		lines = append(lines, t.viewPagination(len(lines))...)
	}
	return strings.Join(lines, "\n")
}

func (t *Model[T]) viewError(width int) string {
	msg := "Failed to load data"
	if t.err != nil {
		msg += ": " + t.err.Error()
	}
	retry := theme.Button.Render("Retry")
	t.hits = append(t.hits, hit{kind: hitRetry, y: 2, x0: 0, x1: textutil.Width(retry)})
	return strings.Join([]string{
		theme.Error.Render(textutil.Truncate(msg, width)),
		"",
		retry,
		theme.Muted.Render("press r to retry"),
	}, "\n")
}

// cellText formats a raw column value. Nil values and nil pointers render as
// the placeholder.
func cellText(v any) string {
	if v == nil {
		return model.Placeholder
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return model.Placeholder
		}
		return cellText(rv.Elem().Interface())
	}
	switch x := v.(type) {
	case string:
		if x == "" {
			return model.Placeholder
		}
		return x
	case fmt.Stringer:
		return x.String()
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	}
	return fmt.Sprint(v)
}

func (t *Model[T]) cell(c Column[T], row T) string {
	var v any
	if c.Value != nil {
		v = c.Value(row)
	}
	if c.Render != nil {
		return textutil.SingleLine(c.Render(v, row))
	}
	return textutil.SingleLine(cellText(v))
}

// fit pads or truncates s to exactly w columns. Styled text is cut without
// an ellipsis since the escape sequences make rune truncation unsafe.
func fit(s string, w int) string {
	if !strings.ContainsRune(s, '\x1b') {
		return textutil.PadRight(s, w)
	}
	if lipgloss.Width(s) > w {
		s = lipgloss.NewStyle().MaxWidth(w).Render(s)
	}
	return s + strings.Repeat(" ", max(w-lipgloss.Width(s), 0))
}

func actionText(actions []Action) (string, [][2]int) {
	var sb strings.Builder
	spans := make([][2]int, len(actions))
	x := 0
	for i, a := range actions {
		if i > 0 {
			sb.WriteString(" ")
			x++
		}
		label := "[" + a.Label + "]"
		sb.WriteString(label)
		w := textutil.Width(label)
		spans[i] = [2]int{x, x + w}
		x += w
	}
	return sb.String(), spans
}

// columnWidths sizes each column to its widest cell, then shrinks the widest
// columns one step at a time until the row fits.
func columnWidths(natural []int, avail int) []int {
	widths := make([]int, len(natural))
	copy(widths, natural)
	total := func() int {
		s := 0
		for _, w := range widths {
			s += w
		}
		return s + colGap*max(len(widths)-1, 0)
	}
	for total() > avail {
		widest := -1
		for i, w := range widths {
			if w > minColWidth && (widest < 0 || w > widths[widest]) {
				widest = i
			}
		}
		if widest < 0 {
			break
		}
		widths[widest]--
	}
	return widths
}

func (t *Model[T]) viewRows(width int) []string {
	cols := t.cfg.Columns
	cells := make([][]string, len(t.rows))
	natural := make([]int, len(cols))
	for i, c := range cols {
		natural[i] = textutil.Width(c.Header)
	}
	for r, row := range t.rows {
		cells[r] = make([]string, len(cols))
		for i, c := range cols {
			s := t.cell(c, row)
			cells[r][i] = s
			natural[i] = max(natural[i], lipgloss.Width(s))
		}
	}
	for i, c := range cols {
		if c.MaxWidth > 0 {
			natural[i] = min(natural[i], c.MaxWidth)
		}
	}

	actions := make([][]Action, len(t.rows))
	actionW := 0
	if t.cfg.Actions != nil {
		for r, row := range t.rows {
			actions[r] = t.cfg.Actions(row)
			text, _ := actionText(actions[r])
			actionW = max(actionW, textutil.Width(text))
		}
	}
	avail := width
	if actionW > 0 {
		avail -= actionW + colGap
	}
	widths := columnWidths(natural, avail)
	gap := strings.Repeat(" ", colGap)

	var lines []string
	head := make([]string, len(cols))
	for i, c := range cols {
		head[i] = textutil.PadRight(c.Header, widths[i])
	}
	headLine := strings.Join(head, gap)
	if actionW > 0 {
		headLine += gap + textutil.PadRight("Actions", actionW)
	}
	lines = append(lines, theme.Header.Render(headLine))
	lines = append(lines, theme.Muted.Render(strings.Repeat("─", min(textutil.Width(headLine), width))))

	for r := range t.rows {
		y := len(lines)
		parts := make([]string, len(cols))
		for i := range cols {
			parts[i] = fit(cells[r][i], widths[i])
		}
		line := strings.Join(parts, gap)
		rowW := lipgloss.Width(line)
		if r == t.cursor {
			line = theme.Selected.Render(line)
		}
		t.hits = append(t.hits, hit{kind: hitRow, y: y, x0: 0, x1: width, index: r})

		if len(actions[r]) > 0 {
			text, spans := actionText(actions[r])
			x := rowW + colGap
			line += gap + theme.Link.Render(text)
			for i, a := range actions[r] {
				t.hits = append(t.hits, hit{
					kind:   hitAction,
					y:      y,
					x0:     x + spans[i][0],
					x1:     x + spans[i][1],
					index:  r,
					action: a.Kind,
				})
			}
		}
		lines = append(lines, line)
	}
	return lines
}

func (t *Model[T]) viewPagination(y0 int) []string {
	from, to := Summary(t.currentPage, t.cfg.PageSize, t.totalItems)
	summary := theme.Muted.Render(fmt.Sprintf("Showing %d to %d of %d results", from, to, t.totalItems))

	p := Paginate(t.currentPage, t.totalPages)
	y := y0 + 1
	var sb strings.Builder
	x := 0
	for i, b := range p.Buttons {
		if i > 0 {
			sb.WriteByte(' ')
			x++
		}
		var label string
		style := theme.Link
		switch b.Kind {
		case PrevButton:
			label = "‹ Prev"
		case NextButton:
			label = "Next ›"
		case EllipsisButton:
			label = "…"
		default:
			label = strconv.Itoa(b.Page)
			if b.Current {
				label = "[" + label + "]"
				style = theme.Selected
			}
		}
		if b.Disabled {
			style = theme.Muted
		}
		w := textutil.Width(label)
		if !b.Disabled && !b.Current {
			t.hits = append(t.hits, hit{kind: hitPage, y: y, x0: x, x1: x + w, index: b.Page})
		}
		sb.WriteString(style.Render(label))
		x += w
	}
	return []string{summary, sb.String()}
}
