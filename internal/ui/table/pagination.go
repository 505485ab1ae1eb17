package table

// windowSize is the number of page buttons in the sliding window.
const windowSize = 5

// Window returns the inclusive range of page numbers shown around current.
// It always spans windowSize pages when total allows it.
func Window(current, total int) (start, end int) {
	total = max(total, 1)
	start = max(1, current-2)
	end = min(total, start+windowSize-1)
	start = max(1, end-windowSize+1)
	return start, end
}

// ButtonKind distinguishes pagination controls.
type ButtonKind int

const (
	PrevButton ButtonKind = iota
	PageButton
	EllipsisButton
	NextButton
)

// Button is one pagination control.
type Button struct {
	Kind     ButtonKind
	Page     int
	Current  bool
	Disabled bool
}

// Pager is the computed pagination control row.
type Pager struct {
	Start, End    int
	FirstShortcut bool
	LastShortcut  bool
	Buttons       []Button
}

// Paginate lays out the control row for current of total pages: Prev, an
// optional first-page shortcut, the window, an optional last-page shortcut,
// then Next.
func Paginate(current, total int) Pager {
	total = max(total, 1)
	start, end := Window(current, total)
	p := Pager{
		Start:         start,
		End:           end,
		FirstShortcut: start > 1,
		LastShortcut:  end < total,
	}

	p.Buttons = append(p.Buttons, Button{Kind: PrevButton, Page: current - 1, Disabled: current <= 1})
	if p.FirstShortcut {
		p.Buttons = append(p.Buttons, Button{Kind: PageButton, Page: 1})
		if start > 2 {
			p.Buttons = append(p.Buttons, Button{Kind: EllipsisButton, Disabled: true})
		}
	}
	for n := start; n <= end; n++ {
		p.Buttons = append(p.Buttons, Button{Kind: PageButton, Page: n, Current: n == current})
	}
	if p.LastShortcut {
		if end < total-1 {
			p.Buttons = append(p.Buttons, Button{Kind: EllipsisButton, Disabled: true})
		}
		p.Buttons = append(p.Buttons, Button{Kind: PageButton, Page: total})
	}
	p.Buttons = append(p.Buttons, Button{Kind: NextButton, Page: current + 1, Disabled: current >= total})
	return p
}

// Pages returns the page numbers of the window and shortcuts, in order.
func (p Pager) Pages() []int {
	var out []int
	for _, b := range p.Buttons {
		if b.Kind == PageButton {
			out = append(out, b.Page)
		}
	}
	return out
}

// Summary returns the first and last item numbers shown on page current.
func Summary(current, pageSize, totalItems int) (from, to int) {
	if totalItems == 0 {
		return 0, 0
	}
	from = (current-1)*pageSize + 1
	to = min(current*pageSize, totalItems)
	return from, to
}
