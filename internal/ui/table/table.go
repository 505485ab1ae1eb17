// Package table implements the paginated DataTable: it owns one view's
// fetch/render cycle and nothing else mutates its state.
package table

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/assetdesk/assetdesk/internal/model"
	"github.com/assetdesk/assetdesk/internal/ui/layout"
)

// Column describes one table column. Value extracts the raw field; Render,
// when set, formats it.
type Column[T any] struct {
	Key    string
	Header string
	Value  func(row T) any
	Render func(value any, row T) string
	// MaxWidth caps the column; zero means no cap.
	MaxWidth int
}

// Action is one per-row action rendered in the trailing cell.
type Action struct {
	Kind  string
	Label string
	// Key triggers the action for the selected row.
	Key string
}

// Result is one fetched page.
type Result[T any] struct {
	Rows       []T
	TotalItems int
	TotalPages int
}

// FetchFunc loads one page.
type FetchFunc[T any] func(ctx context.Context, page, pageSize int) (Result[T], error)

// Config is fixed at construction.
type Config[T any] struct {
	Columns      []Column[T]
	Fetch        FetchFunc[T]
	PageSize     int
	EmptyMessage string
	OnRowClick   func(row T, index int) tea.Cmd
	Actions      func(row T) []Action
	OnAction     func(kind string, row T, index int) tea.Cmd
	// Timeout bounds each fetch; defaults to the shared request timeout.
	Timeout time.Duration
}

// Phase is the load-cycle state.
type Phase int

const (
	Idle Phase = iota
	Loading
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// State is a read-only snapshot of the table's pagination state.
type State struct {
	Phase       Phase
	CurrentPage int
	PageSize    int
	TotalItems  int
	TotalPages  int
	Err         error
}

var tableIDs atomic.Uint64

type loadedMsg[T any] struct {
	table  uint64
	seq    uint64
	result Result[T]
	err    error
}

// KeyMap holds table navigation bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Activate key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Retry    key.Binding
}

// DefaultKeyMap returns the default table bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Activate: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		PrevPage: key.NewBinding(key.WithKeys("left", "["), key.WithHelp("←/[", "prev page")),
		NextPage: key.NewBinding(key.WithKeys("right", "]"), key.WithHelp("→/]", "next page")),
		Retry:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
	}
}

// Model is one DataTable instance.
type Model[T any] struct {
	id    uint64
	seq   uint64
	mount *layout.Mount
	cfg   Config[T]
	keys  KeyMap
	width int

	phase       Phase
	err         error
	currentPage int
	totalItems  int
	totalPages  int
	rows        []T
	cursor      int

	hits hitMap
}

// New creates a table rendering into mount. Nothing is fetched until Load.
func New[T any](mount *layout.Mount, cfg Config[T]) *Model[T] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = model.DefaultPageSize
	}
	if cfg.EmptyMessage == "" {
		cfg.EmptyMessage = "No data available"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = model.DefaultRequestTimeout
	}
	return &Model[T]{
		id:          tableIDs.Add(1),
		mount:       mount,
		cfg:         cfg,
		keys:        DefaultKeyMap(),
		currentPage: 1,
		totalPages:  1,
	}
}

// SetWidth overrides the mount width, for tables laid out beside other content.
func (t *Model[T]) SetWidth(w int) { t.width = w }

func (t *Model[T]) renderWidth() int {
	if t.width > 0 {
		return t.width
	}
	if t.mount != nil {
		return t.mount.Width()
	}
	return 80
}

// Load starts fetching page. A later Load supersedes this one: whichever was
// issued last is the one whose result is displayed.
func (t *Model[T]) Load(page int) tea.Cmd {
	page = max(page, 1)
	t.seq++
	t.phase = Loading
	t.err = nil
	t.currentPage = page

	id, seq := t.id, t.seq
	fetch, size, timeout := t.cfg.Fetch, t.cfg.PageSize, t.cfg.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res, err := fetch(ctx, page, size)
		return loadedMsg[T]{table: id, seq: seq, result: res, err: err}
	}
}

// Refresh reloads the current page.
func (t *Model[T]) Refresh() tea.Cmd {
	return t.Load(t.currentPage)
}

func (t *Model[T]) apply(msg loadedMsg[T]) {
	if msg.seq != t.seq {
		return
	}
	if msg.err != nil {
		t.phase = Failed
		t.err = msg.err
		return
	}
	t.phase = Ready
	t.rows = msg.result.Rows
	t.totalItems = max(msg.result.TotalItems, 0)
	t.totalPages = max(msg.result.TotalPages, 1)
	t.cursor = min(t.cursor, max(len(t.rows)-1, 0))
}

// Rows returns the current rows.
func (t *Model[T]) Rows() []T {
	out := make([]T, len(t.rows))
	copy(out, t.rows)
	return out
}

// Row returns the row at index i of the current page.
func (t *Model[T]) Row(i int) (T, bool) {
	var zero T
	if i < 0 || i >= len(t.rows) {
		return zero, false
	}
	return t.rows[i], true
}

// Selected returns the row under the cursor.
func (t *Model[T]) Selected() (T, int, bool) {
	row, ok := t.Row(t.cursor)
	return row, t.cursor, ok
}

// State returns the pagination snapshot.
func (t *Model[T]) State() State {
	return State{
		Phase:       t.phase,
		CurrentPage: t.currentPage,
		PageSize:    t.cfg.PageSize,
		TotalItems:  t.totalItems,
		TotalPages:  t.totalPages,
		Err:         t.err,
	}
}

// Busy reports whether a load is in flight.
func (t *Model[T]) Busy() bool { return t.phase == Loading }

// KeyMap returns the bindings, for help rendering.
func (t *Model[T]) KeyMap() KeyMap { return t.keys }

func (t *Model[T]) goTo(page int) tea.Cmd {
	if page < 1 || page > t.totalPages || page == t.currentPage {
		return nil
	}
	return t.Load(page)
}

func (t *Model[T]) activate(i int) tea.Cmd {
	row, ok := t.Row(i)
	if !ok || t.cfg.OnRowClick == nil {
		return nil
	}
	t.cursor = i
	return t.cfg.OnRowClick(row, i)
}

func (t *Model[T]) runAction(kind string, i int) tea.Cmd {
	row, ok := t.Row(i)
	if !ok || t.cfg.OnAction == nil {
		return nil
	}
	t.cursor = i
	return t.cfg.OnAction(kind, row, i)
}

// Update handles load results, keys and mouse events. Mouse coordinates must
// be relative to the table's top-left corner. handled reports whether the
// message belonged to this table.
func (t *Model[T]) Update(msg tea.Msg) (handled bool, cmd tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg[T]:
		if msg.table != t.id {
			return false, nil
		}
		t.apply(msg)
		return true, nil

	case tea.KeyMsg:
		return t.handleKey(msg)

	case tea.MouseMsg:
		return t.handleMouse(msg)
	}
	return false, nil
}

func (t *Model[T]) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case t.phase == Failed && key.Matches(msg, t.keys.Retry):
		return true, t.Refresh()
	case key.Matches(msg, t.keys.Up):
		if t.cursor > 0 {
			t.cursor--
		}
		return true, nil
	case key.Matches(msg, t.keys.Down):
		if t.cursor < len(t.rows)-1 {
			t.cursor++
		}
		return true, nil
	case key.Matches(msg, t.keys.PrevPage):
		return true, t.goTo(t.currentPage - 1)
	case key.Matches(msg, t.keys.NextPage):
		return true, t.goTo(t.currentPage + 1)
	case key.Matches(msg, t.keys.Activate):
		return true, t.activate(t.cursor)
	}

	if t.cfg.Actions != nil {
		if row, i, ok := t.Selected(); ok {
			for _, a := range t.cfg.Actions(row) {
				if a.Key != "" && msg.String() == a.Key {
					return true, t.runAction(a.Kind, i)
				}
			}
		}
	}
	return false, nil
}

func (t *Model[T]) handleMouse(msg tea.MouseMsg) (bool, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if t.cursor > 0 {
			t.cursor--
		}
		return true, nil
	case tea.MouseButtonWheelDown:
		if t.cursor < len(t.rows)-1 {
			t.cursor++
		}
		return true, nil
	}
	if !layout.IsClick(msg) {
		return false, nil
	}

	h, ok := t.hits.at(msg.X, msg.Y)
	if !ok {
		return false, nil
	}
	switch h.kind {
	case hitRow:
		return true, t.activate(h.index)
	case hitAction:
		return true, t.runAction(h.action, h.index)
	case hitPage:
		return true, t.goTo(h.index)
	case hitRetry:
		return true, t.Refresh()
	}
	return false, nil
}
