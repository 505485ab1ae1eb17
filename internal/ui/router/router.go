// Package router maps navigable paths to lazily resolved pages and owns the
// lifecycle of the one live page.
package router

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/assetdesk/assetdesk/internal/model"
	"github.com/assetdesk/assetdesk/internal/ui/layout"
	"github.com/assetdesk/assetdesk/internal/ui/toast"
)

// Page is one routed view. Init starts the page against the mount region;
// the message its command produces reports completion, and an error message
// means initialization failed.
type Page interface {
	Init(mount *layout.Mount) tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
}

// Destroyer is implemented by pages that hold resources past their view.
// Destroy runs before the next page's Init.
type Destroyer interface {
	Destroy()
}

// Loader resolves a page. It runs off the update loop.
type Loader func() (Page, error)

// Route binds a path to a loader.
type Route struct {
	Path  string
	Title string
	Load  Loader
}

// State is the navigation state.
type State int

const (
	Idle State = iota
	Loading
	Rendered
	Failed
	NotFound
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Rendered:
		return "rendered"
	case Failed:
		return "failed"
	case NotFound:
		return "not-found"
	default:
		return "idle"
	}
}

// NavigateMsg requests navigation to Path.
type NavigateMsg struct {
	Path string
}

// Navigate returns a command requesting navigation to path.
func Navigate(path string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Path: path} }
}

// Notifier receives navigation failures.
type Notifier interface {
	Error(message string, ttl time.Duration) (*toast.Entry, tea.Cmd)
}

type resolvedMsg struct {
	seq  uint64
	page Page
	err  error
}

type initMsg struct {
	seq   uint64
	inner tea.Msg
}

// Option configures a Router.
type Option func(*Router)

// WithToastTTL sets how long the failure toast stays up.
func WithToastTTL(d time.Duration) Option {
	return func(r *Router) { r.toastTTL = d }
}

// Router resolves paths into the live page.
type Router struct {
	routes   []Route
	index    map[string]int
	mount    *layout.Mount
	notify   Notifier
	toastTTL time.Duration
	reload   key.Binding

	seq    uint64
	state  State
	path   string
	active string
	page   Page
	err    error

	reloadY int
}

// New builds a router over routes. Paths must be unique.
func New(routes []Route, mount *layout.Mount, notify Notifier, opts ...Option) (*Router, error) {
	r := &Router{
		routes:   routes,
		index:    make(map[string]int, len(routes)),
		mount:    mount,
		notify:   notify,
		toastTTL: model.DefaultToastTTL,
		reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		reloadY:  -1,
	}
	for i, rt := range routes {
		if rt.Path == "" || rt.Load == nil {
			return nil, fmt.Errorf("router: route %d: path and loader are required", i)
		}
		if _, dup := r.index[rt.Path]; dup {
			return nil, fmt.Errorf("router: duplicate route %q", rt.Path)
		}
		r.index[rt.Path] = i
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Navigate starts navigation to path and returns the resolution command.
// An unmatched path renders the not-found view without loading anything.
func (r *Router) Navigate(path string) tea.Cmd {
	r.seq++
	r.path = path
	r.err = nil

	i, ok := r.index[path]
	if !ok {
		r.teardown()
		r.state = NotFound
		log.Printf("router: no route for %q", path)
		return nil
	}

	r.state = Loading
	seq, load := r.seq, r.routes[i].Load
	return func() (msg tea.Msg) {
		defer func() {
			if v := recover(); v != nil {
				msg = resolvedMsg{seq: seq, err: fmt.Errorf("router: load %s: panic: %v", path, v)}
			}
		}()
		page, err := load()
		if err == nil && page == nil {
			err = errors.New("router: loader returned no page")
		}
		return resolvedMsg{seq: seq, page: page, err: err}
	}
}

// Reload re-navigates to the current path.
func (r *Router) Reload() tea.Cmd {
	if r.path == "" {
		return nil
	}
	return r.Navigate(r.path)
}

func (r *Router) teardown() {
	if r.page == nil {
		return
	}
	if d, ok := r.page.(Destroyer); ok {
		d.Destroy()
	}
	r.page = nil
}

func (r *Router) fail(err error) tea.Cmd {
	r.teardown()
	r.state = Failed
	r.err = err
	log.Printf("router: navigate %s: %v", r.path, err)
	if r.notify == nil {
		return nil
	}
	_, cmd := r.notify.Error("Failed to load page", r.toastTTL)
	return cmd
}

func (r *Router) attach(p Page) tea.Cmd {
	r.teardown()
	r.page = p

	start := p.Init(r.mount)
	if start == nil {
		return r.rendered(nil)
	}
	seq := r.seq
	return func() tea.Msg { return initMsg{seq: seq, inner: start()} }
}

func (r *Router) rendered(inner tea.Msg) tea.Cmd {
	r.state = Rendered
	r.active = r.path
	switch m := inner.(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		return tea.Batch(m...)
	}
	return r.page.Update(inner)
}

// Update routes navigation messages and forwards everything else to the live
// page. Mouse events must already be relative to the mount region. handled
// reports whether the message was consumed by navigation or input handling.
func (r *Router) Update(msg tea.Msg) (handled bool, cmd tea.Cmd) {
	switch msg := msg.(type) {
	case NavigateMsg:
		return true, r.Navigate(msg.Path)

	case resolvedMsg:
		if msg.seq != r.seq {
			if d, ok := msg.page.(Destroyer); ok {
				d.Destroy()
			}
			return true, nil
		}
		if msg.err != nil {
			return true, r.fail(msg.err)
		}
		return true, r.attach(msg.page)

	case initMsg:
		if msg.seq != r.seq || r.page == nil {
			return true, nil
		}
		if err, ok := msg.inner.(error); ok {
			return true, r.fail(err)
		}
		return true, r.rendered(msg.inner)

	case tea.KeyMsg:
		if r.state == Failed && key.Matches(msg, r.reload) {
			return true, r.Reload()
		}
		if r.page != nil && r.state == Rendered {
			return true, r.page.Update(msg)
		}
		return false, nil

	case tea.MouseMsg:
		if r.state == Failed && layout.IsClick(msg) && msg.Y == r.reloadY {
			return true, r.Reload()
		}
		if r.page != nil && r.state == Rendered {
			return true, r.page.Update(msg)
		}
		return false, nil
	}

	if r.page != nil {
		return false, r.page.Update(msg)
	}
	return false, nil
}

// State returns the navigation state.
func (r *Router) State() State { return r.state }

// Path returns the path of the latest navigation.
func (r *Router) Path() string { return r.path }

// Active returns the path the navigation highlight should follow. It only
// changes when a navigation renders.
func (r *Router) Active() string { return r.active }

// Err returns the failure of the latest navigation.
func (r *Router) Err() error { return r.err }

// Page returns the live page.
func (r *Router) Page() Page { return r.page }

// Routes returns the route table.
func (r *Router) Routes() []Route { return r.routes }

// Title returns the title of the route at path.
func (r *Router) Title(path string) string {
	if i, ok := r.index[path]; ok {
		return r.routes[i].Title
	}
	return ""
}

// Busy reports whether the spinner should keep ticking.
func (r *Router) Busy() bool {
	if r.state == Loading {
		return true
	}
	b, ok := r.page.(layout.Busy)
	return ok && r.state == Rendered && b.Busy()
}

// View renders the mount region for the current state.
func (r *Router) View() string {
	r.reloadY = -1
	w, h := r.mount.Width(), r.mount.Height()
	switch r.state {
	case Loading:
		return layout.RenderLoading(w, h, "Loading...")
	case NotFound:
		return notFoundView(r.path)
	case Failed:
		view, y := errorView(r.err)
		r.reloadY = y
		return view
	case Rendered:
		return trimLines(r.page.View(), h)
	}
	return ""
}

func trimLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if n > 0 && len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}
