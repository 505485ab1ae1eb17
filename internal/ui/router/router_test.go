package router

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/assetdesk/assetdesk/internal/ui/layout"
	"github.com/assetdesk/assetdesk/internal/ui/toast"
)

type events struct {
	log []string
}

func (e *events) add(s string) { e.log = append(e.log, s) }

type readyMsg struct{ name string }

type fakePage struct {
	name    string
	ev      *events
	initErr error
	async   bool
	got     []tea.Msg
}

func (p *fakePage) Init(*layout.Mount) tea.Cmd {
	p.ev.add(p.name + ".init")
	switch {
	case p.initErr != nil:
		err := p.initErr
		return func() tea.Msg { return err }
	case p.async:
		name := p.name
		return func() tea.Msg { return readyMsg{name: name} }
	}
	return nil
}

func (p *fakePage) Update(msg tea.Msg) tea.Cmd {
	p.got = append(p.got, msg)
	return nil
}

func (p *fakePage) View() string { return "page " + p.name }

func (p *fakePage) Destroy() { p.ev.add(p.name + ".destroy") }

type fakeNotifier struct {
	messages []string
}

func (n *fakeNotifier) Error(message string, _ time.Duration) (*toast.Entry, tea.Cmd) {
	n.messages = append(n.messages, message)
	return &toast.Entry{Message: message, Severity: toast.Error}, nil
}

type fixture struct {
	r      *Router
	ev     *events
	notify *fakeNotifier
	loads  map[string]int
	pages  map[string]*fakePage
}

func newFixture(t *testing.T, routes ...string) *fixture {
	t.Helper()
	f := &fixture{
		ev:     &events{},
		notify: &fakeNotifier{},
		loads:  map[string]int{},
		pages:  map[string]*fakePage{},
	}
	var table []Route
	for _, path := range routes {
		path := path
		table = append(table, Route{Path: path, Title: strings.TrimPrefix(path, "/"), Load: func() (Page, error) {
			f.loads[path]++
			p := &fakePage{name: strings.TrimPrefix(path, "/"), ev: f.ev}
			if custom, ok := f.pages[path]; ok {
				p = custom
			}
			return p, nil
		}})
	}
	mount := layout.NewMount()
	mount.SetBounds(20, 2, 80, 20)
	r, err := New(table, mount, f.notify)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.r = r
	return f
}

// settle feeds cmd's message back into the router until no command remains.
func (f *fixture) settle(cmd tea.Cmd) {
	for cmd != nil {
		_, cmd = f.r.Update(cmd())
	}
}

func TestNavigate_RendersAndHighlights(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "/assets", "/vendors")
	cmd := f.r.Navigate("/assets")
	if f.r.State() != Loading {
		t.Fatalf("state = %v, want loading", f.r.State())
	}
	if f.r.Active() != "" {
		t.Fatal("highlight moved before the page rendered")
	}
	f.settle(cmd)

	if f.r.State() != Rendered || f.r.Active() != "/assets" {
		t.Fatalf("state = %v active = %q", f.r.State(), f.r.Active())
	}
	if got := f.r.View(); got != "page assets" {
		t.Fatalf("view = %q", got)
	}
}

func TestNavigate_DestroysPreviousBeforeInit(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "/assets", "/vendors")
	f.settle(f.r.Navigate("/assets"))
	f.settle(f.r.Navigate("/vendors"))

	want := []string{"assets.init", "assets.destroy", "vendors.init"}
	if !reflect.DeepEqual(f.ev.log, want) {
		t.Fatalf("events = %v, want %v", f.ev.log, want)
	}
	if f.r.State() != Rendered || f.r.Active() != "/vendors" {
		t.Fatalf("state = %v active = %q", f.r.State(), f.r.Active())
	}
}

func TestNavigate_AsyncInitCompletesRender(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "/reports")
	page := &fakePage{name: "reports", ev: f.ev, async: true}
	f.pages["/reports"] = page

	_, cmd := f.r.Update(f.r.Navigate("/reports")())
	if f.r.State() != Loading {
		t.Fatalf("state before init completion = %v", f.r.State())
	}
	f.settle(cmd)

	if f.r.State() != Rendered {
		t.Fatalf("state = %v", f.r.State())
	}
	if len(page.got) != 1 || page.got[0] != (readyMsg{name: "reports"}) {
		t.Fatalf("page did not receive its init result: %v", page.got)
	}
}

func TestNavigate_UnmatchedPathLoadsNothing(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "/assets")
	f.settle(f.r.Navigate("/assets"))

	if cmd := f.r.Navigate("/nope"); cmd != nil {
		t.Fatal("unmatched path returned a load command")
	}
	if f.r.State() != NotFound {
		t.Fatalf("state = %v", f.r.State())
	}
	if f.loads["/nope"] != 0 || f.loads["/assets"] != 1 {
		t.Fatalf("loads = %v", f.loads)
	}
	if !strings.Contains(f.r.View(), "Page not found") {
		t.Fatalf("view = %q", f.r.View())
	}
	if f.r.Active() != "/assets" {
		t.Fatalf("highlight = %q, want unchanged", f.r.Active())
	}
}

func TestNavigate_SupersededResolutionDiscarded(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "/assets", "/vendors")
	slow := f.r.Navigate("/assets")
	fast := f.r.Navigate("/vendors")

	f.settle(fast)
	f.settle(slow)

	if f.r.State() != Rendered || f.r.Active() != "/vendors" {
		t.Fatalf("state = %v active = %q", f.r.State(), f.r.Active())
	}
	if got := f.r.View(); got != "page vendors" {
		t.Fatalf("view = %q", got)
	}
	want := []string{"vendors.init", "assets.destroy"}
	if !reflect.DeepEqual(f.ev.log, want) {
		t.Fatalf("events = %v, want %v", f.ev.log, want)
	}
}

func TestNavigate_LoaderErrorFails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	mount := layout.NewMount()
	r, err := New([]Route{{Path: "/broken", Load: func() (Page, error) {
		return nil, errors.New("module missing")
	}}}, mount, f.notify)
	if err != nil {
		t.Fatal(err)
	}
	f.r = r

	f.settle(r.Navigate("/broken"))
	if r.State() != Failed {
		t.Fatalf("state = %v", r.State())
	}
	if !reflect.DeepEqual(f.notify.messages, []string{"Failed to load page"}) {
		t.Fatalf("toasts = %v", f.notify.messages)
	}
	view := r.View()
	if !strings.Contains(view, "Error loading page") || !strings.Contains(view, "module missing") {
		t.Fatalf("view = %q", view)
	}
}

func TestNavigate_PanicRecovered(t *testing.T) {
	t.Parallel()

	notify := &fakeNotifier{}
	r, err := New([]Route{{Path: "/p", Load: func() (Page, error) {
		panic("boom")
	}}}, layout.NewMount(), notify)
	if err != nil {
		t.Fatal(err)
	}
	_, cmd := r.Update(r.Navigate("/p")())
	if cmd != nil {
		t.Fatal("unexpected follow-up command")
	}
	if r.State() != Failed || !strings.Contains(r.Err().Error(), "panic: boom") {
		t.Fatalf("state = %v err = %v", r.State(), r.Err())
	}
}

func TestNavigate_InitErrorFailsAndDestroys(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "/assets")
	f.pages["/assets"] = &fakePage{name: "assets", ev: f.ev, initErr: errors.New("HTTP 500")}

	f.settle(f.r.Navigate("/assets"))
	if f.r.State() != Failed {
		t.Fatalf("state = %v", f.r.State())
	}
	if f.r.Page() != nil {
		t.Fatal("failed page still attached")
	}
	if !reflect.DeepEqual(f.ev.log, []string{"assets.init", "assets.destroy"}) {
		t.Fatalf("events = %v", f.ev.log)
	}
	if len(f.notify.messages) != 1 {
		t.Fatalf("toasts = %v", f.notify.messages)
	}
}

func TestReload_KeyAndClick(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "/assets")
	broken := &fakePage{name: "assets", ev: f.ev, initErr: errors.New("down")}
	f.pages["/assets"] = broken
	f.settle(f.r.Navigate("/assets"))

	delete(f.pages, "/assets")
	handled, cmd := f.r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if !handled || cmd == nil {
		t.Fatal("reload key ignored")
	}
	f.settle(cmd)
	if f.r.State() != Rendered || f.loads["/assets"] != 2 {
		t.Fatalf("state = %v loads = %d", f.r.State(), f.loads["/assets"])
	}

	f.pages["/assets"] = &fakePage{name: "assets", ev: f.ev, initErr: errors.New("down")}
	f.settle(f.r.Reload())
	f.r.View()
	handled, cmd = f.r.Update(tea.MouseMsg{X: 1, Y: f.r.reloadY, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if !handled || cmd == nil {
		t.Fatal("reload click ignored")
	}
}

func TestUpdate_ForwardsInputToRenderedPage(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "/assets")
	page := &fakePage{name: "assets", ev: f.ev}
	f.pages["/assets"] = page
	f.settle(f.r.Navigate("/assets"))

	key := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")}
	if handled, _ := f.r.Update(key); !handled {
		t.Fatal("key not forwarded")
	}
	if handled, _ := f.r.Update(readyMsg{name: "other"}); handled {
		t.Fatal("non-input message reported as handled")
	}
	if len(page.got) != 2 {
		t.Fatalf("page got %d messages", len(page.got))
	}
}

func TestNew_RejectsDuplicatePaths(t *testing.T) {
	t.Parallel()

	load := func() (Page, error) { return nil, nil }
	_, err := New([]Route{{Path: "/a", Load: load}, {Path: "/a", Load: load}}, layout.NewMount(), nil)
	if err == nil {
		t.Fatal("expected duplicate path error")
	}
}
