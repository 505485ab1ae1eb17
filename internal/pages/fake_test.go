package pages

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/assetdesk/assetdesk/internal/model"
	"github.com/assetdesk/assetdesk/internal/ui/dialog"
	"github.com/assetdesk/assetdesk/internal/ui/layout"
	"github.com/assetdesk/assetdesk/internal/ui/router"
	"github.com/assetdesk/assetdesk/internal/ui/toast"
)

var errNotFound = errors.New("not found")

type fakeCollection[T any] struct {
	mu        sync.Mutex
	items     []T
	id        func(T) int64
	listErr   error
	createErr error
	lists     []model.ListParams
	created   []map[string]any
	updated   map[int64]map[string]any
	deleted   []int64
}

func newCollection[T any](id func(T) int64, items ...T) *fakeCollection[T] {
	return &fakeCollection[T]{items: items, id: id, updated: map[int64]map[string]any{}}
}

func (c *fakeCollection[T]) List(_ context.Context, p model.ListParams) (model.ListResult[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists = append(c.lists, p)
	if c.listErr != nil {
		return model.ListResult[T]{}, c.listErr
	}
	page := slicePage(c.items, max(p.Page, 1), max(p.PageSize, 1))
	return model.ListResult[T]{Items: page.Rows, Total: page.TotalItems, Page: p.Page, PageSize: p.PageSize, Pages: page.TotalPages}, nil
}

func (c *fakeCollection[T]) Get(_ context.Context, id int64) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if c.id(it) == id {
			return it, nil
		}
	}
	var zero T
	return zero, errNotFound
}

func (c *fakeCollection[T]) Create(_ context.Context, payload map[string]any) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	if c.createErr != nil {
		return zero, c.createErr
	}
	c.created = append(c.created, payload)
	return zero, nil
}

func (c *fakeCollection[T]) Update(_ context.Context, id int64, payload map[string]any) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updated[id] = payload
	var zero T
	return zero, nil
}

func (c *fakeCollection[T]) Delete(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, id)
	return nil
}

func (c *fakeCollection[T]) lastList() model.ListParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.lists) == 0 {
		return model.ListParams{}
	}
	return c.lists[len(c.lists)-1]
}

type recordCall struct {
	assetID int64
	payload map[string]any
}

type calcCall struct {
	assetID    int64
	start, end string
}

// fakeInventory is an in-memory model.Inventory.
type fakeInventory struct {
	assets      *fakeCollection[model.Asset]
	categories  *fakeCollection[model.Category]
	locations   *fakeCollection[model.Location]
	departments *fakeCollection[model.Department]
	vendors     *fakeCollection[model.Vendor]

	mu              sync.Mutex
	upcoming        []model.MaintenanceSchedule
	upcomingErr     error
	upcomingDays    []int
	records         []model.MaintenanceRecord
	schedules       []model.MaintenanceSchedule
	attachments     []model.Attachment
	history         []model.DepreciationEntry
	report          []model.DepreciationSummary
	reportErr       error
	calcResult      model.DepreciationEntry
	calcErr         error
	createdRecords  []recordCall
	scheduleUpdates map[int64]map[string]any
	createdSched    []recordCall
	deletedSched    []int64
	calcs           []calcCall
	assigned        map[int64]model.Assignment
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{
		assets:          newCollection(func(a model.Asset) int64 { return a.ID }),
		categories:      newCollection(func(c model.Category) int64 { return c.ID }),
		locations:       newCollection(func(l model.Location) int64 { return l.ID }),
		departments:     newCollection(func(d model.Department) int64 { return d.ID }),
		vendors:         newCollection(func(v model.Vendor) int64 { return v.ID }),
		scheduleUpdates: map[int64]map[string]any{},
		assigned:        map[int64]model.Assignment{},
	}
}

func (f *fakeInventory) Assets() model.Collection[model.Asset]           { return f.assets }
func (f *fakeInventory) Categories() model.Collection[model.Category]    { return f.categories }
func (f *fakeInventory) Locations() model.Collection[model.Location]     { return f.locations }
func (f *fakeInventory) Departments() model.Collection[model.Department] { return f.departments }
func (f *fakeInventory) Vendors() model.Collection[model.Vendor]         { return f.vendors }

func (f *fakeInventory) AssignAsset(_ context.Context, id int64, a model.Assignment) (model.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assigned[id] = a
	return model.Asset{ID: id, Status: model.StatusAssigned}, nil
}

func (f *fakeInventory) ReturnAsset(_ context.Context, id int64, _ string) (model.Asset, error) {
	return model.Asset{ID: id, Status: model.StatusAvailable}, nil
}

func (f *fakeInventory) QRCode(context.Context, int64, int, int) ([]byte, error) {
	return []byte("\x89PNG fake"), nil
}

func (f *fakeInventory) UpcomingMaintenance(_ context.Context, days int) ([]model.MaintenanceSchedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upcomingDays = append(f.upcomingDays, days)
	return f.upcoming, f.upcomingErr
}

func (f *fakeInventory) MaintenanceRecords(_ context.Context, _ int64, p model.ListParams) (model.ListResult[model.MaintenanceRecord], error) {
	page := slicePage(f.records, max(p.Page, 1), max(p.PageSize, 1))
	return model.ListResult[model.MaintenanceRecord]{Items: page.Rows, Total: page.TotalItems, Pages: page.TotalPages}, nil
}

func (f *fakeInventory) CreateMaintenanceRecord(_ context.Context, assetID int64, payload map[string]any) (model.MaintenanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdRecords = append(f.createdRecords, recordCall{assetID, payload})
	return model.MaintenanceRecord{AssetID: assetID}, nil
}

func (f *fakeInventory) UpdateMaintenanceRecord(context.Context, int64, map[string]any) (model.MaintenanceRecord, error) {
	return model.MaintenanceRecord{}, nil
}

func (f *fakeInventory) DeleteMaintenanceRecord(context.Context, int64) error { return nil }

func (f *fakeInventory) Schedules(context.Context, int64) ([]model.MaintenanceSchedule, error) {
	return f.schedules, nil
}

func (f *fakeInventory) CreateSchedule(_ context.Context, assetID int64, payload map[string]any) (model.MaintenanceSchedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdSched = append(f.createdSched, recordCall{assetID, payload})
	return model.MaintenanceSchedule{AssetID: assetID}, nil
}

func (f *fakeInventory) UpdateSchedule(_ context.Context, id int64, payload map[string]any) (model.MaintenanceSchedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduleUpdates[id] = payload
	return model.MaintenanceSchedule{ID: id}, nil
}

func (f *fakeInventory) DeleteSchedule(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedSched = append(f.deletedSched, id)
	return nil
}

func (f *fakeInventory) Attachments(context.Context, int64) ([]model.Attachment, error) {
	return f.attachments, nil
}

func (f *fakeInventory) UploadAttachment(_ context.Context, assetID int64, name string, data []byte) (model.Attachment, error) {
	return model.Attachment{AssetID: assetID, OriginalFilename: name, FileSize: int64(len(data))}, nil
}

func (f *fakeInventory) DownloadAttachment(context.Context, int64) ([]byte, error) {
	return []byte("attachment body"), nil
}

func (f *fakeInventory) DeleteAttachment(context.Context, int64) error { return nil }

func (f *fakeInventory) DepreciationHistory(context.Context, int64) ([]model.DepreciationEntry, error) {
	return f.history, nil
}

func (f *fakeInventory) CalculateDepreciation(_ context.Context, assetID int64, start, end string) (model.DepreciationEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calcs = append(f.calcs, calcCall{assetID, start, end})
	return f.calcResult, f.calcErr
}

func (f *fakeInventory) DepreciationReport(context.Context) ([]model.DepreciationSummary, error) {
	return f.report, f.reportErr
}

var _ model.Inventory = (*fakeInventory)(nil)

// harness wires pages to real dialog and toast instances and pumps commands
// synchronously.
type harness struct {
	t     *testing.T
	inv   *fakeInventory
	d     *Deps
	mount *layout.Mount
	errs  []error
}

var testToday = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newHarness(t *testing.T) *harness {
	t.Helper()
	inv := newFakeInventory()
	noTimer := func(time.Duration, func(time.Time) tea.Msg) tea.Cmd { return nil }
	dialogs := dialog.New()
	dialogs.SetSize(120, 40)
	mount := layout.NewMount()
	mount.SetBounds(0, 0, 100, 30)
	return &harness{
		t:   t,
		inv: inv,
		d: &Deps{
			Inventory:   inv,
			Dialogs:     dialogs,
			Toasts:      toast.New(toast.WithTimer(noTimer)),
			PageSize:    10,
			ToastTTL:    time.Second,
			DownloadDir: t.TempDir(),
			Today:       func() time.Time { return testToday },
		},
		mount: mount,
	}
}

// init runs the page's Init and delivers its result the way the router does.
func (h *harness) init(p router.Page) {
	h.t.Helper()
	h.run(p, p.Init(h.mount))
}

// run executes cmd and feeds every message it produces to the page until no
// command remains.
func (h *harness) run(p router.Page, cmd tea.Cmd) {
	h.t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 500 {
			h.t.Fatal("command loop did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case error:
			h.errs = append(h.errs, msg)
		case dialog.CloseMsg:
			_, c := h.d.Dialogs.Update(msg)
			queue = append(queue, c)
		default:
			queue = append(queue, p.Update(msg))
		}
	}
}

// press sends a key to the dialog when one is open, otherwise to the page.
func (h *harness) press(p router.Page, k string) {
	h.t.Helper()
	msg := keyMsg(k)
	if h.d.Dialogs.IsOpen() {
		_, cmd := h.d.Dialogs.Update(msg)
		h.run(p, cmd)
		return
	}
	h.run(p, p.Update(msg))
}

func (h *harness) form() *dialog.Form {
	h.t.Helper()
	f, ok := h.d.Dialogs.Body().(*dialog.Form)
	if !ok {
		h.t.Fatalf("dialog body = %T, want *dialog.Form", h.d.Dialogs.Body())
	}
	return f
}

func (h *harness) toasts() []string {
	var out []string
	for _, e := range h.d.Toasts.Entries() {
		out = append(out, e.Severity.String()+": "+e.Message)
	}
	return out
}

func (h *harness) hasToast(want string) bool {
	for _, s := range h.toasts() {
		if s == want {
			return true
		}
	}
	return false
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func ptr[T any](v T) *T { return &v }
