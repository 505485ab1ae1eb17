// Package pages holds the routed views of the shell. Each page wires its own
// DataTables against the inventory API and reports through the shared dialog
// manager and toast queue.
package pages

import (
	"context"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/assetdesk/assetdesk/internal/model"
	"github.com/assetdesk/assetdesk/internal/ui/dialog"
	"github.com/assetdesk/assetdesk/internal/ui/router"
	"github.com/assetdesk/assetdesk/internal/ui/toast"
)

// Deps are the shared collaborators every page is built from. They are
// constructed once by the shell and injected here.
type Deps struct {
	Inventory   model.Inventory
	Dialogs     *dialog.Manager
	Toasts      *toast.Queue
	PageSize    int
	ToastTTL    time.Duration
	Timeout     time.Duration
	DownloadDir string
	// Today returns the current date; time.Now when nil.
	Today func() time.Time
}

func (d *Deps) pageSize() int {
	if d.PageSize <= 0 {
		return model.DefaultPageSize
	}
	return d.PageSize
}

func (d *Deps) timeout() time.Duration {
	if d.Timeout <= 0 {
		return model.DefaultRequestTimeout
	}
	return d.Timeout
}

func (d *Deps) today() time.Time {
	if d.Today != nil {
		return d.Today()
	}
	return time.Now()
}

func (d *Deps) success(msg string) tea.Cmd {
	_, cmd := d.Toasts.Success(msg, d.ToastTTL)
	return cmd
}

func (d *Deps) failure(msg string) tea.Cmd {
	_, cmd := d.Toasts.Error(msg, d.ToastTTL)
	return cmd
}

func (d *Deps) warning(msg string) tea.Cmd {
	_, cmd := d.Toasts.Warning(msg, d.ToastTTL)
	return cmd
}

var pageIDs atomic.Uint64

// doneMsg carries the outcome of one async call back to the page that issued
// it. Pages drop results whose owner is not their own id.
type doneMsg struct {
	owner uint64
	op    string
	value any
	err   error
}

// call runs fn off the update loop with the request timeout.
func (d *Deps) call(owner uint64, op string, fn func(ctx context.Context) (any, error)) tea.Cmd {
	timeout := d.timeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		v, err := fn(ctx)
		return doneMsg{owner: owner, op: op, value: v, err: err}
	}
}

// Route paths.
const (
	PathDashboard   = "/dashboard"
	PathAssets      = "/assets"
	PathCategories  = "/categories"
	PathLocations   = "/locations"
	PathDepartments = "/departments"
	PathVendors     = "/vendors"
	PathMaintenance = "/maintenance"
	PathReports     = "/reports"
)

// Routes returns the shell's route table in sidebar order.
func Routes(d *Deps) []router.Route {
	return []router.Route{
		{Path: PathDashboard, Title: "Dashboard", Load: func() (router.Page, error) { return NewDashboard(d), nil }},
		{Path: PathAssets, Title: "Assets", Load: func() (router.Page, error) { return NewAssets(d), nil }},
		{Path: PathCategories, Title: "Categories", Load: func() (router.Page, error) { return NewResource(d, categorySpec), nil }},
		{Path: PathLocations, Title: "Locations", Load: func() (router.Page, error) { return NewResource(d, locationSpec), nil }},
		{Path: PathDepartments, Title: "Departments", Load: func() (router.Page, error) { return NewResource(d, departmentSpec), nil }},
		{Path: PathVendors, Title: "Vendors", Load: func() (router.Page, error) { return NewResource(d, vendorSpec), nil }},
		{Path: PathMaintenance, Title: "Maintenance", Load: func() (router.Page, error) { return NewMaintenance(d), nil }},
		{Path: PathReports, Title: "Reports", Load: func() (router.Page, error) { return NewReports(d), nil }},
	}
}
