package pages

import (
	"context"
	"fmt"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/assetdesk/assetdesk/internal/model"
	"github.com/assetdesk/assetdesk/internal/ui/dialog"
	"github.com/assetdesk/assetdesk/internal/ui/layout"
	"github.com/assetdesk/assetdesk/internal/ui/table"
	"github.com/assetdesk/assetdesk/internal/ui/theme"
)

// QR parameters requested by the detail view.
const (
	qrSize   = 10
	qrBorder = 2
)

type assetLookups struct {
	categories  []named
	locations   []named
	departments []named
	vendors     []named
}

// Assets is the asset list with filters, CRUD, assignment and the detail view.
type Assets struct {
	d     *Deps
	id    uint64
	mount *layout.Mount
	forms forms

	table *table.Model[model.Asset]
	look  assetLookups

	// filter positions; 0 means all
	status   int
	category int

	detail *assetDetail
	tableY int
}

// NewAssets creates the assets page.
func NewAssets(d *Deps) *Assets {
	id := pageIDs.Add(1)
	return &Assets{d: d, id: id, forms: forms{d: d, owner: id}}
}

// Init loads the select options. A lookup failure is logged and the table
// still loads, with ids shown in place of names.
func (p *Assets) Init(mount *layout.Mount) tea.Cmd {
	p.mount = mount
	return p.d.call(p.id, "lookups", func(ctx context.Context) (any, error) {
		return loadAssetLookups(ctx, p.d.Inventory)
	})
}

func loadAssetLookups(ctx context.Context, inv model.Inventory) (assetLookups, error) {
	var l assetLookups
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		l.categories, err = lookup(gctx, inv.Categories(), func(c model.Category) named { return named{c.ID, c.Name} })
		return err
	})
	g.Go(func() (err error) {
		l.locations, err = lookup(gctx, inv.Locations(), func(c model.Location) named { return named{c.ID, c.Name} })
		return err
	})
	g.Go(func() (err error) {
		l.departments, err = lookup(gctx, inv.Departments(), func(c model.Department) named { return named{c.ID, c.Name} })
		return err
	})
	g.Go(func() (err error) {
		l.vendors, err = lookup(gctx, inv.Vendors(), func(c model.Vendor) named { return named{c.ID, c.Name} })
		return err
	})
	return l, g.Wait()
}

// filters returns the active list filters.
func (p *Assets) filters() map[string]string {
	f := map[string]string{}
	if p.status > 0 {
		f["status"] = string(model.AssetStatuses[p.status-1])
	}
	if p.category > 0 && p.category <= len(p.look.categories) {
		f["category_id"] = fmt.Sprint(p.look.categories[p.category-1].ID)
	}
	return f
}

// reload rebuilds the table around the current filters and loads page 1.
// The fetch closure captures a snapshot so it never reads page state off the
// update loop.
func (p *Assets) reload() tea.Cmd {
	filters := p.filters()
	assets := p.d.Inventory.Assets()
	p.table = table.New(p.mount, table.Config[model.Asset]{
		Columns: []table.Column[model.Asset]{
			{Key: "asset_tag", Header: "Tag", Value: func(a model.Asset) any { return a.AssetTag }},
			{Key: "name", Header: "Name", Value: func(a model.Asset) any { return a.Name }, MaxWidth: 32},
			{Key: "status", Header: "Status", Value: func(a model.Asset) any { return a.Status },
				Render: func(_ any, a model.Asset) string { return badge(a.Status) }},
			{Key: "category_id", Header: "Category", Value: func(a model.Asset) any { return a.CategoryID },
				Render: func(_ any, a model.Asset) string { return nameOf(p.look.categories, a.CategoryID) }},
			{Key: "location_id", Header: "Location", Value: func(a model.Asset) any { return a.LocationID },
				Render: func(_ any, a model.Asset) string { return nameOf(p.look.locations, a.LocationID) }},
			{Key: "current_value", Header: "Value", Value: func(a model.Asset) any { return a.CurrentValue },
				Render: func(_ any, a model.Asset) string { return model.FormatCurrency(a.CurrentValue) }},
		},
		Fetch: func(ctx context.Context, page, size int) (table.Result[model.Asset], error) {
			res, err := assets.List(ctx, model.ListParams{Page: page, PageSize: size, Filters: filters})
			if err != nil {
				return table.Result[model.Asset]{}, err
			}
			return table.Result[model.Asset]{Rows: res.Items, TotalItems: res.Total, TotalPages: res.Pages}, nil
		},
		PageSize:     p.d.pageSize(),
		EmptyMessage: "No assets found. Add your first asset!",
		Timeout:      p.d.timeout(),
		OnRowClick:   func(a model.Asset, _ int) tea.Cmd { return p.openDetail(a.ID, a.Name) },
		Actions:      assetActions,
		OnAction:     p.onAction,
	})
	return p.table.Load(1)
}

func assetActions(a model.Asset) []table.Action {
	actions := []table.Action{
		{Kind: "edit", Label: "Edit", Key: "e"},
		{Kind: "delete", Label: "Delete", Key: "d"},
	}
	switch a.Status {
	case model.StatusAvailable, model.StatusInMaintenance:
		actions = append(actions, table.Action{Kind: "assign", Label: "Assign", Key: "a"})
	case model.StatusAssigned:
		actions = append(actions, table.Action{Kind: "return", Label: "Return", Key: "R"})
	}
	return actions
}

func (p *Assets) onAction(kind string, a model.Asset, _ int) tea.Cmd {
	switch kind {
	case "edit":
		return p.openForm(&a)
	case "delete":
		return p.confirmDelete(a)
	case "assign":
		return p.openAssign(a)
	case "return":
		return p.openReturn(a)
	}
	return nil
}

// Update routes table results, form submissions, detail actions and keys.
func (p *Assets) Update(msg tea.Msg) tea.Cmd {
	if handled, cmd := p.forms.update(msg); handled {
		return cmd
	}

	switch msg := msg.(type) {
	case doneMsg:
		if msg.owner != p.id {
			return nil
		}
		return p.done(msg)

	case detailMsg:
		return p.detailAction(msg)

	case tea.KeyMsg:
		if p.table == nil {
			return nil
		}
		if handled, cmd := p.table.Update(msg); handled {
			return cmd
		}
		return p.handleKey(msg)

	case tea.MouseMsg:
		if p.table == nil || msg.Y < p.tableY {
			return nil
		}
		_, cmd := p.table.Update(layout.Shift(msg, 0, p.tableY))
		return cmd
	}

	if p.table != nil {
		_, cmd := p.table.Update(msg)
		return cmd
	}
	return nil
}

func (p *Assets) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "n":
		return p.openForm(nil)
	case "f":
		p.status = (p.status + 1) % (len(model.AssetStatuses) + 1)
		return p.reload()
	case "c":
		p.category = (p.category + 1) % (len(p.look.categories) + 1)
		return p.reload()
	case "a":
		if a, _, ok := p.table.Selected(); ok {
			return p.openAssign(a)
		}
	case "R":
		if a, _, ok := p.table.Selected(); ok {
			return p.openReturn(a)
		}
	}
	return nil
}

func (p *Assets) done(msg doneMsg) tea.Cmd {
	switch msg.op {
	case "lookups":
		var cmds []tea.Cmd
		if l, ok := msg.value.(assetLookups); ok {
			p.look = l
		}
		if msg.err != nil {
			log.Printf("pages: assets: lookups: %v", msg.err)
			cmds = append(cmds, p.d.warning("Could not load categories, locations or vendors"))
		}
		return tea.Batch(append(cmds, p.reload())...)

	case "delete":
		if msg.err != nil {
			return p.d.failure(msg.err.Error())
		}
		return tea.Batch(p.d.success("Asset deleted successfully"), p.table.Refresh())

	case "detail":
		return p.showDetail(msg)

	case "qr", "download":
		if msg.err != nil {
			return p.d.failure(msg.err.Error())
		}
		return p.d.success(fmt.Sprintf("Saved to %s", msg.value))

	case "delete-attachment":
		if msg.err != nil {
			return p.d.failure("Failed to delete attachment")
		}
		a := msg.value.(model.Asset)
		return tea.Batch(p.d.success("Attachment deleted"), p.openDetail(a.ID, a.Name))
	}
	return nil
}

func (p *Assets) openForm(a *model.Asset) tea.Cmd {
	var v model.Asset
	if a != nil {
		v = *a
	}
	status := string(v.Status)
	if status == "" {
		status = string(model.StatusAvailable)
	}
	fields := []dialog.Field{
		{Key: "asset_tag", Label: "Asset Tag", Required: true, Value: v.AssetTag},
		{Key: "serial_number", Label: "Serial Number", Value: str(v.SerialNumber)},
		{Key: "name", Label: "Name", Required: true, Value: v.Name},
		{Key: "description", Label: "Description", Value: str(v.Description)},
		{Key: "status", Label: "Status", Kind: dialog.SelectField, Choices: statusChoices(), Value: status},
		{Key: "category_id", Label: "Category", Kind: dialog.SelectIDField, Choices: idChoices(p.look.categories, "Select Category", 0), Value: idStr(v.CategoryID)},
		{Key: "location_id", Label: "Location", Kind: dialog.SelectIDField, Choices: idChoices(p.look.locations, "Select Location", 0), Value: idStr(v.LocationID)},
		{Key: "department_id", Label: "Department", Kind: dialog.SelectIDField, Choices: idChoices(p.look.departments, "Select Department", 0), Value: idStr(v.DepartmentID)},
		{Key: "vendor_id", Label: "Vendor", Kind: dialog.SelectIDField, Choices: idChoices(p.look.vendors, "Select Vendor", 0), Value: idStr(v.VendorID)},
		{Key: "purchase_date", Label: "Purchase Date", Kind: dialog.DateField, Value: date(v.PurchaseDate)},
		{Key: "purchase_price", Label: "Purchase Price", Kind: dialog.NumberField, Value: moneyStr(v.PurchasePrice)},
		{Key: "warranty_expiry", Label: "Warranty Expiry", Kind: dialog.DateField, Value: date(v.WarrantyExpiry)},
	}

	assets := p.d.Inventory.Assets()
	spec := formSpec{
		title:   "New Asset",
		size:    dialog.Large,
		fields:  fields,
		button:  "Create",
		success: "Asset created successfully",
		submit: func(ctx context.Context, payload map[string]any, _ map[string]string) (any, error) {
			return assets.Create(ctx, payload)
		},
		after: func(any) tea.Cmd { return p.table.Refresh() },
	}
	if a != nil {
		id := a.ID
		spec.title, spec.button, spec.success = "Edit Asset", "Update", "Asset updated successfully"
		spec.submit = func(ctx context.Context, payload map[string]any, _ map[string]string) (any, error) {
			return assets.Update(ctx, id, payload)
		}
	}
	return p.forms.open(spec)
}

func (p *Assets) confirmDelete(a model.Asset) tea.Cmd {
	assets, id := p.d.Inventory.Assets(), a.ID
	return confirmThen(p.d, "Delete Asset",
		"Are you sure you want to delete this asset? This action cannot be undone.",
		func() tea.Cmd {
			return p.d.call(p.id, "delete", func(ctx context.Context) (any, error) {
				return nil, assets.Delete(ctx, id)
			})
		})
}

func (p *Assets) openAssign(a model.Asset) tea.Cmd {
	switch a.Status {
	case model.StatusAssigned:
		return p.d.warning("Asset is already assigned")
	case model.StatusAvailable, model.StatusInMaintenance:
	default:
		return p.d.warning(fmt.Sprintf("Cannot assign asset with status %s", a.Status))
	}
	inv, id := p.d.Inventory, a.ID
	return p.forms.open(formSpec{
		title: "Assign Asset",
		fields: []dialog.Field{
			{Key: "assignee_id", Label: "Assignee ID", Required: true, Placeholder: "Employee ID, badge number, etc."},
			{Key: "assignee_name", Label: "Assignee Name"},
			{Key: "notes", Label: "Notes"},
		},
		button:  "Assign Asset",
		success: "Asset assigned successfully",
		submit: func(ctx context.Context, _ map[string]any, v map[string]string) (any, error) {
			asg := model.Assignment{AssigneeID: v["assignee_id"], AssigneeName: v["assignee_name"]}
			if n := v["notes"]; n != "" {
				asg.Notes = &n
			}
			return inv.AssignAsset(ctx, id, asg)
		},
		after: func(any) tea.Cmd { return p.table.Refresh() },
	})
}

func (p *Assets) openReturn(a model.Asset) tea.Cmd {
	if a.Status != model.StatusAssigned {
		return p.d.warning("Asset is not currently assigned")
	}
	inv, id := p.d.Inventory, a.ID
	return p.forms.open(formSpec{
		title:   "Return Asset",
		fields:  []dialog.Field{{Key: "notes", Label: "Return Notes"}},
		button:  "Return Asset",
		success: "Asset returned successfully",
		submit: func(ctx context.Context, _ map[string]any, v map[string]string) (any, error) {
			return inv.ReturnAsset(ctx, id, v["notes"])
		},
		after: func(any) tea.Cmd { return p.table.Refresh() },
	})
}

// Busy reports whether the table is loading.
func (p *Assets) Busy() bool { return p.table == nil || p.table.Busy() }

// View renders the header, the filter line and the table.
func (p *Assets) View() string {
	status := "All"
	if p.status > 0 {
		status = model.AssetStatuses[p.status-1].Label()
	}
	category := "All"
	if p.category > 0 && p.category <= len(p.look.categories) {
		category = p.look.categories[p.category-1].Name
	}

	lines := []string{
		heading("Assets", "Manage your organization's assets"),
		"",
		fmt.Sprintf("%s %s   %s %s",
			theme.Muted.Render("Status:"), theme.Bold.Render(status),
			theme.Muted.Render("Category:"), theme.Bold.Render(category)),
		"",
	}
	p.tableY = strings.Count(strings.Join(lines, "\n"), "\n") + 1

	body := layout.Spinner("Loading...")
	if p.table != nil {
		body = p.table.View()
	}
	lines = append(lines, body, "",
		keyHints("n", "new", "enter", "details", "e", "edit", "d", "delete", "a", "assign", "R", "return", "f", "status", "c", "category"))
	return strings.Join(lines, "\n")
}
