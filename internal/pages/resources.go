package pages

import (
	"context"
	"fmt"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/assetdesk/assetdesk/internal/model"
	"github.com/assetdesk/assetdesk/internal/ui/dialog"
	"github.com/assetdesk/assetdesk/internal/ui/layout"
	"github.com/assetdesk/assetdesk/internal/ui/table"
)

// resourceSpec describes a flat CRUD resource listed in one table.
type resourceSpec[T any] struct {
	title    string
	subtitle string
	singular string
	empty    string

	collection func(model.Inventory) model.Collection[T]
	id         func(T) int64
	name       func(T) string
	// parent is nil for resources without a hierarchy.
	parent  func(T) *int64
	columns func(parents []named) []table.Column[T]
	fields  func(v T, parents []named, self int64) []dialog.Field
}

// Resource is a list page over one resourceSpec.
type Resource[T any] struct {
	d     *Deps
	id    uint64
	mount *layout.Mount
	forms forms
	spec  resourceSpec[T]

	table   *table.Model[T]
	parents []named
	tableY  int
}

// NewResource creates a resource page.
func NewResource[T any](d *Deps, spec resourceSpec[T]) *Resource[T] {
	id := pageIDs.Add(1)
	return &Resource[T]{d: d, id: id, forms: forms{d: d, owner: id}, spec: spec}
}

// Init loads the parent options for hierarchical resources, then the table.
func (p *Resource[T]) Init(mount *layout.Mount) tea.Cmd {
	p.mount = mount
	if p.spec.parent == nil {
		return p.build()
	}
	coll, spec := p.spec.collection(p.d.Inventory), p.spec
	return p.d.call(p.id, "parents", func(ctx context.Context) (any, error) {
		return lookup(ctx, coll, func(v T) named { return named{spec.id(v), spec.name(v)} })
	})
}

func (p *Resource[T]) build() tea.Cmd {
	coll := p.spec.collection(p.d.Inventory)
	p.table = table.New(p.mount, table.Config[T]{
		Columns: p.spec.columns(p.parents),
		Fetch: func(ctx context.Context, page, size int) (table.Result[T], error) {
			res, err := coll.List(ctx, model.ListParams{Page: page, PageSize: size})
			if err != nil {
				return table.Result[T]{}, err
			}
			return table.Result[T]{Rows: res.Items, TotalItems: res.Total, TotalPages: res.Pages}, nil
		},
		PageSize:     p.d.pageSize(),
		EmptyMessage: p.spec.empty,
		Timeout:      p.d.timeout(),
		OnRowClick:   func(v T, _ int) tea.Cmd { return p.openForm(&v) },
		Actions: func(T) []table.Action {
			return []table.Action{
				{Kind: "edit", Label: "Edit", Key: "e"},
				{Kind: "delete", Label: "Delete", Key: "d"},
			}
		},
		OnAction: func(kind string, v T, _ int) tea.Cmd {
			if kind == "delete" {
				return p.confirmDelete(v)
			}
			return p.openForm(&v)
		},
	})
	return p.table.Load(1)
}

// Update routes table results, forms and keys.
func (p *Resource[T]) Update(msg tea.Msg) tea.Cmd {
	if handled, cmd := p.forms.update(msg); handled {
		return cmd
	}

	switch msg := msg.(type) {
	case doneMsg:
		if msg.owner != p.id {
			return nil
		}
		return p.done(msg)

	case tea.KeyMsg:
		if p.table == nil {
			return nil
		}
		if handled, cmd := p.table.Update(msg); handled {
			return cmd
		}
		if msg.String() == "n" {
			return p.openForm(nil)
		}
		return nil

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

func (p *Resource[T]) done(msg doneMsg) tea.Cmd {
	switch msg.op {
	case "parents":
		if msg.err != nil {
			log.Printf("pages: %s: parents: %v", strings.ToLower(p.spec.title), msg.err)
			return tea.Batch(p.d.warning("Could not load parent options"), p.build())
		}
		p.parents = msg.value.([]named)
		return p.build()

	case "delete":
		if msg.err != nil {
			return p.d.failure(msg.err.Error())
		}
		return tea.Batch(p.d.success(p.spec.singular+" deleted successfully"), p.refresh())
	}
	return nil
}

// refresh reloads the current page and, for hierarchies, the parent options.
func (p *Resource[T]) refresh() tea.Cmd {
	if p.spec.parent == nil {
		return p.table.Refresh()
	}
	return p.Init(p.mount)
}

func (p *Resource[T]) openForm(v *T) tea.Cmd {
	var zero T
	coll := p.spec.collection(p.d.Inventory)
	spec := formSpec{
		title:   "New " + p.spec.singular,
		fields:  p.spec.fields(zero, p.parents, 0),
		button:  "Create",
		success: p.spec.singular + " created successfully",
		submit: func(ctx context.Context, payload map[string]any, _ map[string]string) (any, error) {
			return coll.Create(ctx, payload)
		},
		after: func(any) tea.Cmd { return p.refresh() },
	}
	if v != nil {
		id := p.spec.id(*v)
		spec.title = "Edit " + p.spec.singular
		spec.fields = p.spec.fields(*v, p.parents, id)
		spec.button = "Update"
		spec.success = p.spec.singular + " updated successfully"
		spec.submit = func(ctx context.Context, payload map[string]any, _ map[string]string) (any, error) {
			return coll.Update(ctx, id, payload)
		}
	}
	return p.forms.open(spec)
}

func (p *Resource[T]) confirmDelete(v T) tea.Cmd {
	coll, id := p.spec.collection(p.d.Inventory), p.spec.id(v)
	return confirmThen(p.d, "Delete "+p.spec.singular,
		fmt.Sprintf("Are you sure you want to delete this %s?", strings.ToLower(p.spec.singular)),
		func() tea.Cmd {
			return p.d.call(p.id, "delete", func(ctx context.Context) (any, error) {
				return nil, coll.Delete(ctx, id)
			})
		})
}

// Busy reports whether the table is loading.
func (p *Resource[T]) Busy() bool { return p.table == nil || p.table.Busy() }

// View renders the heading and the table.
func (p *Resource[T]) View() string {
	lines := []string{heading(p.spec.title, p.spec.subtitle), ""}
	p.tableY = strings.Count(strings.Join(lines, "\n"), "\n") + 1

	body := layout.Spinner("Loading...")
	if p.table != nil {
		body = p.table.View()
	}
	lines = append(lines, body, "", keyHints("n", "new", "enter", "edit", "e", "edit", "d", "delete"))
	return strings.Join(lines, "\n")
}

func parentColumn[T any](parents []named, parent func(T) *int64) table.Column[T] {
	return table.Column[T]{
		Key:    "parent_id",
		Header: "Parent",
		Value:  func(v T) any { return parent(v) },
		Render: func(_ any, v T) string { return nameOf(parents, parent(v)) },
	}
}

func nameColumn[T any](name func(T) string) table.Column[T] {
	return table.Column[T]{Key: "name", Header: "Name", Value: func(v T) any { return name(v) }, MaxWidth: 32}
}

var categorySpec = resourceSpec[model.Category]{
	title:      "Categories",
	subtitle:   "Organize assets and their depreciation rules",
	singular:   "Category",
	empty:      "No categories yet. Create one to get started.",
	collection: func(inv model.Inventory) model.Collection[model.Category] { return inv.Categories() },
	id:         func(c model.Category) int64 { return c.ID },
	name:       func(c model.Category) string { return c.Name },
	parent:     func(c model.Category) *int64 { return c.ParentID },
	columns: func(parents []named) []table.Column[model.Category] {
		return []table.Column[model.Category]{
			nameColumn(func(c model.Category) string { return c.Name }),
			{Key: "depreciation_method", Header: "Depreciation", Value: func(c model.Category) any { return c.DepreciationMethod },
				Render: func(_ any, c model.Category) string { return methodLabel(c.DepreciationMethod) }},
			{Key: "useful_life_years", Header: "Useful Life", Value: func(c model.Category) any { return c.UsefulLifeYears },
				Render: func(_ any, c model.Category) string {
					if c.UsefulLifeYears == nil {
						return model.Placeholder
					}
					return fmt.Sprintf("%d years", *c.UsefulLifeYears)
				}},
			{Key: "salvage_value_percent", Header: "Salvage", Value: func(c model.Category) any { return c.SalvageValuePercent },
				Render: func(_ any, c model.Category) string { return fmt.Sprintf("%d%%", c.SalvageValuePercent) }},
			parentColumn(parents, func(c model.Category) *int64 { return c.ParentID }),
		}
	},
	fields: func(c model.Category, parents []named, self int64) []dialog.Field {
		method := c.DepreciationMethod
		if method == "" {
			method = model.MethodStraightLine
		}
		salvage := "0"
		if self != 0 {
			salvage = fmt.Sprint(c.SalvageValuePercent)
		}
		return []dialog.Field{
			{Key: "name", Label: "Name", Required: true, Value: c.Name},
			{Key: "description", Label: "Description", Value: str(c.Description)},
			{Key: "depreciation_method", Label: "Depreciation Method", Kind: dialog.SelectField, Choices: methodChoices, Value: method},
			{Key: "useful_life_years", Label: "Useful Life (years)", Kind: dialog.IntegerField, Value: intStr(c.UsefulLifeYears)},
			{Key: "salvage_value_percent", Label: "Salvage Value (%)", Kind: dialog.IntegerField, Value: salvage},
			{Key: "parent_id", Label: "Parent Category", Kind: dialog.SelectIDField, Choices: idChoices(parents, "None", self), Value: idStr(c.ParentID)},
		}
	},
}

var locationSpec = resourceSpec[model.Location]{
	title:      "Locations",
	subtitle:   "Sites, buildings and rooms",
	singular:   "Location",
	empty:      "No locations yet. Create one to get started.",
	collection: func(inv model.Inventory) model.Collection[model.Location] { return inv.Locations() },
	id:         func(l model.Location) int64 { return l.ID },
	name:       func(l model.Location) string { return l.Name },
	parent:     func(l model.Location) *int64 { return l.ParentID },
	columns: func(parents []named) []table.Column[model.Location] {
		return []table.Column[model.Location]{
			nameColumn(func(l model.Location) string { return l.Name }),
			textColumn("address", "Address", func(l model.Location) *string { return l.Address }),
			parentColumn(parents, func(l model.Location) *int64 { return l.ParentID }),
		}
	},
	fields: func(l model.Location, parents []named, self int64) []dialog.Field {
		return []dialog.Field{
			{Key: "name", Label: "Name", Required: true, Value: l.Name},
			{Key: "address", Label: "Address", Value: str(l.Address)},
			{Key: "parent_id", Label: "Parent Location", Kind: dialog.SelectIDField, Choices: idChoices(parents, "None", self), Value: idStr(l.ParentID)},
		}
	},
}

var departmentSpec = resourceSpec[model.Department]{
	title:      "Departments",
	subtitle:   "Organisational units that own assets",
	singular:   "Department",
	empty:      "No departments yet. Create one to get started.",
	collection: func(inv model.Inventory) model.Collection[model.Department] { return inv.Departments() },
	id:         func(d model.Department) int64 { return d.ID },
	name:       func(d model.Department) string { return d.Name },
	parent:     func(d model.Department) *int64 { return d.ParentID },
	columns: func(parents []named) []table.Column[model.Department] {
		return []table.Column[model.Department]{
			nameColumn(func(d model.Department) string { return d.Name }),
			textColumn("code", "Code", func(d model.Department) *string { return d.Code }),
			parentColumn(parents, func(d model.Department) *int64 { return d.ParentID }),
		}
	},
	fields: func(d model.Department, parents []named, self int64) []dialog.Field {
		return []dialog.Field{
			{Key: "name", Label: "Name", Required: true, Value: d.Name},
			{Key: "code", Label: "Code", Value: str(d.Code)},
			{Key: "parent_id", Label: "Parent Department", Kind: dialog.SelectIDField, Choices: idChoices(parents, "None", self), Value: idStr(d.ParentID)},
		}
	},
}

var vendorSpec = resourceSpec[model.Vendor]{
	title:      "Vendors",
	subtitle:   "Suppliers and service providers",
	singular:   "Vendor",
	empty:      "No vendors yet. Create one to get started.",
	collection: func(inv model.Inventory) model.Collection[model.Vendor] { return inv.Vendors() },
	id:         func(v model.Vendor) int64 { return v.ID },
	name:       func(v model.Vendor) string { return v.Name },
	columns: func([]named) []table.Column[model.Vendor] {
		return []table.Column[model.Vendor]{
			nameColumn(func(v model.Vendor) string { return v.Name }),
			textColumn("contact_email", "Email", func(v model.Vendor) *string { return v.ContactEmail }),
			textColumn("phone", "Phone", func(v model.Vendor) *string { return v.Phone }),
			textColumn("website", "Website", func(v model.Vendor) *string { return v.Website }),
		}
	},
	fields: func(v model.Vendor, _ []named, _ int64) []dialog.Field {
		return []dialog.Field{
			{Key: "name", Label: "Name", Required: true, Value: v.Name},
			{Key: "contact_email", Label: "Contact Email", Value: str(v.ContactEmail)},
			{Key: "phone", Label: "Phone", Value: str(v.Phone)},
			{Key: "address", Label: "Address", Value: str(v.Address)},
			{Key: "website", Label: "Website", Value: str(v.Website)},
			{Key: "notes", Label: "Notes", Value: str(v.Notes)},
		}
	},
}
