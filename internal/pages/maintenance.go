package pages

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/assetdesk/assetdesk/internal/model"
	"github.com/assetdesk/assetdesk/internal/ui/dialog"
	"github.com/assetdesk/assetdesk/internal/ui/layout"
	"github.com/assetdesk/assetdesk/internal/ui/table"
	"github.com/assetdesk/assetdesk/internal/ui/theme"
)

const dateLayout = "2006-01-02"

// upcomingWindows are the look-ahead choices for the upcoming table, in days.
var upcomingWindows = []int{7, 30, 90}

type assetMaintenance struct {
	id        int64
	asset     model.Asset
	schedules []model.MaintenanceSchedule
}

// Maintenance lists upcoming schedules and, for one selected asset, its
// maintenance records.
type Maintenance struct {
	d     *Deps
	id    uint64
	mount *layout.Mount
	forms forms

	window   int
	upcoming *table.Model[model.MaintenanceSchedule]

	// assetID is zero while the upcoming view is shown.
	assetID int64
	asset   *assetMaintenance
	records *table.Model[model.MaintenanceRecord]

	tableY int
}

// NewMaintenance creates the maintenance page.
func NewMaintenance(d *Deps) *Maintenance {
	id := pageIDs.Add(1)
	return &Maintenance{d: d, id: id, forms: forms{d: d, owner: id}, window: 1}
}

// Init loads the upcoming schedules.
func (p *Maintenance) Init(mount *layout.Mount) tea.Cmd {
	p.mount = mount
	return p.loadUpcoming()
}

func (p *Maintenance) days() int { return upcomingWindows[p.window] }

func (p *Maintenance) loadUpcoming() tea.Cmd {
	inv, days := p.d.Inventory, p.days()
	today := p.d.today()
	p.upcoming = table.New(p.mount, table.Config[model.MaintenanceSchedule]{
		Columns: []table.Column[model.MaintenanceSchedule]{
			{Key: "asset_id", Header: "Asset", Value: func(s model.MaintenanceSchedule) any { return fmt.Sprintf("#%d", s.AssetID) }},
			{Key: "description", Header: "Description", Value: func(s model.MaintenanceSchedule) any { return s.Description }, MaxWidth: 36},
			{Key: "frequency_days", Header: "Frequency", Value: func(s model.MaintenanceSchedule) any { return s.FrequencyDays },
				Render: func(_ any, s model.MaintenanceSchedule) string { return fmt.Sprintf("every %d days", s.FrequencyDays) }},
			{Key: "next_due", Header: "Next Due", Value: func(s model.MaintenanceSchedule) any { return s.NextDue },
				Render: func(_ any, s model.MaintenanceSchedule) string {
					due := model.FormatDate(&s.NextDue)
					switch n := dueIn(s, today); {
					case n < 0:
						return theme.Error.Render(due + " (overdue)")
					case n == 0:
						return theme.Warning.Render(due + " (today)")
					default:
						return theme.Warning.Render(fmt.Sprintf("%s (%d days)", due, n))
					}
				}},
			{Key: "last_performed", Header: "Last Performed", Value: func(s model.MaintenanceSchedule) any { return s.LastPerformed },
				Render: func(_ any, s model.MaintenanceSchedule) string { return model.FormatDate(s.LastPerformed) }},
		},
		Fetch: func(ctx context.Context, page, size int) (table.Result[model.MaintenanceSchedule], error) {
			rows, err := inv.UpcomingMaintenance(ctx, days)
			if err != nil {
				return table.Result[model.MaintenanceSchedule]{}, err
			}
			return slicePage(rows, page, size), nil
		},
		PageSize:     p.d.pageSize(),
		EmptyMessage: fmt.Sprintf("No maintenance due in the next %d days", days),
		Timeout:      p.d.timeout(),
		OnRowClick:   func(s model.MaintenanceSchedule, _ int) tea.Cmd { return p.openAsset(s.AssetID) },
		Actions: func(model.MaintenanceSchedule) []table.Action {
			return []table.Action{
				{Kind: "complete", Label: "Complete", Key: "c"},
				{Kind: "delete", Label: "Delete", Key: "d"},
			}
		},
		OnAction: func(kind string, s model.MaintenanceSchedule, _ int) tea.Cmd {
			if kind == "delete" {
				return p.confirmDeleteSchedule(s)
			}
			return p.complete(s)
		},
	})
	return p.upcoming.Load(1)
}

// openAsset switches to the records view for one asset.
func (p *Maintenance) openAsset(assetID int64) tea.Cmd {
	p.assetID = assetID
	p.asset = nil
	inv := p.d.Inventory
	p.records = table.New(p.mount, table.Config[model.MaintenanceRecord]{
		Columns: []table.Column[model.MaintenanceRecord]{
			{Key: "maintenance_type", Header: "Type", Value: func(r model.MaintenanceRecord) any { return maintenanceLabel(r.MaintenanceType) }},
			textColumn("description", "Description", func(r model.MaintenanceRecord) *string { return r.Description }),
			{Key: "scheduled_date", Header: "Scheduled", Value: func(r model.MaintenanceRecord) any { return model.FormatDate(r.ScheduledDate) }},
			{Key: "completed_date", Header: "Completed", Value: func(r model.MaintenanceRecord) any { return model.FormatDate(r.CompletedDate) }},
			{Key: "cost", Header: "Cost", Value: func(r model.MaintenanceRecord) any { return model.FormatCurrency(r.Cost) }},
			textColumn("performed_by", "Performed By", func(r model.MaintenanceRecord) *string { return r.PerformedBy }),
		},
		Fetch: func(ctx context.Context, page, size int) (table.Result[model.MaintenanceRecord], error) {
			res, err := inv.MaintenanceRecords(ctx, assetID, model.ListParams{Page: page, PageSize: size})
			if err != nil {
				return table.Result[model.MaintenanceRecord]{}, err
			}
			return table.Result[model.MaintenanceRecord]{Rows: res.Items, TotalItems: res.Total, TotalPages: res.Pages}, nil
		},
		PageSize:     p.d.pageSize(),
		EmptyMessage: "No maintenance records for this asset",
		Timeout:      p.d.timeout(),
		OnRowClick:   func(r model.MaintenanceRecord, _ int) tea.Cmd { return p.openRecordForm(&r) },
		Actions: func(model.MaintenanceRecord) []table.Action {
			return []table.Action{
				{Kind: "edit", Label: "Edit", Key: "e"},
				{Kind: "delete", Label: "Delete", Key: "d"},
			}
		},
		OnAction: func(kind string, r model.MaintenanceRecord, _ int) tea.Cmd {
			if kind == "delete" {
				return p.confirmDeleteRecord(r)
			}
			return p.openRecordForm(&r)
		},
	})
	return tea.Batch(p.records.Load(1), p.loadAsset())
}

func (p *Maintenance) loadAsset() tea.Cmd {
	inv, assetID := p.d.Inventory, p.assetID
	return p.d.call(p.id, "asset", func(ctx context.Context) (any, error) {
		m := assetMaintenance{id: assetID}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			m.asset, err = inv.Assets().Get(gctx, assetID)
			return err
		})
		g.Go(func() (err error) {
			m.schedules, err = inv.Schedules(gctx, assetID)
			return err
		})
		return m, g.Wait()
	})
}

func (p *Maintenance) refreshRecords() tea.Cmd {
	if p.records == nil {
		return nil
	}
	return p.records.Refresh()
}

func (p *Maintenance) back() tea.Cmd {
	p.assetID = 0
	p.asset = nil
	p.records = nil
	return p.upcoming.Refresh()
}

// Update routes table results, forms and keys for the active view.
func (p *Maintenance) Update(msg tea.Msg) tea.Cmd {
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
		if handled, cmd := p.updateTable(msg); handled {
			return cmd
		}
		return p.handleKey(msg)

	case tea.MouseMsg:
		if msg.Y < p.tableY {
			return nil
		}
		_, cmd := p.updateTable(layout.Shift(msg, 0, p.tableY))
		return cmd
	}

	var cmds []tea.Cmd
	if p.upcoming != nil {
		_, cmd := p.upcoming.Update(msg)
		cmds = append(cmds, cmd)
	}
	if p.records != nil {
		_, cmd := p.records.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (p *Maintenance) updateTable(msg tea.Msg) (bool, tea.Cmd) {
	if p.assetID != 0 && p.records != nil {
		return p.records.Update(msg)
	}
	if p.upcoming != nil {
		return p.upcoming.Update(msg)
	}
	return false, nil
}

func (p *Maintenance) handleKey(msg tea.KeyMsg) tea.Cmd {
	if p.assetID != 0 {
		switch msg.String() {
		case "esc", "b":
			return p.back()
		case "n":
			return p.openRecordForm(nil)
		case "S":
			return p.openScheduleForm(p.assetID)
		}
		return nil
	}

	switch msg.String() {
	case "w":
		p.window = (p.window + 1) % len(upcomingWindows)
		return p.loadUpcoming()
	case "s":
		return p.openAssetPicker()
	case "S":
		return p.openScheduleForm(0)
	}
	return nil
}

func (p *Maintenance) done(msg doneMsg) tea.Cmd {
	switch msg.op {
	case "asset":
		m := msg.value.(assetMaintenance)
		if m.id != p.assetID {
			return nil
		}
		if msg.err != nil {
			return tea.Batch(p.d.failure(msg.err.Error()), p.back())
		}
		p.asset = &m

	case "delete-record":
		if msg.err != nil {
			return p.d.failure(msg.err.Error())
		}
		return tea.Batch(p.d.success("Maintenance record deleted"), p.refreshRecords())

	case "delete-schedule":
		if msg.err != nil {
			return p.d.failure(msg.err.Error())
		}
		return tea.Batch(p.d.success("Maintenance schedule deleted"), p.upcoming.Refresh())

	case "complete":
		if msg.err != nil {
			return p.d.failure(msg.err.Error())
		}
		return tea.Batch(p.d.success("Maintenance completed"), p.upcoming.Refresh())
	}
	return nil
}

func (p *Maintenance) openAssetPicker() tea.Cmd {
	return p.forms.open(formSpec{
		title:  "View Asset Maintenance",
		size:   dialog.Small,
		fields: []dialog.Field{{Key: "asset_id", Label: "Asset ID", Kind: dialog.IntegerField, Required: true}},
		button: "Open",
		submit: func(_ context.Context, _ map[string]any, v map[string]string) (any, error) {
			return parseAssetID(v["asset_id"])
		},
		after: func(v any) tea.Cmd { return p.openAsset(v.(int64)) },
	})
}

func parseAssetID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("asset id must be a positive number")
	}
	return id, nil
}

func (p *Maintenance) openRecordForm(r *model.MaintenanceRecord) tea.Cmd {
	var v model.MaintenanceRecord
	if r != nil {
		v = *r
	}
	kind := v.MaintenanceType
	if kind == "" {
		kind = model.MaintenancePreventive
	}
	inv, assetID := p.d.Inventory, p.assetID
	spec := formSpec{
		title: "Add Maintenance Record",
		fields: []dialog.Field{
			{Key: "maintenance_type", Label: "Type", Kind: dialog.SelectField, Choices: maintenanceChoices, Value: kind},
			{Key: "description", Label: "Description", Value: str(v.Description)},
			{Key: "scheduled_date", Label: "Scheduled Date", Kind: dialog.DateField, Value: date(v.ScheduledDate)},
			{Key: "completed_date", Label: "Completed Date", Kind: dialog.DateField, Value: date(v.CompletedDate)},
			{Key: "cost", Label: "Cost", Kind: dialog.NumberField, Value: moneyStr(v.Cost)},
			{Key: "performed_by", Label: "Performed By", Value: str(v.PerformedBy)},
			{Key: "notes", Label: "Notes", Value: str(v.Notes)},
		},
		button:  "Add Record",
		success: "Maintenance record added",
		submit: func(ctx context.Context, payload map[string]any, _ map[string]string) (any, error) {
			return inv.CreateMaintenanceRecord(ctx, assetID, payload)
		},
		after: func(any) tea.Cmd { return p.refreshRecords() },
	}
	if r != nil {
		id := r.ID
		spec.title, spec.button, spec.success = "Edit Maintenance Record", "Update", "Maintenance record updated"
		spec.submit = func(ctx context.Context, payload map[string]any, _ map[string]string) (any, error) {
			return inv.UpdateMaintenanceRecord(ctx, id, payload)
		}
	}
	return p.forms.open(spec)
}

// openScheduleForm creates a schedule. assetID zero asks for the asset.
func (p *Maintenance) openScheduleForm(assetID int64) tea.Cmd {
	var fields []dialog.Field
	if assetID == 0 {
		fields = append(fields, dialog.Field{Key: "asset_id", Label: "Asset ID", Kind: dialog.IntegerField, Required: true})
	}
	fields = append(fields,
		dialog.Field{Key: "description", Label: "Description", Required: true},
		dialog.Field{Key: "frequency_days", Label: "Frequency (days)", Kind: dialog.IntegerField, Required: true, Value: "30"},
		dialog.Field{Key: "next_due", Label: "Next Due", Kind: dialog.DateField, Required: true,
			Value: p.d.today().AddDate(0, 0, 30).Format(dateLayout)},
	)
	inv := p.d.Inventory
	return p.forms.open(formSpec{
		title:   "Add Maintenance Schedule",
		fields:  fields,
		button:  "Create",
		success: "Maintenance schedule created",
		submit: func(ctx context.Context, payload map[string]any, v map[string]string) (any, error) {
			id := assetID
			if id == 0 {
				var err error
				if id, err = parseAssetID(v["asset_id"]); err != nil {
					return nil, err
				}
				delete(payload, "asset_id")
			}
			return inv.CreateSchedule(ctx, id, payload)
		},
		after: func(any) tea.Cmd {
			if p.assetID != 0 {
				return p.loadAsset()
			}
			return p.upcoming.Refresh()
		},
	})
}

// complete records the schedule as performed today and moves its next due
// date forward by its frequency.
func (p *Maintenance) complete(s model.MaintenanceSchedule) tea.Cmd {
	inv := p.d.Inventory
	today := p.d.today()
	done := today.Format(dateLayout)
	next := today.AddDate(0, 0, s.FrequencyDays).Format(dateLayout)
	return p.d.call(p.id, "complete", func(ctx context.Context) (any, error) {
		desc := s.Description
		if _, err := inv.CreateMaintenanceRecord(ctx, s.AssetID, map[string]any{
			"maintenance_type": model.MaintenancePreventive,
			"description":      desc,
			"scheduled_date":   model.FormatDate(&s.NextDue),
			"completed_date":   done,
		}); err != nil {
			return nil, err
		}
		return inv.UpdateSchedule(ctx, s.ID, map[string]any{
			"last_performed": done,
			"next_due":       next,
		})
	})
}

func (p *Maintenance) confirmDeleteRecord(r model.MaintenanceRecord) tea.Cmd {
	inv, id := p.d.Inventory, r.ID
	return confirmThen(p.d, "Delete Maintenance Record",
		"Are you sure you want to delete this maintenance record?",
		func() tea.Cmd {
			return p.d.call(p.id, "delete-record", func(ctx context.Context) (any, error) {
				return nil, inv.DeleteMaintenanceRecord(ctx, id)
			})
		})
}

func (p *Maintenance) confirmDeleteSchedule(s model.MaintenanceSchedule) tea.Cmd {
	inv, id := p.d.Inventory, s.ID
	return confirmThen(p.d, "Delete Maintenance Schedule",
		"Are you sure you want to delete this maintenance schedule?",
		func() tea.Cmd {
			return p.d.call(p.id, "delete-schedule", func(ctx context.Context) (any, error) {
				return nil, inv.DeleteSchedule(ctx, id)
			})
		})
}

// Busy reports whether the visible table is loading.
func (p *Maintenance) Busy() bool {
	if p.assetID != 0 {
		return p.records != nil && p.records.Busy()
	}
	return p.upcoming != nil && p.upcoming.Busy()
}

// View renders the active view.
func (p *Maintenance) View() string {
	if p.assetID != 0 {
		return p.viewAsset()
	}
	lines := []string{
		heading("Maintenance", "Track maintenance schedules and records"),
		"",
		theme.Bold.Render(fmt.Sprintf("Upcoming Maintenance (next %d days)", p.days())),
	}
	p.tableY = strings.Count(strings.Join(lines, "\n"), "\n") + 1

	body := layout.Spinner("Loading...")
	if p.upcoming != nil {
		body = p.upcoming.View()
	}
	lines = append(lines, body, "",
		keyHints("enter", "records", "c", "complete", "d", "delete", "S", "new schedule", "s", "find asset", "w", "window"))
	return strings.Join(lines, "\n")
}

func (p *Maintenance) viewAsset() string {
	title := fmt.Sprintf("Asset #%d", p.assetID)
	if p.asset != nil {
		title = fmt.Sprintf("%s (%s)", p.asset.asset.Name, p.asset.asset.AssetTag)
	}
	lines := []string{
		heading("Maintenance", title),
		"",
		theme.Bold.Render("Maintenance Records"),
	}
	p.tableY = strings.Count(strings.Join(lines, "\n"), "\n") + 1

	body := layout.Spinner("Loading...")
	if p.records != nil {
		body = p.records.View()
	}
	lines = append(lines, body, "", theme.Bold.Render("Schedules"))
	switch {
	case p.asset == nil:
		lines = append(lines, layout.Spinner("Loading..."))
	case len(p.asset.schedules) == 0:
		lines = append(lines, theme.Muted.Render("No schedules for this asset"))
	default:
		for _, s := range p.asset.schedules {
			state := ""
			if !s.IsActive {
				state = theme.Muted.Render(" (inactive)")
			}
			lines = append(lines, fmt.Sprintf("%s · every %d days · next %s%s",
				s.Description, s.FrequencyDays, model.FormatDate(&s.NextDue), state))
		}
	}
	lines = append(lines, "", keyHints("n", "add record", "e", "edit", "d", "delete", "S", "add schedule", "esc", "back"))
	return strings.Join(lines, "\n")
}

// dueIn reports the whole days from today until the schedule is due.
func dueIn(s model.MaintenanceSchedule, today time.Time) int {
	due, err := time.Parse(dateLayout, model.FormatDate(&s.NextDue))
	if err != nil {
		return 0
	}
	y, m, d := today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(due.Sub(start).Hours() / 24)
}
