package pages

import (
	"context"
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/assetdesk/assetdesk/internal/model"
	"github.com/assetdesk/assetdesk/internal/ui/layout"
	"github.com/assetdesk/assetdesk/internal/ui/textutil"
	"github.com/assetdesk/assetdesk/internal/ui/theme"
)

const (
	dashboardSample = 100
	recentCount     = 5
	chartHeight     = 8
)

// Stats summarises a sample of assets.
type Stats struct {
	Total         int
	Available     int
	Assigned      int
	InMaintenance int
	Retired       int
	Disposed      int
	TotalValue    float64
}

// ComputeStats counts assets per status and sums their current value.
func ComputeStats(assets []model.Asset) Stats {
	s := Stats{Total: len(assets)}
	for _, a := range assets {
		switch a.Status {
		case model.StatusAvailable:
			s.Available++
		case model.StatusAssigned:
			s.Assigned++
		case model.StatusInMaintenance:
			s.InMaintenance++
		case model.StatusRetired:
			s.Retired++
		case model.StatusDisposed:
			s.Disposed++
		}
		if a.CurrentValue != nil {
			s.TotalValue += a.CurrentValue.Float()
		}
	}
	return s
}

type dashboardData struct {
	assets   []model.Asset
	upcoming []model.MaintenanceSchedule
}

// Dashboard shows summary cards, a status chart, recent assets and upcoming
// maintenance.
type Dashboard struct {
	d     *Deps
	id    uint64
	mount *layout.Mount

	stats    Stats
	recent   []model.Asset
	upcoming []model.MaintenanceSchedule
	loading  bool
}

// NewDashboard creates the dashboard page.
func NewDashboard(d *Deps) *Dashboard {
	return &Dashboard{d: d, id: pageIDs.Add(1)}
}

// Init fetches the asset sample and the upcoming schedules concurrently. A
// failure of either fails the navigation.
func (p *Dashboard) Init(mount *layout.Mount) tea.Cmd {
	p.mount = mount
	p.loading = true
	return p.fetch(func(v any, err error) tea.Msg {
		if err != nil {
			return fmt.Errorf("pages: dashboard: %w", err)
		}
		return doneMsg{owner: p.id, op: "load", value: v}
	})
}

func (p *Dashboard) fetch(wrap func(any, error) tea.Msg) tea.Cmd {
	inv, timeout := p.d.Inventory, p.d.timeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var data dashboardData
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			res, err := inv.Assets().List(gctx, model.ListParams{Page: 1, PageSize: dashboardSample})
			data.assets = res.Items
			return err
		})
		g.Go(func() error {
			up, err := inv.UpcomingMaintenance(gctx, model.DefaultUpcomingDays)
			data.upcoming = up
			return err
		})
		if err := g.Wait(); err != nil {
			return wrap(nil, err)
		}
		return wrap(data, nil)
	}
}

// Update applies fetched data. r refetches in place.
func (p *Dashboard) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case doneMsg:
		if msg.owner != p.id {
			return nil
		}
		p.loading = false
		if msg.err != nil {
			return p.d.failure("Failed to load dashboard data")
		}
		p.apply(msg.value.(dashboardData))

	case tea.KeyMsg:
		if msg.String() == "r" && !p.loading {
			p.loading = true
			owner := p.id
			return p.fetch(func(v any, err error) tea.Msg {
				return doneMsg{owner: owner, op: "load", value: v, err: err}
			})
		}
	}
	return nil
}

func (p *Dashboard) apply(data dashboardData) {
	p.stats = ComputeStats(data.assets)
	p.recent = data.assets[:min(recentCount, len(data.assets))]
	p.upcoming = data.upcoming
}

// Busy keeps the spinner running during a refresh.
func (p *Dashboard) Busy() bool { return p.loading }

// View renders the dashboard.
func (p *Dashboard) View() string {
	width := p.mount.Width()
	sections := []string{heading("Dashboard", "Overview of your asset management"), ""}
	if p.loading {
		sections = append(sections, layout.Spinner("Refreshing..."), "")
	}

	sections = append(sections, p.viewCards(width), "")

	half := max((width-2)/2, 20)
	left := p.viewRecent(half)
	right := p.viewUpcoming(half)
	if width >= 2*20+2 {
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))
	} else {
		sections = append(sections, left, right)
	}

	sections = append(sections, "", theme.Bold.Render("Asset Status Distribution"), p.viewChart(width))
	sections = append(sections, "", keyHints("r", "refresh"))
	return strings.Join(sections, "\n")
}

func (p *Dashboard) viewCards(width int) string {
	s := p.stats
	cards := []struct {
		label string
		value string
		color lipgloss.Color
	}{
		{"Total Assets", fmt.Sprint(s.Total), theme.ColorWhite},
		{"Available", fmt.Sprint(s.Available), theme.ColorGreen},
		{"Assigned", fmt.Sprint(s.Assigned), theme.ColorBlue},
		{"In Maintenance", fmt.Sprint(s.InMaintenance), theme.ColorOrange},
		{"Retired", fmt.Sprint(s.Retired), theme.ColorGray},
		{"Total Value", model.FormatAmount(s.TotalValue), theme.ColorAccent},
	}

	perRow := 6
	if width < 6*18 {
		perRow = 3
	}
	cardW := max(width/perRow-2, 14)

	var rows []string
	var row []string
	for i, c := range cards {
		body := theme.Muted.Render(c.label) + "\n" +
			lipgloss.NewStyle().Bold(true).Foreground(c.color).Render(c.value)
		row = append(row, theme.Card.Width(cardW).Render(body))
		if len(row) == perRow || i == len(cards)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	return strings.Join(rows, "\n")
}

func (p *Dashboard) viewRecent(width int) string {
	lines := []string{theme.Bold.Render("Recent Assets")}
	if len(p.recent) == 0 {
		lines = append(lines, theme.Muted.Render("No assets yet"))
	}
	for _, a := range p.recent {
		value := model.FormatCurrency(a.CurrentValue)
		nameW := max(width-textutil.Width(value)-16, 4)
		line := textutil.PadRight(a.Name, nameW) + " " +
			textutil.PadRight(string(a.Status), 14) + " " + value
		lines = append(lines, line)
		lines = append(lines, theme.Muted.Render("  "+a.AssetTag))
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (p *Dashboard) viewUpcoming(width int) string {
	lines := []string{theme.Bold.Render("Upcoming Maintenance")}
	if len(p.upcoming) == 0 {
		lines = append(lines, theme.Muted.Render("No upcoming maintenance"))
	}
	for _, s := range p.upcoming[:min(recentCount, len(p.upcoming))] {
		desc := s.Description
		if desc == "" {
			desc = "Scheduled Maintenance"
		}
		due := theme.Warning.Render(model.FormatDate(&s.NextDue))
		lines = append(lines, textutil.PadRight(desc, max(width-12, 4))+" "+due)
		lines = append(lines, theme.Muted.Render(fmt.Sprintf("  Asset ID: %d · every %d days", s.AssetID, s.FrequencyDays)))
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (p *Dashboard) viewChart(width int) string {
	s := p.stats
	if s.Total == 0 {
		return theme.Muted.Render("No assets yet")
	}
	bars := []struct {
		label string
		count int
		color lipgloss.Color
	}{
		{"Avail", s.Available, theme.ColorGreen},
		{"Assign", s.Assigned, theme.ColorBlue},
		{"Maint", s.InMaintenance, theme.ColorOrange},
		{"Retired", s.Retired, theme.ColorGray},
		{"Dispos", s.Disposed, theme.ColorRed},
	}

	chartW := min(max(width-2, 20), 60)
	bc := barchart.New(chartW, chartHeight,
		barchart.WithBarGap(2),
		barchart.WithBarWidth(max(chartW/len(bars)-2, 1)),
	)
	for _, b := range bars {
		style := lipgloss.NewStyle().Foreground(b.color).Background(b.color)
		bc.Push(barchart.BarData{
			Label:  b.label,
			Values: []barchart.BarValue{{Name: b.label, Value: float64(b.count), Style: style}},
		})
	}
	bc.Draw()

	legend := make([]string, 0, len(bars))
	for _, b := range bars {
		legend = append(legend, lipgloss.NewStyle().Foreground(b.color).Render("■")+
			fmt.Sprintf(" %s: %d", b.label, b.count))
	}
	return bc.View() + "\n" + strings.Join(legend, "  ")
}
