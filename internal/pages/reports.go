package pages

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/assetdesk/assetdesk/internal/model"
	"github.com/assetdesk/assetdesk/internal/ui/dialog"
	"github.com/assetdesk/assetdesk/internal/ui/layout"
	"github.com/assetdesk/assetdesk/internal/ui/table"
	"github.com/assetdesk/assetdesk/internal/ui/theme"
)

// chartAssets caps the bars in the book value chart.
const chartAssets = 8

// ReportTotals sums the depreciation report.
type ReportTotals struct {
	Purchase     float64
	BookValue    float64
	Depreciation float64
}

// SumReport totals purchase price, current book value and depreciation.
func SumReport(rows []model.DepreciationSummary) ReportTotals {
	var t ReportTotals
	for _, r := range rows {
		if r.PurchasePrice != nil {
			t.Purchase += r.PurchasePrice.Float()
		}
		if r.CurrentBookValue != nil {
			t.BookValue += r.CurrentBookValue.Float()
		}
		t.Depreciation += r.TotalDepreciation.Float()
	}
	return t
}

type reportData struct {
	report []model.DepreciationSummary
	assets []named
}

type calcSession struct {
	id   dialog.SessionID
	form *dialog.Form
}

// Reports shows the depreciation report and runs depreciation calculations.
type Reports struct {
	d     *Deps
	id    uint64
	mount *layout.Mount

	data    reportData
	totals  ReportTotals
	table   *table.Model[model.DepreciationSummary]
	loading bool

	calc    *calcSession
	history dialog.SessionID
	tableY  int
}

// NewReports creates the reports page.
func NewReports(d *Deps) *Reports {
	return &Reports{d: d, id: pageIDs.Add(1)}
}

// Init loads the report and the asset options. A failure fails the
// navigation.
func (p *Reports) Init(mount *layout.Mount) tea.Cmd {
	p.mount = mount
	p.loading = true
	load := p.load()
	return func() tea.Msg {
		msg := load().(doneMsg)
		if msg.err != nil {
			return fmt.Errorf("pages: reports: %w", msg.err)
		}
		return msg
	}
}

func (p *Reports) load() tea.Cmd {
	inv := p.d.Inventory
	return p.d.call(p.id, "load", func(ctx context.Context) (any, error) {
		var data reportData
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			data.report, err = inv.DepreciationReport(gctx)
			return err
		})
		g.Go(func() (err error) {
			data.assets, err = lookup(gctx, inv.Assets(), func(a model.Asset) named {
				return named{a.ID, fmt.Sprintf("%s (%s)", a.Name, a.AssetTag)}
			})
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return data, nil
	})
}

// build serves the table from the loaded report; the fetch reads a snapshot.
func (p *Reports) build() tea.Cmd {
	rows := p.data.report
	p.table = table.New(p.mount, table.Config[model.DepreciationSummary]{
		Columns: []table.Column[model.DepreciationSummary]{
			{Key: "asset_name", Header: "Asset", Value: func(r model.DepreciationSummary) any { return r.AssetName }, MaxWidth: 28},
			{Key: "asset_tag", Header: "Tag", Value: func(r model.DepreciationSummary) any { return r.AssetTag }},
			{Key: "depreciation_method", Header: "Method", Value: func(r model.DepreciationSummary) any { return methodLabel(r.DepreciationMethod) }},
			{Key: "purchase_price", Header: "Purchase Price", Value: func(r model.DepreciationSummary) any { return model.FormatCurrency(r.PurchasePrice) }},
			{Key: "current_book_value", Header: "Book Value", Value: func(r model.DepreciationSummary) any { return r.CurrentBookValue },
				Render: func(_ any, r model.DepreciationSummary) string {
					return theme.Success.Render(model.FormatCurrency(r.CurrentBookValue))
				}},
			{Key: "total_depreciation", Header: "Depreciation", Value: func(r model.DepreciationSummary) any { return r.TotalDepreciation },
				Render: func(_ any, r model.DepreciationSummary) string {
					return theme.Error.Render(model.FormatAmount(r.TotalDepreciation.Float()))
				}},
		},
		Fetch: func(_ context.Context, page, size int) (table.Result[model.DepreciationSummary], error) {
			return slicePage(rows, page, size), nil
		},
		PageSize:     p.d.pageSize(),
		EmptyMessage: "No depreciation data available. Add assets with categories that have depreciation settings.",
		Timeout:      p.d.timeout(),
		OnRowClick:   func(r model.DepreciationSummary, _ int) tea.Cmd { return p.openHistory(r) },
		Actions: func(model.DepreciationSummary) []table.Action {
			return []table.Action{{Kind: "history", Label: "History", Key: "h"}}
		},
		OnAction: func(_ string, r model.DepreciationSummary, _ int) tea.Cmd { return p.openHistory(r) },
	})
	return p.table.Load(1)
}

// Update routes loads, the calculate dialog, history results and keys.
func (p *Reports) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case doneMsg:
		if msg.owner != p.id {
			return nil
		}
		return p.done(msg)

	case dialog.SubmitMsg:
		return p.submitCalc(msg)

	case tea.KeyMsg:
		if p.table != nil {
			if handled, cmd := p.table.Update(msg); handled {
				return cmd
			}
		}
		switch msg.String() {
		case "c":
			return p.openCalc()
		case "r":
			if !p.loading {
				p.loading = true
				return p.load()
			}
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

func (p *Reports) done(msg doneMsg) tea.Cmd {
	switch msg.op {
	case "load":
		p.loading = false
		if msg.err != nil {
			return p.d.failure("Failed to load reports")
		}
		p.data = msg.value.(reportData)
		p.totals = SumReport(p.data.report)
		return p.build()

	case "calculate":
		return p.calcDone(msg)

	case "history":
		if !p.d.Dialogs.IsLive(p.history) {
			return nil
		}
		if msg.err != nil {
			return tea.Batch(p.d.Dialogs.Close(), p.d.failure("Failed to load depreciation history"))
		}
		return p.d.Dialogs.UpdateContent(dialog.Text(historyTable(msg.value.([]model.DepreciationEntry))))
	}
	return nil
}

func (p *Reports) openCalc() tea.Cmd {
	today := p.d.today()
	form := dialog.NewForm([]dialog.Field{
		{Key: "asset_id", Label: "Asset", Kind: dialog.SelectIDField, Required: true, Choices: idChoices(p.data.assets, "Choose an asset...", 0)},
		{Key: "period_start", Label: "Period Start", Kind: dialog.DateField, Required: true, Value: today.AddDate(-1, 0, 0).Format(dateLayout)},
		{Key: "period_end", Label: "Period End", Kind: dialog.DateField, Required: true, Value: today.Format(dateLayout)},
	}, "Calculate")
	id, cmd := p.d.Dialogs.Open("Calculate Depreciation", form, dialog.Options{})
	p.calc = &calcSession{id: id, form: form}
	return cmd
}

func (p *Reports) submitCalc(msg dialog.SubmitMsg) tea.Cmd {
	c := p.calc
	if c == nil || c.id != msg.Session || !p.d.Dialogs.IsLive(c.id) {
		return nil
	}
	assetID, err := strconv.ParseInt(msg.Values["asset_id"], 10, 64)
	if err != nil {
		c.form.SetError("Please select an asset and period end date")
		return nil
	}
	start, end := msg.Values["period_start"], msg.Values["period_end"]
	inv := p.d.Inventory
	return tea.Batch(
		p.d.Dialogs.UpdateContent(dialog.Progress("Calculating...")),
		p.d.call(p.id, "calculate", func(ctx context.Context) (any, error) {
			return inv.CalculateDepreciation(ctx, assetID, start, end)
		}),
	)
}

func (p *Reports) calcDone(msg doneMsg) tea.Cmd {
	c := p.calc
	if c == nil || !p.d.Dialogs.IsLive(c.id) {
		if msg.err == nil {
			return p.reload()
		}
		return nil
	}
	if msg.err != nil {
		c.form.SetError(msg.err.Error())
		return tea.Batch(p.d.Dialogs.UpdateContent(c.form), p.d.failure(msg.err.Error()))
	}
	p.calc = nil
	e := msg.value.(model.DepreciationEntry)
	result := dialog.Details([]dialog.Pair{
		{Label: "Period", Value: fmt.Sprintf("%s to %s", model.FormatDate(&e.PeriodStart), model.FormatDate(&e.PeriodEnd))},
		{Label: "Depreciation Amount", Value: theme.Error.Render(model.FormatAmount(e.DepreciationAmount.Float()))},
		{Label: "Accumulated Depreciation", Value: model.FormatAmount(e.AccumulatedDepreciation.Float())},
		{Label: "Book Value", Value: theme.Success.Render(model.FormatAmount(e.BookValue.Float()))},
	}, theme.Muted.Render("esc to close"))
	return tea.Batch(
		p.d.Dialogs.UpdateContent(result),
		p.d.success("Depreciation calculated and recorded"),
		p.reload(),
	)
}

func (p *Reports) reload() tea.Cmd {
	if p.loading {
		return nil
	}
	p.loading = true
	return p.load()
}

func (p *Reports) openHistory(r model.DepreciationSummary) tea.Cmd {
	id, open := p.d.Dialogs.Open("Depreciation History: "+r.AssetName,
		dialog.Progress("Loading history..."), dialog.Options{Size: dialog.Large})
	p.history = id
	inv, assetID := p.d.Inventory, r.AssetID
	return tea.Batch(open, p.d.call(p.id, "history", func(ctx context.Context) (any, error) {
		return inv.DepreciationHistory(ctx, assetID)
	}))
}

func historyTable(entries []model.DepreciationEntry) string {
	if len(entries) == 0 {
		return theme.Muted.Render("No depreciation history for this asset.")
	}
	row := func(period, dep, acc, book string) string {
		return fmt.Sprintf("%-25s %14s %14s %14s", period, dep, acc, book)
	}
	lines := []string{theme.Header.Render(row("Period", "Depreciation", "Accumulated", "Book Value"))}
	for _, e := range entries {
		lines = append(lines, row(
			model.FormatDate(&e.PeriodStart)+" - "+model.FormatDate(&e.PeriodEnd),
			model.FormatAmount(e.DepreciationAmount.Float()),
			model.FormatAmount(e.AccumulatedDepreciation.Float()),
			model.FormatAmount(e.BookValue.Float()),
		))
	}
	return strings.Join(lines, "\n")
}

// Busy reports whether a load is in flight.
func (p *Reports) Busy() bool { return p.loading || (p.table != nil && p.table.Busy()) }

// View renders the totals, the chart and the report table.
func (p *Reports) View() string {
	width := p.mount.Width()
	t := p.totals
	cardW := max(width/3-2, 16)
	card := func(label, value string, style lipgloss.Style) string {
		return theme.Card.Width(cardW).Render(theme.Muted.Render(label) + "\n" + style.Bold(true).Render(value))
	}
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total Purchase Value", model.FormatAmount(t.Purchase), lipgloss.NewStyle()),
		card("Total Current Value", model.FormatAmount(t.BookValue), theme.Success),
		card("Total Depreciation", model.FormatAmount(t.Depreciation), theme.Error),
	)

	lines := []string{heading("Reports", "Asset depreciation and financial reports"), ""}
	if p.loading {
		lines = append(lines, layout.Spinner("Refreshing..."))
	}
	lines = append(lines, cards, "", theme.Bold.Render("Book Value vs Purchase Price"), p.viewChart(width), "",
		theme.Bold.Render("Depreciation Report"))
	p.tableY = strings.Count(strings.Join(lines, "\n"), "\n") + 1

	body := layout.Spinner("Loading...")
	if p.table != nil {
		body = p.table.View()
	}
	lines = append(lines, body, "", keyHints("enter", "history", "c", "calculate", "r", "refresh"))
	return strings.Join(lines, "\n")
}

// viewChart stacks each asset's book value under its accumulated
// depreciation so the bar height is the purchase price.
func (p *Reports) viewChart(width int) string {
	rows := p.data.report[:min(chartAssets, len(p.data.report))]
	if len(rows) == 0 {
		return theme.Muted.Render("No depreciation data")
	}
	book := lipgloss.NewStyle().Foreground(theme.ColorGreen).Background(theme.ColorGreen)
	dep := lipgloss.NewStyle().Foreground(theme.ColorRed).Background(theme.ColorRed)

	chartW := min(max(width-2, 20), 80)
	bc := barchart.New(chartW, chartHeight,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(max(chartW/len(rows)-1, 1)),
	)
	for _, r := range rows {
		var bv float64
		if r.CurrentBookValue != nil {
			bv = r.CurrentBookValue.Float()
		}
		bc.Push(barchart.BarData{
			Label: r.AssetTag,
			Values: []barchart.BarValue{
				{Name: "Book Value", Value: bv, Style: book},
				{Name: "Depreciation", Value: r.TotalDepreciation.Float(), Style: dep},
			},
		})
	}
	bc.Draw()
	legend := book.Render("■") + theme.Muted.Render(" book value  ") + dep.Render("■") + theme.Muted.Render(" depreciation")
	return bc.View() + "\n" + legend
}
