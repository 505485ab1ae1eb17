package pages

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/assetdesk/assetdesk/internal/model"
	"github.com/assetdesk/assetdesk/internal/ui/dialog"
	"github.com/assetdesk/assetdesk/internal/ui/table"
	"github.com/assetdesk/assetdesk/internal/ui/theme"
)

// lookupSize is the page size used to load select options.
const lookupSize = model.MaxPageSize

// named is an id/name pair used for select options and id-to-name columns.
type named struct {
	ID   int64
	Name string
}

func lookup[T any](ctx context.Context, c model.Collection[T], conv func(T) named) ([]named, error) {
	res, err := c.List(ctx, model.ListParams{Page: 1, PageSize: lookupSize})
	if err != nil {
		return nil, err
	}
	out := make([]named, 0, len(res.Items))
	for _, it := range res.Items {
		out = append(out, conv(it))
	}
	return out, nil
}

func nameOf(items []named, id *int64) string {
	if id == nil {
		return model.Placeholder
	}
	for _, it := range items {
		if it.ID == *id {
			return it.Name
		}
	}
	return model.Placeholder
}

// idChoices builds select options with a leading empty choice.
func idChoices(items []named, none string, skip int64) []dialog.Choice {
	out := []dialog.Choice{{Value: "", Label: none}}
	for _, it := range items {
		if it.ID == skip {
			continue
		}
		out = append(out, dialog.Choice{Value: strconv.FormatInt(it.ID, 10), Label: it.Name})
	}
	return out
}

func statusChoices() []dialog.Choice {
	out := make([]dialog.Choice, 0, len(model.AssetStatuses))
	for _, s := range model.AssetStatuses {
		out = append(out, dialog.Choice{Value: string(s), Label: s.Label()})
	}
	return out
}

var methodChoices = []dialog.Choice{
	{Value: model.MethodNone, Label: "None"},
	{Value: model.MethodStraightLine, Label: "Straight Line"},
	{Value: model.MethodDecliningBalance, Label: "Declining Balance"},
}

func methodLabel(m string) string {
	for _, c := range methodChoices {
		if c.Value == m {
			return c.Label
		}
	}
	if m == "" {
		return model.Placeholder
	}
	return m
}

var maintenanceChoices = []dialog.Choice{
	{Value: model.MaintenancePreventive, Label: "Preventive"},
	{Value: model.MaintenanceCorrective, Label: "Corrective"},
	{Value: model.MaintenanceInspection, Label: "Inspection"},
	{Value: model.MaintenanceUpgrade, Label: "Upgrade"},
}

func maintenanceLabel(t string) string {
	for _, c := range maintenanceChoices {
		if c.Value == t {
			return c.Label
		}
	}
	return t
}

// Form prefill helpers.

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func date(s *string) string {
	if s == nil || len(*s) < 10 {
		return str(s)
	}
	return (*s)[:10]
}

func idStr(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func intStr(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func moneyStr(m *model.Money) string {
	if m == nil {
		return ""
	}
	return strconv.FormatFloat(m.Float(), 'f', 2, 64)
}

func badge(s model.AssetStatus) string {
	return lipgloss.NewStyle().Foreground(theme.StatusColor(string(s))).Render(s.Label())
}

func textColumn[T any](key, header string, v func(T) *string) table.Column[T] {
	return table.Column[T]{
		Key:    key,
		Header: header,
		Value:  func(r T) any { return v(r) },
	}
}

func heading(title, subtitle string) string {
	if subtitle == "" {
		return theme.Title.Render(title)
	}
	return theme.Title.Render(title) + "\n" + theme.Subtitle.Render(subtitle)
}

// keyHints renders "k label · k label" pairs.
func keyHints(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, fmt.Sprintf("%s %s", theme.Bold.Render(pairs[i]), pairs[i+1]))
	}
	return theme.Muted.Render(strings.Join(parts, " · "))
}

func pageCount(total, size int) int {
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// slicePage serves a page of an unpaginated list endpoint.
func slicePage[T any](rows []T, page, size int) table.Result[T] {
	start := min((page-1)*size, len(rows))
	end := min(start+size, len(rows))
	return table.Result[T]{
		Rows:       rows[start:end],
		TotalItems: len(rows),
		TotalPages: pageCount(len(rows), size),
	}
}
