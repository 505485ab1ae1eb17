package pages

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/assetdesk/assetdesk/internal/model"
	"github.com/assetdesk/assetdesk/internal/ui/dialog"
	"github.com/assetdesk/assetdesk/internal/ui/textutil"
	"github.com/assetdesk/assetdesk/internal/ui/theme"
)

type assetDetailData struct {
	asset       model.Asset
	attachments []model.Attachment
	history     []model.DepreciationEntry
}

// detailMsg is emitted by the detail body for an action the page performs.
type detailMsg struct {
	session    dialog.SessionID
	action     string
	asset      model.Asset
	attachment *model.Attachment
}

// assetDetail is the body of the asset detail dialog.
type assetDetail struct {
	session dialog.SessionID
	data    assetDetailData
	look    assetLookups
	cursor  int
}

func (b *assetDetail) emit(action string) tea.Cmd {
	msg := detailMsg{session: b.session, action: action, asset: b.data.asset}
	if b.cursor < len(b.data.attachments) {
		att := b.data.attachments[b.cursor]
		msg.attachment = &att
	}
	if (action == "download" || action == "delete-attachment") && msg.attachment == nil {
		return nil
	}
	return func() tea.Msg { return msg }
}

func (b *assetDetail) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch km.String() {
	case "up", "k":
		if b.cursor > 0 {
			b.cursor--
		}
	case "down", "j":
		if b.cursor < len(b.data.attachments)-1 {
			b.cursor++
		}
	case "q":
		return b.emit("qr")
	case "u":
		return b.emit("upload")
	case "o":
		return b.emit("download")
	case "x":
		return b.emit("delete-attachment")
	}
	return nil
}

func (b *assetDetail) View(width int) string {
	a := b.data.asset
	pairs := []dialog.Pair{
		{Label: "Asset Tag", Value: a.AssetTag},
		{Label: "Serial Number", Value: model.Text(a.SerialNumber)},
		{Label: "Status", Value: badge(a.Status)},
		{Label: "Category", Value: nameOf(b.look.categories, a.CategoryID)},
		{Label: "Location", Value: nameOf(b.look.locations, a.LocationID)},
		{Label: "Department", Value: nameOf(b.look.departments, a.DepartmentID)},
		{Label: "Vendor", Value: nameOf(b.look.vendors, a.VendorID)},
		{Label: "Purchase Date", Value: model.FormatDate(a.PurchaseDate)},
		{Label: "Purchase Price", Value: model.FormatCurrency(a.PurchasePrice)},
		{Label: "Current Value", Value: model.FormatCurrency(a.CurrentValue)},
		{Label: "Warranty Expiry", Value: model.FormatDate(a.WarrantyExpiry)},
		{Label: "Description", Value: model.Text(a.Description)},
	}

	sections := []string{
		dialog.Details(pairs, "").View(width),
		"",
		theme.Bold.Render(fmt.Sprintf("Attachments (%d)", len(b.data.attachments))),
	}
	if len(b.data.attachments) == 0 {
		sections = append(sections, theme.Muted.Render("No attachments"))
	}
	for i, att := range b.data.attachments {
		line := fmt.Sprintf("%s  %s", textutil.Truncate(att.OriginalFilename, max(width-14, 8)), model.FormatSize(att.FileSize))
		if i == b.cursor {
			line = theme.Selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		sections = append(sections, line)
	}

	sections = append(sections, "", theme.Bold.Render("Depreciation History"))
	if len(b.data.history) == 0 {
		sections = append(sections, theme.Muted.Render("No depreciation records"))
	}
	for _, e := range b.data.history {
		sections = append(sections, fmt.Sprintf("%s to %s  %s  book %s",
			e.PeriodStart, e.PeriodEnd,
			model.FormatAmount(e.DepreciationAmount.Float()),
			model.FormatAmount(e.BookValue.Float())))
	}

	sections = append(sections, "", keyHints("q", "save QR", "u", "upload", "o", "download", "x", "delete file", "esc", "close"))
	return strings.Join(sections, "\n")
}

// openDetail opens the detail dialog with a progress body and fetches the
// asset, its attachments and its depreciation history.
func (p *Assets) openDetail(id int64, name string) tea.Cmd {
	session, open := p.d.Dialogs.Open("Asset: "+name, dialog.Progress("Loading asset..."), dialog.Options{Size: dialog.Large})
	p.detail = &assetDetail{session: session, look: p.look}
	inv := p.d.Inventory
	load := p.d.call(p.id, "detail", func(ctx context.Context) (any, error) {
		var data assetDetailData
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			data.asset, err = inv.Assets().Get(gctx, id)
			return err
		})
		g.Go(func() (err error) {
			data.attachments, err = inv.Attachments(gctx, id)
			return err
		})
		g.Go(func() (err error) {
			data.history, err = inv.DepreciationHistory(gctx, id)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return data, nil
	})
	return tea.Batch(open, load)
}

func (p *Assets) showDetail(msg doneMsg) tea.Cmd {
	b := p.detail
	if b == nil || !p.d.Dialogs.IsLive(b.session) {
		return nil
	}
	if msg.err != nil {
		p.detail = nil
		return tea.Batch(p.d.Dialogs.Close(), p.d.failure("Failed to load asset details"))
	}
	b.data = msg.value.(assetDetailData)
	return p.d.Dialogs.UpdateContent(b)
}

func (p *Assets) detailAction(msg detailMsg) tea.Cmd {
	if p.detail == nil || p.detail.session != msg.session || !p.d.Dialogs.IsLive(msg.session) {
		return nil
	}
	inv, dir, a := p.d.Inventory, p.d.DownloadDir, msg.asset

	switch msg.action {
	case "qr":
		return p.d.call(p.id, "qr", func(ctx context.Context) (any, error) {
			png, err := inv.QRCode(ctx, a.ID, qrSize, qrBorder)
			if err != nil {
				return nil, err
			}
			return saveFile(dir, fmt.Sprintf("asset_%s_qr.png", a.AssetTag), png)
		})

	case "download":
		att := *msg.attachment
		return p.d.call(p.id, "download", func(ctx context.Context) (any, error) {
			data, err := inv.DownloadAttachment(ctx, att.ID)
			if err != nil {
				return nil, err
			}
			return saveFile(dir, att.OriginalFilename, data)
		})

	case "upload":
		p.detail = nil
		return p.forms.open(formSpec{
			title: "Upload Attachment",
			fields: []dialog.Field{
				{Key: "path", Label: "File Path", Required: true, Placeholder: "~/Documents/invoice.pdf"},
			},
			button:  "Upload",
			success: "File uploaded successfully",
			submit: func(ctx context.Context, _ map[string]any, v map[string]string) (any, error) {
				path := expandHome(v["path"])
				data, err := os.ReadFile(path)
				if err != nil {
					return nil, fmt.Errorf("read %s: %w", path, err)
				}
				return inv.UploadAttachment(ctx, a.ID, filepath.Base(path), data)
			},
			after: func(any) tea.Cmd { return p.openDetail(a.ID, a.Name) },
		})

	case "delete-attachment":
		att := *msg.attachment
		p.detail = nil
		return confirmThen(p.d, "Delete Attachment",
			fmt.Sprintf("Delete %s? This action cannot be undone.", att.OriginalFilename),
			func() tea.Cmd {
				return p.d.call(p.id, "delete-attachment", func(ctx context.Context) (any, error) {
					return a, inv.DeleteAttachment(ctx, att.ID)
				})
			})
	}
	return nil
}

// maxSaveAttempts bounds the " (n)" suffixes tried before saveFile gives up.
const maxSaveAttempts = 100

// saveFile writes data under dir, picking a free name when one is taken.
func saveFile(dir, name string, data []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	name = filepath.Base(name)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i < maxSaveAttempts; i++ {
		path := filepath.Join(dir, name)
		if i > 0 {
			path = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
		}
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create %s: %w", path, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("write %s: %w", path, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("no free name for %s in %s", name, dir)
}

func expandHome(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
