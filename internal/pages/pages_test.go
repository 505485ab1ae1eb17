package pages

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/assetdesk/assetdesk/internal/model"
)

func laptop(status model.AssetStatus) model.Asset {
	return model.Asset{
		ID:           1,
		Name:         "Laptop",
		AssetTag:     "LT-001",
		Status:       status,
		CategoryID:   ptr(int64(1)),
		CurrentValue: model.MoneyPtr(1000),
	}
}

func TestComputeStats(t *testing.T) {
	t.Parallel()

	s := ComputeStats([]model.Asset{
		{Status: model.StatusAvailable, CurrentValue: model.MoneyPtr(100)},
		{Status: model.StatusAvailable},
		{Status: model.StatusAssigned, CurrentValue: model.MoneyPtr(50.5)},
		{Status: model.StatusInMaintenance},
		{Status: model.StatusRetired},
		{Status: model.StatusDisposed},
	})
	want := Stats{Total: 6, Available: 2, Assigned: 1, InMaintenance: 1, Retired: 1, Disposed: 1, TotalValue: 150.5}
	if s != want {
		t.Fatalf("stats = %+v, want %+v", s, want)
	}
}

func TestSumReport(t *testing.T) {
	t.Parallel()

	got := SumReport([]model.DepreciationSummary{
		{PurchasePrice: model.MoneyPtr(1200), CurrentBookValue: model.MoneyPtr(900), TotalDepreciation: 300},
		{TotalDepreciation: 0},
	})
	if got != (ReportTotals{Purchase: 1200, BookValue: 900, Depreciation: 300}) {
		t.Fatalf("totals = %+v", got)
	}
}

func TestSlicePage(t *testing.T) {
	t.Parallel()

	rows := []int{1, 2, 3, 4, 5}
	r := slicePage(rows, 2, 2)
	if !reflect.DeepEqual(r.Rows, []int{3, 4}) || r.TotalItems != 5 || r.TotalPages != 3 {
		t.Fatalf("page 2 = %+v", r)
	}
	if r := slicePage(rows, 9, 2); len(r.Rows) != 0 {
		t.Fatalf("past the end = %v", r.Rows)
	}
	if r := slicePage([]int(nil), 1, 10); r.TotalPages != 1 {
		t.Fatalf("empty pages = %d, want 1", r.TotalPages)
	}
}

func TestRoutes_SidebarOrder(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	var paths []string
	for _, r := range Routes(h.d) {
		paths = append(paths, r.Path)
	}
	want := []string{PathDashboard, PathAssets, PathCategories, PathLocations, PathDepartments, PathVendors, PathMaintenance, PathReports}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("paths = %v", paths)
	}
}

func TestDashboard_LoadsAndRenders(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	second := laptop(model.StatusAssigned)
	second.ID, second.Name, second.CurrentValue = 2, "Monitor", model.MoneyPtr(500)
	h.inv.assets.items = []model.Asset{laptop(model.StatusAvailable), second}
	h.inv.upcoming = []model.MaintenanceSchedule{{ID: 1, AssetID: 1, Description: "Battery check", FrequencyDays: 90, NextDue: "2024-06-10"}}

	p := NewDashboard(h.d)
	h.init(p)

	if len(h.errs) != 0 {
		t.Fatalf("init errors: %v", h.errs)
	}
	if got := h.inv.upcomingDays; !reflect.DeepEqual(got, []int{model.DefaultUpcomingDays}) {
		t.Fatalf("upcoming days = %v", got)
	}
	view := p.View()
	for _, want := range []string{"Total Assets", "$1,500.00", "Monitor", "Battery check", "Asset Status Distribution"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestDashboard_InitErrorFailsNavigation(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.inv.assets.listErr = errors.New("connection refused")
	h.init(NewDashboard(h.d))

	if len(h.errs) != 1 || !strings.Contains(h.errs[0].Error(), "connection refused") {
		t.Fatalf("errs = %v", h.errs)
	}
}

func TestAssets_LoadsWithLookupNames(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.inv.assets.items = []model.Asset{laptop(model.StatusAvailable)}
	h.inv.categories.items = []model.Category{{ID: 1, Name: "Laptops"}}

	p := NewAssets(h.d)
	h.init(p)

	view := p.View()
	if !strings.Contains(view, "LT-001") || !strings.Contains(view, "Laptops") {
		t.Fatalf("view missing row or category name:\n%s", view)
	}
	if p.Busy() {
		t.Fatal("still busy after load")
	}
}

func TestAssets_LookupFailureStillLoads(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.inv.assets.items = []model.Asset{laptop(model.StatusAvailable)}
	h.inv.vendors.listErr = errors.New("boom")

	p := NewAssets(h.d)
	h.init(p)

	if !h.hasToast("warning: Could not load categories, locations or vendors") {
		t.Fatalf("toasts = %v", h.toasts())
	}
	if !strings.Contains(p.View(), "LT-001") {
		t.Fatal("table did not load after lookup failure")
	}
}

func TestAssets_FiltersRebuildTable(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.inv.assets.items = []model.Asset{laptop(model.StatusAvailable)}
	h.inv.categories.items = []model.Category{{ID: 7, Name: "Laptops"}}

	p := NewAssets(h.d)
	h.init(p)

	h.press(p, "f")
	if got := h.inv.assets.lastList(); got.Filters["status"] != "available" || got.Page != 1 {
		t.Fatalf("after f: %+v", got)
	}
	h.press(p, "c")
	got := h.inv.assets.lastList()
	if got.Filters["status"] != "available" || got.Filters["category_id"] != "7" {
		t.Fatalf("after c: %+v", got)
	}
	if !strings.Contains(p.View(), "Category: ") {
		t.Fatal("filter line missing")
	}
}

func TestAssets_CreateSubmitsAndCloses(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	p := NewAssets(h.d)
	h.init(p)

	h.press(p, "n")
	if h.d.Dialogs.Title() != "New Asset" {
		t.Fatalf("dialog title = %q", h.d.Dialogs.Title())
	}
	f := h.form()
	f.SetValue("asset_tag", "LT-009")
	f.SetValue("name", "Spare laptop")
	f.SetValue("purchase_price", "999.5")
	h.press(p, "ctrl+s")

	if len(h.inv.assets.created) != 1 {
		t.Fatalf("created = %v", h.inv.assets.created)
	}
	payload := h.inv.assets.created[0]
	if payload["asset_tag"] != "LT-009" || payload["purchase_price"] != 999.5 || payload["serial_number"] != nil {
		t.Fatalf("payload = %v", payload)
	}
	if h.d.Dialogs.IsOpen() {
		t.Fatal("dialog still open after success")
	}
	if !h.hasToast("success: Asset created successfully") {
		t.Fatalf("toasts = %v", h.toasts())
	}
}

func TestAssets_CreateRequiresFields(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	p := NewAssets(h.d)
	h.init(p)

	h.press(p, "n")
	h.press(p, "ctrl+s")

	if len(h.inv.assets.created) != 0 {
		t.Fatal("submitted without required fields")
	}
	if got := h.form().Err(); got != "Asset Tag is required" {
		t.Fatalf("form error = %q", got)
	}
}

func TestAssets_SubmitErrorKeepsDialogOpen(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.inv.assets.createErr = errors.New("Asset tag already exists")
	p := NewAssets(h.d)
	h.init(p)

	h.press(p, "n")
	f := h.form()
	f.SetValue("asset_tag", "LT-001")
	f.SetValue("name", "Dup")
	h.press(p, "ctrl+s")

	if !h.d.Dialogs.IsOpen() {
		t.Fatal("dialog closed on failure")
	}
	if f.Busy() || f.Err() != "Asset tag already exists" {
		t.Fatalf("busy=%v err=%q", f.Busy(), f.Err())
	}
	if !h.hasToast("error: Asset tag already exists") {
		t.Fatalf("toasts = %v", h.toasts())
	}
}

func TestAssets_AssignGuard(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.inv.assets.items = []model.Asset{laptop(model.StatusRetired)}
	p := NewAssets(h.d)
	h.init(p)

	h.press(p, "a")
	if h.d.Dialogs.IsOpen() {
		t.Fatal("assign dialog opened for a retired asset")
	}
	if !h.hasToast("warning: Cannot assign asset with status retired") {
		t.Fatalf("toasts = %v", h.toasts())
	}

	h.press(p, "R")
	if !h.hasToast("warning: Asset is not currently assigned") {
		t.Fatalf("toasts = %v", h.toasts())
	}
}

func TestAssets_Assign(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.inv.assets.items = []model.Asset{laptop(model.StatusAvailable)}
	p := NewAssets(h.d)
	h.init(p)

	h.press(p, "a")
	f := h.form()
	f.SetValue("assignee_id", "E-42")
	f.SetValue("assignee_name", "Sam Lee")
	h.press(p, "ctrl+s")

	got := h.inv.assigned[1]
	if got.AssigneeID != "E-42" || got.AssigneeName != "Sam Lee" || got.Notes != nil {
		t.Fatalf("assignment = %+v", got)
	}
	if !h.hasToast("success: Asset assigned successfully") {
		t.Fatalf("toasts = %v", h.toasts())
	}
}

func TestAssets_DeleteConfirmed(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.inv.assets.items = []model.Asset{laptop(model.StatusAvailable)}
	p := NewAssets(h.d)
	h.init(p)

	h.press(p, "d")
	if h.d.Dialogs.Title() != "Delete Asset" {
		t.Fatalf("dialog title = %q", h.d.Dialogs.Title())
	}
	h.press(p, "y")

	if !reflect.DeepEqual(h.inv.assets.deleted, []int64{1}) {
		t.Fatalf("deleted = %v", h.inv.assets.deleted)
	}
	if !h.hasToast("success: Asset deleted successfully") {
		t.Fatalf("toasts = %v", h.toasts())
	}
}

func TestAssets_DeleteCancelled(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.inv.assets.items = []model.Asset{laptop(model.StatusAvailable)}
	p := NewAssets(h.d)
	h.init(p)

	h.press(p, "d")
	h.press(p, "enter") // danger confirms focus Cancel

	if len(h.inv.assets.deleted) != 0 {
		t.Fatalf("deleted = %v", h.inv.assets.deleted)
	}
	if h.d.Dialogs.IsOpen() {
		t.Fatal("confirm still open")
	}
}

func TestAssets_DetailSavesQRCodeAndAttachment(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.inv.assets.items = []model.Asset{laptop(model.StatusAvailable)}
	h.inv.attachments = []model.Attachment{{ID: 3, AssetID: 1, OriginalFilename: "invoice.pdf", FileSize: 2048}}
	p := NewAssets(h.d)
	h.init(p)

	h.press(p, "enter")
	if _, ok := h.d.Dialogs.Body().(*assetDetail); !ok {
		t.Fatalf("dialog body = %T", h.d.Dialogs.Body())
	}
	if view := h.d.Dialogs.Body().View(80); !strings.Contains(view, "invoice.pdf") || !strings.Contains(view, "2.0 KB") {
		t.Fatalf("detail view:\n%s", view)
	}

	h.press(p, "q")
	qr := filepath.Join(h.d.DownloadDir, "asset_LT-001_qr.png")
	if _, err := os.Stat(qr); err != nil {
		t.Fatalf("qr not saved: %v", err)
	}
	if !h.hasToast("success: Saved to " + qr) {
		t.Fatalf("toasts = %v", h.toasts())
	}

	h.press(p, "o")
	data, err := os.ReadFile(filepath.Join(h.d.DownloadDir, "invoice.pdf"))
	if err != nil || string(data) != "attachment body" {
		t.Fatalf("download = %q, %v", data, err)
	}
}

func TestAssets_StaleResultsDropped(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	p := NewAssets(h.d)
	h.init(p)

	if cmd := p.Update(doneMsg{owner: p.id + 1000, op: "delete"}); cmd != nil {
		t.Fatal("foreign result produced a command")
	}
	if h.d.Toasts.Len() != 0 {
		t.Fatalf("toasts = %v", h.toasts())
	}
}

func TestSaveFile_PicksFreeName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first, err := saveFile(dir, "report.csv", []byte("a"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := saveFile(dir, "../report.csv", []byte("b"))
	if err != nil {
		t.Fatal(err)
	}
	if first == second || filepath.Base(second) != "report (1).csv" {
		t.Fatalf("first=%s second=%s", first, second)
	}
}

func TestSaveFile_UnwritableNameFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	done := make(chan error, 1)
	go func() {
		_, err := saveFile(dir, "asset_"+strings.Repeat("X", 300)+"_qr.png", []byte("png"))
		done <- err
	}()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected an error for a name longer than the filesystem allows")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("saveFile did not return")
	}
}

func TestSaveFile_GivesUpWhenEveryNameIsTaken(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for i := 0; i < maxSaveAttempts; i++ {
		if _, err := saveFile(dir, "qr.png", []byte("x")); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	if _, err := saveFile(dir, "qr.png", []byte("x")); err == nil {
		t.Fatal("expected an error once every candidate name exists")
	}
	data, err := os.ReadFile(filepath.Join(dir, "qr.png"))
	if err != nil || string(data) != "x" {
		t.Fatalf("original file changed: %q, %v", data, err)
	}
}

func TestResource_CategoryColumnsAndParents(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.inv.categories.items = []model.Category{
		{ID: 1, Name: "Computers", DepreciationMethod: model.MethodStraightLine, UsefulLifeYears: ptr(5), SalvageValuePercent: 10},
		{ID: 2, Name: "Laptops", DepreciationMethod: model.MethodDecliningBalance, ParentID: ptr(int64(1))},
	}
	p := NewResource(h.d, categorySpec)
	h.init(p)

	view := p.View()
	for _, want := range []string{"Categories", "5 years", "Straight Line", "Declining Balance", "10%"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Count(view, "Computers") < 2 {
		t.Error("parent name not resolved")
	}
}

func TestResource_EditUpdates(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.inv.categories.items = []model.Category{{ID: 1, Name: "Computers", DepreciationMethod: model.MethodNone}}
	p := NewResource(h.d, categorySpec)
	h.init(p)

	h.press(p, "e")
	f := h.form()
	if f.Value("name") != "Computers" || f.Value("depreciation_method") != model.MethodNone {
		t.Fatalf("prefill name=%q method=%q", f.Value("name"), f.Value("depreciation_method"))
	}
	f.SetValue("name", "IT Equipment")
	h.press(p, "ctrl+s")

	if got := h.inv.categories.updated[1]; got["name"] != "IT Equipment" {
		t.Fatalf("update payload = %v", got)
	}
	if !h.hasToast("success: Category updated successfully") {
		t.Fatalf("toasts = %v", h.toasts())
	}
}

func TestResource_VendorCreateSkipsParents(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	p := NewResource(h.d, vendorSpec)
	h.init(p)

	if len(h.inv.vendors.lists) != 1 {
		t.Fatalf("vendor lists = %d, want only the table load", len(h.inv.vendors.lists))
	}
	h.press(p, "n")
	h.form().SetValue("name", "Dell")
	h.press(p, "ctrl+s")

	if len(h.inv.vendors.created) != 1 || h.inv.vendors.created[0]["name"] != "Dell" {
		t.Fatalf("created = %v", h.inv.vendors.created)
	}
	if !h.hasToast("success: Vendor created successfully") {
		t.Fatalf("toasts = %v", h.toasts())
	}
}

func TestMaintenance_CompleteAdvancesSchedule(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.inv.upcoming = []model.MaintenanceSchedule{
		{ID: 7, AssetID: 1, Description: "Filter swap", FrequencyDays: 30, NextDue: "2024-05-25"},
	}
	p := NewMaintenance(h.d)
	h.init(p)

	if !strings.Contains(p.View(), "overdue") {
		t.Fatal("overdue schedule not flagged")
	}
	h.press(p, "c")

	if len(h.inv.createdRecords) != 1 {
		t.Fatalf("records = %v", h.inv.createdRecords)
	}
	rec := h.inv.createdRecords[0]
	if rec.assetID != 1 || rec.payload["completed_date"] != "2024-06-01" || rec.payload["scheduled_date"] != "2024-05-25" {
		t.Fatalf("record = %+v", rec)
	}
	want := map[string]any{"last_performed": "2024-06-01", "next_due": "2024-07-01"}
	if got := h.inv.scheduleUpdates[7]; !reflect.DeepEqual(got, want) {
		t.Fatalf("schedule update = %v", got)
	}
	if !h.hasToast("success: Maintenance completed") {
		t.Fatalf("toasts = %v", h.toasts())
	}
}

func TestMaintenance_WindowCycles(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	p := NewMaintenance(h.d)
	h.init(p)
	h.press(p, "w")
	h.press(p, "w")

	if got := h.inv.upcomingDays; !reflect.DeepEqual(got, []int{30, 90, 7}) {
		t.Fatalf("windows = %v", got)
	}
	if !strings.Contains(p.View(), "next 7 days") {
		t.Fatal("heading does not show the window")
	}
}

func TestMaintenance_RecordsViewAndBack(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.inv.assets.items = []model.Asset{laptop(model.StatusInMaintenance)}
	h.inv.upcoming = []model.MaintenanceSchedule{{ID: 7, AssetID: 1, Description: "Filter swap", FrequencyDays: 30, NextDue: "2024-06-20"}}
	h.inv.schedules = h.inv.upcoming
	p := NewMaintenance(h.d)
	h.init(p)

	h.press(p, "enter")
	view := p.View()
	if !strings.Contains(view, "Laptop (LT-001)") || !strings.Contains(view, "every 30 days") {
		t.Fatalf("records view:\n%s", view)
	}

	h.press(p, "n")
	h.form().SetValue("description", "Replaced fan")
	h.press(p, "ctrl+s")
	if len(h.inv.createdRecords) != 1 || h.inv.createdRecords[0].payload["maintenance_type"] != model.MaintenancePreventive {
		t.Fatalf("records = %+v", h.inv.createdRecords)
	}

	h.press(p, "esc")
	if !strings.Contains(p.View(), "Upcoming Maintenance") {
		t.Fatal("esc did not return to the upcoming view")
	}
}

func TestMaintenance_ScheduleFormAsksForAsset(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	p := NewMaintenance(h.d)
	h.init(p)

	h.press(p, "S")
	f := h.form()
	if f.Value("next_due") != "2024-07-01" {
		t.Fatalf("next_due default = %q", f.Value("next_due"))
	}
	f.SetValue("asset_id", "4")
	f.SetValue("description", "Quarterly inspection")
	h.press(p, "ctrl+s")

	if len(h.inv.createdSched) != 1 {
		t.Fatalf("schedules = %v", h.inv.createdSched)
	}
	got := h.inv.createdSched[0]
	if _, ok := got.payload["asset_id"]; got.assetID != 4 || ok {
		t.Fatalf("schedule call = %+v", got)
	}
}

func reportHarness(t *testing.T) *harness {
	t.Helper()
	h := newHarness(t)
	h.inv.assets.items = []model.Asset{laptop(model.StatusAvailable)}
	h.inv.report = []model.DepreciationSummary{{
		AssetID: 1, AssetName: "Laptop", AssetTag: "LT-001",
		PurchasePrice: model.MoneyPtr(1200), CurrentBookValue: model.MoneyPtr(900), TotalDepreciation: 300,
		DepreciationMethod: model.MethodStraightLine,
	}}
	return h
}

func TestReports_RendersTotalsAndChart(t *testing.T) {
	t.Parallel()

	h := reportHarness(t)
	p := NewReports(h.d)
	h.init(p)

	view := p.View()
	for _, want := range []string{"$1,200.00", "$900.00", "$300.00", "Book Value vs Purchase Price", "LT-001"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestReports_InitErrorFailsNavigation(t *testing.T) {
	t.Parallel()

	h := reportHarness(t)
	h.inv.reportErr = errors.New("timeout")
	h.init(NewReports(h.d))

	if len(h.errs) != 1 {
		t.Fatalf("errs = %v", h.errs)
	}
}

func TestReports_CalculateShowsResult(t *testing.T) {
	t.Parallel()

	h := reportHarness(t)
	h.inv.calcResult = model.DepreciationEntry{
		AssetID: 1, PeriodStart: "2023-06-01", PeriodEnd: "2024-06-01",
		DepreciationAmount: 216, AccumulatedDepreciation: 516, BookValue: 684,
	}
	p := NewReports(h.d)
	h.init(p)

	h.press(p, "c")
	h.form().SetValue("asset_id", "1")
	h.press(p, "ctrl+s")

	if want := []calcCall{{1, "2023-06-01", "2024-06-01"}}; !reflect.DeepEqual(h.inv.calcs, want) {
		t.Fatalf("calcs = %v", h.inv.calcs)
	}
	view := h.d.Dialogs.Body().View(80)
	if !strings.Contains(view, "Book Value") || !strings.Contains(view, "$684.00") {
		t.Fatalf("result view:\n%s", view)
	}
	if !h.hasToast("success: Depreciation calculated and recorded") {
		t.Fatalf("toasts = %v", h.toasts())
	}
}

func TestReports_CalculateErrorRestoresForm(t *testing.T) {
	t.Parallel()

	h := reportHarness(t)
	h.inv.calcErr = errors.New("Asset has no purchase price")
	p := NewReports(h.d)
	h.init(p)

	h.press(p, "c")
	h.form().SetValue("asset_id", "1")
	h.press(p, "ctrl+s")

	if got := h.form().Err(); got != "Asset has no purchase price" {
		t.Fatalf("form error = %q", got)
	}
	if !h.hasToast("error: Asset has no purchase price") {
		t.Fatalf("toasts = %v", h.toasts())
	}
}
