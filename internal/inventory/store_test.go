package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetdesk/assetdesk/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore("")
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { s.Close() })
	return s
}

func createAsset(t *testing.T, s *Store, fields map[string]any) model.Asset {
	t.Helper()
	payload := map[string]any{"name": "Laptop", "asset_tag": "LT-1"}
	for k, v := range fields {
		payload[k] = v
	}
	a, err := s.Assets().Create(context.Background(), payload)
	require.NoError(t, err)
	return a
}

func TestNewStore_FileBacked(t *testing.T) {
	path := t.TempDir() + "/nested/inventory.duckdb"
	s, err := NewStore(path, time.Second)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, time.Second, s.QueryTimeout)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestAssetCreate_DefaultsAndCurrentValue(t *testing.T) {
	s := newTestStore(t)

	a := createAsset(t, s, map[string]any{
		"purchase_price": "1250.50",
		"purchase_date":  "2024-01-15",
		"current_value":  1.0,
	})

	assert.Equal(t, model.StatusAvailable, a.Status)
	require.NotNil(t, a.PurchasePrice)
	assert.Equal(t, 1250.5, a.PurchasePrice.Float())
	require.NotNil(t, a.CurrentValue)
	assert.Equal(t, 1250.5, a.CurrentValue.Float(), "current value follows the purchase price on create")
	require.NotNil(t, a.PurchaseDate)
	assert.Equal(t, "2024-01-15", *a.PurchaseDate)
	assert.Nil(t, a.SerialNumber)
	assert.NotEmpty(t, a.CreatedAt)
}

func TestAssetCreate_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		payload map[string]any
		detail  string
	}{
		{"missing name", map[string]any{"asset_tag": "X"}, "name: field required"},
		{"blank tag", map[string]any{"name": "X", "asset_tag": "  "}, "asset_tag: must not be empty"},
		{"bad status", map[string]any{"name": "X", "asset_tag": "X", "status": "lost"}, "status: must be one of"},
		{"bad date", map[string]any{"name": "X", "asset_tag": "X", "purchase_date": "15/01/2024"}, "purchase_date: invalid date"},
		{"fractional id", map[string]any{"name": "X", "asset_tag": "X", "category_id": 1.5}, "category_id: expected an integer"},
		{"negative price", map[string]any{"name": "X", "asset_tag": "X", "purchase_price": -1}, "purchase_price: must be at least"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Assets().Create(ctx, tt.payload)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
			assert.Contains(t, err.Error(), tt.detail)
		})
	}
}

func TestAssetCreate_DuplicateTag(t *testing.T) {
	s := newTestStore(t)
	createAsset(t, s, nil)

	_, err := s.Assets().Create(context.Background(), map[string]any{"name": "Other", "asset_tag": "LT-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAssetUpdate_SkipsNullFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := createAsset(t, s, map[string]any{"serial_number": "SN1", "purchase_price": 100})

	updated, err := s.Assets().Update(ctx, a.ID, map[string]any{
		"name":          "Renamed",
		"serial_number": nil,
		"purchase_date": "",
		"current_value": 80,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	require.NotNil(t, updated.SerialNumber)
	assert.Equal(t, "SN1", *updated.SerialNumber)
	assert.Equal(t, 80.0, updated.CurrentValue.Float())

	_, err = s.Assets().Update(ctx, 999, map[string]any{"name": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "Asset not found")
}

func TestAssetList_PaginationAndFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := 1; i <= 35; i++ {
		status := "available"
		if i%5 == 0 {
			status = "retired"
		}
		_, err := s.Assets().Create(ctx, map[string]any{
			"name": "Asset", "asset_tag": "T-" + string(rune('A'+i/26)) + string(rune('a'+i%26)), "status": status,
		})
		require.NoError(t, err)
	}

	res, err := s.Assets().List(ctx, model.ListParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, res.Items, 10)
	assert.Equal(t, 35, res.Total)
	assert.Equal(t, 4, res.Pages)

	res, err = s.Assets().List(ctx, model.ListParams{Page: 4, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, res.Items, 5)

	res, err = s.Assets().List(ctx, model.ListParams{Page: 1, PageSize: 500, Filters: map[string]string{"status": "retired"}})
	require.NoError(t, err)
	assert.Equal(t, 7, res.Total)
	assert.Equal(t, MaxPageSize, res.PageSize)

	_, err = s.Assets().List(ctx, model.ListParams{Filters: map[string]string{"category_id": "abc"}})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestList_EmptyTable(t *testing.T) {
	s := newTestStore(t)
	res, err := s.Vendors().List(context.Background(), model.ListParams{})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.NotNil(t, res.Items)
	assert.Equal(t, 0, res.Pages)
	assert.Equal(t, DefaultPageSize, res.PageSize)
}

func TestNormalizePage(t *testing.T) {
	tests := []struct{ page, size, wantPage, wantSize int }{
		{0, 0, 1, DefaultPageSize},
		{-3, 10, 1, 10},
		{2, 101, 2, MaxPageSize},
		{5, 1, 5, 1},
	}
	for _, tt := range tests {
		p, s := NormalizePage(tt.page, tt.size)
		assert.Equal(t, tt.wantPage, p)
		assert.Equal(t, tt.wantSize, s)
	}
}

func TestCategoryDefaults(t *testing.T) {
	s := newTestStore(t)
	c, err := s.Categories().Create(context.Background(), map[string]any{"name": "Laptops"})
	require.NoError(t, err)
	assert.Equal(t, model.MethodStraightLine, c.DepreciationMethod)
	assert.Equal(t, 0, c.SalvageValuePercent)
	assert.Nil(t, c.UsefulLifeYears)
}

func TestDeleteAsset_RemovesDependents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := createAsset(t, s, nil)
	_, err := s.CreateSchedule(ctx, a.ID, map[string]any{"description": "Check", "frequency_days": 30, "next_due": "2025-03-12"})
	require.NoError(t, err)
	_, err = s.UploadAttachment(ctx, a.ID, "notes.txt", []byte("hello"))
	require.NoError(t, err)

	require.NoError(t, s.Assets().Delete(ctx, a.ID))

	upcoming, err := s.UpcomingMaintenance(ctx, 30)
	require.NoError(t, err)
	assert.Empty(t, upcoming)

	assert.ErrorIs(t, s.Assets().Delete(ctx, a.ID), ErrNotFound)
}

func TestAssignAndReturn(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := createAsset(t, s, nil)
	notes := "desk 4"

	assigned, err := s.AssignAsset(ctx, a.ID, model.Assignment{AssigneeID: "E1", AssigneeName: "Dana", Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, model.StatusAssigned, assigned.Status)

	_, err = s.AssignAsset(ctx, a.ID, model.Assignment{AssigneeID: "E2"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.EqualError(t, err, "Asset is already assigned")

	returned, err := s.ReturnAsset(ctx, a.ID, "scratched lid")
	require.NoError(t, err)
	assert.Equal(t, model.StatusAvailable, returned.Status)

	var (
		gotNotes   string
		returnedAt *time.Time
	)
	require.NoError(t, s.db.QueryRow("SELECT notes, returned_at FROM assignments WHERE asset_id = ?", a.ID).Scan(&gotNotes, &returnedAt))
	assert.Equal(t, "desk 4\nReturn: scratched lid", gotNotes)
	assert.NotNil(t, returnedAt)

	_, err = s.ReturnAsset(ctx, a.ID, "")
	assert.EqualError(t, err, "Asset is not currently assigned")
}

func TestAssign_Rules(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	maint := createAsset(t, s, map[string]any{"asset_tag": "M-1", "status": "in_maintenance"})
	got, err := s.AssignAsset(ctx, maint.ID, model.Assignment{AssigneeID: "E1"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusAssigned, got.Status)

	retired := createAsset(t, s, map[string]any{"asset_tag": "R-1", "status": "retired"})
	_, err = s.AssignAsset(ctx, retired.ID, model.Assignment{AssigneeID: "E1"})
	assert.EqualError(t, err, "Cannot assign asset with status retired")

	_, err = s.AssignAsset(ctx, retired.ID, model.Assignment{})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.AssignAsset(ctx, 404, model.Assignment{AssigneeID: "E1"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMaintenance_RecordsAndUpcoming(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := createAsset(t, s, nil)

	rec, err := s.CreateMaintenanceRecord(ctx, a.ID, map[string]any{"description": "Fan swap", "cost": "42.10"})
	require.NoError(t, err)
	assert.Equal(t, model.MaintenancePreventive, rec.MaintenanceType)
	assert.Equal(t, 42.1, rec.Cost.Float())

	page, err := s.MaintenanceRecords(ctx, a.ID, model.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	_, err = s.MaintenanceRecords(ctx, 999, model.ListParams{})
	assert.EqualError(t, err, "Asset not found")

	assert.EqualError(t, s.DeleteMaintenanceRecord(ctx, 999), "Maintenance record not found")

	for _, due := range []string{"2025-04-20", "2025-03-15", "2025-03-09"} {
		_, err := s.CreateSchedule(ctx, a.ID, map[string]any{"description": "due " + due, "frequency_days": 30, "next_due": due})
		require.NoError(t, err)
	}
	inactive, err := s.CreateSchedule(ctx, a.ID, map[string]any{"description": "off", "frequency_days": 7, "next_due": "2025-03-11", "is_active": false})
	require.NoError(t, err)
	assert.False(t, inactive.IsActive)

	upcoming, err := s.UpcomingMaintenance(ctx, 30)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "2025-03-09", upcoming[0].NextDue, "overdue schedules lead")
	assert.Equal(t, "2025-03-15", upcoming[1].NextDue)

	_, err = s.UpcomingMaintenance(ctx, 400)
	assert.ErrorIs(t, err, ErrInvalid)

	updated, err := s.UpdateSchedule(ctx, inactive.ID, map[string]any{"last_performed": "2025-03-01", "is_active": true})
	require.NoError(t, err)
	require.NotNil(t, updated.LastPerformed)
	assert.Equal(t, "2025-03-01", *updated.LastPerformed)

	_, err = s.CreateSchedule(ctx, a.ID, map[string]any{"description": "x", "frequency_days": 30})
	assert.EqualError(t, err, "next_due: field required")
}

func TestAttachments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := createAsset(t, s, nil)

	att, err := s.UploadAttachment(ctx, a.ID, "receipt.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "receipt.pdf", att.OriginalFilename)
	assert.Equal(t, "application/pdf", att.MimeType)
	assert.Equal(t, int64(8), att.FileSize)
	assert.Regexp(t, `^[0-9a-f-]{36}\.pdf$`, att.Filename)

	anon, err := s.SaveAttachment(ctx, a.ID, "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "unknown", anon.OriginalFilename)
	assert.Equal(t, "application/octet-stream", anon.MimeType)

	list, err := s.Attachments(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	data, err := s.DownloadAttachment(ctx, att.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)

	_, err = s.UploadAttachment(ctx, a.ID, "big.bin", make([]byte, MaxUploadSize+1))
	assert.ErrorIs(t, err, ErrTooLarge)

	require.NoError(t, s.DeleteAttachment(ctx, att.ID))
	_, err = s.DownloadAttachment(ctx, att.ID)
	assert.EqualError(t, err, "Attachment not found")
}

func TestQRCode(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := createAsset(t, s, nil)

	png, err := s.QRCode(ctx, a.ID, DefaultQRSize, DefaultQRBorder)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])

	again, err := s.QRCode(ctx, a.ID, DefaultQRSize, DefaultQRBorder)
	require.NoError(t, err)
	assert.Equal(t, png, again)

	assert.Equal(t, "ASSET:LT-1|ID:1|NAME:Laptop", QRPayload(a))

	_, err = s.QRCode(ctx, a.ID, 41, 4)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = s.QRCode(ctx, 999, 10, 4)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeed_OnlyIntoEmptyStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	loaded, err := s.Seed(ctx)
	require.NoError(t, err)
	assert.True(t, loaded)

	assets, err := s.Assets().List(ctx, model.ListParams{PageSize: 100})
	require.NoError(t, err)
	assert.Equal(t, 8, assets.Total)

	assigned, err := s.Assets().List(ctx, model.ListParams{Filters: map[string]string{"status": "assigned"}})
	require.NoError(t, err)
	assert.Equal(t, 1, assigned.Total)

	upcoming, err := s.UpcomingMaintenance(ctx, 30)
	require.NoError(t, err)
	assert.Len(t, upcoming, 2)

	loaded, err = s.Seed(ctx)
	require.NoError(t, err)
	assert.False(t, loaded)
}
