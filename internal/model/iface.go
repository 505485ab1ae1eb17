package model

import "context"

// Collection is the CRUD contract shared by the flat inventory resources.
// Payloads are field maps so forms can submit only what the user filled in.
type Collection[T any] interface {
	List(ctx context.Context, params ListParams) (ListResult[T], error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, payload map[string]any) (T, error)
	Update(ctx context.Context, id int64, payload map[string]any) (T, error)
	Delete(ctx context.Context, id int64) error
}

// AssetOps covers asset actions beyond CRUD.
type AssetOps interface {
	AssignAsset(ctx context.Context, id int64, a Assignment) (Asset, error)
	ReturnAsset(ctx context.Context, id int64, notes string) (Asset, error)
	QRCode(ctx context.Context, id int64, size, border int) ([]byte, error)
}

// MaintenanceAPI covers maintenance records and schedules.
type MaintenanceAPI interface {
	UpcomingMaintenance(ctx context.Context, days int) ([]MaintenanceSchedule, error)
	MaintenanceRecords(ctx context.Context, assetID int64, params ListParams) (ListResult[MaintenanceRecord], error)
	CreateMaintenanceRecord(ctx context.Context, assetID int64, payload map[string]any) (MaintenanceRecord, error)
	UpdateMaintenanceRecord(ctx context.Context, id int64, payload map[string]any) (MaintenanceRecord, error)
	DeleteMaintenanceRecord(ctx context.Context, id int64) error
	Schedules(ctx context.Context, assetID int64) ([]MaintenanceSchedule, error)
	CreateSchedule(ctx context.Context, assetID int64, payload map[string]any) (MaintenanceSchedule, error)
	UpdateSchedule(ctx context.Context, id int64, payload map[string]any) (MaintenanceSchedule, error)
	DeleteSchedule(ctx context.Context, id int64) error
}

// AttachmentAPI covers binary payloads stored against assets.
type AttachmentAPI interface {
	Attachments(ctx context.Context, assetID int64) ([]Attachment, error)
	UploadAttachment(ctx context.Context, assetID int64, filename string, data []byte) (Attachment, error)
	DownloadAttachment(ctx context.Context, id int64) ([]byte, error)
	DeleteAttachment(ctx context.Context, id int64) error
}

// DepreciationAPI covers depreciation history, calculation and reporting.
type DepreciationAPI interface {
	DepreciationHistory(ctx context.Context, assetID int64) ([]DepreciationEntry, error)
	CalculateDepreciation(ctx context.Context, assetID int64, periodStart, periodEnd string) (DepreciationEntry, error)
	DepreciationReport(ctx context.Context) ([]DepreciationSummary, error)
}

// Inventory is the full remote contract the shell pages consume.
type Inventory interface {
	Assets() Collection[Asset]
	Categories() Collection[Category]
	Locations() Collection[Location]
	Departments() Collection[Department]
	Vendors() Collection[Vendor]
	AssetOps
	MaintenanceAPI
	AttachmentAPI
	DepreciationAPI
}
