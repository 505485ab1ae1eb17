package model

// AssetStatus is the lifecycle state of an asset.
type AssetStatus string

const (
	StatusAvailable     AssetStatus = "available"
	StatusAssigned      AssetStatus = "assigned"
	StatusInMaintenance AssetStatus = "in_maintenance"
	StatusRetired       AssetStatus = "retired"
	StatusDisposed      AssetStatus = "disposed"
)

// AssetStatuses lists every status in display order.
var AssetStatuses = []AssetStatus{
	StatusAvailable,
	StatusAssigned,
	StatusInMaintenance,
	StatusRetired,
	StatusDisposed,
}

// Label returns the human-readable status name.
func (s AssetStatus) Label() string {
	switch s {
	case StatusAvailable:
		return "Available"
	case StatusAssigned:
		return "Assigned"
	case StatusInMaintenance:
		return "In Maintenance"
	case StatusRetired:
		return "Retired"
	case StatusDisposed:
		return "Disposed"
	default:
		return string(s)
	}
}

// Depreciation methods supported by categories.
const (
	MethodStraightLine     = "straight_line"
	MethodDecliningBalance = "declining_balance"
	MethodNone             = "none"
)

// Maintenance types.
const (
	MaintenancePreventive = "preventive"
	MaintenanceCorrective = "corrective"
	MaintenanceInspection = "inspection"
	MaintenanceUpgrade    = "upgrade"
)

// Asset is a tracked piece of equipment.
type Asset struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	AssetTag       string      `json:"asset_tag"`
	SerialNumber   *string     `json:"serial_number"`
	Description    *string     `json:"description"`
	Status         AssetStatus `json:"status"`
	PurchaseDate   *string     `json:"purchase_date"`
	PurchasePrice  *Money      `json:"purchase_price"`
	CurrentValue   *Money      `json:"current_value"`
	WarrantyExpiry *string     `json:"warranty_expiry"`
	CategoryID     *int64      `json:"category_id"`
	LocationID     *int64      `json:"location_id"`
	DepartmentID   *int64      `json:"department_id"`
	VendorID       *int64      `json:"vendor_id"`
	CreatedAt      string      `json:"created_at,omitempty"`
	UpdatedAt      string      `json:"updated_at,omitempty"`
}

// Category groups assets and carries depreciation settings.
type Category struct {
	ID                  int64   `json:"id"`
	Name                string  `json:"name"`
	Description         *string `json:"description"`
	DepreciationMethod  string  `json:"depreciation_method"`
	UsefulLifeYears     *int    `json:"useful_life_years"`
	SalvageValuePercent int     `json:"salvage_value_percent"`
	ParentID            *int64  `json:"parent_id"`
	CreatedAt           string  `json:"created_at,omitempty"`
	UpdatedAt           string  `json:"updated_at,omitempty"`
}

// Location is a physical site.
type Location struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Address   *string `json:"address"`
	ParentID  *int64  `json:"parent_id"`
	CreatedAt string  `json:"created_at,omitempty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

// Department is an organisational unit.
type Department struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Code      *string `json:"code"`
	ParentID  *int64  `json:"parent_id"`
	CreatedAt string  `json:"created_at,omitempty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

// Vendor supplies assets.
type Vendor struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	ContactEmail *string `json:"contact_email"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
	Website      *string `json:"website"`
	Notes        *string `json:"notes"`
	CreatedAt    string  `json:"created_at,omitempty"`
	UpdatedAt    string  `json:"updated_at,omitempty"`
}

// MaintenanceRecord is one maintenance event for an asset.
type MaintenanceRecord struct {
	ID              int64   `json:"id"`
	AssetID         int64   `json:"asset_id"`
	MaintenanceType string  `json:"maintenance_type"`
	Description     *string `json:"description"`
	ScheduledDate   *string `json:"scheduled_date"`
	CompletedDate   *string `json:"completed_date"`
	Cost            *Money  `json:"cost"`
	PerformedBy     *string `json:"performed_by"`
	Notes           *string `json:"notes"`
	CreatedAt       string  `json:"created_at,omitempty"`
	UpdatedAt       string  `json:"updated_at,omitempty"`
}

// MaintenanceSchedule is a recurring maintenance plan for an asset.
type MaintenanceSchedule struct {
	ID            int64   `json:"id"`
	AssetID       int64   `json:"asset_id"`
	Description   string  `json:"description"`
	FrequencyDays int     `json:"frequency_days"`
	NextDue       string  `json:"next_due"`
	LastPerformed *string `json:"last_performed"`
	IsActive      bool    `json:"is_active"`
	CreatedAt     string  `json:"created_at,omitempty"`
	UpdatedAt     string  `json:"updated_at,omitempty"`
}

// Attachment is a file stored against an asset.
type Attachment struct {
	ID               int64  `json:"id"`
	AssetID          int64  `json:"asset_id"`
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
	MimeType         string `json:"mime_type"`
	FileSize         int64  `json:"file_size"`
	UploadedAt       string `json:"uploaded_at"`
}

// DepreciationEntry is one calculated depreciation period.
type DepreciationEntry struct {
	ID                      int64  `json:"id"`
	AssetID                 int64  `json:"asset_id"`
	PeriodStart             string `json:"period_start"`
	PeriodEnd               string `json:"period_end"`
	DepreciationAmount      Money  `json:"depreciation_amount"`
	AccumulatedDepreciation Money  `json:"accumulated_depreciation"`
	BookValue               Money  `json:"book_value"`
}

// DepreciationSummary is one row of the depreciation report.
type DepreciationSummary struct {
	AssetID            int64   `json:"asset_id"`
	AssetName          string  `json:"asset_name"`
	AssetTag           string  `json:"asset_tag"`
	PurchasePrice      *Money  `json:"purchase_price"`
	PurchaseDate       *string `json:"purchase_date"`
	CurrentBookValue   *Money  `json:"current_book_value"`
	TotalDepreciation  Money   `json:"total_depreciation"`
	DepreciationMethod string  `json:"depreciation_method"`
	UsefulLifeYears    *int    `json:"useful_life_years"`
}

// Assignment is the payload for assigning an asset to a person.
type Assignment struct {
	AssigneeID   string  `json:"assignee_id"`
	AssigneeName string  `json:"assignee_name"`
	Notes        *string `json:"notes"`
}
