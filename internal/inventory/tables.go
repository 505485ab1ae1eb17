package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/assetdesk/assetdesk/internal/model"
)

var (
	priceMin, _      = bounds(0, 1e12)
	lifeMin, lifeMax = bounds(1, 100)
	pctMin, pctMax   = bounds(0, 100)
)

func statusNames() []string {
	out := make([]string, len(model.AssetStatuses))
	for i, s := range model.AssetStatuses {
		out[i] = string(s)
	}
	return out
}

var assetTable = &table[model.Asset]{
	name: "assets",
	noun: "Asset",
	fields: []field{
		{name: "name", kind: textField, required: true},
		{name: "asset_tag", kind: textField, required: true},
		{name: "serial_number", kind: textField},
		{name: "description", kind: textField},
		{name: "status", kind: textField, def: string(model.StatusAvailable), oneOf: statusNames()},
		{name: "purchase_date", kind: dateField},
		{name: "purchase_price", kind: floatField, min: priceMin},
		{name: "current_value", kind: floatField, min: priceMin, updateOnly: true},
		{name: "warranty_expiry", kind: dateField},
		{name: "category_id", kind: intField},
		{name: "location_id", kind: intField},
		{name: "department_id", kind: intField},
		{name: "vendor_id", kind: intField},
	},
	columns: `id, name, asset_tag, serial_number, description, status, purchase_date,
		purchase_price, current_value, warranty_expiry, category_id, location_id,
		department_id, vendor_id, created_at, updated_at`,
	scan: scanAsset,
	filters: map[string]filter{
		"status":        {"status = ?", field{name: "status", kind: textField, oneOf: statusNames()}},
		"category_id":   {"category_id = ?", field{name: "category_id", kind: intField}},
		"location_id":   {"location_id = ?", field{name: "location_id", kind: intField}},
		"department_id": {"department_id = ?", field{name: "department_id", kind: intField}},
	},
	derive: func(cols []string, vals []any, create bool) ([]string, []any) {
		if !create {
			return cols, vals
		}
		if price, ok := lookup(cols, vals, "purchase_price"); ok {
			return set(cols, vals, "current_value", price)
		}
		return cols, vals
	},
	check:    uniqueAssetTag,
	children: []string{"assignments", "maintenance_records", "maintenance_schedules", "attachments", "depreciation_entries"},
}

func scanAsset(row rowScanner) (model.Asset, error) {
	var (
		a                              model.Asset
		serial, desc, status           sql.NullString
		purchased, warranty            sql.NullTime
		price, value                   sql.NullFloat64
		category, location, dept, vend sql.NullInt64
		created, updated               time.Time
	)
	err := row.Scan(&a.ID, &a.Name, &a.AssetTag, &serial, &desc, &status, &purchased,
		&price, &value, &warranty, &category, &location, &dept, &vend, &created, &updated)
	if err != nil {
		return a, err
	}
	a.SerialNumber = strPtr(serial)
	a.Description = strPtr(desc)
	a.Status = model.AssetStatus(status.String)
	a.PurchaseDate = datePtr(purchased)
	a.PurchasePrice = moneyPtr(price)
	a.CurrentValue = moneyPtr(value)
	a.WarrantyExpiry = datePtr(warranty)
	a.CategoryID = int64Ptr(category)
	a.LocationID = int64Ptr(location)
	a.DepartmentID = int64Ptr(dept)
	a.VendorID = int64Ptr(vend)
	a.CreatedAt = stamp(created)
	a.UpdatedAt = stamp(updated)
	return a, nil
}

func uniqueAssetTag(ctx context.Context, tx *sql.Tx, cols []string, vals []any, id int64) error {
	tag, ok := lookup(cols, vals, "asset_tag")
	if !ok {
		return nil
	}
	var n int
	err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM assets WHERE asset_tag = ? AND id <> ?", tag, id).Scan(&n)
	if err != nil {
		return fmt.Errorf("inventory: check asset tag: %w", err)
	}
	if n > 0 {
		return conflict("Asset tag %s already exists", tag)
	}
	return nil
}

var categoryTable = &table[model.Category]{
	name: "categories",
	noun: "Category",
	fields: []field{
		{name: "name", kind: textField, required: true},
		{name: "description", kind: textField},
		{name: "depreciation_method", kind: textField, def: model.MethodStraightLine,
			oneOf: []string{model.MethodStraightLine, model.MethodDecliningBalance, model.MethodNone}},
		{name: "useful_life_years", kind: intField, min: lifeMin, max: lifeMax},
		{name: "salvage_value_percent", kind: intField, def: 0.0, min: pctMin, max: pctMax},
		{name: "parent_id", kind: intField},
	},
	columns: "id, name, description, depreciation_method, useful_life_years, salvage_value_percent, parent_id, created_at, updated_at",
	scan: func(row rowScanner) (model.Category, error) {
		var (
			c                model.Category
			desc             sql.NullString
			life, parent     sql.NullInt64
			created, updated time.Time
		)
		err := row.Scan(&c.ID, &c.Name, &desc, &c.DepreciationMethod, &life,
			&c.SalvageValuePercent, &parent, &created, &updated)
		c.Description = strPtr(desc)
		c.UsefulLifeYears = intPtr(life)
		c.ParentID = int64Ptr(parent)
		c.CreatedAt, c.UpdatedAt = stamp(created), stamp(updated)
		return c, err
	},
}

var locationTable = &table[model.Location]{
	name: "locations",
	noun: "Location",
	fields: []field{
		{name: "name", kind: textField, required: true},
		{name: "address", kind: textField},
		{name: "parent_id", kind: intField},
	},
	columns: "id, name, address, parent_id, created_at, updated_at",
	scan: func(row rowScanner) (model.Location, error) {
		var (
			l                model.Location
			addr             sql.NullString
			parent           sql.NullInt64
			created, updated time.Time
		)
		err := row.Scan(&l.ID, &l.Name, &addr, &parent, &created, &updated)
		l.Address = strPtr(addr)
		l.ParentID = int64Ptr(parent)
		l.CreatedAt, l.UpdatedAt = stamp(created), stamp(updated)
		return l, err
	},
}

var departmentTable = &table[model.Department]{
	name: "departments",
	noun: "Department",
	fields: []field{
		{name: "name", kind: textField, required: true},
		{name: "code", kind: textField},
		{name: "parent_id", kind: intField},
	},
	columns: "id, name, code, parent_id, created_at, updated_at",
	scan: func(row rowScanner) (model.Department, error) {
		var (
			d                model.Department
			code             sql.NullString
			parent           sql.NullInt64
			created, updated time.Time
		)
		err := row.Scan(&d.ID, &d.Name, &code, &parent, &created, &updated)
		d.Code = strPtr(code)
		d.ParentID = int64Ptr(parent)
		d.CreatedAt, d.UpdatedAt = stamp(created), stamp(updated)
		return d, err
	},
}

var vendorTable = &table[model.Vendor]{
	name: "vendors",
	noun: "Vendor",
	fields: []field{
		{name: "name", kind: textField, required: true},
		{name: "contact_email", kind: textField},
		{name: "phone", kind: textField},
		{name: "address", kind: textField},
		{name: "website", kind: textField},
		{name: "notes", kind: textField},
	},
	columns: "id, name, contact_email, phone, address, website, notes, created_at, updated_at",
	scan: func(row rowScanner) (model.Vendor, error) {
		var (
			v                           model.Vendor
			email, phone, addr, web, nt sql.NullString
			created, updated            time.Time
		)
		err := row.Scan(&v.ID, &v.Name, &email, &phone, &addr, &web, &nt, &created, &updated)
		v.ContactEmail = strPtr(email)
		v.Phone = strPtr(phone)
		v.Address = strPtr(addr)
		v.Website = strPtr(web)
		v.Notes = strPtr(nt)
		v.CreatedAt, v.UpdatedAt = stamp(created), stamp(updated)
		return v, err
	},
}

// Assets returns the asset collection.
func (s *Store) Assets() model.Collection[model.Asset] {
	return Resource[model.Asset]{s, assetTable}
}

// Categories returns the category collection.
func (s *Store) Categories() model.Collection[model.Category] {
	return Resource[model.Category]{s, categoryTable}
}

// Locations returns the location collection.
func (s *Store) Locations() model.Collection[model.Location] {
	return Resource[model.Location]{s, locationTable}
}

// Departments returns the department collection.
func (s *Store) Departments() model.Collection[model.Department] {
	return Resource[model.Department]{s, departmentTable}
}

// Vendors returns the vendor collection.
func (s *Store) Vendors() model.Collection[model.Vendor] {
	return Resource[model.Vendor]{s, vendorTable}
}
