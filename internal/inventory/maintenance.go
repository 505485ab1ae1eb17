package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/assetdesk/assetdesk/internal/model"
)

// MaxUpcomingDays bounds the upcoming-maintenance horizon.
const MaxUpcomingDays = 365

var (
	costMin, _       = bounds(0, 1e12)
	freqMin, freqMax = bounds(1, 3650)
)

var recordTable = &table[model.MaintenanceRecord]{
	name: "maintenance_records",
	noun: "Maintenance record",
	fields: []field{
		{name: "maintenance_type", kind: textField, def: model.MaintenancePreventive, oneOf: []string{
			model.MaintenancePreventive, model.MaintenanceCorrective,
			model.MaintenanceInspection, model.MaintenanceUpgrade,
		}},
		{name: "description", kind: textField},
		{name: "scheduled_date", kind: dateField},
		{name: "completed_date", kind: dateField},
		{name: "cost", kind: floatField, min: costMin},
		{name: "performed_by", kind: textField},
		{name: "notes", kind: textField},
	},
	columns: `id, asset_id, maintenance_type, description, scheduled_date, completed_date,
		cost, performed_by, notes, created_at, updated_at`,
	scan: func(row rowScanner) (model.MaintenanceRecord, error) {
		var (
			r                   model.MaintenanceRecord
			desc, by, notes     sql.NullString
			scheduled, finished sql.NullTime
			cost                sql.NullFloat64
			created, updated    time.Time
		)
		err := row.Scan(&r.ID, &r.AssetID, &r.MaintenanceType, &desc, &scheduled, &finished,
			&cost, &by, &notes, &created, &updated)
		r.Description = strPtr(desc)
		r.ScheduledDate = datePtr(scheduled)
		r.CompletedDate = datePtr(finished)
		r.Cost = moneyPtr(cost)
		r.PerformedBy = strPtr(by)
		r.Notes = strPtr(notes)
		r.CreatedAt, r.UpdatedAt = stamp(created), stamp(updated)
		return r, err
	},
}

var scheduleTable = &table[model.MaintenanceSchedule]{
	name: "maintenance_schedules",
	noun: "Maintenance schedule",
	fields: []field{
		{name: "description", kind: textField, required: true},
		{name: "frequency_days", kind: intField, required: true, min: freqMin, max: freqMax},
		{name: "next_due", kind: dateField, required: true},
		{name: "last_performed", kind: dateField, updateOnly: true},
		{name: "is_active", kind: boolField, def: true},
	},
	columns: "id, asset_id, description, frequency_days, next_due, last_performed, is_active, created_at, updated_at",
	scan: func(row rowScanner) (model.MaintenanceSchedule, error) {
		var (
			sc               model.MaintenanceSchedule
			due              time.Time
			last             sql.NullTime
			created, updated time.Time
		)
		err := row.Scan(&sc.ID, &sc.AssetID, &sc.Description, &sc.FrequencyDays, &due, &last,
			&sc.IsActive, &created, &updated)
		sc.NextDue = due.Format(dateLayout)
		sc.LastPerformed = datePtr(last)
		sc.CreatedAt, sc.UpdatedAt = stamp(created), stamp(updated)
		return sc, err
	},
}

// UpcomingMaintenance lists active schedules due within days of today,
// soonest first.
func (s *Store) UpcomingMaintenance(ctx context.Context, days int) ([]model.MaintenanceSchedule, error) {
	if days == 0 {
		days = model.DefaultUpcomingDays
	}
	if days < 1 || days > MaxUpcomingDays {
		return nil, invalid("days: must be between 1 and %d", MaxUpcomingDays)
	}
	cutoff := s.today().AddDate(0, 0, days)
	return s.schedules(ctx, "is_active AND next_due <= ? ORDER BY next_due, id", cutoff)
}

// Schedules lists an asset's maintenance schedules.
func (s *Store) Schedules(ctx context.Context, assetID int64) ([]model.MaintenanceSchedule, error) {
	if err := s.requireAsset(ctx, assetID); err != nil {
		return nil, err
	}
	return s.schedules(ctx, "asset_id = ? ORDER BY next_due, id", assetID)
}

func (s *Store) schedules(ctx context.Context, clause string, args ...any) ([]model.MaintenanceSchedule, error) {
	out := []model.MaintenanceSchedule{}
	err := s.read(ctx, func(ctx context.Context, q querier) error {
		rows, err := q.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM %s WHERE %s",
			scheduleTable.columns, scheduleTable.name, clause), args...)
		if err != nil {
			return fmt.Errorf("inventory: query schedules: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			sc, err := scheduleTable.scan(rows)
			if err != nil {
				log.Printf("duckdb scan error (schedules): %v", err)
				continue
			}
			out = append(out, sc)
		}
		return rows.Err()
	})
	return out, err
}

// MaintenanceRecords returns one page of an asset's maintenance history.
func (s *Store) MaintenanceRecords(ctx context.Context, assetID int64, params model.ListParams) (model.ListResult[model.MaintenanceRecord], error) {
	page, size := NormalizePage(params.Page, params.PageSize)
	res := model.ListResult[model.MaintenanceRecord]{Items: []model.MaintenanceRecord{}, Page: page, PageSize: size}
	if err := s.requireAsset(ctx, assetID); err != nil {
		return res, err
	}

	err := s.read(ctx, func(ctx context.Context, q querier) error {
		if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM maintenance_records WHERE asset_id = ?", assetID).Scan(&res.Total); err != nil {
			return fmt.Errorf("inventory: count maintenance records: %w", err)
		}
		rows, err := q.QueryContext(ctx, fmt.Sprintf(
			"SELECT %s FROM maintenance_records WHERE asset_id = ? ORDER BY id LIMIT ? OFFSET ?", recordTable.columns),
			assetID, size, (page-1)*size)
		if err != nil {
			return fmt.Errorf("inventory: list maintenance records: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			r, err := recordTable.scan(rows)
			if err != nil {
				log.Printf("duckdb scan error (maintenance records): %v", err)
				continue
			}
			res.Items = append(res.Items, r)
		}
		return rows.Err()
	})
	res.Pages = pageCount(res.Total, size)
	return res, err
}

// CreateMaintenanceRecord logs maintenance against an asset.
func (s *Store) CreateMaintenanceRecord(ctx context.Context, assetID int64, payload map[string]any) (model.MaintenanceRecord, error) {
	return createForAsset(ctx, s, recordTable, assetID, payload)
}

// UpdateMaintenanceRecord applies the non-null fields of payload.
func (s *Store) UpdateMaintenanceRecord(ctx context.Context, id int64, payload map[string]any) (model.MaintenanceRecord, error) {
	return Resource[model.MaintenanceRecord]{s, recordTable}.Update(ctx, id, payload)
}

// DeleteMaintenanceRecord removes one record.
func (s *Store) DeleteMaintenanceRecord(ctx context.Context, id int64) error {
	return Resource[model.MaintenanceRecord]{s, recordTable}.Delete(ctx, id)
}

// MaintenanceRecord returns one record.
func (s *Store) MaintenanceRecord(ctx context.Context, id int64) (model.MaintenanceRecord, error) {
	return Resource[model.MaintenanceRecord]{s, recordTable}.Get(ctx, id)
}

// CreateSchedule adds a recurring schedule to an asset.
func (s *Store) CreateSchedule(ctx context.Context, assetID int64, payload map[string]any) (model.MaintenanceSchedule, error) {
	return createForAsset(ctx, s, scheduleTable, assetID, payload)
}

// UpdateSchedule applies the non-null fields of payload.
func (s *Store) UpdateSchedule(ctx context.Context, id int64, payload map[string]any) (model.MaintenanceSchedule, error) {
	return Resource[model.MaintenanceSchedule]{s, scheduleTable}.Update(ctx, id, payload)
}

// DeleteSchedule removes one schedule.
func (s *Store) DeleteSchedule(ctx context.Context, id int64) error {
	return Resource[model.MaintenanceSchedule]{s, scheduleTable}.Delete(ctx, id)
}

// createForAsset inserts a child row of an existing asset.
func createForAsset[T any](ctx context.Context, s *Store, t *table[T], assetID int64, payload map[string]any) (T, error) {
	var out T
	cols, vals, err := bind(t.fields, payload, true)
	if err != nil {
		return out, err
	}
	cols, vals = set(cols, vals, "asset_id", assetID)

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.asset(ctx, tx, assetID); err != nil {
			return err
		}
		id, err := insert(ctx, tx, t.name, cols, vals)
		if err != nil {
			return err
		}
		out, err = Resource[T]{s, t}.get(ctx, tx, id)
		return err
	})
	return out, err
}

func (s *Store) requireAsset(ctx context.Context, id int64) error {
	return s.read(ctx, func(ctx context.Context, q querier) error {
		var one int
		err := q.QueryRowContext(ctx, "SELECT 1 FROM assets WHERE id = ?", id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("Asset")
		}
		if err != nil {
			return fmt.Errorf("inventory: look up asset %d: %w", id, err)
		}
		return nil
	})
}
