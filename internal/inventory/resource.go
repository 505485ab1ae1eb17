package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/assetdesk/assetdesk/internal/model"
)

// Default and maximum page sizes for list endpoints.
const (
	DefaultPageSize = 20
	MaxPageSize     = model.MaxPageSize
)

// table describes how one resource maps onto its SQL table.
type table[T any] struct {
	name    string
	noun    string
	fields  []field
	columns string
	scan    func(rowScanner) (T, error)
	// filters maps a list query key to a predicate with one placeholder.
	filters map[string]filter
	// derive adjusts bound columns before a write.
	derive func(cols []string, vals []any, create bool) ([]string, []any)
	// check runs inside the write transaction; id is 0 on create.
	check func(ctx context.Context, tx *sql.Tx, cols []string, vals []any, id int64) error
	// children are tables whose asset_id rows go with the record.
	children []string
}

type filter struct {
	predicate string
	field     field
}

// Resource is a model.Collection backed by one table.
type Resource[T any] struct {
	s *Store
	t *table[T]
}

var _ model.Collection[model.Asset] = Resource[model.Asset]{}

// NormalizePage clamps page and page size to the accepted ranges.
func NormalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case size < 1:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	return page, size
}

func pageCount(total, size int) int {
	if total == 0 {
		return 0
	}
	return (total + size - 1) / size
}

func (r Resource[T]) where(filters map[string]string) (string, []any, error) {
	var preds []string
	var args []any
	for key, f := range r.t.filters {
		raw, ok := filters[key]
		if !ok || raw == "" {
			continue
		}
		v, err := f.field.convert(raw)
		if err != nil {
			return "", nil, err
		}
		preds = append(preds, f.predicate)
		args = append(args, v)
	}
	if len(preds) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(preds, " AND "), args, nil
}

// List returns one page ordered by id.
func (r Resource[T]) List(ctx context.Context, params model.ListParams) (model.ListResult[T], error) {
	page, size := NormalizePage(params.Page, params.PageSize)
	res := model.ListResult[T]{Items: []T{}, Page: page, PageSize: size}

	where, args, err := r.where(params.Filters)
	if err != nil {
		return res, err
	}

	err = r.s.read(ctx, func(ctx context.Context, q querier) error {
		if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+r.t.name+where, args...).Scan(&res.Total); err != nil {
			return fmt.Errorf("inventory: count %s: %w", r.t.name, err)
		}
		query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY id LIMIT ? OFFSET ?", r.t.columns, r.t.name, where)
		rows, err := q.QueryContext(ctx, query, append(args, size, (page-1)*size)...)
		if err != nil {
			return fmt.Errorf("inventory: list %s: %w", r.t.name, err)
		}
		defer rows.Close()
		for rows.Next() {
			item, err := r.t.scan(rows)
			if err != nil {
				log.Printf("duckdb scan error (%s): %v", r.t.name, err)
				continue
			}
			res.Items = append(res.Items, item)
		}
		return rows.Err()
	})
	res.Pages = pageCount(res.Total, size)
	return res, err
}

// Get returns one record or a not-found error.
func (r Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	err := r.s.read(ctx, func(ctx context.Context, q querier) error {
		var err error
		out, err = r.get(ctx, q, id)
		return err
	})
	return out, err
}

func (r Resource[T]) get(ctx context.Context, q querier, id int64) (T, error) {
	row := q.QueryRowContext(ctx, fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", r.t.columns, r.t.name), id)
	item, err := r.t.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return item, notFound(r.t.noun)
	}
	if err != nil {
		return item, fmt.Errorf("inventory: get %s %d: %w", r.t.name, id, err)
	}
	return item, nil
}

// Create inserts a record from payload.
func (r Resource[T]) Create(ctx context.Context, payload map[string]any) (T, error) {
	var out T
	cols, vals, err := r.bind(payload, true)
	if err != nil {
		return out, err
	}
	err = r.s.withTx(ctx, func(tx *sql.Tx) error {
		if r.t.check != nil {
			if err := r.t.check(ctx, tx, cols, vals, 0); err != nil {
				return err
			}
		}
		id, err := insert(ctx, tx, r.t.name, cols, vals)
		if err != nil {
			return err
		}
		out, err = r.get(ctx, tx, id)
		return err
	})
	return out, err
}

// Update applies the non-null fields of payload.
func (r Resource[T]) Update(ctx context.Context, id int64, payload map[string]any) (T, error) {
	var out T
	cols, vals, err := r.bind(payload, false)
	if err != nil {
		return out, err
	}
	err = r.s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := r.get(ctx, tx, id); err != nil {
			return err
		}
		if r.t.check != nil {
			if err := r.t.check(ctx, tx, cols, vals, id); err != nil {
				return err
			}
		}
		if err := update(ctx, tx, r.t.name, id, cols, vals); err != nil {
			return err
		}
		out, err = r.get(ctx, tx, id)
		return err
	})
	return out, err
}

// Delete removes the record and its dependent rows.
func (r Resource[T]) Delete(ctx context.Context, id int64) error {
	return r.s.withTx(ctx, func(tx *sql.Tx) error {
		return deleteRow(ctx, tx, r.t.name, r.t.noun, id, r.t.children...)
	})
}

func (r Resource[T]) bind(payload map[string]any, create bool) ([]string, []any, error) {
	cols, vals, err := bind(r.t.fields, payload, create)
	if err != nil {
		return nil, nil, err
	}
	if r.t.derive != nil {
		cols, vals = r.t.derive(cols, vals, create)
	}
	return cols, vals, nil
}

func insert(ctx context.Context, q querier, name string, cols []string, vals []any) (int64, error) {
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		name, strings.Join(cols, ", "), placeholders(len(cols)))
	if len(cols) == 0 {
		query = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING id", name)
	}
	var id int64
	if err := q.QueryRowContext(ctx, query, vals...).Scan(&id); err != nil {
		return 0, fmt.Errorf("inventory: insert %s: %w", name, err)
	}
	return id, nil
}

func update(ctx context.Context, q querier, name string, id int64, cols []string, vals []any) error {
	sets := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		sets = append(sets, c+" = ?")
	}
	if !immutableTables[name] {
		sets = append(sets, "updated_at = current_timestamp")
	}
	if len(sets) == 0 {
		return nil
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", name, strings.Join(sets, ", "))
	if _, err := q.ExecContext(ctx, query, append(vals, id)...); err != nil {
		return fmt.Errorf("inventory: update %s %d: %w", name, id, err)
	}
	return nil
}

func deleteRow(ctx context.Context, q querier, name, noun string, id int64, children ...string) error {
	for _, child := range children {
		if _, err := q.ExecContext(ctx, "DELETE FROM "+child+" WHERE asset_id = ?", id); err != nil {
			return fmt.Errorf("inventory: delete %s of %s %d: %w", child, name, id, err)
		}
	}
	res, err := q.ExecContext(ctx, "DELETE FROM "+name+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("inventory: delete %s %d: %w", name, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(noun)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// Tables without an updated_at column.
var immutableTables = map[string]bool{
	"assignments":          true,
	"attachments":          true,
	"depreciation_entries": true,
}

// set replaces or appends col in a bound column list.
func set(cols []string, vals []any, col string, v any) ([]string, []any) {
	for i, c := range cols {
		if c == col {
			vals[i] = v
			return cols, vals
		}
	}
	return append(cols, col), append(vals, v)
}

func lookup(cols []string, vals []any, col string) (any, bool) {
	for i, c := range cols {
		if c == col {
			return vals[i], true
		}
	}
	return nil, false
}
