package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/assetdesk/assetdesk/internal/model"
)

// DefaultUsefulLife applies when a category leaves useful life unset.
const DefaultUsefulLife = 5

// Basis is everything one depreciation period needs.
type Basis struct {
	Method          string
	PurchasePrice   float64
	UsefulLifeYears int
	SalvagePercent  int
	// BookValue and Accumulated carry over from the latest entry, or are
	// the purchase price and 0 for the first period.
	BookValue   float64
	Accumulated float64
	Start, End  time.Time
}

// Period is the outcome of one depreciation calculation.
type Period struct {
	Amount      float64
	Accumulated float64
	BookValue   float64
}

// Depreciate computes one period. The book value never drops below the
// salvage value. ok is false when the method is none or the asset is
// already fully depreciated.
func Depreciate(b Basis) (Period, bool) {
	if b.Method == model.MethodNone || b.Method == "" {
		return Period{}, false
	}
	life := b.UsefulLifeYears
	if life <= 0 {
		life = DefaultUsefulLife
	}
	salvage := b.PurchasePrice * float64(b.SalvagePercent) / 100
	if b.BookValue <= salvage {
		return Period{}, false
	}

	days := float64(int(math.Round(b.End.Sub(b.Start).Hours()/24)) + 1)
	var amount float64
	switch b.Method {
	case model.MethodDecliningBalance:
		amount = round2(b.BookValue * (2 / float64(life)) / 365 * days)
	default:
		amount = round2((b.PurchasePrice - salvage) / float64(life) / 365 * days)
	}

	book := round2(math.Max(b.BookValue-amount, salvage))
	actual := round2(b.BookValue - book)
	return Period{
		Amount:      actual,
		Accumulated: round2(b.Accumulated + actual),
		BookValue:   book,
	}, true
}

const entryColumns = "id, asset_id, period_start, period_end, depreciation_amount, accumulated_depreciation, book_value"

func scanEntry(row rowScanner) (model.DepreciationEntry, error) {
	var (
		e                  model.DepreciationEntry
		start, end         time.Time
		amount, acc, bookV float64
	)
	err := row.Scan(&e.ID, &e.AssetID, &start, &end, &amount, &acc, &bookV)
	e.PeriodStart = start.Format(dateLayout)
	e.PeriodEnd = end.Format(dateLayout)
	e.DepreciationAmount = model.Money(round2(amount))
	e.AccumulatedDepreciation = model.Money(round2(acc))
	e.BookValue = model.Money(round2(bookV))
	return e, err
}

// DepreciationHistory lists an asset's entries, latest period first.
func (s *Store) DepreciationHistory(ctx context.Context, assetID int64) ([]model.DepreciationEntry, error) {
	if err := s.requireAsset(ctx, assetID); err != nil {
		return nil, err
	}
	out := []model.DepreciationEntry{}
	err := s.read(ctx, func(ctx context.Context, q querier) error {
		rows, err := q.QueryContext(ctx, "SELECT "+entryColumns+
			" FROM depreciation_entries WHERE asset_id = ? ORDER BY period_end DESC, id DESC", assetID)
		if err != nil {
			return fmt.Errorf("inventory: depreciation history: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			e, err := scanEntry(rows)
			if err != nil {
				log.Printf("duckdb scan error (depreciation): %v", err)
				continue
			}
			out = append(out, e)
		}
		return rows.Err()
	})
	return out, err
}

// CalculateDepreciation appends the next period to an asset's history and
// sets its current value to the new book value.
func (s *Store) CalculateDepreciation(ctx context.Context, assetID int64, periodStart, periodEnd string) (model.DepreciationEntry, error) {
	start, err := time.Parse(dateLayout, periodStart)
	if err != nil {
		return model.DepreciationEntry{}, invalid("period_start: invalid date %q, use YYYY-MM-DD", periodStart)
	}
	end, err := time.Parse(dateLayout, periodEnd)
	if err != nil {
		return model.DepreciationEntry{}, invalid("period_end: invalid date %q, use YYYY-MM-DD", periodEnd)
	}
	if end.Before(start) {
		return model.DepreciationEntry{}, invalid("period_end: must not be before period_start")
	}

	var out model.DepreciationEntry
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		asset, err := s.asset(ctx, tx, assetID)
		if err != nil {
			return err
		}
		if asset.PurchasePrice == nil || *asset.PurchasePrice == 0 {
			return conflict("Asset has no purchase price")
		}
		if asset.CategoryID == nil {
			return conflict("Asset has no category")
		}
		category, err := Resource[model.Category]{s, categoryTable}.get(ctx, tx, *asset.CategoryID)
		if errors.Is(err, ErrNotFound) {
			return conflict("Asset has no category")
		}
		if err != nil {
			return err
		}

		b := Basis{
			Method:         category.DepreciationMethod,
			PurchasePrice:  asset.PurchasePrice.Float(),
			SalvagePercent: category.SalvageValuePercent,
			BookValue:      asset.PurchasePrice.Float(),
			Start:          start,
			End:            end,
		}
		if category.UsefulLifeYears != nil {
			b.UsefulLifeYears = *category.UsefulLifeYears
		}
		err = tx.QueryRowContext(ctx, `SELECT book_value, accumulated_depreciation FROM depreciation_entries
			WHERE asset_id = ? ORDER BY period_end DESC, id DESC LIMIT 1`, assetID).Scan(&b.BookValue, &b.Accumulated)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("inventory: latest depreciation of asset %d: %w", assetID, err)
		}

		p, ok := Depreciate(b)
		if !ok {
			return conflict("Cannot calculate depreciation (fully depreciated or no method)")
		}

		id, err := insert(ctx, tx, "depreciation_entries",
			[]string{"asset_id", "period_start", "period_end", "depreciation_amount", "accumulated_depreciation", "book_value"},
			[]any{assetID, start, end, p.Amount, p.Accumulated, p.BookValue})
		if err != nil {
			return err
		}
		if err := update(ctx, tx, "assets", assetID, []string{"current_value"}, []any{p.BookValue}); err != nil {
			return err
		}
		out, err = scanEntry(tx.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM depreciation_entries WHERE id = ?", id))
		if err != nil {
			return fmt.Errorf("inventory: read back depreciation %d: %w", id, err)
		}
		return nil
	})
	return out, err
}

// DepreciationReport summarises every asset with a purchase price.
func (s *Store) DepreciationReport(ctx context.Context) ([]model.DepreciationSummary, error) {
	out := []model.DepreciationSummary{}
	err := s.read(ctx, func(ctx context.Context, q querier) error {
		rows, err := q.QueryContext(ctx, `
			SELECT a.id, a.name, a.asset_tag, a.purchase_price, a.purchase_date, a.current_value,
			       COALESCE((SELECT SUM(d.depreciation_amount) FROM depreciation_entries d WHERE d.asset_id = a.id), 0),
			       COALESCE(c.depreciation_method, 'none'),
			       c.useful_life_years
			FROM assets a
			LEFT JOIN categories c ON c.id = a.category_id
			WHERE a.purchase_price IS NOT NULL
			ORDER BY a.id`)
		if err != nil {
			return fmt.Errorf("inventory: depreciation report: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var (
				r            model.DepreciationSummary
				price, value sql.NullFloat64
				purchased    sql.NullTime
				total        float64
				life         sql.NullInt64
			)
			if err := rows.Scan(&r.AssetID, &r.AssetName, &r.AssetTag, &price, &purchased, &value,
				&total, &r.DepreciationMethod, &life); err != nil {
				log.Printf("duckdb scan error (depreciation report): %v", err)
				continue
			}
			r.PurchasePrice = moneyPtr(price)
			r.PurchaseDate = datePtr(purchased)
			r.CurrentBookValue = moneyPtr(value)
			r.TotalDepreciation = model.Money(round2(total))
			r.UsefulLifeYears = intPtr(life)
			out = append(out, r)
		}
		return rows.Err()
	})
	return out, err
}
