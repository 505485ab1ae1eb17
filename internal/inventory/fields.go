package inventory

import (
	"database/sql"
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/assetdesk/assetdesk/internal/model"
)

const dateLayout = "2006-01-02"

type fieldKind int

const (
	textField fieldKind = iota
	intField
	floatField
	dateField
	boolField
)

// field describes one writable column of a resource.
type field struct {
	name     string
	kind     fieldKind
	required bool
	def      any
	oneOf    []string
	min, max *float64
	// updateOnly fields are derived on create.
	updateOnly bool
}

func bounds(lo, hi float64) (*float64, *float64) { return &lo, &hi }

// bind validates payload against fields and returns the columns to write in
// field order. On create, required fields must be present and defaults fill
// the gaps. On update, absent and null values are skipped. Unknown keys are
// ignored.
func bind(fields []field, payload map[string]any, create bool) ([]string, []any, error) {
	var cols []string
	var vals []any
	for _, f := range fields {
		if create && f.updateOnly {
			continue
		}
		raw, ok := payload[f.name]
		if s, isText := raw.(string); isText && f.kind != textField && strings.TrimSpace(s) == "" {
			raw = nil
		}
		if !ok || raw == nil {
			if !create {
				continue
			}
			if f.required {
				return nil, nil, invalid("%s: field required", f.name)
			}
			if f.def == nil {
				continue
			}
			raw = f.def
		}
		v, err := f.convert(raw)
		if err != nil {
			return nil, nil, err
		}
		cols = append(cols, f.name)
		vals = append(vals, v)
	}
	return cols, vals, nil
}

func (f field) convert(raw any) (any, error) {
	switch f.kind {
	case textField:
		s, ok := raw.(string)
		if !ok {
			return nil, invalid("%s: expected a string", f.name)
		}
		s = strings.TrimSpace(s)
		if f.required && s == "" {
			return nil, invalid("%s: must not be empty", f.name)
		}
		if len(f.oneOf) > 0 && !slices.Contains(f.oneOf, s) {
			return nil, invalid("%s: must be one of %s", f.name, strings.Join(f.oneOf, ", "))
		}
		return s, nil
	case intField:
		n, err := number(raw)
		if err != nil || n != math.Trunc(n) {
			return nil, invalid("%s: expected an integer", f.name)
		}
		if err := f.inRange(n); err != nil {
			return nil, err
		}
		return int64(n), nil
	case floatField:
		n, err := number(raw)
		if err != nil {
			return nil, invalid("%s: expected a number", f.name)
		}
		if err := f.inRange(n); err != nil {
			return nil, err
		}
		return n, nil
	case dateField:
		s, ok := raw.(string)
		if !ok {
			return nil, invalid("%s: expected a date", f.name)
		}
		d, err := time.Parse(dateLayout, strings.TrimSpace(s))
		if err != nil {
			return nil, invalid("%s: invalid date %q, use YYYY-MM-DD", f.name, s)
		}
		return d, nil
	case boolField:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, invalid("%s: expected a boolean", f.name)
			}
			return b, nil
		}
		return nil, invalid("%s: expected a boolean", f.name)
	}
	return raw, nil
}

func (f field) inRange(n float64) error {
	if f.min != nil && n < *f.min {
		return invalid("%s: must be at least %v", f.name, *f.min)
	}
	if f.max != nil && n > *f.max {
		return invalid("%s: must be at most %v", f.name, *f.max)
	}
	return nil
}

// number accepts JSON numbers in any Go numeric shape plus numeric strings,
// which is how decimals arrive from the shell's forms.
func number(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	}
	return 0, strconv.ErrSyntax
}

// round2 rounds to cents.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Nullable scan targets converted to the model's pointer fields.

func moneyPtr(nf sql.NullFloat64) *model.Money {
	if !nf.Valid {
		return nil
	}
	return model.MoneyPtr(round2(nf.Float64))
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func datePtr(nt sql.NullTime) *string {
	if !nt.Valid {
		return nil
	}
	s := nt.Time.Format(dateLayout)
	return &s
}

func int64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
