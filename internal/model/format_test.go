package model

import (
	"encoding/json"
	"testing"
)

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{12.5, "$12.50"},
		{1234.567, "$1,234.57"},
		{1000000, "$1,000,000.00"},
		{-950, "-$950.00"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.in); got != tc.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatHelpers_Placeholder(t *testing.T) {
	t.Parallel()

	if got := FormatCurrency(nil); got != Placeholder {
		t.Errorf("FormatCurrency(nil) = %q", got)
	}
	if got := FormatDate(nil); got != Placeholder {
		t.Errorf("FormatDate(nil) = %q", got)
	}
	ts := "2024-03-09T10:11:12"
	if got := FormatDate(&ts); got != "2024-03-09" {
		t.Errorf("FormatDate = %q", got)
	}
	blank := "  "
	if got := Text(&blank); got != Placeholder {
		t.Errorf("Text(blank) = %q", got)
	}
}

func TestMoney_DecodesNumberAndString(t *testing.T) {
	t.Parallel()

	var v struct {
		A *Money `json:"a"`
		B *Money `json:"b"`
		C *Money `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a": 12.5, "b": "1999.99", "c": null}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A == nil || *v.A != 12.5 {
		t.Errorf("a = %v", v.A)
	}
	if v.B == nil || *v.B != 1999.99 {
		t.Errorf("b = %v", v.B)
	}
	if v.C != nil {
		t.Errorf("c = %v, want nil", *v.C)
	}
}

func TestListResult_Defaults(t *testing.T) {
	t.Parallel()

	var r ListResult[Asset]
	if err := json.Unmarshal([]byte(`{}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.Items == nil || len(r.Items) != 0 {
		t.Errorf("items = %v, want empty slice", r.Items)
	}
	if r.Total != 0 || r.Pages != 1 {
		t.Errorf("total=%d pages=%d, want 0 and 1", r.Total, r.Pages)
	}
}

func TestListParams_QuerySkipsEmptyFilters(t *testing.T) {
	t.Parallel()

	q := ListParams{Page: 2, PageSize: 10, Filters: map[string]string{"status": "available", "category_id": ""}}.Query()
	if got := q.Encode(); got != "page=2&page_size=10&status=available" {
		t.Errorf("query = %q", got)
	}
}
