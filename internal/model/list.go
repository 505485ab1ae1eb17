package model

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// ListResult is one page of a paginated list endpoint.
type ListResult[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Pages    int `json:"pages"`
}

// UnmarshalJSON applies the defaults the shell relies on when a field is
// missing: items [], total 0, pages 1.
func (r *ListResult[T]) UnmarshalJSON(data []byte) error {
	type wire ListResult[T]
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Items == nil {
		w.Items = []T{}
	}
	if w.Pages < 1 {
		w.Pages = 1
	}
	*r = ListResult[T](w)
	return nil
}

// ListParams selects a page of a list endpoint plus resource filters.
type ListParams struct {
	Page     int
	PageSize int
	Filters  map[string]string
}

// Query encodes the params as URL query values. Empty filters are skipped.
func (p ListParams) Query() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(p.PageSize))
	}
	for k, v := range p.Filters {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}
