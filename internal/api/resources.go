package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/assetdesk/assetdesk/internal/model"
)

// Resource is the CRUD client for one flat collection such as /vendors.
type Resource[T any] struct {
	c    *Client
	path string
}

var (
	_ model.Collection[model.Asset]      = (*Resource[model.Asset])(nil)
	_ model.Collection[model.Category]   = (*Resource[model.Category])(nil)
	_ model.Collection[model.Location]   = (*Resource[model.Location])(nil)
	_ model.Collection[model.Department] = (*Resource[model.Department])(nil)
	_ model.Collection[model.Vendor]     = (*Resource[model.Vendor])(nil)
	_ model.Inventory                    = (*Client)(nil)
)

func resource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{c: c, path: path}
}

func (r *Resource[T]) item(id int64) string {
	return fmt.Sprintf("%s/%d", r.path, id)
}

// List fetches one page.
func (r *Resource[T]) List(ctx context.Context, params model.ListParams) (model.ListResult[T], error) {
	var out model.ListResult[T]
	if err := r.c.get(ctx, r.path, params.Query(), &out); err != nil {
		return model.ListResult[T]{}, err
	}
	return out, nil
}

// Get fetches one record.
func (r *Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	err := r.c.get(ctx, r.item(id), nil, &out)
	return out, err
}

// Create posts a new record.
func (r *Resource[T]) Create(ctx context.Context, payload map[string]any) (T, error) {
	var out T
	err := r.c.send(ctx, http.MethodPost, r.path, payload, &out)
	return out, err
}

// Update replaces the given fields of a record.
func (r *Resource[T]) Update(ctx context.Context, id int64, payload map[string]any) (T, error) {
	var out T
	err := r.c.send(ctx, http.MethodPut, r.item(id), payload, &out)
	return out, err
}

// Delete removes a record.
func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	return r.c.delete(ctx, r.item(id))
}

// Assets returns the asset collection.
func (c *Client) Assets() model.Collection[model.Asset] {
	return resource[model.Asset](c, "/assets")
}

// Categories returns the category collection.
func (c *Client) Categories() model.Collection[model.Category] {
	return resource[model.Category](c, "/categories")
}

// Locations returns the location collection.
func (c *Client) Locations() model.Collection[model.Location] {
	return resource[model.Location](c, "/locations")
}

// Departments returns the department collection.
func (c *Client) Departments() model.Collection[model.Department] {
	return resource[model.Department](c, "/departments")
}

// Vendors returns the vendor collection.
func (c *Client) Vendors() model.Collection[model.Vendor] {
	return resource[model.Vendor](c, "/vendors")
}
