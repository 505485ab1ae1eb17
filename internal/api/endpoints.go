package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/assetdesk/assetdesk/internal/model"
)

// AssignAsset assigns an available asset to a person.
func (c *Client) AssignAsset(ctx context.Context, id int64, a model.Assignment) (model.Asset, error) {
	var out model.Asset
	err := c.send(ctx, http.MethodPost, fmt.Sprintf("/assets/%d/assign", id), a, &out)
	return out, err
}

// ReturnAsset returns an assigned asset.
func (c *Client) ReturnAsset(ctx context.Context, id int64, notes string) (model.Asset, error) {
	payload := map[string]any{"notes": nil}
	if notes != "" {
		payload["notes"] = notes
	}
	var out model.Asset
	err := c.send(ctx, http.MethodPost, fmt.Sprintf("/assets/%d/return", id), payload, &out)
	return out, err
}

// QRCode fetches the asset's QR code as a PNG.
func (c *Client) QRCode(ctx context.Context, id int64, size, border int) ([]byte, error) {
	q := url.Values{}
	q.Set("size", strconv.Itoa(size))
	q.Set("border", strconv.Itoa(border))
	var out []byte
	err := c.get(ctx, fmt.Sprintf("/assets/%d/qrcode", id), q, &out)
	return out, err
}

// UpcomingMaintenance lists active schedules due within days.
func (c *Client) UpcomingMaintenance(ctx context.Context, days int) ([]model.MaintenanceSchedule, error) {
	if days <= 0 {
		days = model.DefaultUpcomingDays
	}
	q := url.Values{}
	q.Set("days", strconv.Itoa(days))
	var out []model.MaintenanceSchedule
	err := c.get(ctx, "/maintenance/upcoming", q, &out)
	return out, err
}

// MaintenanceRecords lists one page of an asset's maintenance history.
func (c *Client) MaintenanceRecords(ctx context.Context, assetID int64, params model.ListParams) (model.ListResult[model.MaintenanceRecord], error) {
	var out model.ListResult[model.MaintenanceRecord]
	err := c.get(ctx, fmt.Sprintf("/maintenance/assets/%d/maintenance", assetID), params.Query(), &out)
	return out, err
}

// CreateMaintenanceRecord logs maintenance against an asset.
func (c *Client) CreateMaintenanceRecord(ctx context.Context, assetID int64, payload map[string]any) (model.MaintenanceRecord, error) {
	var out model.MaintenanceRecord
	err := c.send(ctx, http.MethodPost, fmt.Sprintf("/maintenance/assets/%d/maintenance", assetID), payload, &out)
	return out, err
}

// UpdateMaintenanceRecord edits a maintenance record.
func (c *Client) UpdateMaintenanceRecord(ctx context.Context, id int64, payload map[string]any) (model.MaintenanceRecord, error) {
	var out model.MaintenanceRecord
	err := c.send(ctx, http.MethodPut, fmt.Sprintf("/maintenance/records/%d", id), payload, &out)
	return out, err
}

// DeleteMaintenanceRecord removes a maintenance record.
func (c *Client) DeleteMaintenanceRecord(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/maintenance/records/%d", id))
}

// Schedules lists an asset's maintenance schedules.
func (c *Client) Schedules(ctx context.Context, assetID int64) ([]model.MaintenanceSchedule, error) {
	var out []model.MaintenanceSchedule
	err := c.get(ctx, fmt.Sprintf("/maintenance/assets/%d/schedules", assetID), nil, &out)
	return out, err
}

// CreateSchedule adds a recurring schedule to an asset.
func (c *Client) CreateSchedule(ctx context.Context, assetID int64, payload map[string]any) (model.MaintenanceSchedule, error) {
	var out model.MaintenanceSchedule
	err := c.send(ctx, http.MethodPost, fmt.Sprintf("/maintenance/assets/%d/schedules", assetID), payload, &out)
	return out, err
}

// UpdateSchedule edits a schedule.
func (c *Client) UpdateSchedule(ctx context.Context, id int64, payload map[string]any) (model.MaintenanceSchedule, error) {
	var out model.MaintenanceSchedule
	err := c.send(ctx, http.MethodPut, fmt.Sprintf("/maintenance/schedules/%d", id), payload, &out)
	return out, err
}

// DeleteSchedule removes a schedule.
func (c *Client) DeleteSchedule(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/maintenance/schedules/%d", id))
}

// Attachments lists the files stored against an asset.
func (c *Client) Attachments(ctx context.Context, assetID int64) ([]model.Attachment, error) {
	var out []model.Attachment
	err := c.get(ctx, fmt.Sprintf("/assets/%d/attachments", assetID), nil, &out)
	return out, err
}

// UploadAttachment stores data as a multipart "file" field.
func (c *Client) UploadAttachment(ctx context.Context, assetID int64, filename string, data []byte) (model.Attachment, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return model.Attachment{}, fmt.Errorf("api: upload %s: %w", filename, err)
	}
	if _, err := part.Write(data); err != nil {
		return model.Attachment{}, fmt.Errorf("api: upload %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return model.Attachment{}, fmt.Errorf("api: upload %s: %w", filename, err)
	}

	var out model.Attachment
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        fmt.Sprintf("/assets/%d/attachments", assetID),
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}, &out)
	return out, err
}

// DownloadAttachment fetches an attachment's bytes.
func (c *Client) DownloadAttachment(ctx context.Context, id int64) ([]byte, error) {
	var out []byte
	err := c.get(ctx, fmt.Sprintf("/attachments/%d", id), nil, &out)
	return out, err
}

// DeleteAttachment removes an attachment.
func (c *Client) DeleteAttachment(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/attachments/%d", id))
}

// DepreciationHistory lists calculated periods, newest first.
func (c *Client) DepreciationHistory(ctx context.Context, assetID int64) ([]model.DepreciationEntry, error) {
	var out []model.DepreciationEntry
	err := c.get(ctx, fmt.Sprintf("/assets/%d/depreciation", assetID), nil, &out)
	return out, err
}

// CalculateDepreciation computes and records depreciation for a period.
func (c *Client) CalculateDepreciation(ctx context.Context, assetID int64, periodStart, periodEnd string) (model.DepreciationEntry, error) {
	payload := map[string]string{"period_start": periodStart, "period_end": periodEnd}
	var out model.DepreciationEntry
	err := c.send(ctx, http.MethodPost, fmt.Sprintf("/assets/%d/depreciation", assetID), payload, &out)
	return out, err
}

// DepreciationReport summarises depreciation for every priced asset.
func (c *Client) DepreciationReport(ctx context.Context) ([]model.DepreciationSummary, error) {
	var out []model.DepreciationSummary
	err := c.get(ctx, "/reports/depreciation", nil, &out)
	return out, err
}
