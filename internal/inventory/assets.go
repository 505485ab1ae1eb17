package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/assetdesk/assetdesk/internal/model"
)

// QR code parameter ranges.
const (
	DefaultQRSize   = 10
	DefaultQRBorder = 4
	MaxQRSize       = 40
	MaxQRBorder     = 10
)

func (s *Store) asset(ctx context.Context, q querier, id int64) (model.Asset, error) {
	return Resource[model.Asset]{s, assetTable}.get(ctx, q, id)
}

func (s *Store) setStatus(ctx context.Context, tx *sql.Tx, id int64, status model.AssetStatus) error {
	return update(ctx, tx, "assets", id, []string{"status"}, []any{string(status)})
}

// AssignAsset records an assignment and marks the asset assigned. Only
// available or in-maintenance assets can be assigned.
func (s *Store) AssignAsset(ctx context.Context, id int64, a model.Assignment) (model.Asset, error) {
	assignee := strings.TrimSpace(a.AssigneeID)
	if assignee == "" {
		return model.Asset{}, invalid("assignee_id: field required")
	}

	var out model.Asset
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		asset, err := s.asset(ctx, tx, id)
		if err != nil {
			return err
		}
		switch asset.Status {
		case model.StatusAvailable, model.StatusInMaintenance:
		case model.StatusAssigned:
			return conflict("Asset is already assigned")
		default:
			return conflict("Cannot assign asset with status %s", asset.Status)
		}

		var name any
		if n := strings.TrimSpace(a.AssigneeName); n != "" {
			name = n
		}
		var notes any
		if a.Notes != nil {
			notes = *a.Notes
		}
		if _, err := insert(ctx, tx, "assignments",
			[]string{"asset_id", "assignee_id", "assignee_name", "notes"},
			[]any{id, assignee, name, notes}); err != nil {
			return err
		}
		if err := s.setStatus(ctx, tx, id, model.StatusAssigned); err != nil {
			return err
		}
		out, err = s.asset(ctx, tx, id)
		return err
	})
	return out, err
}

// ReturnAsset closes the open assignment and marks the asset available.
func (s *Store) ReturnAsset(ctx context.Context, id int64, notes string) (model.Asset, error) {
	var out model.Asset
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		asset, err := s.asset(ctx, tx, id)
		if err != nil {
			return err
		}
		if asset.Status != model.StatusAssigned {
			return conflict("Asset is not currently assigned")
		}

		var (
			assignment int64
			existing   sql.NullString
		)
		err = tx.QueryRowContext(ctx, `SELECT id, notes FROM assignments
			WHERE asset_id = ? AND returned_at IS NULL
			ORDER BY assigned_at DESC, id DESC LIMIT 1`, id).Scan(&assignment, &existing)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("inventory: open assignment of asset %d: %w", id, err)
		default:
			merged := existing.String
			if n := strings.TrimSpace(notes); n != "" {
				if merged != "" {
					merged += "\n"
				}
				merged += "Return: " + n
			}
			var mergedArg any
			if merged != "" {
				mergedArg = merged
			}
			if _, err := tx.ExecContext(ctx, "UPDATE assignments SET returned_at = ?, notes = ? WHERE id = ?",
				s.now().UTC(), mergedArg, assignment); err != nil {
				return fmt.Errorf("inventory: close assignment %d: %w", assignment, err)
			}
		}

		if err := s.setStatus(ctx, tx, id, model.StatusAvailable); err != nil {
			return err
		}
		out, err = s.asset(ctx, tx, id)
		return err
	})
	return out, err
}

// QRPayload is the text encoded into an asset's QR code.
func QRPayload(a model.Asset) string {
	return fmt.Sprintf("ASSET:%s|ID:%d|NAME:%s", a.AssetTag, a.ID, a.Name)
}

// QRCode renders the asset's QR code as PNG. size is the pixel width of one
// module; border 0 drops the quiet zone.
func (s *Store) QRCode(ctx context.Context, id int64, size, border int) ([]byte, error) {
	if size < 1 || size > MaxQRSize {
		return nil, invalid("size: must be between 1 and %d", MaxQRSize)
	}
	if border < 0 || border > MaxQRBorder {
		return nil, invalid("border: must be between 0 and %d", MaxQRBorder)
	}

	var asset model.Asset
	err := s.read(ctx, func(ctx context.Context, q querier) error {
		var err error
		asset, err = s.asset(ctx, q, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	code, err := qrcode.New(QRPayload(asset), qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("inventory: encode qr for asset %d: %w", id, err)
	}
	code.DisableBorder = border == 0
	// A negative size scales each module to -size pixels.
	png, err := code.PNG(-size)
	if err != nil {
		return nil, fmt.Errorf("inventory: render qr for asset %d: %w", id, err)
	}
	return png, nil
}
