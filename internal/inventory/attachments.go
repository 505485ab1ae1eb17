package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/assetdesk/assetdesk/internal/model"
)

// MaxUploadSize is the largest accepted attachment, in bytes.
const MaxUploadSize = 10 * 1024 * 1024

const attachmentColumns = "id, asset_id, filename, original_filename, mime_type, file_size, uploaded_at"

func scanAttachment(row rowScanner) (model.Attachment, error) {
	var (
		a        model.Attachment
		uploaded time.Time
	)
	err := row.Scan(&a.ID, &a.AssetID, &a.Filename, &a.OriginalFilename, &a.MimeType, &a.FileSize, &uploaded)
	a.UploadedAt = stamp(uploaded)
	return a, err
}

// Attachments lists an asset's files, newest first.
func (s *Store) Attachments(ctx context.Context, assetID int64) ([]model.Attachment, error) {
	if err := s.requireAsset(ctx, assetID); err != nil {
		return nil, err
	}
	out := []model.Attachment{}
	err := s.read(ctx, func(ctx context.Context, q querier) error {
		rows, err := q.QueryContext(ctx, "SELECT "+attachmentColumns+
			" FROM attachments WHERE asset_id = ? ORDER BY uploaded_at DESC, id DESC", assetID)
		if err != nil {
			return fmt.Errorf("inventory: list attachments: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			a, err := scanAttachment(rows)
			if err != nil {
				log.Printf("duckdb scan error (attachments): %v", err)
				continue
			}
			out = append(out, a)
		}
		return rows.Err()
	})
	return out, err
}

// Attachment returns one attachment's metadata.
func (s *Store) Attachment(ctx context.Context, id int64) (model.Attachment, error) {
	var out model.Attachment
	err := s.read(ctx, func(ctx context.Context, q querier) error {
		var err error
		out, err = scanAttachment(q.QueryRowContext(ctx, "SELECT "+attachmentColumns+" FROM attachments WHERE id = ?", id))
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("Attachment")
		}
		if err != nil {
			return fmt.Errorf("inventory: get attachment %d: %w", id, err)
		}
		return nil
	})
	return out, err
}

// UploadAttachment stores data against an asset, guessing the MIME type
// from the file name and then the content.
func (s *Store) UploadAttachment(ctx context.Context, assetID int64, filename string, data []byte) (model.Attachment, error) {
	return s.SaveAttachment(ctx, assetID, filename, "", data)
}

// SaveAttachment stores data with an explicit MIME type. An empty mimeType
// is detected.
func (s *Store) SaveAttachment(ctx context.Context, assetID int64, filename, mimeType string, data []byte) (model.Attachment, error) {
	if len(data) > MaxUploadSize {
		return model.Attachment{}, &DetailError{
			Kind:   ErrTooLarge,
			Detail: fmt.Sprintf("File too large. Max size: %d bytes", MaxUploadSize),
		}
	}

	original := strings.TrimSpace(filepath.Base(filename))
	if original == "" || original == "." || original == string(filepath.Separator) {
		original = "unknown"
	}
	ext := filepath.Ext(original)
	if mimeType == "" {
		mimeType = detectMIME(ext, data)
	}
	if data == nil {
		data = []byte{}
	}

	var out model.Attachment
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.asset(ctx, tx, assetID); err != nil {
			return err
		}
		id, err := insert(ctx, tx, "attachments",
			[]string{"asset_id", "filename", "original_filename", "mime_type", "file_size", "data"},
			[]any{assetID, uuid.NewString() + ext, original, mimeType, int64(len(data)), data})
		if err != nil {
			return err
		}
		out, err = scanAttachment(tx.QueryRowContext(ctx, "SELECT "+attachmentColumns+" FROM attachments WHERE id = ?", id))
		if err != nil {
			return fmt.Errorf("inventory: read back attachment %d: %w", id, err)
		}
		return nil
	})
	return out, err
}

func detectMIME(ext string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(ext)); t != "" {
		return t
	}
	if len(data) == 0 {
		return "application/octet-stream"
	}
	return http.DetectContentType(data)
}

// DownloadAttachment returns the stored bytes.
func (s *Store) DownloadAttachment(ctx context.Context, id int64) ([]byte, error) {
	var data []byte
	err := s.read(ctx, func(ctx context.Context, q querier) error {
		err := q.QueryRowContext(ctx, "SELECT data FROM attachments WHERE id = ?", id).Scan(&data)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("Attachment")
		}
		if err != nil {
			return fmt.Errorf("inventory: read attachment %d: %w", id, err)
		}
		return nil
	})
	return data, err
}

// DeleteAttachment removes one attachment.
func (s *Store) DeleteAttachment(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return deleteRow(ctx, tx, "attachments", "Attachment", id)
	})
}
