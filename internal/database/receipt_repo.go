package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/splitkaro/billscan/internal/models"
)

var ErrReceiptNotFound = errors.New("receipt not found")

// CreateReceipt persists a scanned receipt and its items in one transaction
func (db *DB) CreateReceipt(ctx context.Context, req *models.CreateReceiptRequest) (*models.StoredReceipt, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	r := req.Receipt

	merchantJSON, err := json.Marshal(r.MerchantInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to encode merchant info: %w", err)
	}

	var merchantName *string
	if r.MerchantInfo.Name != "" {
		merchantName = &r.MerchantInfo.Name
	}
	var rawText *string
	if r.RawText != "" {
		rawText = &r.RawText
	}

	var receiptID int
	err = tx.QueryRow(ctx, `
		INSERT INTO receipts (user_id, s3_bucket, s3_key, original_filename, content_type,
		                      merchant_name, merchant_info, receipt_type,
		                      subtotal, tax, service_charge, total,
		                      confidence, ocr_method, raw_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`, req.UserID, req.S3Bucket, req.S3Key, req.OriginalFilename, req.ContentType,
		merchantName, merchantJSON, r.ReceiptType,
		r.Subtotal, r.Tax, r.ServiceCharge, r.Total,
		r.Confidence, r.OCRMethod, rawText).Scan(&receiptID)
	if err != nil {
		return nil, err
	}

	for i, item := range r.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO receipt_items (receipt_id, name, price, quantity, kind, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, receiptID, item.Name, item.Price, item.Quantity, item.Kind, i)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return db.GetReceiptByID(ctx, receiptID)
}

// GetReceiptByID retrieves a receipt and its items
func (db *DB) GetReceiptByID(ctx context.Context, id int) (*models.StoredReceipt, error) {
	receipt := &models.StoredReceipt{}

	err := db.Pool.QueryRow(ctx, `
		SELECT id, user_id, s3_bucket, s3_key, original_filename, content_type,
		       merchant_name, receipt_type, subtotal, tax, service_charge, total,
		       confidence, ocr_method, raw_text, scanned_at, created_at, updated_at
		FROM receipts
		WHERE id = $1
	`, id).Scan(
		&receipt.ID, &receipt.UserID, &receipt.S3Bucket, &receipt.S3Key,
		&receipt.OriginalFilename, &receipt.ContentType,
		&receipt.MerchantName, &receipt.ReceiptType,
		&receipt.Subtotal, &receipt.Tax, &receipt.ServiceCharge, &receipt.Total,
		&receipt.Confidence, &receipt.OCRMethod, &receipt.RawText,
		&receipt.ScannedAt, &receipt.CreatedAt, &receipt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReceiptNotFound
		}
		return nil, err
	}

	items, err := db.getReceiptItems(ctx, id)
	if err != nil {
		return nil, err
	}
	receipt.Items = items

	return receipt, nil
}

func (db *DB) getReceiptItems(ctx context.Context, receiptID int) ([]models.LineItem, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT name, price, quantity, kind
		FROM receipt_items
		WHERE receipt_id = $1
		ORDER BY position ASC, id ASC
	`, receiptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.LineItem{}
	for rows.Next() {
		var item models.LineItem
		if err := rows.Scan(&item.Name, &item.Price, &item.Quantity, &item.Kind); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// ListReceipts returns a paginated, filtered list of a user's receipts
func (db *DB) ListReceipts(ctx context.Context, params *models.ReceiptListParams) ([]*models.StoredReceipt, int, error) {
	where := "WHERE user_id = $1"
	args := []interface{}{params.UserID}

	if params.ReceiptType != nil && *params.ReceiptType != "" {
		args = append(args, *params.ReceiptType)
		where += fmt.Sprintf(" AND receipt_type = $%d", len(args))
	}
	if params.From != nil {
		args = append(args, *params.From)
		where += fmt.Sprintf(" AND scanned_at >= $%d", len(args))
	}
	if params.To != nil {
		args = append(args, *params.To)
		where += fmt.Sprintf(" AND scanned_at <= $%d", len(args))
	}

	var total int
	if err := db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM receipts "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT id, user_id, s3_bucket, s3_key, original_filename, content_type,
		       merchant_name, receipt_type, subtotal, tax, service_charge, total,
		       confidence, ocr_method, raw_text, scanned_at, created_at, updated_at
		FROM receipts
		%s
		ORDER BY scanned_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var receipts []*models.StoredReceipt
	for rows.Next() {
		receipt := &models.StoredReceipt{}
		err := rows.Scan(
			&receipt.ID, &receipt.UserID, &receipt.S3Bucket, &receipt.S3Key,
			&receipt.OriginalFilename, &receipt.ContentType,
			&receipt.MerchantName, &receipt.ReceiptType,
			&receipt.Subtotal, &receipt.Tax, &receipt.ServiceCharge, &receipt.Total,
			&receipt.Confidence, &receipt.OCRMethod, &receipt.RawText,
			&receipt.ScannedAt, &receipt.CreatedAt, &receipt.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// Items are loaded per receipt; lists are small (paginated).
	for _, r := range receipts {
		items, err := db.getReceiptItems(ctx, r.ID)
		if err != nil {
			return nil, 0, err
		}
		r.Items = items
	}

	return receipts, total, nil
}

// DeleteReceipt deletes a receipt and its items, returning the S3 key of
// the stored image so the caller can remove it from object storage.
func (db *DB) DeleteReceipt(ctx context.Context, id, userID int) (string, error) {
	var key string
	err := db.Pool.QueryRow(ctx, `
		DELETE FROM receipts WHERE id = $1 AND user_id = $2 RETURNING s3_key
	`, id, userID).Scan(&key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrReceiptNotFound
		}
		return "", err
	}
	return key, nil
}
