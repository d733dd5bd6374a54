package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/splitkaro/billscan/internal/models"
)

var ErrSplitNotFound = errors.New("split not found")

// CreateSplit persists a computed bill split with its share token
func (db *DB) CreateSplit(ctx context.Context, userID int, shareToken string, split *models.BillSplit) (*models.StoredSplit, error) {
	payload, err := json.Marshal(split)
	if err != nil {
		return nil, fmt.Errorf("failed to encode split: %w", err)
	}

	stored := &models.StoredSplit{Split: split}
	err = db.Pool.QueryRow(ctx, `
		INSERT INTO splits (receipt_id, user_id, share_token, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, receipt_id, user_id, share_token, created_at
	`, split.ReceiptID, userID, shareToken, payload).Scan(
		&stored.ID, &stored.ReceiptID, &stored.UserID, &stored.ShareToken, &stored.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return stored, nil
}

// GetSplitByToken retrieves a split by its public share token
func (db *DB) GetSplitByToken(ctx context.Context, token string) (*models.StoredSplit, error) {
	stored := &models.StoredSplit{}
	var payload []byte

	err := db.Pool.QueryRow(ctx, `
		SELECT id, receipt_id, user_id, share_token, payload, created_at
		FROM splits WHERE share_token = $1
	`, token).Scan(
		&stored.ID, &stored.ReceiptID, &stored.UserID, &stored.ShareToken,
		&payload, &stored.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSplitNotFound
		}
		return nil, err
	}

	split := &models.BillSplit{}
	if err := json.Unmarshal(payload, split); err != nil {
		return nil, fmt.Errorf("failed to decode split: %w", err)
	}
	stored.Split = split

	return stored, nil
}

// ListSplitsForReceipt returns all splits computed for a receipt
func (db *DB) ListSplitsForReceipt(ctx context.Context, receiptID int) ([]*models.StoredSplit, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, receipt_id, user_id, share_token, payload, created_at
		FROM splits WHERE receipt_id = $1
		ORDER BY created_at DESC
	`, receiptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var splits []*models.StoredSplit
	for rows.Next() {
		stored := &models.StoredSplit{}
		var payload []byte
		if err := rows.Scan(
			&stored.ID, &stored.ReceiptID, &stored.UserID, &stored.ShareToken,
			&payload, &stored.CreatedAt,
		); err != nil {
			return nil, err
		}
		split := &models.BillSplit{}
		if err := json.Unmarshal(payload, split); err != nil {
			return nil, fmt.Errorf("failed to decode split: %w", err)
		}
		stored.Split = split
		splits = append(splits, stored)
	}

	return splits, rows.Err()
}
