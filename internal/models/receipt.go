package models

import (
	"time"
)

// ReceiptType is a coarse routing hint for choosing an extraction strategy
type ReceiptType string

const (
	ReceiptTypeTransportation ReceiptType = "transportation"
	ReceiptTypeTrain          ReceiptType = "train"
	ReceiptTypeRestaurant     ReceiptType = "restaurant"
	ReceiptTypeRetail         ReceiptType = "retail"
	ReceiptTypeGeneral        ReceiptType = "general"
)

// LineItemKind distinguishes ticket items from ordinary purchases
type LineItemKind string

const (
	ItemKindGeneric        LineItemKind = "generic"
	ItemKindTransportation LineItemKind = "transportation"
)

// MerchantInfo holds whatever identity fields could be recovered from the
// receipt head. Every field is independently optional.
type MerchantInfo struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`
}

// LineItem is a single purchasable entry on a receipt
type LineItem struct {
	Name     string       `json:"name"`
	Price    float64      `json:"price"`
	Quantity int          `json:"quantity"`
	Kind     LineItemKind `json:"kind"`
}

// Receipt is the final structured artifact produced by the extraction
// pipeline. It is immutable once returned to the caller.
type Receipt struct {
	MerchantInfo  MerchantInfo `json:"merchant_info"`
	Items         []LineItem   `json:"items"`
	Subtotal      float64      `json:"subtotal"`
	Tax           float64      `json:"tax"`
	ServiceCharge float64      `json:"service_charge"`
	Total         float64      `json:"total"`
	ReceiptType   ReceiptType  `json:"receipt_type"`
	RawText       string       `json:"raw_text"`
	Confidence    float64      `json:"confidence"`
	OCRMethod     string       `json:"ocr_method"`
}

// StoredReceipt is a persisted receipt row with its storage location
type StoredReceipt struct {
	ID               int         `json:"id"`
	UserID           int         `json:"user_id"`
	S3Bucket         string      `json:"s3_bucket"`
	S3Key            string      `json:"s3_key"`
	OriginalFilename *string     `json:"original_filename,omitempty"`
	ContentType      *string     `json:"content_type,omitempty"`
	MerchantName     *string     `json:"merchant_name,omitempty"`
	ReceiptType      ReceiptType `json:"receipt_type"`
	Subtotal         float64     `json:"subtotal"`
	Tax              float64     `json:"tax"`
	ServiceCharge    float64     `json:"service_charge"`
	Total            float64     `json:"total"`
	Confidence       float64     `json:"confidence"`
	OCRMethod        string      `json:"ocr_method"`
	RawText          *string     `json:"raw_text,omitempty"`
	Items            []LineItem  `json:"items"`
	ScannedAt        time.Time   `json:"scanned_at"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// CreateReceiptRequest is used when persisting a freshly scanned receipt
type CreateReceiptRequest struct {
	UserID           int
	S3Bucket         string
	S3Key            string
	OriginalFilename string
	ContentType      string
	Receipt          *Receipt
}

// ReceiptListParams contains filters for listing receipts
type ReceiptListParams struct {
	UserID      int
	Limit       int
	Offset      int
	ReceiptType *string
	From        *time.Time
	To          *time.Time
}
