package models

import (
	"time"
)

// SplitMode selects how a bill is divided among participants
type SplitMode string

const (
	SplitModeEven     SplitMode = "even"
	SplitModeItemized SplitMode = "itemized"
)

// SplitRequest asks for a stored receipt to be divided
type SplitRequest struct {
	Mode         SplitMode        `json:"mode"`
	Participants []string         `json:"participants"`
	Assignments  map[string][]int `json:"assignments,omitempty"` // participant -> item indexes
}

// ParticipantShare is one participant's portion of the bill
type ParticipantShare struct {
	Participant  string     `json:"participant"`
	Items        []LineItem `json:"items,omitempty"`
	ItemsTotal   float64    `json:"items_total"`
	TaxShare     float64    `json:"tax_share"`
	ServiceShare float64    `json:"service_share"`
	Amount       float64    `json:"amount"`
}

// BillSplit is the computed division of a receipt
type BillSplit struct {
	ReceiptID int                `json:"receipt_id"`
	Mode      SplitMode          `json:"mode"`
	Total     float64            `json:"total"`
	Shares    []ParticipantShare `json:"shares"`
}

// StoredSplit is a persisted split record
type StoredSplit struct {
	ID         int        `json:"id"`
	ReceiptID  int        `json:"receipt_id"`
	UserID     int        `json:"user_id"`
	ShareToken string     `json:"share_token"`
	Split      *BillSplit `json:"split"`
	CreatedAt  time.Time  `json:"created_at"`
}
