package models

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypeBuy  TransactionType = "buy"
	TransactionTypeSell TransactionType = "sell"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusConfirmed TransactionStatus = "confirmed"
	StatusRejected  TransactionStatus = "rejected"
)

// DefaultUnit is the generic unit label used when an item has no unit.
const DefaultUnit = "عدد"

type Item struct {
	ID         uuid.UUID `json:"id"`
	ItemName   string    `json:"itemName"`
	Quantity   float64   `json:"quantity"`
	Unit       string    `json:"unit"`
	UnitPrice  float64   `json:"unitPrice"`
	TotalPrice float64   `json:"totalPrice"`
}

type Transaction struct {
	ID                uuid.UUID         `json:"id"`
	UserID            uuid.UUID         `json:"-"`
	Type              TransactionType   `json:"type"`
	Counterparty      string            `json:"counterparty"`
	Date              string            `json:"date"`
	Items             []Item            `json:"items"`
	TotalAmount       float64           `json:"totalAmount"`
	Description       string            `json:"description,omitempty"`
	Status            TransactionStatus `json:"status"`
	TranscriptionText string            `json:"transcriptionText,omitempty"`
	AudioObjectName   string            `json:"audioObjectName,omitempty"`
	CreatedAt         time.Time         `json:"createdAt,omitzero"`
	UpdatedAt         time.Time         `json:"updatedAt,omitzero"`

	// AudioURL is a temporary link computed on read, never stored.
	AudioURL string `json:"audioUrl,omitempty"`
}

// TransactionPatch carries the fields of a partial update. Nil means "not supplied".
type TransactionPatch struct {
	Type              *TransactionType
	Counterparty      *string
	Date              *string
	Items             []Item
	TotalAmount       *float64
	Description       *string
	Status            *TransactionStatus
	TranscriptionText *string
}

// Empty reports whether the patch changes nothing.
func (p *TransactionPatch) Empty() bool {
	return p.Type == nil && p.Counterparty == nil && p.Date == nil && p.Items == nil &&
		p.TotalAmount == nil && p.Description == nil && p.Status == nil && p.TranscriptionText == nil
}

// Apply copies the supplied fields onto tx.
func (p *TransactionPatch) Apply(tx *Transaction) {
	if p.Type != nil {
		tx.Type = *p.Type
	}
	if p.Counterparty != nil {
		tx.Counterparty = *p.Counterparty
	}
	if p.Date != nil {
		tx.Date = *p.Date
	}
	if p.Items != nil {
		tx.Items = p.Items
	}
	if p.TotalAmount != nil {
		tx.TotalAmount = *p.TotalAmount
	}
	if p.Description != nil {
		tx.Description = *p.Description
	}
	if p.Status != nil {
		tx.Status = *p.Status
	}
	if p.TranscriptionText != nil {
		tx.TranscriptionText = *p.TranscriptionText
	}
}

type TransactionFilter struct {
	UserID    uuid.UUID
	Status    TransactionStatus
	Type      TransactionType
	StartDate string
	EndDate   string
	Limit     uint64
	Skip      uint64
}

type TransactionStats struct {
	Total           int64   `json:"total"`
	Confirmed       int64   `json:"confirmed"`
	Pending         int64   `json:"pending"`
	Rejected        int64   `json:"rejected"`
	TotalBuyAmount  float64 `json:"totalBuyAmount"`
	TotalSellAmount float64 `json:"totalSellAmount"`
}
