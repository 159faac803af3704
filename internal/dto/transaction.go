package dto

import "tajeryar/internal/models"

// Envelope is the success body shared by the transaction and file endpoints.
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Count   *int `json:"count,omitempty"`
}

func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

func OKList[T any](items []T) Envelope {
	n := len(items)
	return Envelope{Success: true, Data: items, Count: &n}
}

// CreateTransactionRequest carries an untyped candidate; it is checked
// against the transaction contract, not by the body parser.
type CreateTransactionRequest struct {
	Transaction     map[string]any `json:"transaction"`
	AudioObjectName string         `json:"audioObjectName,omitempty"`
}

type UpdateTransactionRequest struct {
	Transaction map[string]any `json:"transaction"`
}

type ListTransactionsQuery struct {
	Status    string `query:"status" validate:"omitempty,oneof=pending confirmed rejected"`
	Type      string `query:"type" validate:"omitempty,oneof=buy sell"`
	StartDate string `query:"startDate"`
	EndDate   string `query:"endDate"`
	Limit     uint64 `query:"limit" validate:"omitempty,max=1000"`
	Skip      uint64 `query:"skip"`
}

func (q ListTransactionsQuery) Filter() models.TransactionFilter {
	return models.TransactionFilter{
		Status:    models.TransactionStatus(q.Status),
		Type:      models.TransactionType(q.Type),
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		Limit:     q.Limit,
		Skip:      q.Skip,
	}
}

// ErrorResponse is the failure body for every endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
