package contract

import (
	"encoding/json"
	"fmt"
)

type itemCandidate struct {
	ID         *string  `json:"id" validate:"omitnil,uuid"`
	ItemName   *string  `json:"itemName" validate:"required,nonblank"`
	Quantity   *float64 `json:"quantity" validate:"required,gt=0"`
	Unit       *string  `json:"unit"`
	UnitPrice  *float64 `json:"unitPrice" validate:"required,gt=0"`
	TotalPrice *float64 `json:"totalPrice" validate:"required,gt=0"`
}

type candidate struct {
	ID                *string          `json:"id" validate:"omitnil,uuid"`
	Type              *string          `json:"type" validate:"required,oneof=buy sell"`
	Counterparty      *string          `json:"counterparty" validate:"required,nonblank"`
	Date              *string          `json:"date" validate:"required,txdate"`
	Items             []*itemCandidate `json:"items" validate:"required,min=1,dive"`
	TotalAmount       *float64         `json:"totalAmount" validate:"required,gt=0"`
	Description       *string          `json:"description"`
	Status            *string          `json:"status" validate:"omitnil,oneof=pending confirmed rejected"`
	CreatedAt         *string          `json:"createdAt" validate:"omitnil,datetime=2006-01-02T15:04:05Z07:00"`
	AudioURL          *string          `json:"audioUrl" validate:"omitnil,url"`
	TranscriptionText *string          `json:"transcriptionText"`
}

// decoder moves loosely typed JSON values into a candidate. Values of the wrong
// JSON type become violations and are left unset; their paths are remembered so
// the follow-up "required" failures for the same paths are not reported twice.
type decoder struct {
	violations []Violation
	mistyped   map[string]bool
}

func newDecoder() *decoder {
	return &decoder{mistyped: make(map[string]bool)}
}

func (d *decoder) reject(path, reason string) {
	d.violations = append(d.violations, Violation{Field: path, Reason: reason})
	d.mistyped[path] = true
}

func (d *decoder) decode(m map[string]any) *candidate {
	c := &candidate{
		ID:                d.str(m, "id", ""),
		Type:              d.str(m, "type", ""),
		Counterparty:      d.str(m, "counterparty", ""),
		Date:              d.str(m, "date", ""),
		TotalAmount:       d.num(m, "totalAmount", ""),
		Description:       d.str(m, "description", ""),
		Status:            d.str(m, "status", ""),
		CreatedAt:         d.str(m, "createdAt", ""),
		AudioURL:          d.str(m, "audioUrl", ""),
		TranscriptionText: d.str(m, "transcriptionText", ""),
	}

	raw, ok := m["items"]
	if !ok || raw == nil {
		return c
	}
	list, ok := raw.([]any)
	if !ok {
		d.reject("items", "must be an array")
		return c
	}

	c.Items = make([]*itemCandidate, len(list))
	for i, el := range list {
		path := fmt.Sprintf("items[%d]", i)
		obj, ok := el.(map[string]any)
		if !ok {
			d.reject(path, "must be an object")
			continue
		}
		c.Items[i] = &itemCandidate{
			ID:         d.str(obj, "id", path),
			ItemName:   d.str(obj, "itemName", path),
			Quantity:   d.num(obj, "quantity", path),
			Unit:       d.str(obj, "unit", path),
			UnitPrice:  d.num(obj, "unitPrice", path),
			TotalPrice: d.num(obj, "totalPrice", path),
		}
	}
	return c
}

func (d *decoder) str(m map[string]any, key, parent string) *string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		d.reject(joinPath(parent, key), "must be a string")
		return nil
	}
	return &s
}

func (d *decoder) num(m map[string]any, key, parent string) *float64 {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}

	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			d.reject(joinPath(parent, key), "must be a number")
			return nil
		}
		f = parsed
	default:
		d.reject(joinPath(parent, key), "must be a number")
		return nil
	}
	return &f
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
