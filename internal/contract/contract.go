// Package contract enforces the shape and value rules of a transaction record,
// whatever its origin: model extraction, manual edit or import.
package contract

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"tajeryar/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	datePattern = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`)
	validate    = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("txdate", func(fl validator.FieldLevel) bool {
		return datePattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks every rule against candidate and returns the typed transaction
// with defaults applied (item unit, status). All violations are reported at once
// in a *ValidationError. The candidate is never modified.
func Validate(candidate map[string]any) (*models.Transaction, error) {
	c, err := check(candidate, false)
	if err != nil {
		return nil, err
	}
	return c.transaction(), nil
}

// ValidatePartial applies the same rules to the top-level fields present in
// candidate only. A supplied items array is checked in full. Immutable or
// read-computed fields (id, createdAt, audioUrl) are format-checked when present
// but never part of the returned patch.
func ValidatePartial(candidate map[string]any) (*models.TransactionPatch, error) {
	c, err := check(candidate, true)
	if err != nil {
		return nil, err
	}
	return c.patch(), nil
}

func check(input map[string]any, partial bool) (*candidate, error) {
	d := newDecoder()
	c := d.decode(input)
	violations := d.violations

	err := validate.Struct(c)
	var fieldErrs validator.ValidationErrors
	if err != nil && !errors.As(err, &fieldErrs) {
		return nil, fmt.Errorf("validate transaction: %w", err)
	}

	for _, fe := range fieldErrs {
		path := fieldPath(fe)
		if d.mistyped[path] {
			continue
		}
		if partial && fe.Tag() == "required" && isTopLevel(path) {
			if v, ok := input[path]; !ok || v == nil {
				continue
			}
		}
		violations = append(violations, Violation{Field: path, Reason: reason(fe)})
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}
	return c, nil
}

// fieldPath drops the root struct name from the namespace: "candidate.items[0].quantity" -> "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func isTopLevel(path string) bool {
	return !strings.ContainsAny(path, ".[")
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "nonblank":
		return "must not be empty"
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "min":
		return "must contain at least " + fe.Param() + " item"
	case "txdate":
		return "must match the YYYY/MM/DD pattern"
	case "uuid":
		return "must be a valid UUID"
	case "url":
		return "must be a valid URL"
	case "datetime":
		return "must be an ISO 8601 datetime"
	default:
		return fmt.Sprintf("failed the %q rule", fe.Tag())
	}
}

func (c *candidate) transaction() *models.Transaction {
	tx := &models.Transaction{
		Type:         models.TransactionType(*c.Type),
		Counterparty: *c.Counterparty,
		Date:         *c.Date,
		Items:        c.items(),
		TotalAmount:  *c.TotalAmount,
		Status:       models.StatusPending,
	}
	if c.ID != nil {
		tx.ID = uuid.MustParse(*c.ID)
	}
	if c.Description != nil {
		tx.Description = *c.Description
	}
	if c.Status != nil {
		tx.Status = models.TransactionStatus(*c.Status)
	}
	if c.CreatedAt != nil {
		if t, err := time.Parse(time.RFC3339, *c.CreatedAt); err == nil {
			tx.CreatedAt = t
		}
	}
	if c.AudioURL != nil {
		tx.AudioURL = *c.AudioURL
	}
	if c.TranscriptionText != nil {
		tx.TranscriptionText = *c.TranscriptionText
	}
	return tx
}

func (c *candidate) patch() *models.TransactionPatch {
	p := &models.TransactionPatch{
		Counterparty:      c.Counterparty,
		Date:              c.Date,
		Items:             c.items(),
		TotalAmount:       c.TotalAmount,
		Description:       c.Description,
		TranscriptionText: c.TranscriptionText,
	}
	if c.Type != nil {
		t := models.TransactionType(*c.Type)
		p.Type = &t
	}
	if c.Status != nil {
		s := models.TransactionStatus(*c.Status)
		p.Status = &s
	}
	return p
}

func (c *candidate) items() []models.Item {
	if c.Items == nil {
		return nil
	}
	items := make([]models.Item, len(c.Items))
	for i, ic := range c.Items {
		item := models.Item{
			ItemName:   *ic.ItemName,
			Quantity:   *ic.Quantity,
			Unit:       models.DefaultUnit,
			UnitPrice:  *ic.UnitPrice,
			TotalPrice: *ic.TotalPrice,
		}
		if ic.ID != nil {
			item.ID = uuid.MustParse(*ic.ID)
		}
		if ic.Unit != nil {
			item.Unit = *ic.Unit
		}
		items[i] = item
	}
	return items
}
