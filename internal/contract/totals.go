package contract

import (
	"fmt"

	"tajeryar/internal/models"

	"github.com/shopspring/decimal"
)

// CheckTotals reports arithmetic inconsistencies between item prices and totals.
// It is advisory: accepted and rejected outcomes of Validate do not depend on it.
func CheckTotals(tx *models.Transaction) []Violation {
	var warnings []Violation

	sum := decimal.Zero
	for i, item := range tx.Items {
		expected := decimal.NewFromFloat(item.Quantity).Mul(decimal.NewFromFloat(item.UnitPrice))
		actual := decimal.NewFromFloat(item.TotalPrice)
		if !expected.Equal(actual) {
			warnings = append(warnings, Violation{
				Field:  fmt.Sprintf("items[%d].totalPrice", i),
				Reason: fmt.Sprintf("expected quantity * unitPrice = %s, got %s", expected, actual),
			})
		}
		sum = sum.Add(actual)
	}

	total := decimal.NewFromFloat(tx.TotalAmount)
	if len(tx.Items) > 0 && !sum.Equal(total) {
		warnings = append(warnings, Violation{
			Field:  "totalAmount",
			Reason: fmt.Sprintf("expected sum of item totals = %s, got %s", sum, total),
		})
	}
	return warnings
}
