package service

import (
	"strings"

	"tajeryar/internal/models"
)

// sanitizeText drops byte sequences Postgres text columns reject: invalid
// UTF-8 and NUL.
func sanitizeText(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.ReplaceAll(s, "\x00", "")
}

func sanitizeTransaction(tx *models.Transaction) {
	tx.Counterparty = sanitizeText(tx.Counterparty)
	tx.Description = sanitizeText(tx.Description)
	tx.TranscriptionText = sanitizeText(tx.TranscriptionText)
	sanitizeItems(tx.Items)
}

func sanitizePatch(p *models.TransactionPatch) {
	for _, s := range []*string{p.Counterparty, p.Description, p.TranscriptionText} {
		if s != nil {
			*s = sanitizeText(*s)
		}
	}
	sanitizeItems(p.Items)
}

func sanitizeItems(items []models.Item) {
	for i := range items {
		items[i].ItemName = sanitizeText(items[i].ItemName)
		items[i].Unit = sanitizeText(items[i].Unit)
	}
}
