package dto

import (
	"tajeryar/internal/contract"
	"tajeryar/internal/models"
)

type ExtractRequest struct {
	Transcription any `json:"transcription"`
}

type ExtractResponse struct {
	Success     bool                 `json:"success"`
	Transaction *models.Transaction  `json:"transaction"`
	Warnings    []contract.Violation `json:"warnings,omitempty"`
}

// ValidationErrorResponse is returned when the model's answer breaks the
// transaction contract. ExtractedData lets the client offer manual correction.
type ValidationErrorResponse struct {
	Error            string               `json:"error"`
	ValidationErrors []contract.Violation `json:"validationErrors"`
	ExtractedData    map[string]any       `json:"extractedData,omitempty"`
	Hint             string               `json:"hint,omitempty"`
}

type ParseErrorResponse struct {
	Error   string `json:"error"`
	RawText string `json:"rawText"`
}
