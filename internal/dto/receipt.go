package dto

import "github.com/shopspring/decimal"

// ScanReceiptRequest carries a base64-encoded receipt image.
type ScanReceiptRequest struct {
	ImageBase64 string `json:"imageBase64" binding:"required"`
}

// ReceiptSuggestion is a best-effort pre-fill for a subsequent expense
// submission. Every field may be absent; an empty suggestion set is a valid
// result, never an error the caller has to handle.
type ReceiptSuggestion struct {
	SuggestedAmount   *decimal.Decimal `json:"suggestedAmount,omitempty"`
	SuggestedCurrency *string          `json:"suggestedCurrency,omitempty"`
	SuggestedCategory *string          `json:"suggestedCategory,omitempty"`
}

// Empty reports whether the OCR pass produced no usable fields.
func (s ReceiptSuggestion) Empty() bool {
	return s.SuggestedAmount == nil && s.SuggestedCurrency == nil && s.SuggestedCategory == nil
}
