package services

import (
	"context"
	"time"

	"github.com/pravaha-app/expense_backend/internal/core/domain"
	"github.com/pravaha-app/expense_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// CurrencyConverterSvc is the currency-conversion collaborator. Implementations
// must honor context deadlines: submission bounds the call with a short timeout
// and proceeds without a base amount when the call does not finish in time.
type CurrencyConverterSvc interface {
	// Convert returns amount expressed in toCode, as of the given date.
	Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string, asOf time.Time) (decimal.Decimal, error)
}

// CountryCurrencySvc resolves a country name to its primary currency code.
type CountryCurrencySvc interface {
	CurrencyForCountry(ctx context.Context, country string) (string, error)
}

// ReceiptExtractorSvc is the OCR collaborator. Extraction is best effort: an
// empty suggestion set is a normal result.
type ReceiptExtractorSvc interface {
	Extract(ctx context.Context, image []byte) (dto.ReceiptSuggestion, error)
}

// DecisionNotifierSvc observes ExpenseDecided events. Delivery is asynchronous
// to the decision itself and at-least-once.
type DecisionNotifierSvc interface {
	NotifyDecided(ctx context.Context, event domain.ExpenseDecidedEvent) error
}
