package receiptai_test

import (
	"testing"

	"github.com/pravaha-app/expense_backend/internal/adapters/external/receiptai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReceiptText_LastAmountWins(t *testing.T) {
	text := `GRAND HOTEL
Room service   $ 12.00
Minibar        $ 8.50
TOTAL          $ 128.75`

	suggestion := receiptai.ParseReceiptText(text)

	require.NotNil(t, suggestion.SuggestedAmount)
	assert.Equal(t, "128.75", suggestion.SuggestedAmount.StringFixed(2))
	require.NotNil(t, suggestion.SuggestedCurrency)
	assert.Equal(t, "USD", *suggestion.SuggestedCurrency)
}

func TestParseReceiptText_SymbolMapping(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		currency string
	}{
		{"dollar", "Total $ 10.00", "USD"},
		{"euro", "Summe € 10.00", "EUR"},
		{"pound", "Total £ 10.00", "GBP"},
		{"yen", "合計 ¥ 1000", "JPY"},
		{"iso code", "TOTAL INR 2500.00", "INR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			suggestion := receiptai.ParseReceiptText(tc.text)
			require.NotNil(t, suggestion.SuggestedCurrency)
			assert.Equal(t, tc.currency, *suggestion.SuggestedCurrency)
		})
	}
}

func TestParseReceiptText_ThousandsSeparator(t *testing.T) {
	suggestion := receiptai.ParseReceiptText("TOTAL USD 1,234.56")

	require.NotNil(t, suggestion.SuggestedAmount)
	assert.Equal(t, "1234.56", suggestion.SuggestedAmount.StringFixed(2))
}

func TestParseReceiptText_CategoryKeywords(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		category string
	}{
		{"travel", "UBER TRIP $ 23.40", "TRAVEL"},
		{"lodging", "Grand Hotel, 2 nights $ 300.00", "LODGING"},
		{"food", "Luigi's Pizza $ 18.20", "FOOD"},
		{"office", "Staples order $ 45.00", "OFFICE_SUPPLIES"},
		{"fallback", "Misc purchase $ 5.00", "MISCELLANEOUS"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			suggestion := receiptai.ParseReceiptText(tc.text)
			require.NotNil(t, suggestion.SuggestedCategory)
			assert.Equal(t, tc.category, *suggestion.SuggestedCategory)
		})
	}
}

func TestParseReceiptText_NoAmountStillSuggestsCategory(t *testing.T) {
	suggestion := receiptai.ParseReceiptText("Thanks for riding with Uber")

	assert.Nil(t, suggestion.SuggestedAmount)
	assert.Nil(t, suggestion.SuggestedCurrency)
	require.NotNil(t, suggestion.SuggestedCategory)
	assert.Equal(t, "TRAVEL", *suggestion.SuggestedCategory)
}

func TestParseReceiptText_EmptyTextIsEmptySuggestion(t *testing.T) {
	suggestion := receiptai.ParseReceiptText("")

	assert.True(t, suggestion.Empty())
}
