package receiptai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/pravaha-app/expense_backend/internal/core/domain"
	portssvc "github.com/pravaha-app/expense_backend/internal/core/ports/services"
	"github.com/pravaha-app/expense_backend/internal/dto"
	openai "github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"
)

// Extractor reads receipt images with a vision model and returns suggested
// expense fields. Extraction is advisory: any failure degrades to an empty
// suggestion at the service layer, never an error surfaced to the submitter.
type Extractor struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

var _ portssvc.ReceiptExtractorSvc = (*Extractor)(nil)

func NewExtractor(apiKey, model string, logger *slog.Logger) *Extractor {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Extractor{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

type extractionResult struct {
	Text     string  `json:"text"`
	Amount   *string `json:"amount"`
	Currency *string `json:"currency"`
}

// Extract runs the vision model over the image, then applies the same text
// heuristics used for plain OCR output to whatever the model read.
func (e *Extractor) Extract(ctx context.Context, image []byte) (dto.ReceiptSuggestion, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You read retail and travel receipts. Transcribe the receipt text and identify the final total and its currency.",
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: `Transcribe this receipt. Return JSON: {"text": "<full transcription>", "amount": "<final total as a plain number, or null>", "currency": "<ISO 4217 code, or null>"}`,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image),
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return dto.ReceiptSuggestion{}, fmt.Errorf("vision extraction failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return dto.ReceiptSuggestion{}, fmt.Errorf("empty vision response")
	}

	var result extractionResult
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &result); err != nil {
		e.logger.Warn("unparseable vision response", "error", err)
		return dto.ReceiptSuggestion{}, fmt.Errorf("failed to parse vision response: %w", err)
	}

	suggestion := ParseReceiptText(result.Text)

	// The model's own read of the total wins over the regex pass when present.
	if result.Amount != nil {
		if amount, err := decimal.NewFromString(strings.ReplaceAll(*result.Amount, ",", "")); err == nil && amount.IsPositive() {
			suggestion.SuggestedAmount = &amount
		}
	}
	if result.Currency != nil {
		if code := strings.ToUpper(strings.TrimSpace(*result.Currency)); len(code) == 3 {
			suggestion.SuggestedCurrency = &code
		}
	}

	return suggestion, nil
}

// amountPattern matches a currency marker followed by a number. Receipts list
// a running tape of amounts; the final total is almost always the last match.
var amountPattern = regexp.MustCompile(`([A-Z]{3}|\$|€|£|¥)\s*(\d+(?:[.,]\d{3})*(?:[.,]\d{2})?)`)

var symbolToCode = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "JPY",
}

var categoryKeywords = []struct {
	keywords []string
	category domain.ExpenseCategory
}{
	{[]string{"uber", "lyft", "taxi", "cab", "flight", "airline", "train", "rail"}, domain.CategoryTravel},
	{[]string{"hotel", "inn", "lodge", "motel", "resort"}, domain.CategoryLodging},
	{[]string{"restaurant", "cafe", "coffee", "food", "pizza", "burger", "diner"}, domain.CategoryFood},
	{[]string{"staples", "office", "stationery", "supplies"}, domain.CategoryOfficeSupplies},
}

// ParseReceiptText applies the regex and keyword heuristics to raw receipt
// text. It is the pure half of extraction and the fallback when no vision
// model is configured.
func ParseReceiptText(text string) dto.ReceiptSuggestion {
	var suggestion dto.ReceiptSuggestion

	matches := amountPattern.FindAllStringSubmatch(text, -1)
	if len(matches) > 0 {
		last := matches[len(matches)-1]
		marker, raw := last[1], last[2]

		normalized := strings.ReplaceAll(raw, ",", "")
		if amount, err := decimal.NewFromString(normalized); err == nil && amount.IsPositive() {
			suggestion.SuggestedAmount = &amount
		}

		code := marker
		if mapped, ok := symbolToCode[marker]; ok {
			code = mapped
		}
		if len(code) == 3 {
			suggestion.SuggestedCurrency = &code
		}
	}

	lower := strings.ToLower(text)
	category := domain.CategoryMiscellaneous
	for _, group := range categoryKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				category = group.category
				break
			}
		}
		if category != domain.CategoryMiscellaneous {
			break
		}
	}
	if suggestion.SuggestedAmount != nil || strings.TrimSpace(text) != "" {
		cat := string(category)
		suggestion.SuggestedCategory = &cat
	}

	return suggestion
}
