package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	portssvc "github.com/pravaha-app/expense_backend/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the public exchangerate-api endpoint. The latest-rates
// endpoint is keyed by base currency: /v4/latest/{base}.
const DefaultBaseURL = "https://api.exchangerate-api.com/v4/latest"

// Client converts amounts between currencies using exchangerate-api.com.
// Rates are fetched per call; callers bound each call with a context deadline.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ portssvc.CurrencyConverterSvc = (*Client)(nil)

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

type latestRatesResponse struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Convert returns amount expressed in toCode. The result is rounded to two
// decimal places. Identity conversions skip the network call entirely.
func (c *Client) Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string, asOf time.Time) (decimal.Decimal, error) {
	if fromCode == toCode {
		return amount.Round(2), nil
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, fromCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build rates request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch rates for %s: %w", fromCode, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("rates endpoint returned status %d for base %s", resp.StatusCode, fromCode)
	}

	var payload latestRatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode rates response: %w", err)
	}

	rate, ok := payload.Rates[toCode]
	if !ok {
		return decimal.Zero, fmt.Errorf("no rate from %s to %s", fromCode, toCode)
	}

	return amount.Mul(rate).Round(2), nil
}
