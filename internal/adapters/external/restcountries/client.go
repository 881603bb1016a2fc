package restcountries

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	portssvc "github.com/pravaha-app/expense_backend/internal/core/ports/services"
)

// DefaultBaseURL is the public restcountries endpoint used to resolve a
// country name to its primary currency.
const DefaultBaseURL = "https://restcountries.com/v3.1"

// Client looks up the primary currency of a country via restcountries.com.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ portssvc.CountryCurrencySvc = (*Client)(nil)

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

type countryResponse struct {
	Currencies map[string]struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"currencies"`
}

// CurrencyForCountry returns the first currency code listed for the named
// country. The caller decides what to do when the lookup fails; signup falls
// back to USD.
func (c *Client) CurrencyForCountry(ctx context.Context, country string) (string, error) {
	endpoint := fmt.Sprintf("%s/name/%s?fields=currencies&fullText=true", c.baseURL, url.PathEscape(country))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build country request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to look up country %q: %w", country, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("country endpoint returned status %d for %q", resp.StatusCode, country)
	}

	var payload []countryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode country response: %w", err)
	}

	for _, entry := range payload {
		for code := range entry.Currencies {
			return code, nil
		}
	}
	return "", fmt.Errorf("no currency listed for country %q", country)
}
