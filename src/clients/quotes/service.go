package quotes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"tradesim/src/config"
	"tradesim/src/schemas"
	"tradesim/src/utils/requests"
)

// ErrNoQuote means the source has no usable price for the ticker right now.
// Zero and negative upstream prices are reported as ErrNoQuote rather than
// stored, so "unknown" is never confused with "worthless".
var ErrNoQuote = errors.New("no quote available")

type QuotesClientI interface {
	GetQuote(ticker string) (*schemas.Quote, error)
}

type QuotesServiceClient struct {
	API     *requests.ExternalAPIService
	BaseURL string
}

// NewClient creates a new instance of QuotesServiceClient.
func NewClient(cfg *config.Config) *QuotesServiceClient {
	return &QuotesServiceClient{
		API:     requests.NewExternalAPIService(),
		BaseURL: cfg.ExternalClients.Quotes.BaseURL,
	}
}

// GetQuote fetches the last-traded price for one ticker.
func (c *QuotesServiceClient) GetQuote(ticker string) (*schemas.Quote, error) {
	endpoint := fmt.Sprintf("%s/api/v1/ticker/price", c.BaseURL)

	params := url.Values{}
	params.Add("symbol", ticker)

	resp, err := c.API.Get(endpoint, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoQuote
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr APIError
		if err := json.Unmarshal(responseBody, &apiErr); err == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("quotes api error: %d %s", apiErr.Code, apiErr.Message)
		}
		return nil, fmt.Errorf("quotes api returned status %d", resp.StatusCode)
	}

	var tickerResponse TickerResponse
	if err := json.Unmarshal(responseBody, &tickerResponse); err != nil {
		return nil, fmt.Errorf("quotes api returned unexpected payload: %w", err)
	}

	price, err := decimal.NewFromString(tickerResponse.Price)
	if err != nil {
		return nil, fmt.Errorf("quotes api returned invalid price %q: %w", tickerResponse.Price, err)
	}
	if !price.IsPositive() {
		return nil, ErrNoQuote
	}

	return &schemas.Quote{
		Ticker: ticker,
		Price:  price,
		Time:   time.Now(),
	}, nil
}
