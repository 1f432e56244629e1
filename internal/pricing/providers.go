package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingAPIKey = errors.New("quote API key is not configured")
)

// Quote is a successful upstream price lookup.
type Quote struct {
	Price decimal.Decimal
	AsOf  time.Time
}

// QuoteClient fetches equity and forex quotes from the TwelveData API.
// Every lookup requires the API credential; the zero credential fails
// fast without a network call.
type QuoteClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewQuoteClient creates a quote client. timeout bounds each call.
func NewQuoteClient(apiKey string, timeout time.Duration) *QuoteClient {
	return &QuoteClient{
		apiKey:  apiKey,
		baseURL: "https://api.twelvedata.com",
		client:  &http.Client{Timeout: timeout},
	}
}

// quotePayload covers both the success shape and the embedded error
// shape TwelveData returns with HTTP 200.
type quotePayload struct {
	Symbol        string `json:"symbol"`
	Close         string `json:"close"`
	PreviousClose string `json:"previous_close"`
	Currency      string `json:"currency"`
	Datetime      string `json:"datetime"`
	Code          int    `json:"code"`
	Message       string `json:"message"`
}

// GetQuote fetches the latest quote for a symbol. Rate-limit and error
// messages embedded in an otherwise valid payload are surfaced as
// errors, as are malformed prices.
func (q *QuoteClient) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	if q.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	addr := fmt.Sprintf("%s/quote?symbol=%s&apikey=%s", q.baseURL, url.QueryEscape(symbol), q.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote request returned %s", resp.Status)
	}

	var payload quotePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid quote payload: %w", err)
	}

	// The API reports credit exhaustion and bad symbols inside a 200
	if payload.Message != "" {
		return nil, fmt.Errorf("quote API error: %s", payload.Message)
	}
	if payload.Close == "" {
		return nil, errors.New("quote payload missing close price")
	}

	price, err := decimal.NewFromString(payload.Close)
	if err != nil {
		return nil, fmt.Errorf("invalid close price %q", payload.Close)
	}

	quote := &Quote{Price: price}
	if asOf, err := time.Parse("2006-01-02 15:04:05", payload.Datetime); err == nil {
		quote.AsOf = asOf
	}
	return quote, nil
}

// GetUsdIls fetches the current USD/ILS rate through the forex quote
// endpoint.
func (q *QuoteClient) GetUsdIls(ctx context.Context) (*Quote, error) {
	return q.GetQuote(ctx, "USD/ILS")
}

// CryptoClient fetches crypto spot prices from the CoinGecko simple
// price API. No credential is required.
type CryptoClient struct {
	baseURL string
	client  *http.Client
}

// NewCryptoClient creates a crypto price client. timeout bounds each call.
func NewCryptoClient(timeout time.Duration) *CryptoClient {
	return &CryptoClient{
		baseURL: "https://api.coingecko.com",
		client:  &http.Client{Timeout: timeout},
	}
}

// GetPrice fetches the USD price for a provider coin id such as
// "bitcoin" or "ethereum".
func (c *CryptoClient) GetPrice(ctx context.Context, coinID string) (decimal.Decimal, error) {
	coinID = strings.ToLower(coinID)
	addr := fmt.Sprintf("%s/api/v3/simple/price?ids=%s&vs_currencies=usd", c.baseURL, url.QueryEscape(coinID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return decimal.Zero, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("crypto price request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("crypto price request returned %s", resp.Status)
	}

	var payload map[string]struct {
		USD decimal.Decimal `json:"usd"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("invalid crypto price payload: %w", err)
	}

	entry, ok := payload[coinID]
	if !ok || entry.USD.IsZero() {
		return decimal.Zero, fmt.Errorf("no price returned for %s", coinID)
	}
	return entry.USD, nil
}
