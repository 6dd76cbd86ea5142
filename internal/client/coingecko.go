package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	coingeckoAPI    = "https://api.coingecko.com/api/v3"
	solanaCoinGecko = "solana"
)

// CoinGeckoClient client for CoinGecko API
type CoinGeckoClient struct {
	baseURL string
	client  *http.Client
}

// NewCoinGeckoClient creates a new CoinGecko client; an empty baseURL uses the public API.
func NewCoinGeckoClient(baseURL string) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = coingeckoAPI
	}
	return &CoinGeckoClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NativeRate returns the price of one SOL in currency (e.g. "usd", "eur").
func (c *CoinGeckoClient) NativeRate(ctx context.Context, currency string) (decimal.Decimal, error) {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		return decimal.Zero, fmt.Errorf("currency is required")
	}

	query := url.Values{}
	query.Set("ids", solanaCoinGecko)
	query.Set("vs_currencies", currency)
	reqURL := fmt.Sprintf("%s/simple/price?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build rate request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("failed to get rate: status %d", resp.StatusCode)
	}

	// {"solana":{"usd":142.17}}
	var priceResp map[string]map[string]json.Number
	if err := json.NewDecoder(resp.Body).Decode(&priceResp); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode rate: %w", err)
	}
	raw, ok := priceResp[solanaCoinGecko][currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("no %s rate in response", currency)
	}
	rate, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse rate: %w", err)
	}
	return rate, nil
}
