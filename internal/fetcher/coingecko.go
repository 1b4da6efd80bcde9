package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	simplePricePath = "/simple/price"
	marketsPath     = "/coins/markets"
)

// CoinGeckoOptions parameterise the CoinGecko client.
type CoinGeckoOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	PerPage   int
}

// CoinGecko fetches prices and market listings from the CoinGecko REST API.
type CoinGecko struct {
	opts    CoinGeckoOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewCoinGecko constructs a CoinGecko client.
func NewCoinGecko(opts CoinGeckoOptions, logger zerolog.Logger) *CoinGecko {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.coingecko.com/api/v3"
	}

	if opts.PerPage <= 0 {
		opts.PerPage = 100
	}

	return &CoinGecko{
		opts:    opts,
		logger:  logger.With().Str("component", "coingecko").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// SimplePrice fetches current prices for the given coin ids in one quote
// currency. Coins the provider omits are simply absent from the snapshot.
func (c *CoinGecko) SimplePrice(ctx context.Context, coinIDs []string, quote string) (Snapshot, error) {
	if len(coinIDs) == 0 {
		return Snapshot{}, nil
	}
	if quote == "" {
		return nil, errors.New("quote currency required")
	}

	params := url.Values{}
	params.Set("ids", strings.Join(coinIDs, ","))
	params.Set("vs_currencies", quote)

	var snap Snapshot
	if err := c.getJSON(ctx, simplePricePath, params, &snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// TopMarkets fetches the top coins by market cap, sparkline included.
func (c *CoinGecko) TopMarkets(ctx context.Context, quote string) ([]Coin, error) {
	if quote == "" {
		return nil, errors.New("quote currency required")
	}

	params := url.Values{}
	params.Set("vs_currency", quote)
	params.Set("order", "market_cap_desc")
	params.Set("per_page", fmt.Sprintf("%d", c.opts.PerPage))
	params.Set("page", "1")
	params.Set("sparkline", "true")
	params.Set("price_change_percentage", "1h,24h,7d")

	var coins []Coin
	if err := c.getJSON(ctx, marketsPath, params, &coins); err != nil {
		return nil, err
	}
	return coins, nil
}

func (c *CoinGecko) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "cryptotracker/1.0")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return parseHTTPError(resp.StatusCode, payload)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode coingecko response: %w", err)
	}
	return nil
}

type errorResponse struct {
	Error  string `json:"error"`
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Status.ErrorMessage != "" {
			return fmt.Errorf("coingecko api error (%d): %s", status, apiErr.Status.ErrorMessage)
		}
		if apiErr.Error != "" {
			return fmt.Errorf("coingecko api error (%d): %s", status, apiErr.Error)
		}
	}
	if len(payload) > 0 {
		return fmt.Errorf("coingecko api error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("coingecko api error (%d)", status)
}

var _ PriceFetcher = (*CoinGecko)(nil)
var _ MarketsFetcher = (*CoinGecko)(nil)
