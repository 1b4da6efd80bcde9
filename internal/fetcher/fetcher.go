package fetcher

import (
	"context"

	"github.com/shopspring/decimal"
)

// Snapshot is one point-in-time batch of prices: coin id -> currency -> price.
// It is built fresh each cycle and never mutated.
type Snapshot map[string]map[string]decimal.Decimal

// Price performs a total lookup. Missing coin or currency keys return ok=false
// rather than panicking; transient provider omissions are expected.
func (s Snapshot) Price(coinID, currency string) (decimal.Decimal, bool) {
	byCurrency, ok := s[coinID]
	if !ok {
		return decimal.Decimal{}, false
	}
	price, ok := byCurrency[currency]
	return price, ok
}

// PriceFetcher retrieves current prices for a set of coin identifiers in one
// quote currency.
type PriceFetcher interface {
	SimplePrice(ctx context.Context, coinIDs []string, quote string) (Snapshot, error)
}

// MarketsFetcher retrieves the top coins by market cap with display metadata.
type MarketsFetcher interface {
	TopMarkets(ctx context.Context, quote string) ([]Coin, error)
}

// Coin is one row of the markets listing.
type Coin struct {
	ID                 string          `json:"id"`
	Symbol             string          `json:"symbol"`
	Name               string          `json:"name"`
	CurrentPrice       decimal.Decimal `json:"current_price"`
	Change24hPct       decimal.Decimal `json:"price_change_percentage_24h"`
	MarketCap          decimal.Decimal `json:"market_cap"`
	TotalVolume        decimal.Decimal `json:"total_volume"`
	SparklineSevenDays Sparkline       `json:"sparkline_in_7d"`
}

// Sparkline carries the provider's 7-day hourly price trace.
type Sparkline struct {
	Price []float64 `json:"price"`
}
