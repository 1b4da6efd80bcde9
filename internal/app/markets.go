package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"crypto-price-tracker/internal/format"
)

// Markets prints the top coins by market cap.
func (a *App) Markets(ctx context.Context, opts MarketsOptions) error {
	quote := a.Config.Tracker.QuoteCurrency
	coins, err := a.newClient().TopMarkets(ctx, quote)
	if err != nil {
		return fmt.Errorf("fetch markets: %w", err)
	}
	if len(coins) == 0 {
		fmt.Fprintln(os.Stdout, "no market data returned")
		return nil
	}

	if opts.Limit > 0 && len(coins) > opts.Limit {
		coins = coins[:opts.Limit]
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Symbol\tName\tPrice\t24h %\tMarket Cap\tVolume")

	for _, c := range coins {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\n",
			strings.ToUpper(c.Symbol),
			c.Name,
			format.Currency(c.CurrentPrice, quote),
			c.Change24hPct.StringFixed(2),
			format.Currency(c.MarketCap, quote),
			format.Currency(c.TotalVolume, quote),
		)
	}

	return writer.Flush()
}
