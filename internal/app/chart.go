package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"crypto-price-tracker/internal/fetcher"
)

// Chart renders a coin's 7-day price trace to a PNG file. The data comes from
// the live markets endpoint (sparkline), so no history is stored locally.
func (a *App) Chart(ctx context.Context, opts ChartOptions) error {
	if opts.CoinID == "" {
		return errors.New("--coin is required")
	}
	if opts.PNGPath == "" {
		return errors.New("--png is required")
	}

	quote := a.Config.Tracker.QuoteCurrency
	coins, err := a.newClient().TopMarkets(ctx, quote)
	if err != nil {
		return fmt.Errorf("fetch markets: %w", err)
	}

	var coin *fetcher.Coin
	for i := range coins {
		if coins[i].ID == opts.CoinID {
			coin = &coins[i]
			break
		}
	}
	if coin == nil {
		return fmt.Errorf("coin %q not found in the top %d markets", opts.CoinID, a.Config.Tracker.TopN)
	}

	trace := coin.SparklineSevenDays.Price
	if len(trace) < 2 {
		return fmt.Errorf("no sparkline data for %q", opts.CoinID)
	}

	// The provider's sparkline is an hourly trace ending now; reconstruct the
	// time axis backwards from the current time.
	end := time.Now().UTC()
	x := make([]time.Time, len(trace))
	for i := range trace {
		x[i] = end.Add(-time.Duration(len(trace)-1-i) * time.Hour)
	}

	valueFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}
	graph := chart.Chart{
		Width:  a.Config.Chart.Width,
		Height: a.Config.Chart.Height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           fmt.Sprintf("Price (%s)", strings.ToUpper(quote)),
			ValueFormatter: valueFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    strings.ToUpper(coin.Symbol),
				XValues: x,
				YValues: trace,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := ensureDir(opts.PNGPath); err != nil {
		return err
	}
	file, err := os.Create(opts.PNGPath)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := graph.Render(chart.PNG, file); err != nil {
		return err
	}

	a.Logger.Info().Str("coin", opts.CoinID).Str("path", opts.PNGPath).Int("points", len(trace)).Msg("chart rendered")
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
