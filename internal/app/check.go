package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"crypto-price-tracker/internal/alerting"
	"crypto-price-tracker/internal/fetcher"
	"crypto-price-tracker/internal/service"
)

// Check runs a single evaluation pass over the configured rules, either
// against live prices or against static overrides, and prints the outcome of
// every fired rule.
func (a *App) Check(ctx context.Context, opts CheckOptions) error {
	store, err := a.newRuleStore()
	if err != nil {
		return err
	}
	if store.Len() == 0 {
		return errors.New("no alert rules configured")
	}

	var prices fetcher.PriceFetcher = a.newClient()
	if len(opts.StaticPrices) > 0 {
		static, err := staticSnapshot(opts.StaticPrices, a.Config.Tracker.QuoteCurrency)
		if err != nil {
			return err
		}
		prices = static
	}

	sink := alerting.NewLogSink(a.Logger)
	svc := service.New(nil, prices, store, a.newNotifier(sink), sink, a.Config.Tracker.QuoteCurrency, a.Logger)

	outcomes, err := svc.Cycle(ctx)
	if err != nil {
		return err
	}

	if len(outcomes) == 0 {
		fmt.Fprintln(os.Stdout, "no rules fired")
		return nil
	}
	for _, o := range outcomes {
		status := "notified"
		if o.EmailAttempted {
			if o.EmailError != "" {
				status = "email failed: " + o.EmailError
			} else {
				status = "email sent"
			}
		}
		fmt.Fprintf(os.Stdout, "%s %s %s: fired (%s)\n", o.Rule.CoinID, o.Rule.Comparison.Symbol(), o.Rule.Threshold.String(), status)
	}
	return nil
}

// staticFetcher serves a fixed snapshot, ignoring the requested ids.
type staticFetcher struct {
	snap fetcher.Snapshot
}

func (s *staticFetcher) SimplePrice(context.Context, []string, string) (fetcher.Snapshot, error) {
	return s.snap, nil
}

func staticSnapshot(prices map[string]string, quote string) (*staticFetcher, error) {
	snap := fetcher.Snapshot{}
	for coinID, raw := range prices {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid price for %s: %w", coinID, err)
		}
		snap[coinID] = map[string]decimal.Decimal{quote: v}
	}
	return &staticFetcher{snap: snap}, nil
}

var _ fetcher.PriceFetcher = (*staticFetcher)(nil)
