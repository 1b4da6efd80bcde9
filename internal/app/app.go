package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"crypto-price-tracker/internal/alerting"
	"crypto-price-tracker/internal/config"
	"crypto-price-tracker/internal/fetcher"
	"crypto-price-tracker/internal/rules"
	"crypto-price-tracker/internal/scheduler"
	"crypto-price-tracker/internal/service"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newClient() *fetcher.CoinGecko {
	return fetcher.NewCoinGecko(fetcher.CoinGeckoOptions{
		BaseURL:   a.Config.CoinGecko.BaseURL,
		Timeout:   a.Config.CoinGecko.RequestTimeout,
		UserAgent: a.Config.CoinGecko.UserAgent,
		PerPage:   a.Config.Tracker.TopN,
	}, a.Logger)
}

func (a *App) newNotifier(sink alerting.Sink) *alerting.Notifier {
	email := alerting.NewDispatcher(a.Config.Alerting.Email, a.Logger)
	return alerting.NewNotifier(sink, email, a.Logger)
}

func (a *App) newRuleStore() (*rules.Store, error) {
	configured, err := a.Config.Rules()
	if err != nil {
		return nil, err
	}
	store := rules.NewStore()
	for _, r := range configured {
		store.Add(r)
	}
	return store, nil
}

// Run executes the long-running tracking loop.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := a.newRuleStore()
	if err != nil {
		return err
	}
	if store.Len() == 0 {
		a.Logger.Warn().Msg("no alert rules configured; the loop will only poll when rules exist")
	}
	if !a.Config.Alerting.Email.Complete() {
		a.Logger.Info().Msg("email not configured (optional)")
	}

	sched := scheduler.New(scheduler.Options{
		Interval:       a.Config.Tracker.Refresh,
		RunImmediately: true,
	}, a.Logger)

	sink := alerting.NewLogSink(a.Logger)
	svc := service.New(sched, a.newClient(), store, a.newNotifier(sink), sink, a.Config.Tracker.QuoteCurrency, a.Logger)

	a.Logger.Info().
		Dur("refresh", a.Config.Tracker.Refresh).
		Str("quote", a.Config.Tracker.QuoteCurrency).
		Int("rules", store.Len()).
		Msg("starting price tracker")

	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("tracker terminated with error")
		return err
	}

	a.Logger.Info().Msg("price tracker stopped")
	return nil
}

// MarketsOptions configure the markets command.
type MarketsOptions struct {
	Limit int
}

// ChartOptions hold parameters for rendering a sparkline chart.
type ChartOptions struct {
	CoinID  string
	PNGPath string
}

// CheckOptions configure a one-shot evaluation pass.
type CheckOptions struct {
	// StaticPrices overrides live fetching with fixed coin prices.
	StaticPrices map[string]string
}
