package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"crypto-price-tracker/internal/alerting"
	"crypto-price-tracker/internal/fetcher"
	"crypto-price-tracker/internal/rules"
	"crypto-price-tracker/internal/scheduler"
)

// Service orchestrates one refresh cycle: fetch a snapshot for the coins the
// rules reference, evaluate every rule, notify the fired ones.
type Service struct {
	scheduler *scheduler.Scheduler
	prices    fetcher.PriceFetcher
	store     *rules.Store
	notifier  *alerting.Notifier
	sink      alerting.Sink
	logger    zerolog.Logger

	quote string
}

// New constructs the tracking service.
func New(sched *scheduler.Scheduler, prices fetcher.PriceFetcher, store *rules.Store, notifier *alerting.Notifier, sink alerting.Sink, quote string, logger zerolog.Logger) *Service {
	return &Service{
		scheduler: sched,
		prices:    prices,
		store:     store,
		notifier:  notifier,
		sink:      sink,
		logger:    logger.With().Str("component", "service").Logger(),
		quote:     quote,
	}
}

// Run begins the refresh loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, func(ctx context.Context, _ time.Time) error {
		_, err := s.Cycle(ctx)
		return err
	})
}

// Cycle executes a single evaluation pass and returns the outcome for every
// fired rule, in rule insertion order.
//
// A snapshot fetch failure aborts this cycle only: it is surfaced to the user
// and returned to the scheduler, which logs and retries on the next tick.
// Failures inside the alert path (email) are contained per rule and never
// abort the pass.
func (s *Service) Cycle(ctx context.Context) ([]alerting.Outcome, error) {
	ruleSet := s.store.List()
	if len(ruleSet) == 0 {
		s.logger.Debug().Msg("no rules defined; skipping cycle")
		return nil, nil
	}

	snap, err := s.prices.SimplePrice(ctx, s.store.CoinIDs(), s.quote)
	if err != nil {
		s.sink.Emit(alerting.Notification{
			Message:  fmt.Sprintf("Failed to fetch prices: %v", err),
			Severity: alerting.SeverityError,
		})
		return nil, fmt.Errorf("fetch prices: %w", err)
	}

	return s.EvaluateSnapshot(ruleSet, snap), nil
}

// EvaluateSnapshot runs the rule set against an already-fetched snapshot and
// notifies every fired rule.
func (s *Service) EvaluateSnapshot(ruleSet []rules.Rule, snap fetcher.Snapshot) []alerting.Outcome {
	results := alerting.EvaluateAll(ruleSet, snap)

	outcomes := make([]alerting.Outcome, 0, len(results))
	fired := 0
	for _, res := range results {
		if !res.Fired {
			continue
		}
		fired++
		outcomes = append(outcomes, s.notifier.Notify(res.Rule, res.Price))
	}

	s.logger.Info().
		Int("rules", len(ruleSet)).
		Int("fired", fired).
		Msg("cycle complete")
	return outcomes
}
