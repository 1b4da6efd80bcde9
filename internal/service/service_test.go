package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"crypto-price-tracker/internal/alerting"
	"crypto-price-tracker/internal/fetcher"
	"crypto-price-tracker/internal/rules"
)

type stubPrices struct {
	snap  fetcher.Snapshot
	err   error
	calls int
	ids   []string
}

func (s *stubPrices) SimplePrice(_ context.Context, ids []string, _ string) (fetcher.Snapshot, error) {
	s.calls++
	s.ids = ids
	if s.err != nil {
		return nil, s.err
	}
	return s.snap, nil
}

type recordingSink struct {
	notifications []alerting.Notification
}

func (s *recordingSink) Emit(n alerting.Notification) {
	s.notifications = append(s.notifications, n)
}

func newTestService(t *testing.T, prices *stubPrices, store *rules.Store, email *alerting.Dispatcher) (*Service, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	notifier := alerting.NewNotifier(sink, email, zerolog.Nop())
	return New(nil, prices, store, notifier, sink, "usd", zerolog.Nop()), sink
}

func addRule(t *testing.T, store *rules.Store, coinID, symbol string, cmp rules.Comparison, threshold string, email bool) {
	t.Helper()
	r, err := rules.New(coinID, symbol, cmp, decimal.RequireFromString(threshold), "usd", email)
	if err != nil {
		t.Fatalf("build rule: %v", err)
	}
	store.Add(r)
}

func usdSnapshot(prices map[string]string) fetcher.Snapshot {
	snap := fetcher.Snapshot{}
	for coin, p := range prices {
		snap[coin] = map[string]decimal.Decimal{"usd": decimal.RequireFromString(p)}
	}
	return snap
}

func TestCycleFiresAtThreshold(t *testing.T) {
	store := rules.NewStore()
	addRule(t, store, "bitcoin", "btc", rules.AtLeast, "50000", false)

	prices := &stubPrices{snap: usdSnapshot(map[string]string{"bitcoin": "50000"})}
	svc, sink := newTestService(t, prices, store, nil)

	outcomes, err := svc.Cycle(context.Background())
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if len(outcomes) != 1 || !outcomes[0].Fired {
		t.Fatalf("boundary price must fire: %+v", outcomes)
	}
	if outcomes[0].EmailAttempted {
		t.Fatal("no email requested, none should be attempted")
	}

	if len(sink.notifications) != 1 {
		t.Fatalf("expected one notification, got %+v", sink.notifications)
	}
	if !strings.Contains(sink.notifications[0].Message, "50,000.00") {
		t.Fatalf("message should carry the formatted threshold: %q", sink.notifications[0].Message)
	}
}

func TestCycleBelowThresholdDoesNotFire(t *testing.T) {
	store := rules.NewStore()
	addRule(t, store, "bitcoin", "btc", rules.AtLeast, "50000", false)

	prices := &stubPrices{snap: usdSnapshot(map[string]string{"bitcoin": "49999.99"})}
	svc, sink := newTestService(t, prices, store, nil)

	outcomes, err := svc.Cycle(context.Background())
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if len(outcomes) != 0 {
		t.Fatalf("nothing should fire: %+v", outcomes)
	}
	if len(sink.notifications) != 0 {
		t.Fatalf("no notifications expected: %+v", sink.notifications)
	}
}

func TestCycleAtMostWithEmail(t *testing.T) {
	store := rules.NewStore()
	addRule(t, store, "ethereum", "eth", rules.AtMost, "2000", true)

	email := alerting.NewDispatcherWithSender(
		alerting.EmailConfig{Host: "h", Port: 587, Username: "u", Password: "p", Recipient: "r"},
		func(alerting.EmailConfig, string, string) error { return nil },
		zerolog.Nop(),
	)

	prices := &stubPrices{snap: usdSnapshot(map[string]string{"ethereum": "1999"})}
	svc, _ := newTestService(t, prices, store, email)

	outcomes, err := svc.Cycle(context.Background())
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if len(outcomes) != 1 {
		t.Fatalf("expected one fired rule: %+v", outcomes)
	}
	if !outcomes[0].EmailAttempted || outcomes[0].EmailError != "" {
		t.Fatalf("email should have succeeded: %+v", outcomes[0])
	}
}

func TestCycleFetchFailure(t *testing.T) {
	store := rules.NewStore()
	addRule(t, store, "bitcoin", "btc", rules.AtLeast, "1", false)

	prices := &stubPrices{err: errors.New("dial tcp: connection refused")}
	svc, sink := newTestService(t, prices, store, nil)

	outcomes, err := svc.Cycle(context.Background())
	if err == nil {
		t.Fatal("fetch failure must be returned for the scheduler to log")
	}
	if len(outcomes) != 0 {
		t.Fatalf("no rules may be evaluated on fetch failure: %+v", outcomes)
	}

	if len(sink.notifications) != 1 || sink.notifications[0].Severity != alerting.SeverityError {
		t.Fatalf("fetch failure must surface as an error notification: %+v", sink.notifications)
	}
	if !strings.HasPrefix(sink.notifications[0].Message, "Failed to fetch prices: ") {
		t.Fatalf("unexpected message: %q", sink.notifications[0].Message)
	}
}

func TestCycleNoRulesSkipsFetch(t *testing.T) {
	prices := &stubPrices{}
	svc, _ := newTestService(t, prices, rules.NewStore(), nil)

	outcomes, err := svc.Cycle(context.Background())
	if err != nil || outcomes != nil {
		t.Fatalf("empty store must be a no-op: %v %v", outcomes, err)
	}
	if prices.calls != 0 {
		t.Fatalf("no fetch expected without rules, got %d calls", prices.calls)
	}
}

func TestCycleFetchesUnionOfCoinIDs(t *testing.T) {
	store := rules.NewStore()
	addRule(t, store, "bitcoin", "btc", rules.AtLeast, "1", false)
	addRule(t, store, "ethereum", "eth", rules.AtMost, "2", false)
	addRule(t, store, "bitcoin", "btc", rules.AtMost, "3", false)

	prices := &stubPrices{snap: fetcher.Snapshot{}}
	svc, _ := newTestService(t, prices, store, nil)

	if _, err := svc.Cycle(context.Background()); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if len(prices.ids) != 2 || prices.ids[0] != "bitcoin" || prices.ids[1] != "ethereum" {
		t.Fatalf("expected deduplicated union, got %v", prices.ids)
	}
}

func TestCycleEmailFailureDoesNotBlockLaterRules(t *testing.T) {
	store := rules.NewStore()
	addRule(t, store, "bitcoin", "btc", rules.AtLeast, "1", true)
	addRule(t, store, "ethereum", "eth", rules.AtLeast, "1", false)

	email := alerting.NewDispatcherWithSender(
		alerting.EmailConfig{Host: "h", Port: 587, Username: "u", Password: "p", Recipient: "r"},
		func(alerting.EmailConfig, string, string) error { return errors.New("smtp down") },
		zerolog.Nop(),
	)

	prices := &stubPrices{snap: usdSnapshot(map[string]string{"bitcoin": "2", "ethereum": "2"})}
	svc, _ := newTestService(t, prices, store, email)

	outcomes, err := svc.Cycle(context.Background())
	if err != nil {
		t.Fatalf("email failure must not abort the cycle: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("both rules must be notified: %+v", outcomes)
	}
	if outcomes[0].EmailError == "" {
		t.Fatal("first rule's email failure must be reported")
	}
	if outcomes[1].EmailAttempted {
		t.Fatal("second rule requested no email")
	}
}
