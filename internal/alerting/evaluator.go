package alerting

import (
	"github.com/shopspring/decimal"

	"crypto-price-tracker/internal/fetcher"
	"crypto-price-tracker/internal/rules"
)

// Result pairs one rule with its evaluation outcome for a snapshot. Price is
// only meaningful when Fired is true.
type Result struct {
	Rule  rules.Rule
	Fired bool
	Price decimal.Decimal
}

// Evaluate reports whether a rule's condition holds against the snapshot.
//
// A coin or currency missing from the snapshot means not-fired, never an
// error: transient provider omissions must not disturb the rest of the pass.
// Both comparisons are inclusive, so a price exactly on the threshold fires.
func Evaluate(rule rules.Rule, snap fetcher.Snapshot) bool {
	price, ok := snap.Price(rule.CoinID, rule.QuoteCurrency)
	if !ok {
		return false
	}
	cmp := price.Cmp(rule.Threshold)
	if rule.Comparison == rules.AtMost {
		return cmp <= 0
	}
	return cmp >= 0
}

// EvaluateAll evaluates every rule against the snapshot, preserving input
// order. Rules are independent; one rule's missing price never affects
// another's evaluation.
func EvaluateAll(rs []rules.Rule, snap fetcher.Snapshot) []Result {
	results := make([]Result, 0, len(rs))
	for _, rule := range rs {
		price, _ := snap.Price(rule.CoinID, rule.QuoteCurrency)
		results = append(results, Result{
			Rule:  rule,
			Fired: Evaluate(rule, snap),
			Price: price,
		})
	}
	return results
}
