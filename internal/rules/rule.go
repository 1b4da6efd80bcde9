package rules

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Comparison selects the direction of a threshold check.
type Comparison int

const (
	// AtLeast fires when the price is greater than or equal to the threshold.
	AtLeast Comparison = iota
	// AtMost fires when the price is less than or equal to the threshold.
	AtMost
)

// ParseComparison maps the operator literals ">=" and "<=" onto the enum.
func ParseComparison(op string) (Comparison, error) {
	switch op {
	case ">=":
		return AtLeast, nil
	case "<=":
		return AtMost, nil
	default:
		return 0, fmt.Errorf("invalid comparison operator %q (want \">=\" or \"<=\")", op)
	}
}

// Symbol returns the operator literal used in messages.
func (c Comparison) Symbol() string {
	if c == AtMost {
		return "<="
	}
	return ">="
}

func (c Comparison) String() string {
	return c.Symbol()
}

// Rule describes one user alert condition. Rules are immutable once created;
// to change a rule, remove it and add a new one.
type Rule struct {
	// CoinID is the provider-namespace identifier (e.g. "bitcoin"), used for
	// snapshot lookups.
	CoinID string
	// Symbol is the display ticker (e.g. "btc"), used only in messages.
	Symbol string
	// Comparison is the threshold direction.
	Comparison Comparison
	// Threshold is denominated in QuoteCurrency.
	Threshold decimal.Decimal
	// QuoteCurrency must match the currency of the snapshot the rule is
	// evaluated against; no conversion happens at evaluation time.
	QuoteCurrency string
	// NotifyByEmail requests an email dispatch on top of the in-process
	// notification.
	NotifyByEmail bool
}

// New validates and constructs a Rule.
func New(coinID, symbol string, cmp Comparison, threshold decimal.Decimal, quote string, email bool) (Rule, error) {
	if coinID == "" {
		return Rule{}, errors.New("rule coin id must not be empty")
	}
	if quote == "" {
		return Rule{}, errors.New("rule quote currency must not be empty")
	}
	if threshold.IsNegative() {
		return Rule{}, fmt.Errorf("rule threshold must not be negative, got %s", threshold)
	}
	if cmp != AtLeast && cmp != AtMost {
		return Rule{}, fmt.Errorf("invalid comparison %d", cmp)
	}

	return Rule{
		CoinID:        coinID,
		Symbol:        symbol,
		Comparison:    cmp,
		Threshold:     threshold,
		QuoteCurrency: quote,
		NotifyByEmail: email,
	}, nil
}
