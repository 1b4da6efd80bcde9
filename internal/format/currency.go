// Package format holds presentation helpers shared by messages and tables.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency renders a price with two decimal places and thousands separators.
// The quote currency "usd" gets a dollar prefix; everything else is printed
// bare (the original quote set is usd/inr/eur and only usd has a conventional
// ASCII symbol).
func Currency(v decimal.Decimal, quote string) string {
	f, _ := v.Round(2).Float64()
	s := printer.Sprintf("%.2f", f)
	if strings.EqualFold(quote, "usd") {
		return "$" + s
	}
	return s
}
