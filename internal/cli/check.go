package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"crypto-price-tracker/internal/app"
)

var checkPrices []string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate the configured rules once, against live or given prices",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.CheckOptions{}

		if len(checkPrices) > 0 {
			opts.StaticPrices = make(map[string]string, len(checkPrices))
			for _, pair := range checkPrices {
				coinID, price, ok := strings.Cut(pair, "=")
				if !ok || coinID == "" || price == "" {
					return fmt.Errorf("invalid --price value %q (want coin_id=price)", pair)
				}
				opts.StaticPrices[coinID] = price
			}
		}

		return getApp().Check(cmd.Context(), opts)
	},
}

func init() {
	checkCmd.Flags().StringArrayVar(&checkPrices, "price", nil, "Static price override, coin_id=price (repeatable; skips the live fetch)")
}
