package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"crypto-price-tracker/internal/app"
)

var marketsLimit int

var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "Display the top coins by market cap",
	RunE: func(cmd *cobra.Command, args []string) error {
		if marketsLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.MarketsOptions{
			Limit: marketsLimit,
		}

		return getApp().Markets(cmd.Context(), opts)
	},
}

func init() {
	marketsCmd.Flags().IntVar(&marketsLimit, "limit", 20, "Number of coins to display")
}
