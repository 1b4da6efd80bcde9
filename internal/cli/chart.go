package cli

import (
	"github.com/spf13/cobra"

	"crypto-price-tracker/internal/app"
)

var (
	chartCoinID  string
	chartPNGPath string
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render a coin's 7-day price trace as a PNG chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ChartOptions{
			CoinID:  chartCoinID,
			PNGPath: chartPNGPath,
		}

		return getApp().Chart(cmd.Context(), opts)
	},
}

func init() {
	chartCmd.Flags().StringVar(&chartCoinID, "coin", "", "Coin identifier (e.g. bitcoin)")
	chartCmd.Flags().StringVar(&chartPNGPath, "png", "", "Path to write the PNG chart")
}
