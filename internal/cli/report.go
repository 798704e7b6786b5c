package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"minex-clearing/internal/models"
	"minex-clearing/pkg/utils"
)

// addReportCommand adds the book-level exposure report.
func addReportCommand(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "report",
		Short: "Show book-level exposure and margin held",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireStore(); err != nil {
				return err
			}

			report, err := app.Reports.BuildExposureReport(context.Background())
			if err != nil {
				return err
			}

			fmt.Printf("Open trades:     %d\n", report.OpenTrades)
			fmt.Printf("Open exposure:   %s\n", utils.FormatUSD(report.OpenExposure))
			fmt.Printf("Margin held:     %s\n", utils.FormatUSD(report.MarginHeld))
			fmt.Printf("Settled value:   %s\n", utils.FormatUSD(report.SettledValue))

			if len(report.ByMetal) > 0 {
				fmt.Println("\nOpen exposure by metal:")
				metals := make([]string, 0, len(report.ByMetal))
				for metal := range report.ByMetal {
					metals = append(metals, string(metal))
				}
				sort.Strings(metals)
				for _, metal := range metals {
					exposure := report.ByMetal[models.MetalType(metal)]
					fmt.Printf("  %-10s %3d trades  %12s  %s\n",
						metal, exposure.Trades, utils.FormatTons(exposure.Quantity),
						utils.FormatUSD(exposure.Value))
				}
			}

			if len(report.TradesByStatus) > 0 {
				fmt.Println("\nTrades by status:")
				statuses := make([]string, 0, len(report.TradesByStatus))
				for status := range report.TradesByStatus {
					statuses = append(statuses, string(status))
				}
				sort.Strings(statuses)
				for _, status := range statuses {
					fmt.Printf("  %-18s %d\n", status, report.TradesByStatus[models.TradeStatus(status)])
				}
			}

			return nil
		},
	})
}
