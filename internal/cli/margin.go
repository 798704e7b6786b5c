package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"minex-clearing/pkg/utils"
)

// addMarginCommands adds margin engine commands.
func addMarginCommands(rootCmd *cobra.Command, app *App) {
	marginCmd := &cobra.Command{
		Use:   "margin",
		Short: "Compute margin obligations",
	}

	marginCmd.AddCommand(newMarginInitialCmd(app))
	marginCmd.AddCommand(newMarginVariationCmd(app))
	marginCmd.AddCommand(newMarginTotalCmd(app))

	rootCmd.AddCommand(marginCmd)
}

func newMarginInitialCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "initial <trade-id>",
		Short: "Compute initial margin and collect it",
		Long: `Compute the upfront collateral for a novated trade as a percentage
of trade value, and advance the trade to MARGIN_COLLECTED.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireStore(); err != nil {
				return err
			}

			pct, _ := cmd.Flags().GetFloat64("pct")
			margin, err := app.Margins.CalculateInitialMargin(context.Background(), args[0], pct)
			if err != nil {
				return err
			}

			fmt.Printf("Initial margin %s, payable by %s\n",
				utils.FormatUSD(margin.InitialMargin), margin.PayingParty)
			return nil
		},
	}
	cmd.Flags().Float64("pct", 0, "Initial margin rate (0 applies the configured default)")
	return cmd
}

func newMarginVariationCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "variation <trade-id> <market-price>",
		Short: "Record mark-to-market variation margin",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireStore(); err != nil {
				return err
			}

			price, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid market price: %s", args[1])
			}

			margin, err := app.Margins.CalculateVariationMargin(context.Background(), args[0], price)
			if err != nil {
				return err
			}

			if !margin.Payable {
				fmt.Println("No price movement; no variation margin due")
				return nil
			}
			fmt.Printf("Variation margin %s payable by %s (price change %+.2f)\n",
				utils.FormatUSD(margin.VariationMargin), margin.PayingParty, margin.PriceChange)
			return nil
		},
	}
}

func newMarginTotalCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "total <trade-id>",
		Short: "Show the trade's total margin requirement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireStore(); err != nil {
				return err
			}

			total, err := app.Margins.GetTotalMarginRequirement(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Total margin requirement: %s\n", utils.FormatUSD(total))
			return nil
		},
	}
}
