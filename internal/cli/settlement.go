package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"minex-clearing/pkg/utils"
)

// addSettlementCommands adds settlement processor commands.
func addSettlementCommands(rootCmd *cobra.Command, app *App) {
	settlementCmd := &cobra.Command{
		Use:   "settlement",
		Short: "Finalize trades via physical or cash settlement",
	}

	settlementCmd.AddCommand(newSettlementPhysicalCmd(app))
	settlementCmd.AddCommand(newSettlementCashCmd(app))
	settlementCmd.AddCommand(newSettlementCompleteCmd(app))

	rootCmd.AddCommand(settlementCmd)
}

func newSettlementPhysicalCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "physical <trade-id> <warrant-number> <warehouse-location>",
		Short: "Open a physical-delivery settlement",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireStore(); err != nil {
				return err
			}

			settlement, err := app.Settlements.ProcessPhysicalSettlement(
				context.Background(), args[0], args[1], args[2])
			if err != nil {
				return err
			}

			fmt.Printf("Settlement %s (%s) opened: physical delivery of %s %s via warrant %s\n",
				settlement.SettlementNumber, settlement.ID,
				utils.FormatTons(settlement.Quantity), settlement.Metal,
				settlement.WarrantNumber)
			return nil
		},
	}
}

func newSettlementCashCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cash <trade-id> <final-price>",
		Short: "Open a cash settlement at the final price",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireStore(); err != nil {
				return err
			}

			finalPrice, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid final price: %s", args[1])
			}

			settlement, err := app.Settlements.ProcessCashSettlement(
				context.Background(), args[0], finalPrice)
			if err != nil {
				return err
			}

			fmt.Printf("Settlement %s (%s) opened: %s\n",
				settlement.SettlementNumber, settlement.ID, settlement.Notes)
			return nil
		},
	}
}

func newSettlementCompleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <settlement-id>",
		Short: "Complete a settlement and settle the owning trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireStore(); err != nil {
				return err
			}
			if err := app.Settlements.CompleteSettlement(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Settlement %s completed\n", args[0])
			return nil
		},
	}
}
