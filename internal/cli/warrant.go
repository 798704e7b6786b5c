package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"minex-clearing/internal/models"
	"minex-clearing/pkg/utils"
)

// addWarrantCommands adds warrant registry commands.
func addWarrantCommands(rootCmd *cobra.Command, app *App) {
	warrantCmd := &cobra.Command{
		Use:   "warrant",
		Short: "Issue and transfer warehouse warrants",
	}

	warrantCmd.AddCommand(newWarrantIssueCmd(app))
	warrantCmd.AddCommand(newWarrantTransferCmd(app))
	warrantCmd.AddCommand(newWarrantHistoryCmd(app))
	warrantCmd.AddCommand(newWarrantCapacityCmd(app))

	rootCmd.AddCommand(warrantCmd)
}

func newWarrantIssueCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue <metal> <quantity>",
		Short: "Issue a warrant from an approved warehouse",
		Example: `  minex warrant issue copper 100 --warehouse WH-1 --owner "Acme Metals" --trade-id T-42 --grade "Grade A" --lot L-7`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireStore(); err != nil {
				return err
			}

			metal, err := models.ParseMetalType(args[0])
			if err != nil {
				return err
			}
			quantity, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid quantity: %s", args[1])
			}

			warehouseID, _ := cmd.Flags().GetString("warehouse")
			owner, _ := cmd.Flags().GetString("owner")
			tradeID, _ := cmd.Flags().GetString("trade-id")
			grade, _ := cmd.Flags().GetString("grade")
			lot, _ := cmd.Flags().GetString("lot")

			warrant := &models.Warrant{
				TradeID:      tradeID,
				WarehouseID:  warehouseID,
				Metal:        metal,
				Quantity:     quantity,
				CurrentOwner: owner,
				QualityGrade: grade,
				LotNumber:    lot,
			}

			if err := app.Warrants.CreateWarrant(context.Background(), warrant); err != nil {
				return err
			}

			fmt.Printf("Warrant %s (%s) issued: %s %s held for %s\n",
				warrant.WarrantNumber, warrant.ID, utils.FormatTons(warrant.Quantity),
				warrant.Metal, warrant.CurrentOwner)
			return nil
		},
	}

	cmd.Flags().String("warehouse", "", "Warehouse identifier")
	cmd.Flags().String("owner", "", "Initial warrant owner")
	cmd.Flags().String("trade-id", "", "Owning trade identifier")
	cmd.Flags().String("grade", "", "Quality grade")
	cmd.Flags().String("lot", "", "Lot number")
	cmd.MarkFlagRequired("warehouse")
	cmd.MarkFlagRequired("owner")

	return cmd
}

func newWarrantTransferCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <warrant-id> <new-owner>",
		Short: "Transfer warrant ownership",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireStore(); err != nil {
				return err
			}
			if err := app.Warrants.TransferWarrant(context.Background(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Warrant %s transferred to %s\n", args[0], args[1])
			return nil
		},
	}
}

func newWarrantHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history <warrant-id>",
		Short: "Show a warrant's chain of custody",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireStore(); err != nil {
				return err
			}

			transfers, err := app.Warrants.GetTransferHistory(context.Background(), args[0])
			if err != nil {
				return err
			}
			if len(transfers) == 0 {
				fmt.Println("No transfers recorded.")
				return nil
			}

			for _, t := range transfers {
				fmt.Printf("%s  %s -> %s\n",
					t.TransferAt.Format("2006-01-02 15:04:05"), t.FromOwner, t.ToOwner)
			}
			return nil
		},
	}
}

func newWarrantCapacityCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "capacity <warehouse-id> <quantity>",
		Short: "Check whether a warehouse can back a quantity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireStore(); err != nil {
				return err
			}

			quantity, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid quantity: %s", args[1])
			}

			ok, err := app.Warrants.VerifyWarehouseCapacity(context.Background(), args[0], quantity)
			if err != nil {
				return err
			}
			if ok {
				fmt.Printf("Warehouse %s can back %s\n", args[0], utils.FormatTons(quantity))
			} else {
				fmt.Printf("Warehouse %s lacks free capacity for %s\n", args[0], utils.FormatTons(quantity))
			}
			return nil
		},
	}
}
