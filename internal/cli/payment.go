package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"minex-clearing/internal/models"
	"minex-clearing/pkg/utils"
)

// addPaymentCommands adds payment ledger commands.
func addPaymentCommands(rootCmd *cobra.Command, app *App) {
	paymentCmd := &cobra.Command{
		Use:   "payment",
		Short: "Record payments and track full-payment status",
	}

	paymentCmd.AddCommand(newPaymentRecordCmd(app))
	paymentCmd.AddCommand(newPaymentStatusCmd(app))

	rootCmd.AddCommand(paymentCmd)
}

func newPaymentRecordCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record <trade-id> <amount>",
		Short: "Record a payment against a trade",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireStore(); err != nil {
				return err
			}

			amount, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid amount: %s", args[1])
			}
			description, _ := cmd.Flags().GetString("desc")

			payment := &models.Payment{
				TradeID:     args[0],
				Amount:      amount,
				Description: description,
			}
			if err := app.Payments.CreatePayment(context.Background(), payment); err != nil {
				return err
			}

			fmt.Printf("Payment %s recorded: %s against trade %s\n",
				payment.ID, utils.FormatUSD(amount), args[0])
			return nil
		},
	}
	cmd.Flags().String("desc", "", "Payment description")
	return cmd
}

func newPaymentStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <trade-id>",
		Short: "Show a trade's payment status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireStore(); err != nil {
				return err
			}

			ctx := context.Background()
			fullyPaid, err := app.Payments.IsTradeFullyPaid(ctx, args[0])
			if err != nil {
				return err
			}
			balance, err := app.Payments.GetOutstandingBalance(ctx, args[0])
			if err != nil {
				return err
			}

			if fullyPaid {
				fmt.Printf("Trade %s is fully paid\n", args[0])
			} else {
				fmt.Printf("Trade %s has %s outstanding\n", args[0], utils.FormatUSD(balance))
			}
			return nil
		},
	}
}
