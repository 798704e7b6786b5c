package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"minex-clearing/internal/models"
	"minex-clearing/pkg/utils"
)

// addTradeCommands adds trade lifecycle commands.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	tradeCmd := &cobra.Command{
		Use:   "trade",
		Short: "Manage the trade lifecycle",
	}

	tradeCmd.AddCommand(newTradeCreateCmd(app))
	tradeCmd.AddCommand(newTradeTransitionCmd(app, "confirm", "Confirm a pending trade", app.confirm))
	tradeCmd.AddCommand(newTradeTransitionCmd(app, "novate", "Novate a confirmed trade to central clearing", app.novate))
	tradeCmd.AddCommand(newTradeTransitionCmd(app, "activate", "Activate a margin-collected trade", app.activate))
	tradeCmd.AddCommand(newTradeTransitionCmd(app, "complete", "Complete a settled trade", app.complete))
	tradeCmd.AddCommand(newTradeCancelCmd(app))
	tradeCmd.AddCommand(newTradeShowCmd(app))
	tradeCmd.AddCommand(newTradeDeleteCmd(app))

	rootCmd.AddCommand(tradeCmd)
}

func (app *App) confirm(ctx context.Context, id string) error {
	return app.Trades.ConfirmTrade(ctx, id)
}

func (app *App) novate(ctx context.Context, id string) error {
	return app.Trades.NovateTrade(ctx, id)
}

func (app *App) activate(ctx context.Context, id string) error {
	return app.Trades.ActivateTrade(ctx, id)
}

func (app *App) complete(ctx context.Context, id string) error {
	return app.Trades.CompleteTrade(ctx, id)
}

func newTradeCreateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <metal> <quantity> <price-per-ton>",
		Short: "Validate and create a trade",
		Example: `  minex trade create copper 100 9500 --buyer "Acme Metals" --seller "Andes Mining" --delivery 2026-12-01
  minex trade create gold 0.5 62000000 --buyer "Bullion Co" --seller "Rand Refinery" --delivery 2026-10-15 --notes "Q4 allocation"`,
		Args: cobra.ExactArgs(3),
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
			price, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid price: %s", args[2])
			}

			buyer, _ := cmd.Flags().GetString("buyer")
			seller, _ := cmd.Flags().GetString("seller")
			deliveryStr, _ := cmd.Flags().GetString("delivery")
			notes, _ := cmd.Flags().GetString("notes")

			delivery, err := time.Parse("2006-01-02", deliveryStr)
			if err != nil {
				return fmt.Errorf("invalid delivery date %q (want YYYY-MM-DD)", deliveryStr)
			}

			trade := &models.Trade{
				BuyerName:    buyer,
				SellerName:   seller,
				Metal:        metal,
				Quantity:     quantity,
				PricePerTon:  price,
				DeliveryDate: delivery,
				Notes:        notes,
			}

			if err := app.Trades.CreateTrade(context.Background(), trade); err != nil {
				return err
			}

			fmt.Printf("Trade %s (%s) created: %s %s at %s/t, total %s\n",
				trade.TradeNumber, trade.ID, utils.FormatTons(trade.Quantity),
				trade.Metal, utils.FormatUSD(trade.PricePerTon), utils.FormatUSD(trade.TotalValue))
			return nil
		},
	}

	cmd.Flags().String("buyer", "", "Buyer name")
	cmd.Flags().String("seller", "", "Seller name")
	cmd.Flags().String("delivery", "", "Delivery date (YYYY-MM-DD)")
	cmd.Flags().String("notes", "", "Free-text notes")
	cmd.MarkFlagRequired("buyer")
	cmd.MarkFlagRequired("seller")
	cmd.MarkFlagRequired("delivery")

	return cmd
}

func newTradeTransitionCmd(app *App, verb, short string, fn func(context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <trade-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireStore(); err != nil {
				return err
			}
			if err := fn(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Trade %s: %s succeeded\n", args[0], verb)
			return nil
		},
	}
}

func newTradeCancelCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel <trade-id>",
		Short: "Cancel a trade that has not settled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireStore(); err != nil {
				return err
			}
			reason, _ := cmd.Flags().GetString("reason")
			if err := app.Trades.CancelTrade(context.Background(), args[0], reason); err != nil {
				return err
			}
			fmt.Printf("Trade %s cancelled\n", args[0])
			return nil
		},
	}
	cmd.Flags().String("reason", "", "Cancellation reason")
	cmd.MarkFlagRequired("reason")
	return cmd
}

func newTradeShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <trade-id>",
		Short: "Show trade details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireStore(); err != nil {
				return err
			}

			trade, err := app.Trades.GetTrade(context.Background(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Trade     %s (%s)\n", trade.TradeNumber, trade.ID)
			fmt.Printf("Status    %s\n", trade.Status)
			fmt.Printf("Metal     %s %s at %s/t\n", utils.FormatTons(trade.Quantity),
				trade.Metal, utils.FormatUSD(trade.PricePerTon))
			fmt.Printf("Value     %s\n", utils.FormatUSD(trade.TotalValue))
			fmt.Printf("Buyer     %s\n", trade.BuyerName)
			fmt.Printf("Seller    %s\n", trade.SellerName)
			fmt.Printf("Delivery  %s\n", trade.DeliveryDate.Format("2006-01-02"))
			if trade.IsNovated {
				fmt.Printf("Novated   %s (%s)\n", trade.NovationDate.Format("2006-01-02"), trade.ClearingRef)
			}
			if trade.Notes != "" {
				fmt.Printf("Notes     %s\n", trade.Notes)
			}
			return nil
		},
	}
}

func newTradeDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <trade-id>",
		Short: "Delete a trade that is not financially committed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireStore(); err != nil {
				return err
			}
			if err := app.Trades.DeleteTrade(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Trade %s deleted\n", args[0])
			return nil
		},
	}
}
