package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"minex-clearing/internal/models"
	"minex-clearing/internal/store"
	"minex-clearing/pkg/utils"
)

// addAdminCommands adds reference-data commands for warehouses and
// counterparties. Approval here stands in for the external
// administrative process.
func addAdminCommands(rootCmd *cobra.Command, app *App) {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage warehouses and counterparties",
	}

	adminCmd.AddCommand(newWarehouseAddCmd(app))
	adminCmd.AddCommand(newPartyAddCmd(app))

	rootCmd.AddCommand(adminCmd)
}

func newWarehouseAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "warehouse <code> <capacity>",
		Short: "Register a warehouse",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireStore(); err != nil {
				return err
			}

			capacity, err := strconv.ParseFloat(args[1], 64)
			if err != nil || capacity <= 0 {
				return fmt.Errorf("invalid capacity: %s", args[1])
			}

			operator, _ := cmd.Flags().GetString("operator")
			location, _ := cmd.Flags().GetString("location")
			country, _ := cmd.Flags().GetString("country")
			approved, _ := cmd.Flags().GetBool("approved")

			warehouse := &models.Warehouse{
				ID:              uuid.NewString(),
				Code:            args[0],
				Operator:        operator,
				Location:        location,
				Country:         country,
				StorageCapacity: capacity,
				IsApproved:      approved,
				Status:          "OPERATIONAL",
			}
			if approved {
				now := time.Now()
				warehouse.ApprovalDate = &now
			}

			if err := app.Store.CreateWarehouse(context.Background(), warehouse); err != nil {
				return err
			}

			fmt.Printf("Warehouse %s (%s) registered with %s capacity\n",
				warehouse.Code, warehouse.ID, utils.FormatTons(capacity))
			return nil
		},
	}

	cmd.Flags().String("operator", "", "Warehouse operator")
	cmd.Flags().String("location", "", "Location")
	cmd.Flags().String("country", "", "Country")
	cmd.Flags().Bool("approved", false, "Mark warehouse LME-approved")

	return cmd
}

func newPartyAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "party <buyer|seller> <name>",
		Short: "Register a counterparty",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireStore(); err != nil {
				return err
			}

			var role store.PartyRole
			switch args[0] {
			case "buyer":
				role = store.RoleBuyer
			case "seller":
				role = store.RoleSeller
			default:
				return fmt.Errorf("role must be buyer or seller, got %q", args[0])
			}

			company, _ := cmd.Flags().GetString("company")
			country, _ := cmd.Flags().GetString("country")
			approved, _ := cmd.Flags().GetBool("approved")

			party := &models.Party{
				ID:          uuid.NewString(),
				Name:        args[1],
				CompanyName: company,
				Country:     country,
				IsApproved:  approved,
				CreatedAt:   time.Now(),
			}

			if err := app.Store.CreateParty(context.Background(), role, party); err != nil {
				return err
			}

			fmt.Printf("%s %q registered (approved: %t)\n", args[0], party.Name, approved)
			return nil
		},
	}

	cmd.Flags().String("company", "", "Company name")
	cmd.Flags().String("country", "", "Country")
	cmd.Flags().Bool("approved", false, "Mark counterparty approved")

	return cmd
}
