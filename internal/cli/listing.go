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

// addListingCommands adds mineral listing commands.
func addListingCommands(rootCmd *cobra.Command, app *App) {
	listingCmd := &cobra.Command{
		Use:   "listing",
		Short: "Manage mineral sale listings",
	}

	listingCmd.AddCommand(newListingCreateCmd(app))
	listingCmd.AddCommand(newListingListCmd(app))
	listingCmd.AddCommand(newListingStatusCmd(app))
	listingCmd.AddCommand(newListingExpireCmd(app))

	rootCmd.AddCommand(listingCmd)
}

func newListingCreateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <metal> <quantity> <price-per-ton>",
		Short: "Validate and publish a mineral listing",
		Example: `  minex listing create copper 500 9500 --seller-id S-1 --company "Andes Mining" --origin Chile --grade "Grade A"
  minex listing create cobalt 50 33000 --seller-id S-2 --company "Katanga Ltd" --origin DRC --grade Standard --valid-days 14`,
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

			sellerID, _ := cmd.Flags().GetString("seller-id")
			company, _ := cmd.Flags().GetString("company")
			origin, _ := cmd.Flags().GetString("origin")
			grade, _ := cmd.Flags().GetString("grade")
			validDays, _ := cmd.Flags().GetInt("valid-days")

			listing := &models.MineralListing{
				SellerID:          sellerID,
				SellerCompany:     company,
				Metal:             metal,
				QuantityAvailable: quantity,
				PricePerTon:       price,
				OriginCountry:     origin,
				QualityGrade:      grade,
			}
			if validDays > 0 {
				expiry := time.Now().AddDate(0, 0, validDays)
				listing.ExpiryDate = &expiry
			}

			if err := app.Listings.CreateListing(context.Background(), listing); err != nil {
				return err
			}

			fmt.Printf("Listing %s created: %s %s at %s/t, expires %s\n",
				listing.ID, utils.FormatTons(listing.QuantityAvailable), listing.Metal,
				utils.FormatUSD(listing.PricePerTon), listing.ExpiryDate.Format("2006-01-02"))
			return nil
		},
	}

	cmd.Flags().String("seller-id", "", "Seller identifier")
	cmd.Flags().String("company", "", "Seller company name")
	cmd.Flags().String("origin", "", "Origin country")
	cmd.Flags().String("grade", "", "Quality grade")
	cmd.Flags().Int("valid-days", 0, "Listing validity in days (default 30)")
	cmd.MarkFlagRequired("seller-id")
	cmd.MarkFlagRequired("company")
	cmd.MarkFlagRequired("origin")
	cmd.MarkFlagRequired("grade")

	return cmd
}

func newListingListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show listings currently open for offers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireStore(); err != nil {
				return err
			}

			listings, err := app.Listings.GetAvailableListings(context.Background())
			if err != nil {
				return err
			}
			if len(listings) == 0 {
				fmt.Println("No available listings.")
				return nil
			}

			for _, l := range listings {
				fmt.Printf("%s  %-9s %10s  %12s/t  %s (%s)\n",
					l.ID, l.Metal, utils.FormatTons(l.QuantityAvailable),
					utils.FormatUSD(l.PricePerTon), l.SellerCompany, l.OriginCountry)
			}
			return nil
		},
	}
}

func newListingStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Override a listing's status",
		Long: `Move a listing to AVAILABLE, UNDER_OFFER, SOLD, EXPIRED, or
WITHDRAWN. Any valid status is reachable from any other.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireStore(); err != nil {
				return err
			}

			if err := app.Listings.UpdateListingStatus(context.Background(), args[0],
				models.ListingStatus(args[1])); err != nil {
				return err
			}
			fmt.Printf("Listing %s moved to %s\n", args[0], args[1])
			return nil
		},
	}
}

func newListingExpireCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "expire",
		Short: "Sweep available listings past their expiry date",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireStore(); err != nil {
				return err
			}

			n, err := app.Listings.ExpireListings(context.Background(), time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("Expired %d listing(s)\n", n)
			return nil
		},
	}
}
