// Package cli provides the command-line interface for the clearing application.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"minex-clearing/internal/audit"
	"minex-clearing/internal/clearing"
	"minex-clearing/internal/config"
	"minex-clearing/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config      *config.Config
	Logger      zerolog.Logger
	Store       store.EntityStore
	Audit       *audit.Logger
	Listings    *clearing.ListingService
	Trades      *clearing.TradeService
	Margins     *clearing.MarginEngine
	Warrants    *clearing.WarrantRegistry
	Settlements *clearing.SettlementService
	Payments    *clearing.PaymentLedger
	Reports     *clearing.ReportService
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0755); err != nil {
		logger.Warn().Err(err).Msg("Failed to create data directory")
	}

	entityStore, err := store.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, commands will be unavailable")
	} else {
		app.Store = entityStore
		logger.Debug().Str("db_path", cfg.Storage.DBPath).Msg("Entity store initialized")
	}

	if cfg.Clearing.AuditEnabled {
		auditLog, err := audit.NewLogger(audit.DefaultConfig())
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize audit trail")
		} else {
			auditLog.SetActor(cfg.Clearing.Operator)
			app.Audit = auditLog
		}
	}

	if app.Store != nil {
		app.Listings = clearing.NewListingService(app.Store, cfg.PriceBands(), logger, app.Audit)
		app.Trades = clearing.NewTradeService(app.Store, logger, app.Audit)
		app.Margins = clearing.NewMarginEngine(app.Store, logger, app.Audit)
		app.Margins.SetDefaultPercentage(cfg.Clearing.InitialMarginPct)
		app.Warrants = clearing.NewWarrantRegistry(app.Store, logger, app.Audit)
		app.Settlements = clearing.NewSettlementService(app.Store, logger, app.Audit)
		app.Payments = clearing.NewPaymentLedger(app.Store, logger, app.Audit)
		app.Reports = clearing.NewReportService(app.Store, logger)
	}

	rootCmd := &cobra.Command{
		Use:   "minex",
		Short: "Mineral exchange back-office CLI",
		Long: `minex manages the back-office lifecycle of physical-commodity trades:
listing validation, trade lifecycle, margining, warrant issuance and
transfer, settlement, and payment reconciliation.

Use 'minex help <command>' for more information about a command.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	addListingCommands(rootCmd, app)
	addTradeCommands(rootCmd, app)
	addMarginCommands(rootCmd, app)
	addWarrantCommands(rootCmd, app)
	addSettlementCommands(rootCmd, app)
	addPaymentCommands(rootCmd, app)
	addAdminCommands(rootCmd, app)
	addReportCommand(rootCmd, app)

	return rootCmd
}

// requireStore guards commands that need a working entity store.
func (app *App) requireStore() error {
	if app.Store == nil {
		return fmt.Errorf("entity store unavailable")
	}
	return nil
}
