// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"minex-clearing/internal/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx, letting every
// statement run either standalone or inside WithTx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// SQLiteStore implements EntityStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
	q  querier
}

// NewSQLiteStore creates a new SQLite-based entity store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	store.q = db

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		trade_number TEXT NOT NULL UNIQUE,
		trade_date DATETIME NOT NULL,
		buyer_name TEXT NOT NULL,
		seller_name TEXT NOT NULL,
		metal TEXT NOT NULL,
		quantity REAL NOT NULL,
		price_per_ton REAL NOT NULL,
		total_value REAL NOT NULL,
		delivery_date DATETIME NOT NULL,
		status TEXT NOT NULL,
		is_novated INTEGER NOT NULL DEFAULT 0,
		novation_date DATETIME,
		clearing_ref TEXT,
		notes TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS mineral_listings (
		id TEXT PRIMARY KEY,
		seller_id TEXT NOT NULL,
		seller_company TEXT NOT NULL,
		metal TEXT NOT NULL,
		quantity_available REAL NOT NULL,
		price_per_ton REAL NOT NULL,
		origin_country TEXT NOT NULL,
		quality_grade TEXT NOT NULL,
		listing_date DATETIME NOT NULL,
		expiry_date DATETIME,
		status TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS margins (
		id TEXT PRIMARY KEY,
		trade_id TEXT NOT NULL,
		trade_number TEXT NOT NULL,
		initial_margin REAL NOT NULL,
		variation_margin REAL NOT NULL,
		total_margin REAL NOT NULL,
		margin_date DATETIME NOT NULL,
		market_price REAL NOT NULL,
		price_change REAL NOT NULL,
		paying_party TEXT NOT NULL,
		payable INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		FOREIGN KEY (trade_id) REFERENCES trades(id)
	);
	CREATE INDEX IF NOT EXISTS idx_margins_trade ON margins(trade_id);

	CREATE TABLE IF NOT EXISTS settlements (
		id TEXT PRIMARY KEY,
		settlement_number TEXT NOT NULL UNIQUE,
		trade_id TEXT NOT NULL,
		trade_number TEXT NOT NULL,
		type TEXT NOT NULL,
		settlement_date DATETIME NOT NULL,
		settlement_amount REAL NOT NULL,
		buyer_name TEXT,
		seller_name TEXT,
		metal TEXT,
		quantity REAL,
		warrant_number TEXT,
		warehouse_location TEXT,
		final_price REAL,
		price_difference REAL,
		status TEXT NOT NULL,
		is_completed INTEGER NOT NULL DEFAULT 0,
		completion_date DATETIME,
		notes TEXT,
		FOREIGN KEY (trade_id) REFERENCES trades(id)
	);
	CREATE INDEX IF NOT EXISTS idx_settlements_trade ON settlements(trade_id);

	CREATE TABLE IF NOT EXISTS warrants (
		id TEXT PRIMARY KEY,
		warrant_number TEXT NOT NULL UNIQUE,
		trade_id TEXT,
		trade_number TEXT,
		warehouse_id TEXT NOT NULL,
		warehouse_name TEXT,
		metal TEXT NOT NULL,
		quantity REAL NOT NULL,
		current_owner TEXT NOT NULL,
		previous_owner TEXT,
		issue_date DATETIME NOT NULL,
		transfer_date DATETIME,
		quality_grade TEXT,
		lot_number TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		status TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS warrant_transfers (
		id TEXT PRIMARY KEY,
		warrant_id TEXT NOT NULL,
		from_owner TEXT NOT NULL,
		to_owner TEXT NOT NULL,
		transfer_at DATETIME NOT NULL,
		FOREIGN KEY (warrant_id) REFERENCES warrants(id)
	);
	CREATE INDEX IF NOT EXISTS idx_transfers_warrant ON warrant_transfers(warrant_id);

	CREATE TABLE IF NOT EXISTS warehouses (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL,
		operator TEXT,
		location TEXT,
		city TEXT,
		country TEXT,
		storage_capacity REAL NOT NULL,
		current_stock REAL NOT NULL DEFAULT 0,
		is_approved INTEGER NOT NULL DEFAULT 0,
		approval_date DATETIME,
		status TEXT
	);

	CREATE TABLE IF NOT EXISTS parties (
		id TEXT PRIMARY KEY,
		role TEXT NOT NULL,
		name TEXT NOT NULL,
		company_name TEXT,
		country TEXT,
		is_approved INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(role, name)
	);

	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		trade_id TEXT NOT NULL,
		amount REAL NOT NULL,
		payment_date DATETIME NOT NULL,
		description TEXT,
		FOREIGN KEY (trade_id) REFERENCES trades(id)
	);
	CREATE INDEX IF NOT EXISTS idx_payments_trade ON payments(trade_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// WithTx runs fn inside a single transaction. Nested calls reuse the
// enclosing transaction.
func (s *SQLiteStore) WithTx(ctx context.Context, fn func(EntityStore) error) error {
	if _, ok := s.q.(*sql.Tx); ok {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	shadow := &SQLiteStore{db: s.db, q: tx}
	if err := fn(shadow); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// --- Trades ---

func (s *SQLiteStore) CreateTrade(ctx context.Context, trade *models.Trade) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO trades (id, trade_number, trade_date, buyer_name, seller_name,
			metal, quantity, price_per_ton, total_value, delivery_date, status,
			is_novated, novation_date, clearing_ref, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trade.ID, trade.TradeNumber, trade.TradeDate, trade.BuyerName, trade.SellerName,
		string(trade.Metal), trade.Quantity, trade.PricePerTon, trade.TotalValue,
		trade.DeliveryDate, string(trade.Status), trade.IsNovated,
		nullTime(trade.NovationDate), trade.ClearingRef, trade.Notes,
		trade.CreatedAt, trade.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting trade: %w", err)
	}
	return nil
}

const tradeColumns = `id, trade_number, trade_date, buyer_name, seller_name, metal,
	quantity, price_per_ton, total_value, delivery_date, status, is_novated,
	novation_date, clearing_ref, notes, created_at, updated_at`

func scanTrade(row interface{ Scan(...interface{}) error }) (*models.Trade, error) {
	var t models.Trade
	var novation sql.NullTime
	var clearingRef, notes sql.NullString
	err := row.Scan(&t.ID, &t.TradeNumber, &t.TradeDate, &t.BuyerName, &t.SellerName,
		&t.Metal, &t.Quantity, &t.PricePerTon, &t.TotalValue, &t.DeliveryDate,
		&t.Status, &t.IsNovated, &novation, &clearingRef, &notes,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.NovationDate = timePtr(novation)
	t.ClearingRef = clearingRef.String
	t.Notes = notes.String
	return &t, nil
}

func (s *SQLiteStore) GetTrade(ctx context.Context, id string) (*models.Trade, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+tradeColumns+` FROM trades WHERE id = ?`, id)
	trade, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying trade: %w", err)
	}
	return trade, nil
}

func (s *SQLiteStore) UpdateTrade(ctx context.Context, trade *models.Trade) error {
	trade.UpdatedAt = time.Now()
	res, err := s.q.ExecContext(ctx, `
		UPDATE trades SET trade_number = ?, trade_date = ?, buyer_name = ?,
			seller_name = ?, metal = ?, quantity = ?, price_per_ton = ?,
			total_value = ?, delivery_date = ?, status = ?, is_novated = ?,
			novation_date = ?, clearing_ref = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		trade.TradeNumber, trade.TradeDate, trade.BuyerName, trade.SellerName,
		string(trade.Metal), trade.Quantity, trade.PricePerTon, trade.TotalValue,
		trade.DeliveryDate, string(trade.Status), trade.IsNovated,
		nullTime(trade.NovationDate), trade.ClearingRef, trade.Notes,
		trade.UpdatedAt, trade.ID)
	if err != nil {
		return fmt.Errorf("updating trade: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("trade not found: %s", trade.ID)
	}
	return nil
}

func (s *SQLiteStore) DeleteTrade(ctx context.Context, id string) (bool, error) {
	res, err := s.q.ExecContext(ctx, `DELETE FROM trades WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting trade: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) QueryTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE 1=1`
	var args []interface{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if filter.Metal != "" {
		query += " AND metal = ?"
		args = append(args, string(filter.Metal))
	}
	if filter.BuyerName != "" {
		query += " AND buyer_name = ? COLLATE NOCASE"
		args = append(args, filter.BuyerName)
	}
	if !filter.StartDate.IsZero() {
		query += " AND trade_date >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND trade_date <= ?"
		args = append(args, filter.EndDate)
	}
	query += " ORDER BY trade_date DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying trades: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning trade: %w", err)
		}
		trades = append(trades, *t)
	}
	return trades, rows.Err()
}

// --- Mineral listings ---

func (s *SQLiteStore) CreateListing(ctx context.Context, listing *models.MineralListing) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO mineral_listings (id, seller_id, seller_company, metal,
			quantity_available, price_per_ton, origin_country, quality_grade,
			listing_date, expiry_date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		listing.ID, listing.SellerID, listing.SellerCompany, string(listing.Metal),
		listing.QuantityAvailable, listing.PricePerTon, listing.OriginCountry,
		listing.QualityGrade, listing.ListingDate, nullTime(listing.ExpiryDate),
		string(listing.Status))
	if err != nil {
		return fmt.Errorf("inserting listing: %w", err)
	}
	return nil
}

const listingColumns = `id, seller_id, seller_company, metal, quantity_available,
	price_per_ton, origin_country, quality_grade, listing_date, expiry_date, status`

func scanListing(row interface{ Scan(...interface{}) error }) (*models.MineralListing, error) {
	var l models.MineralListing
	var expiry sql.NullTime
	err := row.Scan(&l.ID, &l.SellerID, &l.SellerCompany, &l.Metal,
		&l.QuantityAvailable, &l.PricePerTon, &l.OriginCountry, &l.QualityGrade,
		&l.ListingDate, &expiry, &l.Status)
	if err != nil {
		return nil, err
	}
	l.ExpiryDate = timePtr(expiry)
	return &l, nil
}

func (s *SQLiteStore) GetListing(ctx context.Context, id string) (*models.MineralListing, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM mineral_listings WHERE id = ?`, id)
	listing, err := scanListing(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying listing: %w", err)
	}
	return listing, nil
}

func (s *SQLiteStore) UpdateListing(ctx context.Context, listing *models.MineralListing) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE mineral_listings SET seller_id = ?, seller_company = ?, metal = ?,
			quantity_available = ?, price_per_ton = ?, origin_country = ?,
			quality_grade = ?, listing_date = ?, expiry_date = ?, status = ?
		WHERE id = ?`,
		listing.SellerID, listing.SellerCompany, string(listing.Metal),
		listing.QuantityAvailable, listing.PricePerTon, listing.OriginCountry,
		listing.QualityGrade, listing.ListingDate, nullTime(listing.ExpiryDate),
		string(listing.Status), listing.ID)
	if err != nil {
		return fmt.Errorf("updating listing: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("listing not found: %s", listing.ID)
	}
	return nil
}

func (s *SQLiteStore) QueryListings(ctx context.Context, filter ListingFilter) ([]models.MineralListing, error) {
	query := `SELECT ` + listingColumns + ` FROM mineral_listings WHERE 1=1`
	var args []interface{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if filter.Metal != "" {
		query += " AND metal = ?"
		args = append(args, string(filter.Metal))
	}
	if filter.SellerID != "" {
		query += " AND seller_id = ?"
		args = append(args, filter.SellerID)
	}
	query += " ORDER BY listing_date DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying listings: %w", err)
	}
	defer rows.Close()

	var listings []models.MineralListing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

// --- Margins ---

func (s *SQLiteStore) CreateMargin(ctx context.Context, margin *models.Margin) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO margins (id, trade_id, trade_number, initial_margin,
			variation_margin, total_margin, margin_date, market_price,
			price_change, paying_party, payable, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		margin.ID, margin.TradeID, margin.TradeNumber, margin.InitialMargin,
		margin.VariationMargin, margin.TotalMargin, margin.MarginDate,
		margin.MarketPrice, margin.PriceChange, margin.PayingParty,
		margin.Payable, string(margin.Status))
	if err != nil {
		return fmt.Errorf("inserting margin: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetMarginsByTrade(ctx context.Context, tradeID string) ([]models.Margin, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, trade_id, trade_number, initial_margin, variation_margin,
			total_margin, margin_date, market_price, price_change, paying_party,
			payable, status
		FROM margins WHERE trade_id = ? ORDER BY margin_date`, tradeID)
	if err != nil {
		return nil, fmt.Errorf("querying margins: %w", err)
	}
	defer rows.Close()

	var margins []models.Margin
	for rows.Next() {
		var m models.Margin
		if err := rows.Scan(&m.ID, &m.TradeID, &m.TradeNumber, &m.InitialMargin,
			&m.VariationMargin, &m.TotalMargin, &m.MarginDate, &m.MarketPrice,
			&m.PriceChange, &m.PayingParty, &m.Payable, &m.Status); err != nil {
			return nil, fmt.Errorf("scanning margin: %w", err)
		}
		margins = append(margins, m)
	}
	return margins, rows.Err()
}

// --- Settlements ---

func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO settlements (id, settlement_number, trade_id, trade_number,
			type, settlement_date, settlement_amount, buyer_name, seller_name,
			metal, quantity, warrant_number, warehouse_location, final_price,
			price_difference, status, is_completed, completion_date, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.SettlementNumber, settlement.TradeID,
		settlement.TradeNumber, string(settlement.Type), settlement.SettlementDate,
		settlement.SettlementAmount, settlement.BuyerName, settlement.SellerName,
		string(settlement.Metal), settlement.Quantity, settlement.WarrantNumber,
		settlement.WarehouseLocation, settlement.FinalPrice,
		settlement.PriceDifference, string(settlement.Status),
		settlement.IsCompleted, nullTime(settlement.CompletionDate), settlement.Notes)
	if err != nil {
		return fmt.Errorf("inserting settlement: %w", err)
	}
	return nil
}

const settlementColumns = `id, settlement_number, trade_id, trade_number, type,
	settlement_date, settlement_amount, buyer_name, seller_name, metal, quantity,
	warrant_number, warehouse_location, final_price, price_difference, status,
	is_completed, completion_date, notes`

func scanSettlement(row interface{ Scan(...interface{}) error }) (*models.Settlement, error) {
	var st models.Settlement
	var completion sql.NullTime
	var buyer, seller, metal, warrantNo, location, notes sql.NullString
	var quantity, finalPrice, priceDiff sql.NullFloat64
	err := row.Scan(&st.ID, &st.SettlementNumber, &st.TradeID, &st.TradeNumber,
		&st.Type, &st.SettlementDate, &st.SettlementAmount, &buyer, &seller,
		&metal, &quantity, &warrantNo, &location, &finalPrice, &priceDiff,
		&st.Status, &st.IsCompleted, &completion, &notes)
	if err != nil {
		return nil, err
	}
	st.BuyerName = buyer.String
	st.SellerName = seller.String
	st.Metal = models.MetalType(metal.String)
	st.Quantity = quantity.Float64
	st.WarrantNumber = warrantNo.String
	st.WarehouseLocation = location.String
	st.FinalPrice = finalPrice.Float64
	st.PriceDifference = priceDiff.Float64
	st.CompletionDate = timePtr(completion)
	st.Notes = notes.String
	return &st, nil
}

func (s *SQLiteStore) GetSettlement(ctx context.Context, id string) (*models.Settlement, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE id = ?`, id)
	settlement, err := scanSettlement(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying settlement: %w", err)
	}
	return settlement, nil
}

func (s *SQLiteStore) UpdateSettlement(ctx context.Context, settlement *models.Settlement) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE settlements SET settlement_number = ?, trade_id = ?, trade_number = ?,
			type = ?, settlement_date = ?, settlement_amount = ?, buyer_name = ?,
			seller_name = ?, metal = ?, quantity = ?, warrant_number = ?,
			warehouse_location = ?, final_price = ?, price_difference = ?,
			status = ?, is_completed = ?, completion_date = ?, notes = ?
		WHERE id = ?`,
		settlement.SettlementNumber, settlement.TradeID, settlement.TradeNumber,
		string(settlement.Type), settlement.SettlementDate, settlement.SettlementAmount,
		settlement.BuyerName, settlement.SellerName, string(settlement.Metal),
		settlement.Quantity, settlement.WarrantNumber, settlement.WarehouseLocation,
		settlement.FinalPrice, settlement.PriceDifference, string(settlement.Status),
		settlement.IsCompleted, nullTime(settlement.CompletionDate), settlement.Notes,
		settlement.ID)
	if err != nil {
		return fmt.Errorf("updating settlement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("settlement not found: %s", settlement.ID)
	}
	return nil
}

func (s *SQLiteStore) GetSettlementsByTrade(ctx context.Context, tradeID string) ([]models.Settlement, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE trade_id = ? ORDER BY settlement_date`,
		tradeID)
	if err != nil {
		return nil, fmt.Errorf("querying settlements: %w", err)
	}
	defer rows.Close()

	var settlements []models.Settlement
	for rows.Next() {
		st, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning settlement: %w", err)
		}
		settlements = append(settlements, *st)
	}
	return settlements, rows.Err()
}

// --- Warrants ---

func (s *SQLiteStore) CreateWarrant(ctx context.Context, warrant *models.Warrant) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO warrants (id, warrant_number, trade_id, trade_number,
			warehouse_id, warehouse_name, metal, quantity, current_owner,
			previous_owner, issue_date, transfer_date, quality_grade, lot_number,
			is_active, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		warrant.ID, warrant.WarrantNumber, warrant.TradeID, warrant.TradeNumber,
		warrant.WarehouseID, warrant.WarehouseName, string(warrant.Metal),
		warrant.Quantity, warrant.CurrentOwner, warrant.PreviousOwner,
		warrant.IssueDate, nullTime(warrant.TransferDate), warrant.QualityGrade,
		warrant.LotNumber, warrant.IsActive, string(warrant.Status))
	if err != nil {
		return fmt.Errorf("inserting warrant: %w", err)
	}
	return nil
}

const warrantColumns = `id, warrant_number, trade_id, trade_number, warehouse_id,
	warehouse_name, metal, quantity, current_owner, previous_owner, issue_date,
	transfer_date, quality_grade, lot_number, is_active, status`

func scanWarrant(row interface{ Scan(...interface{}) error }) (*models.Warrant, error) {
	var w models.Warrant
	var transfer sql.NullTime
	var tradeID, tradeNumber, warehouseName, prevOwner, grade, lot sql.NullString
	err := row.Scan(&w.ID, &w.WarrantNumber, &tradeID, &tradeNumber,
		&w.WarehouseID, &warehouseName, &w.Metal, &w.Quantity, &w.CurrentOwner,
		&prevOwner, &w.IssueDate, &transfer, &grade, &lot, &w.IsActive, &w.Status)
	if err != nil {
		return nil, err
	}
	w.TradeID = tradeID.String
	w.TradeNumber = tradeNumber.String
	w.WarehouseName = warehouseName.String
	w.PreviousOwner = prevOwner.String
	w.TransferDate = timePtr(transfer)
	w.QualityGrade = grade.String
	w.LotNumber = lot.String
	return &w, nil
}

func (s *SQLiteStore) GetWarrant(ctx context.Context, id string) (*models.Warrant, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+warrantColumns+` FROM warrants WHERE id = ?`, id)
	warrant, err := scanWarrant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying warrant: %w", err)
	}
	return warrant, nil
}

func (s *SQLiteStore) UpdateWarrant(ctx context.Context, warrant *models.Warrant) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE warrants SET warrant_number = ?, trade_id = ?, trade_number = ?,
			warehouse_id = ?, warehouse_name = ?, metal = ?, quantity = ?,
			current_owner = ?, previous_owner = ?, issue_date = ?, transfer_date = ?,
			quality_grade = ?, lot_number = ?, is_active = ?, status = ?
		WHERE id = ?`,
		warrant.WarrantNumber, warrant.TradeID, warrant.TradeNumber,
		warrant.WarehouseID, warrant.WarehouseName, string(warrant.Metal),
		warrant.Quantity, warrant.CurrentOwner, warrant.PreviousOwner,
		warrant.IssueDate, nullTime(warrant.TransferDate), warrant.QualityGrade,
		warrant.LotNumber, warrant.IsActive, string(warrant.Status), warrant.ID)
	if err != nil {
		return fmt.Errorf("updating warrant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("warrant not found: %s", warrant.ID)
	}
	return nil
}

func (s *SQLiteStore) CreateWarrantTransfer(ctx context.Context, transfer *models.WarrantTransfer) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO warrant_transfers (id, warrant_id, from_owner, to_owner, transfer_at)
		VALUES (?, ?, ?, ?, ?)`,
		transfer.ID, transfer.WarrantID, transfer.FromOwner, transfer.ToOwner,
		transfer.TransferAt)
	if err != nil {
		return fmt.Errorf("inserting warrant transfer: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetWarrantTransfers(ctx context.Context, warrantID string) ([]models.WarrantTransfer, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, warrant_id, from_owner, to_owner, transfer_at
		FROM warrant_transfers WHERE warrant_id = ? ORDER BY transfer_at, rowid`, warrantID)
	if err != nil {
		return nil, fmt.Errorf("querying warrant transfers: %w", err)
	}
	defer rows.Close()

	var transfers []models.WarrantTransfer
	for rows.Next() {
		var t models.WarrantTransfer
		if err := rows.Scan(&t.ID, &t.WarrantID, &t.FromOwner, &t.ToOwner, &t.TransferAt); err != nil {
			return nil, fmt.Errorf("scanning warrant transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

// --- Warehouses ---

func (s *SQLiteStore) CreateWarehouse(ctx context.Context, warehouse *models.Warehouse) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO warehouses (id, code, operator, location, city, country,
			storage_capacity, current_stock, is_approved, approval_date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		warehouse.ID, warehouse.Code, warehouse.Operator, warehouse.Location,
		warehouse.City, warehouse.Country, warehouse.StorageCapacity,
		warehouse.CurrentStock, warehouse.IsApproved,
		nullTime(warehouse.ApprovalDate), warehouse.Status)
	if err != nil {
		return fmt.Errorf("inserting warehouse: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetWarehouse(ctx context.Context, id string) (*models.Warehouse, error) {
	var w models.Warehouse
	var approval sql.NullTime
	var operator, location, city, country, status sql.NullString
	err := s.q.QueryRowContext(ctx, `
		SELECT id, code, operator, location, city, country, storage_capacity,
			current_stock, is_approved, approval_date, status
		FROM warehouses WHERE id = ?`, id).Scan(
		&w.ID, &w.Code, &operator, &location, &city, &country,
		&w.StorageCapacity, &w.CurrentStock, &w.IsApproved, &approval, &status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying warehouse: %w", err)
	}
	w.Operator = operator.String
	w.Location = location.String
	w.City = city.String
	w.Country = country.String
	w.ApprovalDate = timePtr(approval)
	w.Status = status.String
	return &w, nil
}

func (s *SQLiteStore) UpdateWarehouse(ctx context.Context, warehouse *models.Warehouse) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE warehouses SET code = ?, operator = ?, location = ?, city = ?,
			country = ?, storage_capacity = ?, current_stock = ?, is_approved = ?,
			approval_date = ?, status = ?
		WHERE id = ?`,
		warehouse.Code, warehouse.Operator, warehouse.Location, warehouse.City,
		warehouse.Country, warehouse.StorageCapacity, warehouse.CurrentStock,
		warehouse.IsApproved, nullTime(warehouse.ApprovalDate), warehouse.Status,
		warehouse.ID)
	if err != nil {
		return fmt.Errorf("updating warehouse: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("warehouse not found: %s", warehouse.ID)
	}
	return nil
}

// --- Counterparties ---

func (s *SQLiteStore) CreateParty(ctx context.Context, role PartyRole, party *models.Party) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO parties (id, role, name, company_name, country, is_approved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		party.ID, string(role), party.Name, party.CompanyName, party.Country,
		party.IsApproved, party.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting party: %w", err)
	}
	return nil
}

func scanParty(row *sql.Row) (*models.Party, error) {
	var p models.Party
	var company, country sql.NullString
	err := row.Scan(&p.ID, &p.Name, &company, &country, &p.IsApproved, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.CompanyName = company.String
	p.Country = country.String
	return &p, nil
}

func (s *SQLiteStore) GetPartyByName(ctx context.Context, role PartyRole, name string) (*models.Party, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, name, company_name, country, is_approved, created_at
		FROM parties WHERE role = ? AND name = ? COLLATE NOCASE`,
		string(role), strings.TrimSpace(name))
	party, err := scanParty(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying party: %w", err)
	}
	return party, nil
}

func (s *SQLiteStore) GetParty(ctx context.Context, role PartyRole, id string) (*models.Party, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, name, company_name, country, is_approved, created_at
		FROM parties WHERE role = ? AND id = ?`, string(role), id)
	party, err := scanParty(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying party: %w", err)
	}
	return party, nil
}

// --- Payments ---

func (s *SQLiteStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO payments (id, trade_id, amount, payment_date, description)
		VALUES (?, ?, ?, ?, ?)`,
		payment.ID, payment.TradeID, payment.Amount, payment.PaymentDate,
		payment.Description)
	if err != nil {
		return fmt.Errorf("inserting payment: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetPaymentsByTrade(ctx context.Context, tradeID string) ([]models.Payment, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, trade_id, amount, payment_date, description
		FROM payments WHERE trade_id = ? ORDER BY payment_date`, tradeID)
	if err != nil {
		return nil, fmt.Errorf("querying payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		var desc sql.NullString
		if err := rows.Scan(&p.ID, &p.TradeID, &p.Amount, &p.PaymentDate, &desc); err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}
		p.Description = desc.String
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
