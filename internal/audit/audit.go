// Package audit provides an append-only audit trail of back-office actions.
package audit

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// EventType represents the type of audit event.
type EventType string

const (
	// Listing events
	EventListingCreated       EventType = "LISTING_CREATED"
	EventListingStatusChanged EventType = "LISTING_STATUS_CHANGED"

	// Trade lifecycle events
	EventTradeCreated   EventType = "TRADE_CREATED"
	EventTradeConfirmed EventType = "TRADE_CONFIRMED"
	EventTradeNovated   EventType = "TRADE_NOVATED"
	EventTradeActivated EventType = "TRADE_ACTIVATED"
	EventTradeCompleted EventType = "TRADE_COMPLETED"
	EventTradeCancelled EventType = "TRADE_CANCELLED"
	EventTradeDeleted   EventType = "TRADE_DELETED"

	// Margin events
	EventInitialMargin   EventType = "INITIAL_MARGIN"
	EventVariationMargin EventType = "VARIATION_MARGIN"

	// Warrant events
	EventWarrantIssued      EventType = "WARRANT_ISSUED"
	EventWarrantTransferred EventType = "WARRANT_TRANSFERRED"

	// Settlement events
	EventSettlementCreated   EventType = "SETTLEMENT_CREATED"
	EventSettlementCompleted EventType = "SETTLEMENT_COMPLETED"

	// Payment events
	EventPaymentRecorded EventType = "PAYMENT_RECORDED"
)

// Event represents a single audit log entry.
type Event struct {
	Timestamp time.Time              `json:"timestamp"`
	EventType EventType              `json:"event_type"`
	EntityID  string                 `json:"entity_id,omitempty"`
	TradeID   string                 `json:"trade_id,omitempty"`
	Actor     string                 `json:"actor,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Success   bool                   `json:"success"`
	ErrorMsg  string                 `json:"error,omitempty"`
	SessionID string                 `json:"session_id,omitempty"`
}

// Logger handles audit logging for back-office actions.
type Logger struct {
	writer    *lumberjack.Logger
	mu        sync.Mutex
	sessionID string
	actor     string
}

// Config holds audit logger configuration.
type Config struct {
	LogDir     string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// DefaultConfig returns the default audit configuration.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		LogDir:     filepath.Join(home, ".config", "minex-clearing", "audit"),
		MaxSize:    50,
		MaxBackups: 30,
		MaxAge:     365,
		Compress:   true,
	}
}

// NewLogger creates a new audit logger.
func NewLogger(cfg Config) (*Logger, error) {
	if err := os.MkdirAll(cfg.LogDir, 0700); err != nil {
		return nil, fmt.Errorf("creating audit directory: %w", err)
	}

	writer := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, "audit.log"),
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	return &Logger{
		writer:    writer,
		sessionID: generateSessionID(),
	}, nil
}

// SetActor sets the operator recorded on subsequent events.
func (al *Logger) SetActor(actor string) {
	if al == nil {
		return
	}
	al.mu.Lock()
	defer al.mu.Unlock()
	al.actor = actor
}

// Log logs an audit event. A nil Logger discards events, so services
// can run without an audit trail configured.
func (al *Logger) Log(ctx context.Context, event Event) error {
	if al == nil {
		return nil
	}

	al.mu.Lock()
	defer al.mu.Unlock()

	event.Timestamp = time.Now().UTC()
	event.SessionID = al.sessionID
	if event.Actor == "" {
		event.Actor = al.actor
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serializing audit event: %w", err)
	}

	if _, err := al.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing audit event: %w", err)
	}

	return nil
}

// LogTransition logs a successful entity state transition.
func (al *Logger) LogTransition(ctx context.Context, eventType EventType, entityID, tradeID string, details map[string]interface{}) error {
	return al.Log(ctx, Event{
		EventType: eventType,
		EntityID:  entityID,
		TradeID:   tradeID,
		Details:   details,
		Success:   true,
	})
}

// Close closes the audit logger.
func (al *Logger) Close() error {
	if al == nil {
		return nil
	}
	return al.writer.Close()
}

func generateSessionID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
