// Package clearing implements the back-office components of the
// mineral exchange: listing validation, trade lifecycle, margining,
// warrant registry, settlement processing, and payment reconciliation.
package clearing

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apperrors "minex-clearing/internal/errors"
)

const (
	// ValueTolerance bounds acceptable rounding error on the
	// quantity x price cross-check and the payment cap.
	ValueTolerance = 0.01

	// MinTradeValue is the minimum contract value floor.
	MinTradeValue = 1000.0

	// MaxLotTons is the largest quantity accepted per trade or listing.
	MaxLotTons = 10000.0

	// DefaultInitialMarginPct is the initial margin rate applied when
	// the caller does not supply one.
	DefaultInitialMarginPct = 0.10

	// MaxInitialMarginPct caps the initial margin rate.
	MaxInitialMarginPct = 0.50

	// DefaultListingValidity is applied when a listing carries no
	// expiry date.
	DefaultListingValidity = 30 * 24 * time.Hour
)

// validate checks structural field rules declared on the models.
var validate = validator.New()

// checkStruct runs tag validation and converts the first failure into
// a domain ValidationError naming the violated rule.
func checkStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return apperrors.NewValidationError(fe.Field(), fe.Value(),
			fmt.Sprintf("violates %q constraint", fe.Tag()))
	}
	return err
}

func newID() string {
	return uuid.NewString()
}

// newReference builds a human-readable reference number such as
// TRD-20260828-1A2B3C4D.
func newReference(prefix string, t time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", prefix, t.Format("20060102"), suffix)
}
