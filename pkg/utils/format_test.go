package utils

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$0.00"},
		{950000, "$950,000.00"},
		{1234567.89, "$1,234,567.89"},
		{-50000, "-$50,000.00"},
		{999.99, "$999.99"},
	}
	for _, tc := range tests {
		if got := FormatUSD(tc.amount); got != tc.want {
			t.Errorf("FormatUSD(%v) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}

func TestFormatTons(t *testing.T) {
	tests := []struct {
		quantity float64
		want     string
	}{
		{100, "100 t"},
		{12.5, "12.5 t"},
		{0.001, "0.001 t"},
	}
	for _, tc := range tests {
		if got := FormatTons(tc.quantity); got != tc.want {
			t.Errorf("FormatTons(%v) = %q, want %q", tc.quantity, got, tc.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{0.10, "10%"},
		{0.125, "12.5%"},
		{0.50, "50%"},
	}
	for _, tc := range tests {
		if got := FormatPercent(tc.rate); got != tc.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tc.rate, got, tc.want)
		}
	}
}

// Property: stripping separators from a formatted amount yields the
// plain two-decimal rendering of the same value.
func TestProperty_FormatUSDRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	amountGen := gen.Float64Range(0, 1e9)

	properties.Property("separator stripping preserves the value", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatUSD(amount)
			stripped := strings.NewReplacer("$", "", ",", "").Replace(formatted)
			return stripped == fmt.Sprintf("%.2f", amount)
		},
		amountGen,
	))

	properties.TestingRun(t)
}
