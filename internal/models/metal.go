package models

import "fmt"

// MetalType represents an exchange-listed base or precious metal.
type MetalType string

const (
	MetalCopper   MetalType = "COPPER"
	MetalAluminum MetalType = "ALUMINUM"
	MetalZinc     MetalType = "ZINC"
	MetalNickel   MetalType = "NICKEL"
	MetalLead     MetalType = "LEAD"
	MetalTin      MetalType = "TIN"
	MetalGold     MetalType = "GOLD"
	MetalCobalt   MetalType = "COBALT"
)

// AllMetals lists every tradable metal type.
var AllMetals = []MetalType{
	MetalCopper, MetalAluminum, MetalZinc, MetalNickel,
	MetalLead, MetalTin, MetalGold, MetalCobalt,
}

// ParseMetalType parses a case-insensitive metal name.
func ParseMetalType(s string) (MetalType, error) {
	for _, m := range AllMetals {
		if string(m) == normalizeMetal(s) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metal type: %s", s)
}

func normalizeMetal(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

// PriceBand is the market reference price range for a metal, per ton.
type PriceBand struct {
	Min float64
	Max float64
}

// DefaultPriceBands returns the built-in market reference bands.
// Cobalt carries no band: listings for it accept any positive price.
func DefaultPriceBands() map[MetalType]PriceBand {
	return map[MetalType]PriceBand{
		MetalCopper:   {Min: 8000, Max: 12000},
		MetalAluminum: {Min: 2000, Max: 3500},
		MetalZinc:     {Min: 2500, Max: 4000},
		MetalNickel:   {Min: 15000, Max: 25000},
		MetalLead:     {Min: 1800, Max: 2800},
		MetalTin:      {Min: 25000, Max: 40000},
		MetalGold:     {Min: 55000000, Max: 75000000},
	}
}
