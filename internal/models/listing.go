package models

import "time"

// MineralListing represents a seller's offer of physical metal.
type MineralListing struct {
	ID                string
	SellerID          string    `validate:"required"`
	SellerCompany     string    `validate:"required"`
	Metal             MetalType `validate:"required"`
	QuantityAvailable float64   `validate:"gt=0,lte=10000"` // metric tons
	PricePerTon       float64   `validate:"gt=0"`
	OriginCountry     string    `validate:"required"`
	QualityGrade      string    `validate:"required"`
	ListingDate       time.Time
	ExpiryDate        *time.Time
	Status            ListingStatus
}
