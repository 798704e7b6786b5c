package models

import "time"

// Warrant represents a transferable warehouse receipt evidencing
// ownership of a physical quantity held in an approved warehouse.
type Warrant struct {
	ID            string
	WarrantNumber string
	TradeID       string
	TradeNumber   string
	WarehouseID   string `validate:"required"`
	WarehouseName string
	Metal         MetalType
	Quantity      float64 `validate:"gt=0"`
	CurrentOwner  string  `validate:"required"`
	PreviousOwner string
	IssueDate     time.Time
	TransferDate  *time.Time
	QualityGrade  string
	LotNumber     string
	IsActive      bool
	Status        WarrantStatus
}

// WarrantTransfer is one hop in a warrant's chain of custody. The
// warrant's CurrentOwner/PreviousOwner fields are the latest view;
// transfer records keep the full history.
type WarrantTransfer struct {
	ID         string
	WarrantID  string
	FromOwner  string
	ToOwner    string
	TransferAt time.Time
}

// Warehouse represents a storage facility eligible to back warrants.
type Warehouse struct {
	ID              string
	Code            string
	Operator        string
	Location        string
	City            string
	Country         string
	StorageCapacity float64 // metric tons
	CurrentStock    float64 // metric tons
	IsApproved      bool    // LME approval
	ApprovalDate    *time.Time
	Status          string
}

// AvailableCapacity returns capacity not currently consumed by stock.
func (w *Warehouse) AvailableCapacity() float64 {
	return w.StorageCapacity - w.CurrentStock
}
