// internal/models/sale.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is an immutable ledger entry. ProductID is a plain column so history
// survives product deletion.
type Sale struct {
	BaseModel
	ProductID    uint            `json:"product_id" gorm:"not null;index"`
	Size         string          `json:"size" gorm:"size:20;not null"`
	Quantity     int             `json:"quantity" gorm:"not null"`
	SellingPrice decimal.Decimal `json:"selling_price" gorm:"type:numeric(14,4);not null"`
	UnitCost     decimal.Decimal `json:"unit_cost" gorm:"type:numeric(14,4);not null"`
	SoldAt       time.Time       `json:"timestamp" gorm:"not null;index"`
	SoldBy       uint            `json:"sold_by" gorm:"index"`
}

func (s *Sale) Revenue() decimal.Decimal {
	return s.SellingPrice.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

func (s *Sale) Cost() decimal.Decimal {
	return s.UnitCost.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

func (s *Sale) Profit() decimal.Decimal {
	return s.Revenue().Sub(s.Cost())
}

// UnitProfit is the margin on a single item.
func (s *Sale) UnitProfit() decimal.Decimal {
	return s.SellingPrice.Sub(s.UnitCost)
}

// SaleRevert records the compensating entry for a sale. At most one exists per sale.
type SaleRevert struct {
	BaseModel
	SaleID             uint            `json:"sale_id" gorm:"not null;uniqueIndex"`
	ProductID          uint            `json:"product_id" gorm:"not null;index"`
	Size               string          `json:"size" gorm:"size:20;not null"`
	Quantity           int             `json:"quantity" gorm:"not null"`
	SellingPrice       decimal.Decimal `json:"selling_price" gorm:"type:numeric(14,4);not null"`
	UnitCost           decimal.Decimal `json:"unit_cost" gorm:"type:numeric(14,4);not null"`
	RevertedAt         time.Time       `json:"revert_timestamp" gorm:"not null;index"`
	RevertedBy         uint            `json:"reverted_by" gorm:"not null"`
	RevertedByUsername string          `json:"reverted_by_username" gorm:"size:150"`
	Reason             string          `json:"reason" gorm:"size:500"`
}

func (SaleRevert) TableName() string {
	return "sale_reverts"
}
