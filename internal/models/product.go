// internal/models/product.go
package models

import (
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	ImageURL     string          `json:"image_url" gorm:"size:500"`
	StyleURL     string          `json:"style_url" gorm:"size:500"`
	Season       string          `json:"season" gorm:"size:50;not null;index"`
	Gender       string          `json:"gender" gorm:"size:50;not null;index"`
	TotalCost    decimal.Decimal `json:"total_cost" gorm:"type:numeric(14,4);not null"`
	ShippingCost decimal.Decimal `json:"shipping_cost" gorm:"type:numeric(14,4);not null"`
	UnitCost     decimal.Decimal `json:"unit_cost" gorm:"type:numeric(14,4);not null"`
	SellingPrice decimal.Decimal `json:"selling_price" gorm:"type:numeric(14,4);not null"`

	// Loaded explicitly with Preload; deletes are issued by the catalog service.
	Sizes []SizeStock `json:"sizes" gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
}

// TotalUnits sums the stock across every size.
func (p *Product) TotalUnits() int {
	total := 0
	for _, s := range p.Sizes {
		total += s.Quantity
	}
	return total
}

type SizeStock struct {
	BaseModel
	ProductID uint   `json:"product_id" gorm:"not null;uniqueIndex:idx_size_stock_product_size"`
	Size      string `json:"size" gorm:"size:20;not null;uniqueIndex:idx_size_stock_product_size"`
	Quantity  int    `json:"quantity" gorm:"not null;default:0;check:quantity >= 0"`
}

func (SizeStock) TableName() string {
	return "size_stocks"
}
