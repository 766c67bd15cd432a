// internal/services/pricing.go
package services

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/javajoker/zuzi-store/internal/config"
)

// Pricing converts purchase costs into a per-unit cost and a shelf price.
type Pricing struct {
	ExchangeRate decimal.Decimal
	Margin       decimal.Decimal
	RoundingUnit decimal.Decimal
}

func NewPricing(cfg config.PricingConfig) Pricing {
	return Pricing{
		ExchangeRate: decimal.NewFromFloat(cfg.ExchangeRate),
		Margin:       decimal.NewFromFloat(cfg.Margin),
		RoundingUnit: decimal.NewFromFloat(cfg.RoundingUnit),
	}
}

type SizeQuantity struct {
	Size     string `json:"size" validate:"required,size_label"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

type PriceQuote struct {
	TotalCost    decimal.Decimal `json:"total_cost"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	TotalUnits   int             `json:"total_units"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

// NormalizeSizes trims labels and folds repeated labels into one entry. A
// repeated label keeps its first position and takes the last quantity.
func NormalizeSizes(sizes []SizeQuantity) ([]SizeQuantity, error) {
	out := make([]SizeQuantity, 0, len(sizes))
	index := make(map[string]int, len(sizes))

	for _, sq := range sizes {
		label := strings.TrimSpace(sq.Size)
		if label == "" {
			return nil, ErrInvalidSize
		}
		if sq.Quantity < 0 {
			return nil, ErrInvalidQuantity
		}

		if i, seen := index[label]; seen {
			out[i].Quantity = sq.Quantity
			continue
		}
		index[label] = len(out)
		out = append(out, SizeQuantity{Size: label, Quantity: sq.Quantity})
	}

	return out, nil
}

// Quote computes the stored cost and price for a product. Costs are given in
// the purchase currency and returned in local currency.
func (p Pricing) Quote(totalCost, shippingCost decimal.Decimal, sizes []SizeQuantity) (*PriceQuote, error) {
	if totalCost.IsNegative() || shippingCost.IsNegative() {
		return nil, ErrInvalidCost
	}

	totalUnits := 0
	for _, sq := range sizes {
		if sq.Quantity < 0 {
			return nil, ErrInvalidQuantity
		}
		totalUnits += sq.Quantity
	}
	if totalUnits == 0 {
		return nil, ErrNoUnits
	}

	totalLocal := totalCost.Mul(p.ExchangeRate)
	shippingLocal := shippingCost.Mul(p.ExchangeRate)
	unitCost := totalLocal.Add(shippingLocal).Div(decimal.NewFromInt(int64(totalUnits)))

	return &PriceQuote{
		TotalCost:    totalLocal,
		ShippingCost: shippingLocal,
		TotalUnits:   totalUnits,
		UnitCost:     unitCost.Round(4),
		SellingPrice: p.SellingPrice(unitCost),
	}, nil
}

// SellingPrice adds the margin and rounds to the nearest rounding unit, halves away from zero.
func (p Pricing) SellingPrice(unitCost decimal.Decimal) decimal.Decimal {
	return unitCost.Add(p.Margin).Div(p.RoundingUnit).Round(0).Mul(p.RoundingUnit)
}

// ToPurchaseCurrency reverses the exchange conversion for edit forms.
func (p Pricing) ToPurchaseCurrency(local decimal.Decimal) decimal.Decimal {
	return local.Div(p.ExchangeRate).Round(4)
}
