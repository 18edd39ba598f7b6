package businessflow

import (
	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Valuation holds the derived monetary values of a contract
type Valuation struct {
	TotalValue     decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalValue     decimal.Decimal
}

// ComputeValuation derives total, discount and final values.
// Rounding to cents happens once, at the end, half away from zero.
func ComputeValuation(totalSpots int, pricePerSpot, discountPercentage decimal.Decimal) (Valuation, error) {
	if totalSpots < 1 {
		return Valuation{}, ErrInvalidTotalSpots
	}
	if pricePerSpot.IsNegative() {
		return Valuation{}, ErrInvalidPricePerSpot
	}
	if discountPercentage.IsNegative() || discountPercentage.GreaterThan(hundred) {
		return Valuation{}, ErrDiscountOutOfRange
	}

	total := pricePerSpot.Mul(decimal.NewFromInt(int64(totalSpots)))
	discount := total.Mul(discountPercentage).Div(hundred)
	final := total.Sub(discount)

	return Valuation{
		TotalValue:     total.Round(moneyPlaces),
		DiscountAmount: discount.Round(moneyPlaces),
		FinalValue:     final.Round(moneyPlaces),
	}, nil
}
