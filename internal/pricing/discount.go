// Package pricing holds the condition-based discount policy applied at
// checkout. The schedule is deliberately behind an interface: the order
// flow only ever sees "base price in, effective price out".
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/mekelletech/recycle-golang/internal/models"
)

// Strategy maps a product's base price and wear grade to the unit price
// actually charged to a logged-in buyer.
type Strategy interface {
	Discount(basePrice decimal.Decimal, condition models.Condition) decimal.Decimal
}

// ConditionTable is the default schedule: a flat percentage off per
// wear grade. Rates are expressed as fractions (0.10 = 10% off).
type ConditionTable struct {
	Rates map[models.Condition]decimal.Decimal
}

// DefaultTable returns the standard storefront schedule. Worse condition,
// deeper discount.
func DefaultTable() *ConditionTable {
	return &ConditionTable{
		Rates: map[models.Condition]decimal.Decimal{
			models.ConditionNew:     decimal.Zero,
			models.ConditionLikeNew: decimal.NewFromFloat(0.05),
			models.ConditionGood:    decimal.NewFromFloat(0.10),
			models.ConditionFair:    decimal.NewFromFloat(0.15),
			models.ConditionPoor:    decimal.NewFromFloat(0.20),
		},
	}
}

// Discount applies the table rate for the condition, rounded to cents.
// Unknown conditions get no discount rather than an error; validation of
// the enum happens at the input boundary.
func (t *ConditionTable) Discount(basePrice decimal.Decimal, condition models.Condition) decimal.Decimal {
	rate, ok := t.Rates[condition]
	if !ok {
		return basePrice
	}
	factor := decimal.NewFromInt(1).Sub(rate)
	return basePrice.Mul(factor).Round(2)
}
