package services

import (
	"restaurant_pos/internal/models"

	"github.com/shopspring/decimal"
)

// TaxRate is applied to the discounted subtotal of every order.
var TaxRate = decimal.RequireFromString("0.10")

var hundred = decimal.NewFromInt(100)

type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
}

func LineAmount(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// ComputeTotals derives discount, tax and total from a subtotal. Every
// intermediate is rounded half away from zero to cents.
func ComputeTotals(subtotal decimal.Decimal, discountType models.DiscountType, discountValue decimal.Decimal) Totals {
	subtotal = subtotal.Round(2)

	discount := decimal.Zero
	switch discountType {
	case models.DiscountPercent:
		discount = subtotal.Mul(discountValue).Div(hundred).Round(2)
	case models.DiscountAmount:
		discount = discountValue.Round(2)
	}

	net := subtotal.Sub(discount)
	tax := net.Mul(TaxRate).Round(2)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Tax:            tax,
		Total:          net.Add(tax).Round(2),
	}
}

func validateDiscount(discountType models.DiscountType, value, subtotal decimal.Decimal) error {
	if !discountType.Valid() {
		return &ValidationError{Field: "discount_type", Message: "must be one of none, percent, amount"}
	}
	if value.IsNegative() {
		return &ValidationError{Field: "discount_value", Message: "must not be negative"}
	}
	switch discountType {
	case models.DiscountPercent:
		if value.GreaterThan(hundred) {
			return &ValidationError{Field: "discount_value", Message: "percent discount must not exceed 100"}
		}
	case models.DiscountAmount:
		if value.Round(2).GreaterThan(subtotal) {
			return &ValidationError{Field: "discount_value", Message: "discount must not exceed the subtotal"}
		}
	}
	return nil
}

func applyTotals(order *models.Order, t Totals) {
	order.Subtotal = t.Subtotal
	order.DiscountAmount = t.DiscountAmount
	order.Tax = t.Tax
	order.Total = t.Total
}
