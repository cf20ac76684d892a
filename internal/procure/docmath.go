package procure

import "github.com/shopspring/decimal"

// All derived money amounts funnel through these helpers so every
// creation and derivation site computes totals the same way.

// lineTotal is qty x unit price, rounded to cents.
func lineTotal(qty int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(qty)).Round(2)
}

// orderTotal sums line totals.
func orderTotal(items []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Total)
	}
	return total.Round(2)
}

// invoiceAmounts derives tax and grand total from a subtotal.
func invoiceAmounts(subtotal, taxRate decimal.Decimal) (tax, total decimal.Decimal) {
	tax = subtotal.Mul(taxRate).Round(2)
	total = subtotal.Add(tax).Round(2)
	return tax, total
}
