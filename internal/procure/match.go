package procure

import "github.com/shopspring/decimal"

// DefaultMatchTolerance is the reconciliation band: an invoice is accepted
// as matched when it deviates from the order total by at most 5% in either
// direction.
var DefaultMatchTolerance = decimal.NewFromFloat(0.05)

// ThreeWayMatch reconciles an invoice subtotal against its originating
// order total. It reports whether the absolute difference falls within
// orderTotal x tolerance. An unmatched verdict is a recorded business
// outcome, not an error.
func ThreeWayMatch(invoiceSubtotal, orderTotal, tolerance decimal.Decimal) bool {
	diff := invoiceSubtotal.Sub(orderTotal).Abs()
	band := orderTotal.Mul(tolerance)
	return diff.LessThanOrEqual(band)
}
