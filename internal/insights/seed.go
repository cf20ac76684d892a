package insights

import (
	"time"

	"github.com/shopspring/decimal"
)

// SeedSales pre-populates the sales feed so the assistant has context on
// a fresh install.
func SeedSales(log *SalesLog, now time.Time) {
	amount := func(v string) decimal.Decimal {
		d, _ := decimal.NewFromString(v)
		return d
	}
	seeds := []SaleRecord{
		{ID: "SALE-0001", Time: now.Add(-26 * time.Hour), Items: 4, Total: amount("23.80"), Method: "CASH"},
		{ID: "SALE-0002", Time: now.Add(-20 * time.Hour), Items: 2, Total: amount("8.30"), Method: "CARD"},
		{ID: "SALE-0003", Time: now.Add(-5 * time.Hour), Items: 7, Total: amount("41.15"), Method: "CARD"},
		{ID: "SALE-0004", Time: now.Add(-1 * time.Hour), Items: 1, Total: amount("12.50"), Method: "CASH"},
	}
	for _, rec := range seeds {
		log.Add(rec)
	}
}
