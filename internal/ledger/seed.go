package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// SeedInventory is the bootstrap stock ledger used on first start, before
// any snapshot has been persisted.
func SeedInventory(now time.Time) []InventoryRecord {
	price := func(v string) decimal.Decimal {
		d, _ := decimal.NewFromString(v)
		return d
	}
	return []InventoryRecord{
		{SKU: "GRC-1001", Name: "Jasmine Rice 5kg", Company: "Golden Harvest", Category: "Grocery", Price: price("12.50"), StockLevel: 48, LastUpdated: now},
		{SKU: "GRC-1002", Name: "Sunflower Oil 1L", Company: "Golden Harvest", Category: "Grocery", Price: price("4.80"), StockLevel: 60, LastUpdated: now},
		{SKU: "GRC-1003", Name: "Wheat Flour 2kg", Company: "Golden Harvest", Category: "Grocery", Price: price("3.20"), StockLevel: 35, LastUpdated: now},
		{SKU: "PRD-2001", Name: "Red Apples 1kg", Company: "Pacific Fresh", Category: "Produce", Price: price("2.90"), StockLevel: 24, LastUpdated: now},
		{SKU: "PRD-2002", Name: "Bananas 1kg", Company: "Pacific Fresh", Category: "Produce", Price: price("1.60"), StockLevel: 40, LastUpdated: now},
		{SKU: "BEV-3001", Name: "Sparkling Water 500ml", Company: "Metro Beverage", Category: "Beverages", Price: price("0.90"), StockLevel: 120, LastUpdated: now},
		{SKU: "BEV-3002", Name: "Orange Juice 1L", Company: "Metro Beverage", Category: "Beverages", Price: price("3.50"), StockLevel: 18, LastUpdated: now},
		{SKU: "HHG-4001", Name: "Dish Soap 750ml", Company: "Sunrise Household", Category: "Household", Price: price("2.40"), StockLevel: 55, LastUpdated: now},
		{SKU: "HHG-4002", Name: "Paper Towels 6-pack", Company: "Sunrise Household", Category: "Household", Price: price("5.10"), StockLevel: 8, LastUpdated: now},
		{SKU: "HHG-4003", Name: "Laundry Detergent 3kg", Company: "Sunrise Household", Category: "Household", Price: price("9.90"), StockLevel: 14, LastUpdated: now},
	}
}
