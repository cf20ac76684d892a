package ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRecord is the authoritative per-SKU stock record.
type InventoryRecord struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Company     string          `json:"company"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	StockLevel  int64           `json:"stockLevel"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// Movement is a single SKU quantity change applied by a posting rule.
type Movement struct {
	SKU string
	Qty int64
}

// ReceiptLine is the posting view of a goods receipt line. Damaged
// quantities are recorded on the document but never enter sellable stock.
type ReceiptLine struct {
	SKU         string
	QtyReceived int64
	Damaged     bool
}

// ErrSKUNotInLedger flags a posting line whose SKU has no inventory
// record. It is non-fatal: the line is skipped and reported back.
var ErrSKUNotInLedger = errors.New("ledger: sku not in ledger")

// ErrInvalidQuantity indicates a non-positive quantity on a posting line.
var ErrInvalidQuantity = errors.New("ledger: quantity must be positive")

// PriceOf returns the current unit price for sku, or zero when the SKU
// has no inventory record.
func PriceOf(records []InventoryRecord, sku string) decimal.Decimal {
	for i := range records {
		if records[i].SKU == sku {
			return records[i].Price
		}
	}
	return decimal.Zero
}

// StockOf returns the on-hand quantity for sku, or zero when absent.
func StockOf(records []InventoryRecord, sku string) int64 {
	for i := range records {
		if records[i].SKU == sku {
			return records[i].StockLevel
		}
	}
	return 0
}

// LowStock returns records whose stock level is below threshold.
func LowStock(records []InventoryRecord, threshold int64) []InventoryRecord {
	var out []InventoryRecord
	for _, rec := range records {
		if rec.StockLevel < threshold {
			out = append(out, rec)
		}
	}
	return out
}

// Clone copies the snapshot so callers can mutate freely.
func Clone(records []InventoryRecord) []InventoryRecord {
	return append([]InventoryRecord(nil), records...)
}
