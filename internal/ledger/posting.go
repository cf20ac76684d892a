package ledger

import "time"

// Posting rules are pure: they take the current snapshot and return a new
// one, never mutating their input. Lines whose SKU has no inventory record
// are skipped and reported back so the caller can log a data-quality
// warning; they never fail the posting.

// ApplyReceipt posts a verified goods receipt: stock increases by the
// received quantity for every non-damaged line. Touched records get their
// LastUpdated stamped with now.
func ApplyReceipt(records []InventoryRecord, lines []ReceiptLine, now time.Time) ([]InventoryRecord, []string) {
	next := Clone(records)
	var missing []string
	for _, line := range lines {
		idx := indexOf(next, line.SKU)
		if idx < 0 {
			missing = append(missing, line.SKU)
			continue
		}
		if line.Damaged {
			continue
		}
		next[idx].StockLevel += line.QtyReceived
		next[idx].LastUpdated = now
	}
	return next, missing
}

// ApplyTransferReceipt posts a received stock transfer. The ledger is flat
// across warehouses, so receiving adds the transferred quantity to the
// single stock figure per SKU.
func ApplyTransferReceipt(records []InventoryRecord, moves []Movement, now time.Time) ([]InventoryRecord, []string) {
	next := Clone(records)
	var missing []string
	for _, move := range moves {
		idx := indexOf(next, move.SKU)
		if idx < 0 {
			missing = append(missing, move.SKU)
			continue
		}
		next[idx].StockLevel += move.Qty
		next[idx].LastUpdated = now
	}
	return next, missing
}

// ApplyReturnShipment posts a shipped purchase return: stock decreases by
// the returned quantity, clamped at zero.
func ApplyReturnShipment(records []InventoryRecord, moves []Movement, now time.Time) ([]InventoryRecord, []string) {
	next := Clone(records)
	var missing []string
	for _, move := range moves {
		idx := indexOf(next, move.SKU)
		if idx < 0 {
			missing = append(missing, move.SKU)
			continue
		}
		level := next[idx].StockLevel - move.Qty
		if level < 0 {
			level = 0
		}
		next[idx].StockLevel = level
		next[idx].LastUpdated = now
	}
	return next, missing
}

func indexOf(records []InventoryRecord, sku string) int {
	for i := range records {
		if records[i].SKU == sku {
			return i
		}
	}
	return -1
}
