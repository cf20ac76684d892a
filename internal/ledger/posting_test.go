package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func snapshotFixture() []InventoryRecord {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return []InventoryRecord{
		{SKU: "GRC-1001", Name: "Jasmine Rice 5kg", Price: decimal.RequireFromString("12.50"), StockLevel: 40, LastUpdated: base},
		{SKU: "BEV-3001", Name: "Sparkling Water 500ml", Price: decimal.RequireFromString("0.90"), StockLevel: 5, LastUpdated: base},
	}
}

func TestApplyReceiptIncrementsGoodLinesOnly(t *testing.T) {
	records := snapshotFixture()
	now := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)

	next, missing := ApplyReceipt(records, []ReceiptLine{
		{SKU: "GRC-1001", QtyReceived: 10},
		{SKU: "BEV-3001", QtyReceived: 24, Damaged: true},
	}, now)

	require.Empty(t, missing)
	require.EqualValues(t, 50, StockOf(next, "GRC-1001"))
	require.EqualValues(t, 5, StockOf(next, "BEV-3001"), "damaged quantity must not enter sellable stock")
	require.Equal(t, now, next[0].LastUpdated)
	require.NotEqual(t, now, next[1].LastUpdated)
	// input snapshot untouched
	require.EqualValues(t, 40, StockOf(records, "GRC-1001"))
}

func TestApplyReceiptSkipsUnknownSKU(t *testing.T) {
	records := snapshotFixture()
	now := time.Now().UTC()

	next, missing := ApplyReceipt(records, []ReceiptLine{
		{SKU: "NOPE-999", QtyReceived: 3},
		{SKU: "GRC-1001", QtyReceived: 2},
	}, now)

	require.Equal(t, []string{"NOPE-999"}, missing)
	require.EqualValues(t, 42, StockOf(next, "GRC-1001"))
	require.Len(t, next, 2, "unknown SKUs are skipped, never created")
}

func TestApplyTransferReceiptAddsQuantity(t *testing.T) {
	records := snapshotFixture()
	now := time.Now().UTC()

	next, missing := ApplyTransferReceipt(records, []Movement{
		{SKU: "BEV-3001", Qty: 12},
	}, now)

	require.Empty(t, missing)
	require.EqualValues(t, 17, StockOf(next, "BEV-3001"))
}

func TestApplyReturnShipmentClampsAtZero(t *testing.T) {
	records := snapshotFixture()
	now := time.Now().UTC()

	next, missing := ApplyReturnShipment(records, []Movement{
		{SKU: "BEV-3001", Qty: 8},
		{SKU: "GRC-1001", Qty: 15},
	}, now)

	require.Empty(t, missing)
	require.EqualValues(t, 0, StockOf(next, "BEV-3001"), "stock never goes negative")
	require.EqualValues(t, 25, StockOf(next, "GRC-1001"))
}

func TestLowStock(t *testing.T) {
	records := snapshotFixture()
	low := LowStock(records, 10)
	require.Len(t, low, 1)
	require.Equal(t, "BEV-3001", low[0].SKU)
}
