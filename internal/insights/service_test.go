package insights

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/grand-market/grand-market-erp/internal/ledger"
)

type staticInventory struct {
	records  []ledger.InventoryRecord
	currency string
}

func (s staticInventory) Inventory() []ledger.InventoryRecord { return s.records }
func (s staticInventory) Currency() string                    { return s.currency }

func newFallbackService(records []ledger.InventoryRecord, sales *SalesLog) *Service {
	return NewService(ServiceConfig{
		Inventory:         staticInventory{records: records, currency: "USD"},
		Sales:             sales,
		LowStockThreshold: 10,
	})
}

func TestGenerateFallsBackToStockSummary(t *testing.T) {
	records := []ledger.InventoryRecord{
		{SKU: "GRC-1001", Name: "Jasmine Rice 5kg", Price: decimal.RequireFromString("12.50"), StockLevel: 40},
		{SKU: "BEV-3001", Name: "Sparkling Water 500ml", Price: decimal.RequireFromString("0.90"), StockLevel: 4},
	}
	svc := newFallbackService(records, NewSalesLog(0))

	answer := svc.Generate(context.Background(), "which items need restocking?")
	require.Contains(t, answer, "Sparkling Water 500ml")
	require.Contains(t, answer, "4 left")
	require.NotContains(t, answer, "Jasmine Rice", "healthy items are not flagged")
}

func TestGenerateStockSummaryAllHealthy(t *testing.T) {
	records := []ledger.InventoryRecord{
		{SKU: "GRC-1001", Name: "Jasmine Rice 5kg", Price: decimal.RequireFromString("12.50"), StockLevel: 40},
	}
	svc := newFallbackService(records, NewSalesLog(0))

	answer := svc.Generate(context.Background(), "inventory status")
	require.Contains(t, answer, "above the low-stock threshold")
}

func TestGenerateSalesSummary(t *testing.T) {
	sales := NewSalesLog(10)
	now := time.Now().UTC()
	sales.Add(SaleRecord{ID: "SALE-1", Time: now.Add(-time.Hour), Items: 3, Total: decimal.RequireFromString("20.00"), Method: "CASH"})
	sales.Add(SaleRecord{ID: "SALE-2", Time: now, Items: 2, Total: decimal.RequireFromString("15.50"), Method: "CARD"})
	svc := newFallbackService(nil, sales)

	answer := svc.Generate(context.Background(), "how is revenue today?")
	require.Contains(t, answer, "2 sales")
	require.Contains(t, answer, "5 items")
}

func TestGenerateUnknownPromptHint(t *testing.T) {
	svc := newFallbackService(nil, NewSalesLog(0))

	answer := svc.Generate(context.Background(), "tell me a joke")
	require.Contains(t, answer, "low stock")
}

func TestSalesLogEvictsOldest(t *testing.T) {
	log := NewSalesLog(2)
	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		log.Add(SaleRecord{ID: string(rune('A' + i)), Time: base.Add(time.Duration(i) * time.Minute)})
	}
	recent := log.Recent(0)
	require.Len(t, recent, 2)
	require.Equal(t, "C", recent[0].ID, "newest first")
	require.Equal(t, "B", recent[1].ID)
}
