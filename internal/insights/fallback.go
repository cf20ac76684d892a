package insights

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/grand-market/grand-market-erp/internal/ledger"
)

// fallback is the deterministic local summarizer used when no backend is
// configured or the backend fails. It mirrors the questions the assistant
// is most asked: stock levels and sales totals.
func (s *Service) fallback(prompt string, records []ledger.InventoryRecord, sales []SaleRecord, currencyCode string) string {
	p := strings.ToLower(prompt)
	switch {
	case strings.Contains(p, "stock") || strings.Contains(p, "inventory") || strings.Contains(p, "restock"):
		return s.stockSummary(records, currencyCode)
	case strings.Contains(p, "sale") || strings.Contains(p, "revenue"):
		return s.salesSummary(sales, currencyCode)
	default:
		return "The assistant backend is not reachable right now, but I can still check local data. Try asking about low stock or today's sales."
	}
}

func (s *Service) stockSummary(records []ledger.InventoryRecord, currencyCode string) string {
	low := ledger.LowStock(records, s.lowMark)
	if len(low) == 0 {
		return fmt.Sprintf("All %d tracked items are above the low-stock threshold of %d units.", len(records), s.lowMark)
	}
	printer := message.NewPrinter(language.English)
	parts := make([]string, 0, len(low))
	for _, rec := range low {
		parts = append(parts, fmt.Sprintf("%s (%d left, %s)", rec.Name, rec.StockLevel, formatAmount(printer, currencyCode, rec.Price)))
	}
	return "Low stock right now: " + strings.Join(parts, ", ") + ". Everything else looks good."
}

func (s *Service) salesSummary(sales []SaleRecord, currencyCode string) string {
	if len(sales) == 0 {
		return "No sales recorded yet today."
	}
	total := decimal.Zero
	items := 0
	for _, sale := range sales {
		total = total.Add(sale.Total)
		items += sale.Items
	}
	printer := message.NewPrinter(language.English)
	return fmt.Sprintf("Last %d sales: %d items for %s in total.", len(sales), items, formatAmount(printer, currencyCode, total))
}

// formatAmount renders a money amount with its currency symbol, falling
// back to a plain code prefix for unknown codes.
func formatAmount(printer *message.Printer, code string, amount decimal.Decimal) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%s %s", code, amount.StringFixed(2))
	}
	return printer.Sprint(currency.Symbol(unit.Amount(amount.InexactFloat64())))
}
