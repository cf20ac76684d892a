package insights

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"golang.org/x/sync/errgroup"

	"github.com/grand-market/grand-market-erp/internal/ledger"
)

// InventorySource supplies the current inventory view for the prompt.
type InventorySource interface {
	Inventory() []ledger.InventoryRecord
	Currency() string
}

// SalesSource supplies recent sales for the prompt.
type SalesSource interface {
	Recent(limit int) []SaleRecord
}

// Bounded context sizes: the assistant sees the top inventory rows and a
// handful of recent sales, never the full dataset.
const (
	maxInventoryRows = 20
	maxSalesRows     = 5
)

// Service generates operational insights. When a text-generation backend
// is configured it is consulted first; on a missing key, an API error, or
// an empty reply the deterministic local summarizer answers instead, so
// generation never fails from the caller's point of view.
type Service struct {
	client    *openai.Client
	model     string
	inventory InventorySource
	sales     SalesSource
	lowMark   int64
	logger    *slog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	APIKey            string
	Model             string
	Inventory         InventorySource
	Sales             SalesSource
	LowStockThreshold int64
	Logger            *slog.Logger
}

// NewService constructs the insight service. An empty API key leaves the
// backend unconfigured and routes everything to the fallback.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		model:     cfg.Model,
		inventory: cfg.Inventory,
		sales:     cfg.Sales,
		lowMark:   cfg.LowStockThreshold,
		logger:    cfg.Logger,
	}
	if s.model == "" {
		s.model = shared.ChatModelGPT4oMini
	}
	if s.lowMark <= 0 {
		s.lowMark = 10
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if cfg.APIKey != "" {
		client := openai.NewClient(option.WithAPIKey(cfg.APIKey))
		s.client = &client
	}
	return s
}

// Generate answers a free-text prompt with bounded inventory and sales
// context. It always returns a usable answer.
func (s *Service) Generate(ctx context.Context, prompt string) string {
	var (
		records  []ledger.InventoryRecord
		sales    []SaleRecord
		currency string
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		if s.inventory != nil {
			records = s.inventory.Inventory()
			currency = s.inventory.Currency()
		}
		return nil
	})
	g.Go(func() error {
		if s.sales != nil {
			sales = s.sales.Recent(maxSalesRows)
		}
		return nil
	})
	_ = g.Wait()

	if s.client == nil {
		return s.fallback(prompt, records, sales, currency)
	}
	answer, err := s.generateRemote(ctx, prompt, records, sales)
	if err != nil {
		s.logger.Warn("insight backend unavailable, using local summarizer", slog.Any("error", err))
		return s.fallback(prompt, records, sales, currency)
	}
	return answer
}

func (s *Service) generateRemote(ctx context.Context, prompt string, records []ledger.InventoryRecord, sales []SaleRecord) (string, error) {
	full := fmt.Sprintf(`You are the AI assistant for Grand Market, a busy supermarket.
You help cashiers and inventory managers.

CURRENT INVENTORY:
%s

RECENT SALES:
%s

Your role:
- Answer questions about stock availability.
- Suggest items to restock when stock runs low.
- Analyze sales trends briefly.
- Keep answers short, friendly, and helpful for a busy worker.

Question: %s`, serializeInventory(records), serializeSales(sales), prompt)

	resp, err := s.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: shared.ResponsesModel(s.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(full),
		},
	})
	if err != nil {
		return "", fmt.Errorf("insights: responses: %w", err)
	}
	answer := strings.TrimSpace(resp.OutputText())
	if answer == "" {
		return "", fmt.Errorf("insights: empty response")
	}
	return answer, nil
}

func serializeInventory(records []ledger.InventoryRecord) string {
	if len(records) == 0 {
		return "(no inventory data)"
	}
	if len(records) > maxInventoryRows {
		records = records[:maxInventoryRows]
	}
	var b strings.Builder
	for _, rec := range records {
		fmt.Fprintf(&b, "- %s: %d units @ %s\n", rec.Name, rec.StockLevel, rec.Price.StringFixed(2))
	}
	return b.String()
}

func serializeSales(sales []SaleRecord) string {
	if len(sales) == 0 {
		return "(no sales today)"
	}
	var b strings.Builder
	for _, sale := range sales {
		fmt.Fprintf(&b, "- %s: %d items, total %s via %s\n", sale.Time.Format("15:04"), sale.Items, sale.Total.StringFixed(2), sale.Method)
	}
	return b.String()
}
