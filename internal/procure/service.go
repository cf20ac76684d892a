package procure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/grand-market/grand-market-erp/internal/ledger"
	"github.com/grand-market/grand-market-erp/internal/refdata"
	"github.com/grand-market/grand-market-erp/internal/shared"
)

// SnapshotPort persists the inventory snapshot after ledger-affecting
// transitions. Saving is best-effort: a failure is logged, never surfaced.
type SnapshotPort interface {
	Save(ctx context.Context, records []ledger.InventoryRecord) error
}

// AuditPort records workflow actions.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// DirectoryPort resolves supplier and warehouse reference records.
type DirectoryPort interface {
	Supplier(id string) (refdata.Supplier, error)
	Warehouse(id string) (refdata.Warehouse, error)
}

// Service orchestrates the document workflow over a single mutex-guarded
// state snapshot: the document collections plus the inventory ledger.
// Operations are read-modify-write over shared SKU records, so everything
// funnels through one lock; the engine itself computes new values purely
// and nothing is committed until an operation succeeds as a whole.
type Service struct {
	mu        sync.Mutex
	docs      *DocumentStore
	inventory []ledger.InventoryRecord
	currency  string

	engine      *Engine
	directory   DirectoryPort
	snapshots   SnapshotPort
	audit       AuditPort
	idempotency *shared.IdempotencyStore
	logger      *slog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Engine      *Engine
	Directory   DirectoryPort
	Snapshots   SnapshotPort
	Audit       AuditPort
	Idempotency *shared.IdempotencyStore
	Logger      *slog.Logger
	Inventory   []ledger.InventoryRecord
	Currency    string
}

// NewService constructs the workflow service.
func NewService(cfg ServiceConfig) *Service {
	engine := cfg.Engine
	if engine == nil {
		engine = NewEngine(EngineConfig{})
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "USD"
	}
	return &Service{
		docs:        NewDocumentStore(),
		inventory:   ledger.Clone(cfg.Inventory),
		currency:    currency,
		engine:      engine,
		directory:   cfg.Directory,
		snapshots:   cfg.Snapshots,
		audit:       cfg.Audit,
		idempotency: cfg.Idempotency,
		logger:      logger,
	}
}

// CreateRequest creates a DRAFT purchase request.
func (s *Service) CreateRequest(ctx context.Context, requesterID string, items []RequestLine) (PurchaseRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pr, err := s.engine.CreateRequest(requesterID, items)
	if err != nil {
		return PurchaseRequest{}, err
	}
	s.docs.PutRequest(pr)
	s.recordAudit(ctx, "PR_CREATE", "purchase_request", pr.ID, map[string]any{"requester": requesterID})
	return pr, nil
}

// ApproveRequest transitions a request from DRAFT to APPROVED.
func (s *Service) ApproveRequest(ctx context.Context, id, approverID string) (PurchaseRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pr, err := s.docs.GetRequest(id)
	if err != nil {
		return PurchaseRequest{}, err
	}
	pr, err = s.engine.ApproveRequest(pr, approverID)
	if err != nil {
		return PurchaseRequest{}, err
	}
	s.docs.PutRequest(pr)
	s.recordAudit(ctx, "PR_APPROVE", "purchase_request", pr.ID, map[string]any{"approver": approverID})
	return pr, nil
}

// DeriveOrder spawns a purchase order from an APPROVED request and
// completes the request.
func (s *Service) DeriveOrder(ctx context.Context, prID, supplierID string) (PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pr, err := s.docs.GetRequest(prID)
	if err != nil {
		return PurchaseOrder{}, err
	}
	supplier, err := s.lookupSupplier(supplierID)
	if err != nil {
		return PurchaseOrder{}, err
	}
	po, pr, err := s.engine.DeriveOrder(pr, supplier, s.inventory)
	if err != nil {
		return PurchaseOrder{}, err
	}
	s.docs.PutOrder(po)
	s.docs.PutRequest(pr)
	s.recordAudit(ctx, "PO_CREATE", "purchase_order", po.ID, map[string]any{"from_pr": prID, "total": po.TotalAmount.String()})
	return po, nil
}

// CreateOrder creates a purchase order without an originating request.
func (s *Service) CreateOrder(ctx context.Context, supplierID string, items []OrderLine) (PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	supplier, err := s.lookupSupplier(supplierID)
	if err != nil {
		return PurchaseOrder{}, err
	}
	po, err := s.engine.CreateOrder(supplier, items)
	if err != nil {
		return PurchaseOrder{}, err
	}
	s.docs.PutOrder(po)
	s.recordAudit(ctx, "PO_CREATE", "purchase_order", po.ID, map[string]any{"total": po.TotalAmount.String()})
	return po, nil
}

// SendOrder transitions an order from DRAFT to SENT.
func (s *Service) SendOrder(ctx context.Context, id string) (PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	po, err := s.docs.GetOrder(id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	po, err = s.engine.SendOrder(po)
	if err != nil {
		return PurchaseOrder{}, err
	}
	s.docs.PutOrder(po)
	s.recordAudit(ctx, "PO_SEND", "purchase_order", po.ID, nil)
	return po, nil
}

// DeriveReceipt creates a DRAFT goods receipt from a SENT order.
func (s *Service) DeriveReceipt(ctx context.Context, poID, warehouseID string) (GoodsReceiptNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	po, err := s.docs.GetOrder(poID)
	if err != nil {
		return GoodsReceiptNote{}, err
	}
	if s.directory != nil && warehouseID != "" {
		if _, err := s.directory.Warehouse(warehouseID); err != nil {
			return GoodsReceiptNote{}, fmt.Errorf("%w: warehouse %s", ErrReferenceNotFound, warehouseID)
		}
	}
	grn, err := s.engine.DeriveReceipt(po, warehouseID)
	if err != nil {
		return GoodsReceiptNote{}, err
	}
	s.docs.PutReceipt(grn)
	s.recordAudit(ctx, "GRN_CREATE", "goods_receipt", grn.ID, map[string]any{"po": poID})
	return grn, nil
}

// AmendReceipt replaces the line items of a DRAFT goods receipt, letting
// the host record short deliveries or damaged goods before verification.
func (s *Service) AmendReceipt(ctx context.Context, id string, items []ReceiptLine) (GoodsReceiptNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	grn, err := s.docs.GetReceipt(id)
	if err != nil {
		return GoodsReceiptNote{}, err
	}
	if grn.Status != GRNStatusDraft {
		return GoodsReceiptNote{}, fmt.Errorf("%w: goods receipt %s is %s, amend requires %s", ErrInvalidTransition, grn.ID, grn.Status, GRNStatusDraft)
	}
	for _, item := range items {
		if item.SKU == "" || item.QtyReceived < 0 {
			return GoodsReceiptNote{}, fmt.Errorf("%w: line requires sku and non-negative received qty", ErrValidation)
		}
		if item.Condition != ConditionGood && item.Condition != ConditionDamaged {
			return GoodsReceiptNote{}, fmt.Errorf("%w: condition must be GOOD or DAMAGED", ErrValidation)
		}
	}
	grn.Items = append([]ReceiptLine(nil), items...)
	s.docs.PutReceipt(grn)
	return grn, nil
}

// VerifyReceipt verifies a DRAFT goods receipt and posts the stock
// increase for its non-damaged lines.
func (s *Service) VerifyReceipt(ctx context.Context, id string) (GoodsReceiptNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	grn, err := s.docs.GetReceipt(id)
	if err != nil {
		return GoodsReceiptNote{}, err
	}
	key := fmt.Sprintf("GRN:%s", grn.ID)
	inserted, err := s.guardPosting(ctx, key)
	if err != nil {
		return GoodsReceiptNote{}, err
	}
	grn, next, missing, err := s.engine.VerifyReceipt(grn, s.inventory)
	if err != nil {
		s.releasePosting(ctx, key, inserted)
		return GoodsReceiptNote{}, err
	}
	s.warnMissing("goods receipt", grn.ID, missing)
	s.inventory = next
	s.docs.PutReceipt(grn)
	s.recordAudit(ctx, "GRN_VERIFY", "goods_receipt", grn.ID, map[string]any{"skipped_skus": len(missing)})
	s.persistSnapshot(ctx)
	return grn, nil
}

// DeriveInvoice creates a DRAFT supplier invoice from an order.
func (s *Service) DeriveInvoice(ctx context.Context, poID, invoiceNumber string, grnIDs []string) (SupplierInvoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	po, err := s.docs.GetOrder(poID)
	if err != nil {
		return SupplierInvoice{}, err
	}
	for _, grnID := range grnIDs {
		if _, err := s.docs.GetReceipt(grnID); err != nil {
			return SupplierInvoice{}, err
		}
	}
	inv, err := s.engine.DeriveInvoice(po, invoiceNumber, grnIDs)
	if err != nil {
		return SupplierInvoice{}, err
	}
	s.docs.PutInvoice(inv)
	s.recordAudit(ctx, "INV_CREATE", "supplier_invoice", inv.ID, map[string]any{"po": poID, "total": inv.Total.String()})
	return inv, nil
}

// PostInvoice posts a DRAFT invoice, running the three-way match against
// its originating order. The ledger is not touched.
func (s *Service) PostInvoice(ctx context.Context, id string) (SupplierInvoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, err := s.docs.GetInvoice(id)
	if err != nil {
		return SupplierInvoice{}, err
	}
	po, err := s.docs.GetOrder(inv.POID)
	if err != nil {
		return SupplierInvoice{}, err
	}
	inv, err = s.engine.PostInvoice(inv, po)
	if err != nil {
		return SupplierInvoice{}, err
	}
	s.docs.PutInvoice(inv)
	s.recordAudit(ctx, "INV_POST", "supplier_invoice", inv.ID, map[string]any{"matched": inv.Matched})
	return inv, nil
}

// PayInvoice settles a POSTED invoice.
func (s *Service) PayInvoice(ctx context.Context, id string) (SupplierInvoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, err := s.docs.GetInvoice(id)
	if err != nil {
		return SupplierInvoice{}, err
	}
	inv, err = s.engine.PayInvoice(inv)
	if err != nil {
		return SupplierInvoice{}, err
	}
	s.docs.PutInvoice(inv)
	s.recordAudit(ctx, "INV_PAY", "supplier_invoice", inv.ID, nil)
	return inv, nil
}

// CreateTransfer creates a DRAFT stock transfer.
func (s *Service) CreateTransfer(ctx context.Context, sourceWarehouseID, destWarehouseID string, items []TransferLine) (StockTransfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.directory != nil {
		for _, id := range []string{sourceWarehouseID, destWarehouseID} {
			if id == "" {
				continue
			}
			if _, err := s.directory.Warehouse(id); err != nil {
				return StockTransfer{}, fmt.Errorf("%w: warehouse %s", ErrReferenceNotFound, id)
			}
		}
	}
	trf, err := s.engine.CreateTransfer(sourceWarehouseID, destWarehouseID, items)
	if err != nil {
		return StockTransfer{}, err
	}
	s.docs.PutTransfer(trf)
	s.recordAudit(ctx, "TRF_CREATE", "stock_transfer", trf.ID, map[string]any{"from": sourceWarehouseID, "to": destWarehouseID})
	return trf, nil
}

// DispatchTransfer marks a transfer IN_TRANSIT.
func (s *Service) DispatchTransfer(ctx context.Context, id string) (StockTransfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	trf, err := s.docs.GetTransfer(id)
	if err != nil {
		return StockTransfer{}, err
	}
	trf, err = s.engine.DispatchTransfer(trf)
	if err != nil {
		return StockTransfer{}, err
	}
	s.docs.PutTransfer(trf)
	s.recordAudit(ctx, "TRF_DISPATCH", "stock_transfer", trf.ID, nil)
	return trf, nil
}

// ReceiveTransfer receives a transfer and posts the stock increase.
func (s *Service) ReceiveTransfer(ctx context.Context, id string) (StockTransfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	trf, err := s.docs.GetTransfer(id)
	if err != nil {
		return StockTransfer{}, err
	}
	key := fmt.Sprintf("TRF:%s", trf.ID)
	inserted, err := s.guardPosting(ctx, key)
	if err != nil {
		return StockTransfer{}, err
	}
	trf, next, missing, err := s.engine.ReceiveTransfer(trf, s.inventory)
	if err != nil {
		s.releasePosting(ctx, key, inserted)
		return StockTransfer{}, err
	}
	s.warnMissing("stock transfer", trf.ID, missing)
	s.inventory = next
	s.docs.PutTransfer(trf)
	s.recordAudit(ctx, "TRF_RECEIVE", "stock_transfer", trf.ID, map[string]any{"skipped_skus": len(missing)})
	s.persistSnapshot(ctx)
	return trf, nil
}

// CreateReturn creates a DRAFT purchase return.
func (s *Service) CreateReturn(ctx context.Context, supplierID, grnID, reason string, items []ReturnLine) (PurchaseReturn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.lookupSupplier(supplierID); err != nil {
		return PurchaseReturn{}, err
	}
	if grnID != "" {
		if _, err := s.docs.GetReceipt(grnID); err != nil {
			return PurchaseReturn{}, err
		}
	}
	ret, err := s.engine.CreateReturn(supplierID, grnID, reason, items)
	if err != nil {
		return PurchaseReturn{}, err
	}
	s.docs.PutReturn(ret)
	s.recordAudit(ctx, "RET_CREATE", "purchase_return", ret.ID, map[string]any{"supplier": supplierID})
	return ret, nil
}

// ShipReturn ships a return and posts the clamped stock decrease.
func (s *Service) ShipReturn(ctx context.Context, id string) (PurchaseReturn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret, err := s.docs.GetReturn(id)
	if err != nil {
		return PurchaseReturn{}, err
	}
	key := fmt.Sprintf("RET:%s", ret.ID)
	inserted, err := s.guardPosting(ctx, key)
	if err != nil {
		return PurchaseReturn{}, err
	}
	ret, next, missing, err := s.engine.ShipReturn(ret, s.inventory)
	if err != nil {
		s.releasePosting(ctx, key, inserted)
		return PurchaseReturn{}, err
	}
	s.warnMissing("purchase return", ret.ID, missing)
	s.inventory = next
	s.docs.PutReturn(ret)
	s.recordAudit(ctx, "RET_SHIP", "purchase_return", ret.ID, map[string]any{"skipped_skus": len(missing)})
	s.persistSnapshot(ctx)
	return ret, nil
}

// SetRefundStatus records the refund settlement reported by the finance
// collaborator. It is not part of the status workflow.
func (s *Service) SetRefundStatus(ctx context.Context, id string, status RefundStatus) (PurchaseReturn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status != RefundStatusPending && status != RefundStatusCredited {
		return PurchaseReturn{}, fmt.Errorf("%w: refund status must be PENDING or CREDITED", ErrValidation)
	}
	ret, err := s.docs.GetReturn(id)
	if err != nil {
		return PurchaseReturn{}, err
	}
	ret.RefundStatus = status
	s.docs.PutReturn(ret)
	s.recordAudit(ctx, "RET_REFUND", "purchase_return", ret.ID, map[string]any{"refund": string(status)})
	return ret, nil
}

// Read accessors. All return copies of the guarded state.

func (s *Service) Requests() []PurchaseRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.ListRequests()
}

func (s *Service) Request(id string) (PurchaseRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.GetRequest(id)
}

func (s *Service) Order(id string) (PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.GetOrder(id)
}

func (s *Service) Receipt(id string) (GoodsReceiptNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.GetReceipt(id)
}

func (s *Service) Invoice(id string) (SupplierInvoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.GetInvoice(id)
}

func (s *Service) Transfer(id string) (StockTransfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.GetTransfer(id)
}

func (s *Service) Return(id string) (PurchaseReturn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.GetReturn(id)
}

func (s *Service) Orders() []PurchaseOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.ListOrders()
}

func (s *Service) Receipts() []GoodsReceiptNote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.ListReceipts()
}

func (s *Service) Invoices() []SupplierInvoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.ListInvoices()
}

func (s *Service) Transfers() []StockTransfer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.ListTransfers()
}

func (s *Service) Returns() []PurchaseReturn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.ListReturns()
}

// Inventory returns a copy of the current ledger snapshot.
func (s *Service) Inventory() []ledger.InventoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.Clone(s.inventory)
}

// Currency returns the display currency code.
func (s *Service) Currency() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currency
}

func (s *Service) lookupSupplier(id string) (refdata.Supplier, error) {
	if id == "" {
		return refdata.Supplier{}, fmt.Errorf("%w: supplier required", ErrValidation)
	}
	if s.directory == nil {
		return refdata.Supplier{ID: id, Currency: s.currency}, nil
	}
	supplier, err := s.directory.Supplier(id)
	if err != nil {
		return refdata.Supplier{}, fmt.Errorf("%w: supplier %s", ErrReferenceNotFound, id)
	}
	return supplier, nil
}

// guardPosting reserves the idempotency key for a ledger posting. It
// reports whether a key was inserted so a failed posting can release it.
func (s *Service) guardPosting(ctx context.Context, key string) (bool, error) {
	if s.idempotency == nil {
		return false, nil
	}
	if err := s.idempotency.CheckAndInsert(ctx, key, "procure"); err != nil {
		if errors.Is(err, shared.ErrIdempotencyConflict) {
			return false, fmt.Errorf("%w: posting %s already applied", ErrInvalidTransition, key)
		}
		return false, err
	}
	return true, nil
}

func (s *Service) releasePosting(ctx context.Context, key string, inserted bool) {
	if inserted {
		_ = s.idempotency.Delete(ctx, key)
	}
}

func (s *Service) persistSnapshot(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Save(ctx, s.inventory); err != nil {
		s.logger.Warn("persist inventory snapshot", slog.Any("error", err))
	}
}

func (s *Service) warnMissing(entity, id string, skus []string) {
	for _, sku := range skus {
		s.logger.Warn("sku not in inventory master, line skipped",
			slog.String("entity", entity),
			slog.String("id", id),
			slog.String("sku", sku),
		)
	}
}

func (s *Service) recordAudit(ctx context.Context, action, entity, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: action, Entity: entity, EntityID: entityID, Meta: meta})
}
