package procure

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/grand-market/grand-market-erp/internal/ledger"
	"github.com/grand-market/grand-market-erp/internal/refdata"
)

// Engine implements the document workflow: legal status transitions and
// the ledger postings that accompany them. Every operation is pure: it
// takes documents and the inventory snapshot by value and returns the
// updated copies, mutating nothing on error.
type Engine struct {
	now       func() time.Time
	newID     func(prefix string) string
	taxRate   decimal.Decimal
	tolerance decimal.Decimal
	dueIn     time.Duration
}

// EngineConfig carries optional overrides for the workflow engine.
type EngineConfig struct {
	TaxRate        decimal.Decimal
	MatchTolerance decimal.Decimal
	InvoiceDueIn   time.Duration
	Now            func() time.Time
	NewID          func(prefix string) string
}

// DefaultTaxRate is applied when deriving an invoice from an order.
var DefaultTaxRate = decimal.NewFromFloat(0.10)

// NewEngine constructs the workflow engine, filling unset config fields
// with the defaults (10% tax, 5% tolerance, net-30 due dates).
func NewEngine(cfg EngineConfig) *Engine {
	e := &Engine{
		now:       cfg.Now,
		newID:     cfg.NewID,
		taxRate:   cfg.TaxRate,
		tolerance: cfg.MatchTolerance,
		dueIn:     cfg.InvoiceDueIn,
	}
	if e.now == nil {
		e.now = func() time.Time { return time.Now().UTC() }
	}
	if e.newID == nil {
		e.newID = generateID
	}
	if e.taxRate.IsZero() {
		e.taxRate = DefaultTaxRate
	}
	if e.tolerance.IsZero() {
		e.tolerance = DefaultMatchTolerance
	}
	if e.dueIn == 0 {
		e.dueIn = 30 * 24 * time.Hour
	}
	return e
}

func generateID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(uuid.NewString()[:8]))
}

// CreateRequest builds a DRAFT purchase request.
func (e *Engine) CreateRequest(requesterID string, items []RequestLine) (PurchaseRequest, error) {
	if requesterID == "" {
		return PurchaseRequest{}, fmt.Errorf("%w: requester required", ErrValidation)
	}
	if len(items) == 0 {
		return PurchaseRequest{}, fmt.Errorf("%w: minimal 1 line", ErrValidation)
	}
	for _, item := range items {
		if item.SKU == "" || item.Qty <= 0 {
			return PurchaseRequest{}, fmt.Errorf("%w: line requires sku and positive qty", ErrValidation)
		}
	}
	return PurchaseRequest{
		ID:          e.newID("PR"),
		RequesterID: requesterID,
		Date:        e.now(),
		Status:      PRStatusDraft,
		Items:       append([]RequestLine(nil), items...),
	}, nil
}

// ApproveRequest moves a DRAFT request to APPROVED.
func (e *Engine) ApproveRequest(pr PurchaseRequest, approverID string) (PurchaseRequest, error) {
	if pr.Status != PRStatusDraft {
		return PurchaseRequest{}, invalidTransition("purchase request", pr.ID, pr.Status, PRStatusApproved)
	}
	pr.Status = PRStatusApproved
	pr.ApproverID = approverID
	return pr, nil
}

// DeriveOrder spawns a DRAFT purchase order from an APPROVED request,
// pricing each line from the current inventory snapshot (unknown SKUs
// price at zero). The request completes as a side effect.
func (e *Engine) DeriveOrder(pr PurchaseRequest, supplier refdata.Supplier, records []ledger.InventoryRecord) (PurchaseOrder, PurchaseRequest, error) {
	if pr.Status != PRStatusApproved {
		return PurchaseOrder{}, PurchaseRequest{}, invalidTransition("purchase request", pr.ID, pr.Status, PRStatusCompleted)
	}
	items := make([]OrderLine, 0, len(pr.Items))
	for _, reqLine := range pr.Items {
		price := ledger.PriceOf(records, reqLine.SKU)
		items = append(items, OrderLine{
			SKU:       reqLine.SKU,
			Name:      reqLine.Name,
			Qty:       reqLine.Qty,
			UnitPrice: price,
			Total:     lineTotal(reqLine.Qty, price),
		})
	}
	po := PurchaseOrder{
		ID:           e.newID("PO"),
		PRID:         pr.ID,
		SupplierID:   supplier.ID,
		SupplierName: supplier.Name,
		Date:         e.now(),
		Status:       POStatusDraft,
		Currency:     supplier.Currency,
		Items:        items,
		TotalAmount:  orderTotal(items),
	}
	pr.Status = PRStatusCompleted
	return po, pr, nil
}

// CreateOrder builds a DRAFT purchase order directly, without a request.
func (e *Engine) CreateOrder(supplier refdata.Supplier, items []OrderLine) (PurchaseOrder, error) {
	for i, item := range items {
		if item.SKU == "" || item.Qty <= 0 || item.UnitPrice.IsNegative() {
			return PurchaseOrder{}, fmt.Errorf("%w: line requires sku, positive qty and non-negative price", ErrValidation)
		}
		items[i].Total = lineTotal(item.Qty, item.UnitPrice)
	}
	return PurchaseOrder{
		ID:           e.newID("PO"),
		SupplierID:   supplier.ID,
		SupplierName: supplier.Name,
		Date:         e.now(),
		Status:       POStatusDraft,
		Currency:     supplier.Currency,
		Items:        append([]OrderLine(nil), items...),
		TotalAmount:  orderTotal(items),
	}, nil
}

// SendOrder communicates a DRAFT order to the supplier. No ledger effect.
func (e *Engine) SendOrder(po PurchaseOrder) (PurchaseOrder, error) {
	if po.Status != POStatusDraft {
		return PurchaseOrder{}, invalidTransition("purchase order", po.ID, po.Status, POStatusSent)
	}
	po.Status = POStatusSent
	return po, nil
}

// DeriveReceipt creates a DRAFT goods receipt against a SENT order,
// copying the order lines with received quantity defaulted to ordered
// quantity and condition GOOD.
func (e *Engine) DeriveReceipt(po PurchaseOrder, warehouseID string) (GoodsReceiptNote, error) {
	if po.Status != POStatusSent {
		return GoodsReceiptNote{}, fmt.Errorf("%w: purchase order %s is %s, receipt requires %s", ErrInvalidTransition, po.ID, po.Status, POStatusSent)
	}
	items := make([]ReceiptLine, 0, len(po.Items))
	for _, line := range po.Items {
		items = append(items, ReceiptLine{
			SKU:         line.SKU,
			Name:        line.Name,
			QtyOrdered:  line.Qty,
			QtyReceived: line.Qty,
			Condition:   ConditionGood,
		})
	}
	return GoodsReceiptNote{
		ID:          e.newID("GRN"),
		POID:        po.ID,
		WarehouseID: warehouseID,
		Date:        e.now(),
		Status:      GRNStatusDraft,
		Items:       items,
	}, nil
}

// VerifyReceipt is the sole trigger of the stock-increase posting rule
// for receipts. It returns the verified note, the updated snapshot, and
// any SKUs skipped because they have no inventory record.
func (e *Engine) VerifyReceipt(grn GoodsReceiptNote, records []ledger.InventoryRecord) (GoodsReceiptNote, []ledger.InventoryRecord, []string, error) {
	if grn.Status != GRNStatusDraft {
		return GoodsReceiptNote{}, nil, nil, invalidTransition("goods receipt", grn.ID, grn.Status, GRNStatusVerified)
	}
	lines := make([]ledger.ReceiptLine, 0, len(grn.Items))
	for _, item := range grn.Items {
		lines = append(lines, ledger.ReceiptLine{
			SKU:         item.SKU,
			QtyReceived: item.QtyReceived,
			Damaged:     item.Condition == ConditionDamaged,
		})
	}
	next, missing := ledger.ApplyReceipt(records, lines, e.now())
	grn.Status = GRNStatusVerified
	return grn, next, missing, nil
}

// DeriveInvoice creates a DRAFT supplier invoice against an order that
// has at least been sent. Subtotal defaults to the order total; tax and
// grand total derive from the configured rate.
func (e *Engine) DeriveInvoice(po PurchaseOrder, invoiceNumber string, grnIDs []string) (SupplierInvoice, error) {
	switch po.Status {
	case POStatusSent, POStatusPartial, POStatusCompleted:
	default:
		return SupplierInvoice{}, fmt.Errorf("%w: purchase order %s is %s, invoicing requires a sent order", ErrInvalidTransition, po.ID, po.Status)
	}
	now := e.now()
	subtotal := po.TotalAmount
	tax, total := invoiceAmounts(subtotal, e.taxRate)
	if invoiceNumber == "" {
		invoiceNumber = e.newID("SUP-INV")
	}
	return SupplierInvoice{
		ID:            e.newID("INV"),
		POID:          po.ID,
		GRNIDs:        append([]string(nil), grnIDs...),
		InvoiceNumber: invoiceNumber,
		SupplierID:    po.SupplierID,
		Date:          now,
		DueDate:       now.Add(e.dueIn),
		Status:        InvoiceStatusDraft,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         total,
	}, nil
}

// PostInvoice runs the three-way match against the originating order and
// stores the verdict. The ledger is untouched; re-posting is not legal so
// the verdict is never recomputed.
func (e *Engine) PostInvoice(inv SupplierInvoice, po PurchaseOrder) (SupplierInvoice, error) {
	if inv.Status != InvoiceStatusDraft {
		return SupplierInvoice{}, invalidTransition("supplier invoice", inv.ID, inv.Status, InvoiceStatusPosted)
	}
	inv.Matched = ThreeWayMatch(inv.Subtotal, po.TotalAmount, e.tolerance)
	inv.Status = InvoiceStatusPosted
	return inv, nil
}

// PayInvoice settles a POSTED invoice. Terminal, no further logic.
func (e *Engine) PayInvoice(inv SupplierInvoice) (SupplierInvoice, error) {
	if inv.Status != InvoiceStatusPosted {
		return SupplierInvoice{}, invalidTransition("supplier invoice", inv.ID, inv.Status, InvoiceStatusPaid)
	}
	inv.Status = InvoiceStatusPaid
	return inv, nil
}

// CreateTransfer builds a DRAFT stock transfer between distinct warehouses.
func (e *Engine) CreateTransfer(sourceWarehouseID, destWarehouseID string, items []TransferLine) (StockTransfer, error) {
	if sourceWarehouseID == "" || destWarehouseID == "" {
		return StockTransfer{}, fmt.Errorf("%w: source and destination warehouse required", ErrValidation)
	}
	if sourceWarehouseID == destWarehouseID {
		return StockTransfer{}, fmt.Errorf("%w: source and destination warehouse must differ", ErrValidation)
	}
	if len(items) == 0 {
		return StockTransfer{}, fmt.Errorf("%w: minimal 1 line", ErrValidation)
	}
	for _, item := range items {
		if item.SKU == "" || item.Qty <= 0 {
			return StockTransfer{}, fmt.Errorf("%w: line requires sku and positive qty", ErrValidation)
		}
	}
	return StockTransfer{
		ID:                e.newID("TRF"),
		SourceWarehouseID: sourceWarehouseID,
		DestWarehouseID:   destWarehouseID,
		Date:              e.now(),
		Status:            TransferStatusDraft,
		Items:             append([]TransferLine(nil), items...),
	}, nil
}

// DispatchTransfer marks a DRAFT transfer as on the road. The flat ledger
// carries no per-warehouse stock, so dispatch has no posting.
func (e *Engine) DispatchTransfer(trf StockTransfer) (StockTransfer, error) {
	if trf.Status != TransferStatusDraft {
		return StockTransfer{}, invalidTransition("stock transfer", trf.ID, trf.Status, TransferStatusInTransit)
	}
	trf.Status = TransferStatusInTransit
	return trf, nil
}

// ReceiveTransfer is the sole trigger of the stock-increase posting rule
// for transfers. Accepted from DRAFT (receipt without an explicit dispatch
// step) or IN_TRANSIT.
func (e *Engine) ReceiveTransfer(trf StockTransfer, records []ledger.InventoryRecord) (StockTransfer, []ledger.InventoryRecord, []string, error) {
	if trf.Status != TransferStatusDraft && trf.Status != TransferStatusInTransit {
		return StockTransfer{}, nil, nil, invalidTransition("stock transfer", trf.ID, trf.Status, TransferStatusReceived)
	}
	moves := make([]ledger.Movement, 0, len(trf.Items))
	for _, item := range trf.Items {
		moves = append(moves, ledger.Movement{SKU: item.SKU, Qty: item.Qty})
	}
	next, missing := ledger.ApplyTransferReceipt(records, moves, e.now())
	trf.Status = TransferStatusReceived
	return trf, next, missing, nil
}

// CreateReturn builds a DRAFT purchase return with refund pending.
func (e *Engine) CreateReturn(supplierID, grnID, reason string, items []ReturnLine) (PurchaseReturn, error) {
	if supplierID == "" {
		return PurchaseReturn{}, fmt.Errorf("%w: supplier required", ErrValidation)
	}
	if len(items) == 0 {
		return PurchaseReturn{}, fmt.Errorf("%w: minimal 1 line", ErrValidation)
	}
	for _, item := range items {
		if item.SKU == "" || item.Qty <= 0 {
			return PurchaseReturn{}, fmt.Errorf("%w: line requires sku and positive qty", ErrValidation)
		}
	}
	return PurchaseReturn{
		ID:           e.newID("RET"),
		GRNID:        grnID,
		SupplierID:   supplierID,
		Date:         e.now(),
		Reason:       reason,
		Status:       ReturnStatusDraft,
		Items:        append([]ReturnLine(nil), items...),
		RefundStatus: RefundStatusPending,
	}, nil
}

// ShipReturn is the sole trigger of the stock-decrease posting rule.
// Stock never goes negative; decrements clamp at zero.
func (e *Engine) ShipReturn(ret PurchaseReturn, records []ledger.InventoryRecord) (PurchaseReturn, []ledger.InventoryRecord, []string, error) {
	if ret.Status != ReturnStatusDraft {
		return PurchaseReturn{}, nil, nil, invalidTransition("purchase return", ret.ID, ret.Status, ReturnStatusShipped)
	}
	moves := make([]ledger.Movement, 0, len(ret.Items))
	for _, item := range ret.Items {
		moves = append(moves, ledger.Movement{SKU: item.SKU, Qty: item.Qty})
	}
	next, missing := ledger.ApplyReturnShipment(records, moves, e.now())
	ret.Status = ReturnStatusShipped
	return ret, next, missing, nil
}
