package procure

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Purchase request lifecycle statuses.
type PRStatus string

const (
	PRStatusDraft     PRStatus = "DRAFT"
	PRStatusApproved  PRStatus = "APPROVED"
	PRStatusCompleted PRStatus = "COMPLETED"
)

// Purchase order lifecycle statuses.
type POStatus string

const (
	POStatusDraft     POStatus = "DRAFT"
	POStatusSent      POStatus = "SENT"
	POStatusPartial   POStatus = "PARTIAL"
	POStatusCompleted POStatus = "COMPLETED"
)

// Goods receipt statuses. VERIFIED is terminal.
type GRNStatus string

const (
	GRNStatusDraft    GRNStatus = "DRAFT"
	GRNStatusVerified GRNStatus = "VERIFIED"
)

// Supplier invoice statuses.
type InvoiceStatus string

const (
	InvoiceStatusDraft  InvoiceStatus = "DRAFT"
	InvoiceStatusPosted InvoiceStatus = "POSTED"
	InvoiceStatusPaid   InvoiceStatus = "PAID"
)

// Stock transfer statuses.
type TransferStatus string

const (
	TransferStatusDraft     TransferStatus = "DRAFT"
	TransferStatusInTransit TransferStatus = "IN_TRANSIT"
	TransferStatusReceived  TransferStatus = "RECEIVED"
)

// Purchase return statuses. SHIPPED is terminal.
type ReturnStatus string

const (
	ReturnStatusDraft   ReturnStatus = "DRAFT"
	ReturnStatusShipped ReturnStatus = "SHIPPED"
)

// Refund settlement state, updated by the finance collaborator.
type RefundStatus string

const (
	RefundStatusPending  RefundStatus = "PENDING"
	RefundStatusCredited RefundStatus = "CREDITED"
)

// ItemCondition classifies received goods.
type ItemCondition string

const (
	ConditionGood    ItemCondition = "GOOD"
	ConditionDamaged ItemCondition = "DAMAGED"
)

// PurchaseRequest asks for goods to be procured.
type PurchaseRequest struct {
	ID          string        `json:"id"`
	RequesterID string        `json:"requesterId"`
	Date        time.Time     `json:"date"`
	Status      PRStatus      `json:"status"`
	Items       []RequestLine `json:"items"`
	ApproverID  string        `json:"approverId,omitempty"`
}

// RequestLine is a requested item.
type RequestLine struct {
	SKU    string `json:"sku"`
	Name   string `json:"name"`
	Qty    int64  `json:"qty"`
	Reason string `json:"reason"`
}

// PurchaseOrder commits a purchase with a supplier.
type PurchaseOrder struct {
	ID           string          `json:"id"`
	PRID         string          `json:"prId,omitempty"`
	SupplierID   string          `json:"supplierId"`
	SupplierName string          `json:"supplierName"`
	Date         time.Time       `json:"date"`
	Status       POStatus        `json:"status"`
	Currency     string          `json:"currency"`
	Items        []OrderLine     `json:"items"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
}

// OrderLine is an ordered item with pricing. Total is always derived as
// Qty x UnitPrice, never set independently.
type OrderLine struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Qty       int64           `json:"qty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
}

// GoodsReceiptNote documents physical receipt of ordered goods.
type GoodsReceiptNote struct {
	ID          string        `json:"id"`
	POID        string        `json:"poId"`
	WarehouseID string        `json:"warehouseId"`
	Date        time.Time     `json:"date"`
	Status      GRNStatus     `json:"status"`
	Items       []ReceiptLine `json:"items"`
}

// ReceiptLine records received quantity and condition per ordered item.
type ReceiptLine struct {
	SKU         string        `json:"sku"`
	Name        string        `json:"name"`
	QtyOrdered  int64         `json:"qtyOrdered"`
	QtyReceived int64         `json:"qtyReceived"`
	Condition   ItemCondition `json:"condition"`
}

// SupplierInvoice bills a purchase order. Matched holds the three-way
// match verdict, set once when the invoice is posted.
type SupplierInvoice struct {
	ID            string          `json:"id"`
	POID          string          `json:"poId"`
	GRNIDs        []string        `json:"grnIds"`
	InvoiceNumber string          `json:"invoiceNumber"`
	SupplierID    string          `json:"supplierId"`
	Date          time.Time       `json:"date"`
	DueDate       time.Time       `json:"dueDate"`
	Status        InvoiceStatus   `json:"status"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	Matched       bool            `json:"matched"`
}

// StockTransfer moves goods between warehouses.
type StockTransfer struct {
	ID                string         `json:"id"`
	SourceWarehouseID string         `json:"sourceWarehouseId"`
	DestWarehouseID   string         `json:"destWarehouseId"`
	Date              time.Time      `json:"date"`
	Status            TransferStatus `json:"status"`
	Items             []TransferLine `json:"items"`
}

// TransferLine is a transferred item.
type TransferLine struct {
	SKU  string `json:"sku"`
	Name string `json:"name"`
	Qty  int64  `json:"qty"`
}

// PurchaseReturn sends goods back to a supplier.
type PurchaseReturn struct {
	ID           string       `json:"id"`
	GRNID        string       `json:"grnId,omitempty"`
	SupplierID   string       `json:"supplierId"`
	Date         time.Time    `json:"date"`
	Reason       string       `json:"reason"`
	Status       ReturnStatus `json:"status"`
	Items        []ReturnLine `json:"items"`
	RefundStatus RefundStatus `json:"refundStatus"`
}

// ReturnLine is a returned item.
type ReturnLine struct {
	SKU  string `json:"sku"`
	Name string `json:"name"`
	Qty  int64  `json:"qty"`
}

var (
	// ErrInvalidTransition occurs when an action violates the status workflow.
	ErrInvalidTransition = errors.New("procure: invalid state transition")
	// ErrReferenceNotFound indicates a derivation references a missing document.
	ErrReferenceNotFound = errors.New("procure: referenced document not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("procure: invalid input")
)

// invalidTransition wraps ErrInvalidTransition with the document identity,
// its current status and the attempted transition.
func invalidTransition(entity, id string, from, to fmt.Stringer) error {
	return fmt.Errorf("%w: %s %s is %s, cannot move to %s", ErrInvalidTransition, entity, id, from, to)
}

func (s PRStatus) String() string       { return string(s) }
func (s POStatus) String() string       { return string(s) }
func (s GRNStatus) String() string      { return string(s) }
func (s InvoiceStatus) String() string  { return string(s) }
func (s TransferStatus) String() string { return string(s) }
func (s ReturnStatus) String() string   { return string(s) }
