package procure

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/grand-market/grand-market-erp/internal/ledger"
	"github.com/grand-market/grand-market-erp/internal/refdata"
)

var testClock = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	seq := 0
	return NewEngine(EngineConfig{
		Now: func() time.Time { return testClock },
		NewID: func(prefix string) string {
			seq++
			return fmt.Sprintf("%s-%04d", prefix, seq)
		},
	})
}

func testSupplier() refdata.Supplier {
	return refdata.Supplier{ID: "SUP-001", Name: "Golden Harvest Distribution", Currency: "USD"}
}

func testInventory() []ledger.InventoryRecord {
	return []ledger.InventoryRecord{
		{SKU: "GRC-1001", Name: "Jasmine Rice 5kg", Price: decimal.RequireFromString("2.00"), StockLevel: 40},
		{SKU: "GRC-1002", Name: "Sunflower Oil 1L", Price: decimal.RequireFromString("3.00"), StockLevel: 60},
	}
}

func TestCreateRequestValidation(t *testing.T) {
	eng := newTestEngine()

	_, err := eng.CreateRequest("", []RequestLine{{SKU: "GRC-1001", Qty: 1}})
	require.ErrorIs(t, err, ErrValidation)

	_, err = eng.CreateRequest("user-1", nil)
	require.ErrorIs(t, err, ErrValidation)

	_, err = eng.CreateRequest("user-1", []RequestLine{{SKU: "GRC-1001", Qty: 0}})
	require.ErrorIs(t, err, ErrValidation)

	pr, err := eng.CreateRequest("user-1", []RequestLine{{SKU: "GRC-1001", Name: "Jasmine Rice 5kg", Qty: 10}})
	require.NoError(t, err)
	require.Equal(t, PRStatusDraft, pr.Status)
	require.Equal(t, testClock, pr.Date)
}

func TestApproveRequestRequiresDraft(t *testing.T) {
	eng := newTestEngine()
	pr, err := eng.CreateRequest("user-1", []RequestLine{{SKU: "GRC-1001", Qty: 10}})
	require.NoError(t, err)

	pr, err = eng.ApproveRequest(pr, "mgr-1")
	require.NoError(t, err)
	require.Equal(t, PRStatusApproved, pr.Status)
	require.Equal(t, "mgr-1", pr.ApproverID)

	_, err = eng.ApproveRequest(pr, "mgr-2")
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDeriveOrderPricesFromInventory(t *testing.T) {
	eng := newTestEngine()
	pr, err := eng.CreateRequest("user-1", []RequestLine{
		{SKU: "GRC-1001", Name: "Jasmine Rice 5kg", Qty: 10},
		{SKU: "GRC-1002", Name: "Sunflower Oil 1L", Qty: 10},
		{SKU: "UNKNOWN-1", Name: "Mystery Item", Qty: 5},
	})
	require.NoError(t, err)
	pr, err = eng.ApproveRequest(pr, "mgr-1")
	require.NoError(t, err)

	po, pr, err := eng.DeriveOrder(pr, testSupplier(), testInventory())
	require.NoError(t, err)
	require.Equal(t, PRStatusCompleted, pr.Status, "sourcing the order completes the request")
	require.Equal(t, POStatusDraft, po.Status)
	require.Equal(t, pr.ID, po.PRID)
	require.Equal(t, "SUP-001", po.SupplierID)
	require.Len(t, po.Items, 3)
	require.True(t, po.Items[0].UnitPrice.Equal(decimal.RequireFromString("2.00")))
	require.True(t, po.Items[2].UnitPrice.IsZero(), "unknown SKU prices at zero")
	require.True(t, po.TotalAmount.Equal(decimal.RequireFromString("50.00")), "total was %s", po.TotalAmount)
}

func TestDeriveOrderRequiresApproved(t *testing.T) {
	eng := newTestEngine()
	pr, err := eng.CreateRequest("user-1", []RequestLine{{SKU: "GRC-1001", Qty: 10}})
	require.NoError(t, err)

	_, _, err = eng.DeriveOrder(pr, testSupplier(), testInventory())
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReceiptFlow(t *testing.T) {
	eng := newTestEngine()
	po, err := eng.CreateOrder(testSupplier(), []OrderLine{
		{SKU: "GRC-1001", Name: "Jasmine Rice 5kg", Qty: 10, UnitPrice: decimal.RequireFromString("2.00")},
		{SKU: "GRC-1002", Name: "Sunflower Oil 1L", Qty: 10, UnitPrice: decimal.RequireFromString("3.00")},
	})
	require.NoError(t, err)

	_, err = eng.DeriveReceipt(po, "WH-001")
	require.ErrorIs(t, err, ErrInvalidTransition, "a draft order cannot be received")

	po, err = eng.SendOrder(po)
	require.NoError(t, err)

	grn, err := eng.DeriveReceipt(po, "WH-001")
	require.NoError(t, err)
	require.Equal(t, GRNStatusDraft, grn.Status)
	require.Equal(t, po.ID, grn.POID)
	require.Len(t, grn.Items, 2)
	require.EqualValues(t, 10, grn.Items[0].QtyReceived, "received defaults to ordered")
	require.Equal(t, ConditionGood, grn.Items[0].Condition)

	records := testInventory()
	grn.Items[1].Condition = ConditionDamaged

	grn, next, missing, err := eng.VerifyReceipt(grn, records)
	require.NoError(t, err)
	require.Empty(t, missing)
	require.Equal(t, GRNStatusVerified, grn.Status)
	require.EqualValues(t, 50, ledger.StockOf(next, "GRC-1001"))
	require.EqualValues(t, 60, ledger.StockOf(next, "GRC-1002"), "damaged line posts nothing")
	require.EqualValues(t, 40, ledger.StockOf(records, "GRC-1001"), "input snapshot untouched")

	_, _, _, err = eng.VerifyReceipt(grn, next)
	require.ErrorIs(t, err, ErrInvalidTransition, "verification is one-shot")
}

func TestInvoiceFlow(t *testing.T) {
	eng := newTestEngine()
	po, err := eng.CreateOrder(testSupplier(), []OrderLine{
		{SKU: "GRC-1001", Qty: 10, UnitPrice: decimal.RequireFromString("5.00")},
	})
	require.NoError(t, err)

	_, err = eng.DeriveInvoice(po, "", nil)
	require.ErrorIs(t, err, ErrInvalidTransition, "draft orders cannot be invoiced")

	po, err = eng.SendOrder(po)
	require.NoError(t, err)

	inv, err := eng.DeriveInvoice(po, "SUP-INV-42", []string{"GRN-0001"})
	require.NoError(t, err)
	require.Equal(t, InvoiceStatusDraft, inv.Status)
	require.Equal(t, "SUP-INV-42", inv.InvoiceNumber)
	require.True(t, inv.Subtotal.Equal(decimal.RequireFromString("50.00")))
	require.True(t, inv.Tax.Equal(decimal.RequireFromString("5.00")))
	require.True(t, inv.Total.Equal(decimal.RequireFromString("55.00")))
	require.Equal(t, testClock.Add(30*24*time.Hour), inv.DueDate)

	inv, err = eng.PostInvoice(inv, po)
	require.NoError(t, err)
	require.Equal(t, InvoiceStatusPosted, inv.Status)
	require.True(t, inv.Matched)

	_, err = eng.PostInvoice(inv, po)
	require.ErrorIs(t, err, ErrInvalidTransition, "posting is one-shot, the verdict stands")

	inv, err = eng.PayInvoice(inv)
	require.NoError(t, err)
	require.Equal(t, InvoiceStatusPaid, inv.Status)
}

func TestPostInvoiceRecordsMismatch(t *testing.T) {
	eng := newTestEngine()
	po, err := eng.CreateOrder(testSupplier(), []OrderLine{
		{SKU: "GRC-1001", Qty: 10, UnitPrice: decimal.RequireFromString("10.00")},
	})
	require.NoError(t, err)
	po, err = eng.SendOrder(po)
	require.NoError(t, err)

	inv, err := eng.DeriveInvoice(po, "", nil)
	require.NoError(t, err)
	inv.Subtotal = decimal.RequireFromString("120.00")

	inv, err = eng.PostInvoice(inv, po)
	require.NoError(t, err)
	require.Equal(t, InvoiceStatusPosted, inv.Status, "a mismatch still posts")
	require.False(t, inv.Matched)
}

func TestTransferFlow(t *testing.T) {
	eng := newTestEngine()

	_, err := eng.CreateTransfer("WH-001", "WH-001", []TransferLine{{SKU: "GRC-1001", Qty: 5}})
	require.ErrorIs(t, err, ErrValidation, "source and destination must differ")

	trf, err := eng.CreateTransfer("WH-001", "WH-002", []TransferLine{{SKU: "GRC-1001", Qty: 5}})
	require.NoError(t, err)
	require.Equal(t, TransferStatusDraft, trf.Status)

	trf, err = eng.DispatchTransfer(trf)
	require.NoError(t, err)
	require.Equal(t, TransferStatusInTransit, trf.Status)

	records := testInventory()
	trf, next, missing, err := eng.ReceiveTransfer(trf, records)
	require.NoError(t, err)
	require.Empty(t, missing)
	require.Equal(t, TransferStatusReceived, trf.Status)
	require.EqualValues(t, 45, ledger.StockOf(next, "GRC-1001"))

	_, _, _, err = eng.ReceiveTransfer(trf, next)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReceiveTransferDirectlyFromDraft(t *testing.T) {
	eng := newTestEngine()
	trf, err := eng.CreateTransfer("WH-001", "WH-002", []TransferLine{{SKU: "GRC-1002", Qty: 3}})
	require.NoError(t, err)

	trf, next, _, err := eng.ReceiveTransfer(trf, testInventory())
	require.NoError(t, err)
	require.Equal(t, TransferStatusReceived, trf.Status)
	require.EqualValues(t, 63, ledger.StockOf(next, "GRC-1002"))
}

func TestReturnFlow(t *testing.T) {
	eng := newTestEngine()
	ret, err := eng.CreateReturn("SUP-001", "GRN-0001", "damaged packaging", []ReturnLine{
		{SKU: "GRC-1001", Qty: 50},
	})
	require.NoError(t, err)
	require.Equal(t, ReturnStatusDraft, ret.Status)
	require.Equal(t, RefundStatusPending, ret.RefundStatus)

	records := testInventory()
	ret, next, missing, err := eng.ShipReturn(ret, records)
	require.NoError(t, err)
	require.Empty(t, missing)
	require.Equal(t, ReturnStatusShipped, ret.Status)
	require.EqualValues(t, 0, ledger.StockOf(next, "GRC-1001"), "decrement clamps at zero")

	_, _, _, err = eng.ShipReturn(ret, next)
	require.ErrorIs(t, err, ErrInvalidTransition)
}
