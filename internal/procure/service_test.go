package procure

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/grand-market/grand-market-erp/internal/ledger"
	"github.com/grand-market/grand-market-erp/internal/refdata"
	"github.com/grand-market/grand-market-erp/internal/shared"
)

type memorySnapshots struct {
	saves   int
	records []ledger.InventoryRecord
}

func (m *memorySnapshots) Save(_ context.Context, records []ledger.InventoryRecord) error {
	m.saves++
	m.records = ledger.Clone(records)
	return nil
}

type memoryAudit struct {
	entries []shared.AuditLog
}

func (m *memoryAudit) Record(_ context.Context, log shared.AuditLog) error {
	m.entries = append(m.entries, log)
	return nil
}

func (m *memoryAudit) actions() []string {
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

func newTestService(t *testing.T) (*Service, *memorySnapshots, *memoryAudit) {
	t.Helper()
	snapshots := &memorySnapshots{}
	audit := &memoryAudit{}
	directory := refdata.NewDirectory(
		[]refdata.Supplier{{ID: "SUP-001", Name: "Golden Harvest Distribution", Currency: "USD"}},
		[]refdata.Warehouse{
			{ID: "WH-001", Name: "Main Warehouse"},
			{ID: "WH-002", Name: "North Branch Store"},
		},
	)
	svc := NewService(ServiceConfig{
		Engine:    newTestEngine(),
		Directory: directory,
		Snapshots: snapshots,
		Audit:     audit,
		Inventory: testInventory(),
		Currency:  "USD",
	})
	return svc, snapshots, audit
}

func TestProcureToPayFlow(t *testing.T) {
	svc, snapshots, audit := newTestService(t)
	ctx := context.Background()

	pr, err := svc.CreateRequest(ctx, "user-1", []RequestLine{
		{SKU: "GRC-1001", Name: "Jasmine Rice 5kg", Qty: 10, Reason: "restock"},
		{SKU: "GRC-1002", Name: "Sunflower Oil 1L", Qty: 10, Reason: "restock"},
	})
	require.NoError(t, err)

	_, err = svc.ApproveRequest(ctx, pr.ID, "mgr-1")
	require.NoError(t, err)

	po, err := svc.DeriveOrder(ctx, pr.ID, "SUP-001")
	require.NoError(t, err)
	require.True(t, po.TotalAmount.Equal(decimal.RequireFromString("50.00")), "total was %s", po.TotalAmount)

	prs := svc.Requests()
	require.Len(t, prs, 1)
	require.Equal(t, PRStatusCompleted, prs[0].Status)

	po, err = svc.SendOrder(ctx, po.ID)
	require.NoError(t, err)

	grn, err := svc.DeriveReceipt(ctx, po.ID, "WH-001")
	require.NoError(t, err)

	_, err = svc.VerifyReceipt(ctx, grn.ID)
	require.NoError(t, err)
	require.EqualValues(t, 50, ledger.StockOf(svc.Inventory(), "GRC-1001"))
	require.EqualValues(t, 70, ledger.StockOf(svc.Inventory(), "GRC-1002"))
	require.Equal(t, 1, snapshots.saves, "ledger postings persist the snapshot")

	inv, err := svc.DeriveInvoice(ctx, po.ID, "SUP-INV-7", []string{grn.ID})
	require.NoError(t, err)
	require.True(t, inv.Subtotal.Equal(decimal.RequireFromString("50.00")))
	require.True(t, inv.Tax.Equal(decimal.RequireFromString("5.00")))
	require.True(t, inv.Total.Equal(decimal.RequireFromString("55.00")))

	inv, err = svc.PostInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.True(t, inv.Matched)

	inv, err = svc.PayInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, InvoiceStatusPaid, inv.Status)

	require.Equal(t, []string{
		"PR_CREATE", "PR_APPROVE", "PO_CREATE", "PO_SEND",
		"GRN_CREATE", "GRN_VERIFY", "INV_CREATE", "INV_POST", "INV_PAY",
	}, audit.actions())
}

func TestPostInvoiceMismatchIsRecorded(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	po, err := svc.CreateOrder(ctx, "SUP-001", []OrderLine{
		{SKU: "GRC-1001", Qty: 10, UnitPrice: decimal.RequireFromString("10.00")},
	})
	require.NoError(t, err)
	_, err = svc.SendOrder(ctx, po.ID)
	require.NoError(t, err)

	inv, err := svc.DeriveInvoice(ctx, po.ID, "", nil)
	require.NoError(t, err)

	// simulate a supplier billing 20% over the order
	svc.mu.Lock()
	inv.Subtotal = decimal.RequireFromString("120.00")
	svc.docs.PutInvoice(inv)
	svc.mu.Unlock()

	inv, err = svc.PostInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, InvoiceStatusPosted, inv.Status)
	require.False(t, inv.Matched)
}

func TestVerifyReceiptFailureLeavesStateUntouched(t *testing.T) {
	svc, snapshots, _ := newTestService(t)
	ctx := context.Background()

	po, err := svc.CreateOrder(ctx, "SUP-001", []OrderLine{
		{SKU: "GRC-1001", Qty: 5, UnitPrice: decimal.RequireFromString("2.00")},
	})
	require.NoError(t, err)
	_, err = svc.SendOrder(ctx, po.ID)
	require.NoError(t, err)
	grn, err := svc.DeriveReceipt(ctx, po.ID, "WH-001")
	require.NoError(t, err)

	_, err = svc.VerifyReceipt(ctx, grn.ID)
	require.NoError(t, err)

	before := svc.Inventory()
	_, err = svc.VerifyReceipt(ctx, grn.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, before, svc.Inventory(), "a rejected transition never moves stock")
	require.Equal(t, 1, snapshots.saves)
}

func TestAmendReceiptBeforeVerification(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	po, err := svc.CreateOrder(ctx, "SUP-001", []OrderLine{
		{SKU: "GRC-1001", Qty: 10, UnitPrice: decimal.RequireFromString("2.00")},
	})
	require.NoError(t, err)
	_, err = svc.SendOrder(ctx, po.ID)
	require.NoError(t, err)
	grn, err := svc.DeriveReceipt(ctx, po.ID, "WH-001")
	require.NoError(t, err)

	grn, err = svc.AmendReceipt(ctx, grn.ID, []ReceiptLine{
		{SKU: "GRC-1001", Name: "Jasmine Rice 5kg", QtyOrdered: 10, QtyReceived: 7, Condition: ConditionGood},
	})
	require.NoError(t, err)
	require.EqualValues(t, 7, grn.Items[0].QtyReceived)

	_, err = svc.VerifyReceipt(ctx, grn.ID)
	require.NoError(t, err)
	require.EqualValues(t, 47, ledger.StockOf(svc.Inventory(), "GRC-1001"), "short delivery posts the amended qty")

	_, err = svc.AmendReceipt(ctx, grn.ID, grn.Items)
	require.ErrorIs(t, err, ErrInvalidTransition, "verified receipts are frozen")
}

func TestTransferAndReturnPostings(t *testing.T) {
	svc, snapshots, _ := newTestService(t)
	ctx := context.Background()

	trf, err := svc.CreateTransfer(ctx, "WH-001", "WH-002", []TransferLine{{SKU: "GRC-1001", Qty: 5}})
	require.NoError(t, err)
	_, err = svc.DispatchTransfer(ctx, trf.ID)
	require.NoError(t, err)
	_, err = svc.ReceiveTransfer(ctx, trf.ID)
	require.NoError(t, err)
	require.EqualValues(t, 45, ledger.StockOf(svc.Inventory(), "GRC-1001"))

	ret, err := svc.CreateReturn(ctx, "SUP-001", "", "expired batch", []ReturnLine{{SKU: "GRC-1002", Qty: 100}})
	require.NoError(t, err)
	_, err = svc.ShipReturn(ctx, ret.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, ledger.StockOf(svc.Inventory(), "GRC-1002"), "return decrement clamps at zero")

	ret, err = svc.SetRefundStatus(ctx, ret.ID, RefundStatusCredited)
	require.NoError(t, err)
	require.Equal(t, RefundStatusCredited, ret.RefundStatus)

	require.Equal(t, 2, snapshots.saves)
}

func TestCreateTransferUnknownWarehouse(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateTransfer(context.Background(), "WH-001", "WH-999", []TransferLine{{SKU: "GRC-1001", Qty: 1}})
	require.ErrorIs(t, err, ErrReferenceNotFound)
}

func TestDeriveOrderUnknownSupplier(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	pr, err := svc.CreateRequest(ctx, "user-1", []RequestLine{{SKU: "GRC-1001", Qty: 1}})
	require.NoError(t, err)
	_, err = svc.ApproveRequest(ctx, pr.ID, "mgr-1")
	require.NoError(t, err)

	_, err = svc.DeriveOrder(ctx, pr.ID, "SUP-404")
	require.ErrorIs(t, err, ErrReferenceNotFound)
}

func TestUnknownDocumentIsNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.SendOrder(context.Background(), "PO-404")
	require.ErrorIs(t, err, ErrReferenceNotFound)
}
