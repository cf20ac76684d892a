package procure

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, _, _ := newTestService(t)
	h := NewHandler(slog.Default(), svc)
	r := chi.NewRouter()
	r.Route("/procurement", h.MountProcurementRoutes)
	r.Route("/warehouse", h.MountWarehouseRoutes)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerProcureToPay(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/procurement/prs", map[string]any{
		"requesterId": "user-1",
		"items": []map[string]any{
			{"sku": "GRC-1001", "name": "Jasmine Rice 5kg", "qty": 10},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var pr PurchaseRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pr))
	require.Equal(t, PRStatusDraft, pr.Status)

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/procurement/prs/%s/approve", pr.ID), map[string]any{"approverId": "mgr-1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/procurement/prs/%s/order", pr.ID), map[string]any{"supplierId": "SUP-001"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var po PurchaseOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &po))
	require.Equal(t, "20.00", po.TotalAmount.StringFixed(2))

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/procurement/pos/%s/send", po.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/warehouse/grns", map[string]any{"poId": po.ID, "warehouseId": "WH-001"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var grn GoodsReceiptNote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grn))

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/warehouse/grns/%s/verify", grn.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// a second verify is a workflow conflict
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/warehouse/grns/%s/verify", grn.ID), nil)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/procurement/pos/%s/invoice", po.ID), map[string]any{
		"invoiceNumber": "SUP-INV-1",
		"grnIds":        []string{grn.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var inv SupplierInvoice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inv))
	require.Equal(t, "22.00", inv.Total.StringFixed(2))

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/procurement/invoices/%s/post", inv.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inv))
	require.True(t, inv.Matched)
}

func TestHandlerValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/procurement/prs", map[string]any{"requesterId": "", "items": []map[string]any{}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestHandlerUnknownDocument(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/procurement/pos/PO-404/send", nil)
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestHandlerRefundStatus(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/warehouse/returns", map[string]any{
		"supplierId": "SUP-001",
		"reason":     "damaged packaging",
		"items":      []map[string]any{{"sku": "GRC-1001", "qty": 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ret PurchaseReturn
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ret))

	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/warehouse/returns/%s/refund", ret.ID), map[string]any{"refundStatus": "CREDITED"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ret))
	require.Equal(t, RefundStatusCredited, ret.RefundStatus)
}
