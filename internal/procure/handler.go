package procure

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/grand-market/grand-market-erp/internal/platform/httpx"
)

// Handler serves the procurement and warehousing endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds the Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountProcurementRoutes registers request, order and invoice routes.
func (h *Handler) MountProcurementRoutes(r chi.Router) {
	r.Get("/prs", h.listRequests)
	r.Post("/prs", h.createRequest)
	r.Get("/prs/{id}", h.getRequest)
	r.Post("/prs/{id}/approve", h.approveRequest)
	r.Post("/prs/{id}/order", h.deriveOrder)
	r.Get("/pos", h.listOrders)
	r.Post("/pos", h.createOrder)
	r.Get("/pos/{id}", h.getOrder)
	r.Post("/pos/{id}/send", h.sendOrder)
	r.Post("/pos/{id}/invoice", h.deriveInvoice)
	r.Get("/invoices", h.listInvoices)
	r.Get("/invoices/{id}", h.getInvoice)
	r.Post("/invoices/{id}/post", h.postInvoice)
	r.Post("/invoices/{id}/pay", h.payInvoice)
}

// MountWarehouseRoutes registers receipt, transfer and return routes.
func (h *Handler) MountWarehouseRoutes(r chi.Router) {
	r.Get("/grns", h.listReceipts)
	r.Post("/grns", h.deriveReceipt)
	r.Get("/grns/{id}", h.getReceipt)
	r.Put("/grns/{id}/items", h.amendReceipt)
	r.Post("/grns/{id}/verify", h.verifyReceipt)
	r.Get("/transfers", h.listTransfers)
	r.Post("/transfers", h.createTransfer)
	r.Get("/transfers/{id}", h.getTransfer)
	r.Post("/transfers/{id}/dispatch", h.dispatchTransfer)
	r.Post("/transfers/{id}/receive", h.receiveTransfer)
	r.Get("/returns", h.listReturns)
	r.Post("/returns", h.createReturn)
	r.Get("/returns/{id}", h.getReturn)
	r.Post("/returns/{id}/ship", h.shipReturn)
	r.Put("/returns/{id}/refund", h.setRefundStatus)
}

type requestLinePayload struct {
	SKU    string `json:"sku" validate:"required"`
	Name   string `json:"name"`
	Qty    int64  `json:"qty" validate:"gt=0"`
	Reason string `json:"reason"`
}

type createRequestPayload struct {
	RequesterID string               `json:"requesterId" validate:"required"`
	Items       []requestLinePayload `json:"items" validate:"min=1,dive"`
}

func (h *Handler) createRequest(w http.ResponseWriter, r *http.Request) {
	var payload createRequestPayload
	if !h.decode(w, r, &payload) {
		return
	}
	items := make([]RequestLine, 0, len(payload.Items))
	for _, line := range payload.Items {
		items = append(items, RequestLine{SKU: line.SKU, Name: line.Name, Qty: line.Qty, Reason: line.Reason})
	}
	pr, err := h.service.CreateRequest(r.Context(), payload.RequesterID, items)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, pr)
}

func (h *Handler) listRequests(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Requests())
}

func (h *Handler) getRequest(w http.ResponseWriter, r *http.Request) {
	pr, err := h.service.Request(chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pr)
}

type approvePayload struct {
	ApproverID string `json:"approverId" validate:"required"`
}

func (h *Handler) approveRequest(w http.ResponseWriter, r *http.Request) {
	var payload approvePayload
	if !h.decode(w, r, &payload) {
		return
	}
	pr, err := h.service.ApproveRequest(r.Context(), chi.URLParam(r, "id"), payload.ApproverID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pr)
}

type deriveOrderPayload struct {
	SupplierID string `json:"supplierId" validate:"required"`
}

func (h *Handler) deriveOrder(w http.ResponseWriter, r *http.Request) {
	var payload deriveOrderPayload
	if !h.decode(w, r, &payload) {
		return
	}
	po, err := h.service.DeriveOrder(r.Context(), chi.URLParam(r, "id"), payload.SupplierID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, po)
}

type orderLinePayload struct {
	SKU       string          `json:"sku" validate:"required"`
	Name      string          `json:"name"`
	Qty       int64           `json:"qty" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type createOrderPayload struct {
	SupplierID string             `json:"supplierId" validate:"required"`
	Items      []orderLinePayload `json:"items" validate:"min=1,dive"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var payload createOrderPayload
	if !h.decode(w, r, &payload) {
		return
	}
	items := make([]OrderLine, 0, len(payload.Items))
	for _, line := range payload.Items {
		items = append(items, OrderLine{SKU: line.SKU, Name: line.Name, Qty: line.Qty, UnitPrice: line.UnitPrice})
	}
	po, err := h.service.CreateOrder(r.Context(), payload.SupplierID, items)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, po)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Orders())
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	po, err := h.service.Order(chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, po)
}

func (h *Handler) sendOrder(w http.ResponseWriter, r *http.Request) {
	po, err := h.service.SendOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, po)
}

type deriveInvoicePayload struct {
	InvoiceNumber string   `json:"invoiceNumber"`
	GRNIDs        []string `json:"grnIds"`
}

func (h *Handler) deriveInvoice(w http.ResponseWriter, r *http.Request) {
	var payload deriveInvoicePayload
	if !h.decode(w, r, &payload) {
		return
	}
	inv, err := h.service.DeriveInvoice(r.Context(), chi.URLParam(r, "id"), payload.InvoiceNumber, payload.GRNIDs)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Invoices())
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.Invoice(chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) postInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.PostInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) payInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.PayInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

type deriveReceiptPayload struct {
	POID        string `json:"poId" validate:"required"`
	WarehouseID string `json:"warehouseId"`
}

func (h *Handler) deriveReceipt(w http.ResponseWriter, r *http.Request) {
	var payload deriveReceiptPayload
	if !h.decode(w, r, &payload) {
		return
	}
	grn, err := h.service.DeriveReceipt(r.Context(), payload.POID, payload.WarehouseID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, grn)
}

func (h *Handler) listReceipts(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Receipts())
}

func (h *Handler) getReceipt(w http.ResponseWriter, r *http.Request) {
	grn, err := h.service.Receipt(chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, grn)
}

type receiptLinePayload struct {
	SKU         string `json:"sku" validate:"required"`
	Name        string `json:"name"`
	QtyOrdered  int64  `json:"qtyOrdered" validate:"gte=0"`
	QtyReceived int64  `json:"qtyReceived" validate:"gte=0"`
	Condition   string `json:"condition" validate:"oneof=GOOD DAMAGED"`
}

type amendReceiptPayload struct {
	Items []receiptLinePayload `json:"items" validate:"min=1,dive"`
}

func (h *Handler) amendReceipt(w http.ResponseWriter, r *http.Request) {
	var payload amendReceiptPayload
	if !h.decode(w, r, &payload) {
		return
	}
	items := make([]ReceiptLine, 0, len(payload.Items))
	for _, line := range payload.Items {
		items = append(items, ReceiptLine{
			SKU:         line.SKU,
			Name:        line.Name,
			QtyOrdered:  line.QtyOrdered,
			QtyReceived: line.QtyReceived,
			Condition:   ItemCondition(line.Condition),
		})
	}
	grn, err := h.service.AmendReceipt(r.Context(), chi.URLParam(r, "id"), items)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, grn)
}

func (h *Handler) verifyReceipt(w http.ResponseWriter, r *http.Request) {
	grn, err := h.service.VerifyReceipt(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, grn)
}

type transferLinePayload struct {
	SKU  string `json:"sku" validate:"required"`
	Name string `json:"name"`
	Qty  int64  `json:"qty" validate:"gt=0"`
}

type createTransferPayload struct {
	SourceWarehouseID string                `json:"sourceWarehouseId" validate:"required"`
	DestWarehouseID   string                `json:"destWarehouseId" validate:"required"`
	Items             []transferLinePayload `json:"items" validate:"min=1,dive"`
}

func (h *Handler) createTransfer(w http.ResponseWriter, r *http.Request) {
	var payload createTransferPayload
	if !h.decode(w, r, &payload) {
		return
	}
	items := make([]TransferLine, 0, len(payload.Items))
	for _, line := range payload.Items {
		items = append(items, TransferLine{SKU: line.SKU, Name: line.Name, Qty: line.Qty})
	}
	trf, err := h.service.CreateTransfer(r.Context(), payload.SourceWarehouseID, payload.DestWarehouseID, items)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, trf)
}

func (h *Handler) listTransfers(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Transfers())
}

func (h *Handler) getTransfer(w http.ResponseWriter, r *http.Request) {
	trf, err := h.service.Transfer(chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, trf)
}

func (h *Handler) dispatchTransfer(w http.ResponseWriter, r *http.Request) {
	trf, err := h.service.DispatchTransfer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, trf)
}

func (h *Handler) receiveTransfer(w http.ResponseWriter, r *http.Request) {
	trf, err := h.service.ReceiveTransfer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, trf)
}

type createReturnPayload struct {
	SupplierID string                `json:"supplierId" validate:"required"`
	GRNID      string                `json:"grnId"`
	Reason     string                `json:"reason"`
	Items      []transferLinePayload `json:"items" validate:"min=1,dive"`
}

func (h *Handler) createReturn(w http.ResponseWriter, r *http.Request) {
	var payload createReturnPayload
	if !h.decode(w, r, &payload) {
		return
	}
	items := make([]ReturnLine, 0, len(payload.Items))
	for _, line := range payload.Items {
		items = append(items, ReturnLine{SKU: line.SKU, Name: line.Name, Qty: line.Qty})
	}
	ret, err := h.service.CreateReturn(r.Context(), payload.SupplierID, payload.GRNID, payload.Reason, items)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ret)
}

func (h *Handler) listReturns(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Returns())
}

func (h *Handler) getReturn(w http.ResponseWriter, r *http.Request) {
	ret, err := h.service.Return(chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ret)
}

func (h *Handler) shipReturn(w http.ResponseWriter, r *http.Request) {
	ret, err := h.service.ShipReturn(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ret)
}

type refundPayload struct {
	RefundStatus string `json:"refundStatus" validate:"oneof=PENDING CREDITED"`
}

func (h *Handler) setRefundStatus(w http.ResponseWriter, r *http.Request) {
	var payload refundPayload
	if !h.decode(w, r, &payload) {
		return
	}
	ret, err := h.service.SetRefundStatus(r.Context(), chi.URLParam(r, "id"), RefundStatus(payload.RefundStatus))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ret)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrReferenceNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidTransition):
		httpx.Problem(w, http.StatusConflict, "Invalid Transition", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("procure operation", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
