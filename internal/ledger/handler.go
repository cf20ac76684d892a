package ledger

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/grand-market/grand-market-erp/internal/platform/httpx"
)

// Reader exposes the inventory views served over HTTP.
type Reader interface {
	Inventory() []InventoryRecord
	Currency() string
}

// Handler serves inventory read endpoints.
type Handler struct {
	logger  *slog.Logger
	reader  Reader
	lowMark int64
}

// NewHandler builds the inventory handler. lowMark is the low-stock
// threshold used by the report endpoint.
func NewHandler(logger *slog.Logger, reader Reader, lowMark int64) *Handler {
	return &Handler{logger: logger, reader: reader, lowMark: lowMark}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/low-stock", h.handleLowStock)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{
		"currency": h.reader.Currency(),
		"items":    h.reader.Inventory(),
	})
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	threshold := h.lowMark
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "threshold must be a non-negative integer")
			return
		}
		threshold = parsed
	}
	items := LowStock(h.reader.Inventory(), threshold)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"threshold": threshold,
		"items":     items,
	})
}
