package refdata

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/grand-market/grand-market-erp/internal/platform/httpx"
)

// Handler serves the reference directory read endpoints.
type Handler struct {
	logger    *slog.Logger
	directory *Directory
}

// NewHandler builds the Handler instance.
func NewHandler(logger *slog.Logger, directory *Directory) *Handler {
	return &Handler{logger: logger, directory: directory}
}

// MountRoutes registers directory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/suppliers", h.listSuppliers)
	r.Get("/suppliers/{id}", h.getSupplier)
	r.Get("/warehouses", h.listWarehouses)
	r.Get("/warehouses/{id}", h.getWarehouse)
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers := h.directory.Suppliers()
	sort.Slice(suppliers, func(i, j int) bool { return suppliers[i].ID < suppliers[j].ID })
	httpx.JSON(w, http.StatusOK, suppliers)
}

func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	supplier, err := h.directory.Supplier(chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, supplier)
}

func (h *Handler) listWarehouses(w http.ResponseWriter, r *http.Request) {
	warehouses := h.directory.Warehouses()
	sort.Slice(warehouses, func(i, j int) bool { return warehouses[i].ID < warehouses[j].ID })
	httpx.JSON(w, http.StatusOK, warehouses)
}

func (h *Handler) getWarehouse(w http.ResponseWriter, r *http.Request) {
	warehouse, err := h.directory.Warehouse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, warehouse)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrNotFound, err))
		return
	}
	h.logger.Error("refdata lookup", slog.Any("error", err))
	httpx.RespondError(w, err)
}
