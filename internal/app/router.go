package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/grand-market/grand-market-erp/internal/insights"
	"github.com/grand-market/grand-market-erp/internal/ledger"
	"github.com/grand-market/grand-market-erp/internal/procure"
	"github.com/grand-market/grand-market-erp/internal/refdata"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	ProcureHandler  *procure.Handler
	LedgerHandler   *ledger.Handler
	InsightsHandler *insights.Handler
	RefDataHandler  *refdata.Handler
}

// NewRouter constructs the chi.Router with Grand Market defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/procurement", params.ProcureHandler.MountProcurementRoutes)
	r.Route("/warehouse", params.ProcureHandler.MountWarehouseRoutes)
	r.Route("/inventory", params.LedgerHandler.MountRoutes)
	if params.InsightsHandler != nil {
		r.Route("/insights", params.InsightsHandler.MountRoutes)
	}
	if params.RefDataHandler != nil {
		r.Route("/refdata", params.RefDataHandler.MountRoutes)
	}

	return r
}
