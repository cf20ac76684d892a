package insights

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/grand-market/grand-market-erp/internal/platform/httpx"
)

// Handler serves the assistant endpoint.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds the Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers insight routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.generate)
}

type generatePayload struct {
	Prompt string `json:"prompt" validate:"required,max=2000"`
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	var payload generatePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(&payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	answer := h.service.Generate(r.Context(), payload.Prompt)
	httpx.JSON(w, http.StatusOK, map[string]string{"answer": answer})
}
