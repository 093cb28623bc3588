package query

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brasa-analytics/brasa/internal/filters"
	"github.com/brasa-analytics/brasa/internal/platform/httpx"
)

// Handler serves the ad-hoc explorer endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the explorer route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/custom-query", h.run)
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Métrica ou dimensão inválida")
		return
	}
	rows, err := h.service.Run(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrUnknownAxis) {
			httpx.Error(w, http.StatusBadRequest, "Métrica ou dimensão inválida")
			return
		}
		if errors.Is(err, filters.ErrInvalidPeriod) || errors.Is(err, filters.ErrInvalidFilter) {
			httpx.Error(w, http.StatusBadRequest, "Filtros inválidos")
			return
		}
		ref := httpx.Internal(w, "Erro ao executar query customizada")
		h.logger.Error("custom query", slog.Any("error", err), slog.String("ref", ref))
		return
	}
	if rows == nil {
		rows = []Row{}
	}
	httpx.JSON(w, http.StatusOK, rows)
}
