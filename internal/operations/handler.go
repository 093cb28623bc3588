package operations

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brasa-analytics/brasa/internal/filters"
	"github.com/brasa-analytics/brasa/internal/platform/httpx"
)

// Handler serves the operational analytics endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers operations routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/operational-metrics", h.metrics)
	r.Get("/operational-by-hour", h.byHour)
	r.Get("/cancellation-metrics", h.cancellations)
}

func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	set := filters.ParseQuery(r.URL.Query())
	metrics, err := h.service.GetMetrics(r.Context(), set)
	if err != nil {
		h.fail(w, "operational metrics", "Erro ao buscar métricas operacionais", err)
		return
	}
	httpx.JSON(w, http.StatusOK, metrics)
}

func (h *Handler) byHour(w http.ResponseWriter, r *http.Request) {
	set := filters.ParseQuery(r.URL.Query())
	data, err := h.service.GetByHour(r.Context(), set)
	if err != nil {
		h.fail(w, "operational by hour", "Erro ao buscar dados por horário", err)
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}

func (h *Handler) cancellations(w http.ResponseWriter, r *http.Request) {
	set := filters.ParseQuery(r.URL.Query())
	metrics, err := h.service.GetCancellations(r.Context(), set)
	if err != nil {
		h.fail(w, "cancellation metrics", "Erro ao buscar métricas de cancelamento", err)
		return
	}
	httpx.JSON(w, http.StatusOK, metrics)
}

func (h *Handler) fail(w http.ResponseWriter, op, message string, err error) {
	if errors.Is(err, filters.ErrInvalidPeriod) || errors.Is(err, filters.ErrInvalidFilter) {
		httpx.Error(w, http.StatusBadRequest, "Filtros inválidos")
		return
	}
	ref := httpx.Internal(w, message)
	h.logger.Error(op, slog.Any("error", err), slog.String("ref", ref))
}
