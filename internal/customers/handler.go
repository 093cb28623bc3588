package customers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/brasa-analytics/brasa/internal/filters"
	"github.com/brasa-analytics/brasa/internal/platform/httpx"
)

// Handler serves the customer analytics endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers customer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/customer-metrics", h.metrics)
	r.Get("/top-customers", h.topCustomers)
	r.Get("/customer-segmentation", h.segmentation)
}

func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	set := filters.ParseQuery(r.URL.Query())
	metrics, err := h.service.GetMetrics(r.Context(), set)
	if err != nil {
		h.fail(w, "customer metrics", "Erro ao buscar métricas de clientes", err)
		return
	}
	httpx.JSON(w, http.StatusOK, metrics)
}

func (h *Handler) topCustomers(w http.ResponseWriter, r *http.Request) {
	set := filters.ParseQuery(r.URL.Query())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	data, err := h.service.GetTopCustomers(r.Context(), set, limit)
	if err != nil {
		h.fail(w, "top customers", "Erro ao buscar top clientes", err)
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}

func (h *Handler) segmentation(w http.ResponseWriter, r *http.Request) {
	set := filters.ParseQuery(r.URL.Query())
	data, err := h.service.GetSegmentation(r.Context(), set)
	if err != nil {
		h.fail(w, "customer segmentation", "Erro ao buscar segmentação", err)
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}

func (h *Handler) fail(w http.ResponseWriter, op, message string, err error) {
	if errors.Is(err, filters.ErrInvalidPeriod) || errors.Is(err, filters.ErrInvalidFilter) {
		httpx.Error(w, http.StatusBadRequest, "Filtros inválidos")
		return
	}
	ref := httpx.Internal(w, message)
	h.logger.Error(op, slog.Any("error", err), slog.String("ref", ref))
}
