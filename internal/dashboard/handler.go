package dashboard

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brasa-analytics/brasa/internal/filters"
	"github.com/brasa-analytics/brasa/internal/platform/httpx"
)

// Handler serves the core dashboard endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/filter-options", h.filterOptions)
	r.Get("/metrics", h.metrics)
	r.Get("/revenue-timeline", h.revenueTimeline)
	r.Get("/channel-distribution", h.channelDistribution)
	r.Get("/store-performance", h.storePerformance)
	r.Get("/sales-by-hour", h.salesByHour)
	r.Get("/payment-methods", h.paymentMethods)
	r.Get("/coupon-performance", h.couponPerformance)
}

func (h *Handler) filterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.GetFilterOptions(r.Context())
	if err != nil {
		h.fail(w, "filter options", "Erro ao buscar opções de filtro", err)
		return
	}
	httpx.JSON(w, http.StatusOK, opts)
}

func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	set := filters.ParseQuery(r.URL.Query())
	metrics, err := h.service.GetMetrics(r.Context(), set)
	if err != nil {
		h.fail(w, "metrics", "Erro ao buscar métricas", err)
		return
	}
	httpx.JSON(w, http.StatusOK, metrics)
}

func (h *Handler) revenueTimeline(w http.ResponseWriter, r *http.Request) {
	set := filters.ParseQuery(r.URL.Query())
	points, err := h.service.GetRevenueTimeline(r.Context(), set)
	if err != nil {
		h.fail(w, "revenue timeline", "Erro ao buscar timeline", err)
		return
	}
	httpx.JSON(w, http.StatusOK, points)
}

func (h *Handler) channelDistribution(w http.ResponseWriter, r *http.Request) {
	set := filters.ParseQuery(r.URL.Query())
	slices, err := h.service.GetChannelDistribution(r.Context(), set)
	if err != nil {
		h.fail(w, "channel distribution", "Erro ao buscar distribuição de canais", err)
		return
	}
	httpx.JSON(w, http.StatusOK, slices)
}

func (h *Handler) storePerformance(w http.ResponseWriter, r *http.Request) {
	set := filters.ParseQuery(r.URL.Query())
	stores, err := h.service.GetStorePerformance(r.Context(), set)
	if err != nil {
		h.fail(w, "store performance", "Erro ao buscar performance de lojas", err)
		return
	}
	httpx.JSON(w, http.StatusOK, stores)
}

func (h *Handler) salesByHour(w http.ResponseWriter, r *http.Request) {
	set := filters.ParseQuery(r.URL.Query())
	cells, err := h.service.GetSalesByHour(r.Context(), set)
	if err != nil {
		h.fail(w, "sales by hour", "Erro ao buscar vendas por horário", err)
		return
	}
	httpx.JSON(w, http.StatusOK, cells)
}

func (h *Handler) paymentMethods(w http.ResponseWriter, r *http.Request) {
	set := filters.ParseQuery(r.URL.Query())
	methods, err := h.service.GetPaymentMethods(r.Context(), set)
	if err != nil {
		h.fail(w, "payment methods", "Erro ao buscar métodos de pagamento", err)
		return
	}
	httpx.JSON(w, http.StatusOK, methods)
}

func (h *Handler) couponPerformance(w http.ResponseWriter, r *http.Request) {
	set := filters.ParseQuery(r.URL.Query())
	coupons, err := h.service.GetCouponPerformance(r.Context(), set)
	if err != nil {
		h.fail(w, "coupon performance", "Erro ao buscar performance de cupons", err)
		return
	}
	httpx.JSON(w, http.StatusOK, coupons)
}

// fail maps filter validation errors to 400 and everything else to a 500
// envelope carrying an error reference that is also logged.
func (h *Handler) fail(w http.ResponseWriter, op, message string, err error) {
	if errors.Is(err, filters.ErrInvalidPeriod) || errors.Is(err, filters.ErrInvalidFilter) {
		httpx.Error(w, http.StatusBadRequest, "Filtros inválidos")
		return
	}
	ref := httpx.Internal(w, message)
	h.logger.Error(op, slog.Any("error", err), slog.String("ref", ref))
}
