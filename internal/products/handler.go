package products

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/brasa-analytics/brasa/internal/filters"
	"github.com/brasa-analytics/brasa/internal/platform/httpx"
)

// Handler serves the product analytics endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/top-products", h.topProducts)
	r.Get("/top-items", h.topItems)
	r.Get("/profitable-products", h.profitableProducts)
	r.Get("/product-seasonality", h.seasonality)
	r.Get("/category-performance", h.categoryPerformance)

	// The pairwise self-join is the heaviest query in the API.
	r.Group(func(gr chi.Router) {
		gr.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		gr.Get("/product-combinations", h.combinations)
	})
}

// limitParam reads the optional limit query parameter; zero means "use the
// endpoint default" and anything unparseable is ignored.
func limitParam(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func (h *Handler) topProducts(w http.ResponseWriter, r *http.Request) {
	set := filters.ParseQuery(r.URL.Query())
	data, err := h.service.GetTopProducts(r.Context(), set, limitParam(r))
	if err != nil {
		h.fail(w, "top products", "Erro ao buscar produtos", err)
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}

func (h *Handler) topItems(w http.ResponseWriter, r *http.Request) {
	set := filters.ParseQuery(r.URL.Query())
	data, err := h.service.GetTopItems(r.Context(), set, limitParam(r))
	if err != nil {
		h.fail(w, "top items", "Erro ao buscar items", err)
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}

func (h *Handler) profitableProducts(w http.ResponseWriter, r *http.Request) {
	set := filters.ParseQuery(r.URL.Query())
	data, err := h.service.GetProfitableProducts(r.Context(), set, limitParam(r))
	if err != nil {
		h.fail(w, "profitable products", "Erro ao buscar produtos lucrativos", err)
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}

func (h *Handler) seasonality(w http.ResponseWriter, r *http.Request) {
	set := filters.ParseQuery(r.URL.Query())
	data, err := h.service.GetSeasonality(r.Context(), set)
	if err != nil {
		h.fail(w, "product seasonality", "Erro ao buscar sazonalidade", err)
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}

func (h *Handler) combinations(w http.ResponseWriter, r *http.Request) {
	set := filters.ParseQuery(r.URL.Query())
	data, err := h.service.GetCombinations(r.Context(), set, limitParam(r))
	if err != nil {
		h.fail(w, "product combinations", "Erro ao buscar combinações", err)
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}

func (h *Handler) categoryPerformance(w http.ResponseWriter, r *http.Request) {
	set := filters.ParseQuery(r.URL.Query())
	data, err := h.service.GetCategoryPerformance(r.Context(), set)
	if err != nil {
		h.fail(w, "category performance", "Erro ao buscar performance por categoria", err)
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
