package products

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/brasa-analytics/brasa/internal/filters"
)

func newTestRouter(t *testing.T, repo Repository) chi.Router {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(logger, newTestService(t, repo)).MountRoutes(r)
	return r
}

func TestTopProductsEndpoint(t *testing.T) {
	repo := &stubRepo{top: []TopProductRow{
		{Name: "Picanha Burger", Categoria: str("Burgers"), Vendas: 120, Receita: f64(4200)},
	}}
	router := newTestRouter(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/top-products?period=30d&limit=5", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var data []TopProduct
	if err := json.Unmarshal(rr.Body.Bytes(), &data); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(data) != 1 || data[0].Name != "Picanha Burger" {
		t.Fatalf("unexpected payload %+v", data)
	}
	if repo.topLimit != 5 {
		t.Fatalf("expected limit 5 forwarded, got %d", repo.topLimit)
	}
}

func TestTopProductsEndpointRejectsInvalidPeriod(t *testing.T) {
	router := newTestRouter(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/top-products?period=x", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestLimitParamIgnoresGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/top-products?limit=abc", nil)
	if got := limitParam(req); got != 0 {
		t.Fatalf("expected 0 for garbage limit, got %d", got)
	}
	req = httptest.NewRequest(http.MethodGet, "/top-products?limit=7", nil)
	if got := limitParam(req); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func TestLimitClauseNumbersAfterFilterArgs(t *testing.T) {
	clause := filters.Clause{SQL: "WHERE x = $1 AND y = $2", Args: []any{1, 2}}
	limitSQL, args := limitClause(clause, 15)
	if limitSQL != "LIMIT $3" {
		t.Fatalf("expected LIMIT $3, got %q", limitSQL)
	}
	if len(args) != 3 || args[2] != 15 {
		t.Fatalf("expected limit appended, got %v", args)
	}
}
